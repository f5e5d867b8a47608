package engine_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/jsonval/internal/cache"
	"github.com/aretw0/jsonval/internal/engine"
	"github.com/aretw0/jsonval/pkg/digest"
	"github.com/aretw0/jsonval/pkg/jsonptr"
	"github.com/aretw0/jsonval/pkg/keyword"
	"github.com/aretw0/jsonval/pkg/ports"
	"github.com/aretw0/jsonval/pkg/regex"
	"github.com/aretw0/jsonval/pkg/report"
	"github.com/aretw0/jsonval/pkg/tree"
	"github.com/aretw0/jsonval/pkg/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func newEngine(opts ...cache.Option) *engine.Engine {
	return engine.New(cache.New(keyword.DraftV4(), regex.NewECMA(), opts...), nil)
}

func run(t *testing.T, e *engine.Engine, schema, instance string, opts engine.Options) (*report.Report, error) {
	t.Helper()
	s, err := tree.NewSchema("", value.MustParse(schema))
	require.NoError(t, err)
	rep, err := e.Validate(context.Background(), s, value.MustParse(instance), opts)
	require.NotNil(t, rep)
	return rep, err
}

func deep() engine.Options {
	o := engine.DefaultOptions()
	o.DeepCheck = true
	return o
}

type entry struct {
	pointer jsonptr.Pointer
	keyword string
	level   report.Level
}

func entries(rep *report.Report) []entry {
	var out []entry
	for _, m := range rep.Messages() {
		out = append(out, entry{m.Pointer, m.Keyword, m.Level})
	}
	return out
}

func TestScenarios(t *testing.T) {
	tests := []struct {
		name     string
		schema   string
		instance string
		opts     engine.Options
		want     []entry
	}{
		{
			name:     "minimum",
			schema:   `{"type":"integer","minimum":5}`,
			instance: `3`,
			opts:     engine.DefaultOptions(),
			want:     []entry{{"", "minimum", report.Error}},
		},
		{
			name:     "items type",
			schema:   `{"type":"array","items":{"type":"string"},"additionalItems":false}`,
			instance: `["a",1]`,
			opts:     engine.DefaultOptions(),
			want:     []entry{{"/1", "type", report.Error}},
		},
		{
			name:     "object selectors deep",
			schema:   `{"properties":{"a":{"type":"object"}},"patternProperties":{"^b":{"type":"number"}},"additionalProperties":false}`,
			instance: `{"a":1,"bx":"s","c":1}`,
			opts:     deep(),
			want: []entry{
				{"/c", "additionalProperties", report.Error},
				{"/a", "type", report.Error},
				{"/bx", "type", report.Error},
			},
		},
		{
			name:     "object selectors short-circuit",
			schema:   `{"properties":{"a":{"type":"object"}},"patternProperties":{"^b":{"type":"number"}},"additionalProperties":false}`,
			instance: `{"a":1,"bx":"s","c":1}`,
			opts:     engine.DefaultOptions(),
			want:     []entry{{"/c", "additionalProperties", report.Error}},
		},
		{
			name:     "uniqueItems",
			schema:   `{"uniqueItems":true}`,
			instance: `[1,1]`,
			opts:     engine.DefaultOptions(),
			want:     []entry{{"", "uniqueItems", report.Error}},
		},
		{
			name:     "dependencies",
			schema:   `{"type":"object","dependencies":{"a":["b"]}}`,
			instance: `{"a":1}`,
			opts:     engine.DefaultOptions(),
			want:     []entry{{"", "dependencies", report.Error}},
		},
		{
			name:     "valid nested",
			schema:   `{"type":"object","properties":{"list":{"type":"array","items":{"type":"integer","minimum":0}}}}`,
			instance: `{"list":[0,1,2],"other":null}`,
			opts:     engine.DefaultOptions(),
			want:     nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep, err := run(t, newEngine(), tt.schema, tt.instance, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, entries(rep))
			assert.Equal(t, len(tt.want) == 0, rep.IsSuccess())
			assert.False(t, rep.HasFatal())
		})
	}
}

func TestDependencies_NamesMissingProperty(t *testing.T) {
	rep, err := run(t, newEngine(), `{"type":"object","dependencies":{"a":["b"]}}`, `{"a":1}`, engine.DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, 1, rep.Len())
	assert.True(t, value.Equal(value.MustParse(`["b"]`), rep.Messages()[0].Extra["missing"]))
}

func TestValidationLoop(t *testing.T) {
	rep, err := run(t, newEngine(), `{"oneOf":[{},{"$ref":"#"}]}`, `{}`, engine.DefaultOptions())
	require.Error(t, err)
	assert.ErrorIs(t, err, report.ErrValidationLoop)

	assert.True(t, rep.HasFatal())
	require.Len(t, rep.Messages(), 1)
	m := rep.Messages()[0]
	assert.Equal(t, report.Fatal, m.Level)
	assert.Equal(t, report.DomainValidation, m.Domain)
	assert.True(t, value.Equal(value.MustParse(`["#","#/oneOf/1","#"]`), m.Extra["validationPath"]))
}

func TestValidationLoop_NeverRaiseStillAborts(t *testing.T) {
	opts := engine.DefaultOptions()
	opts.ExceptionThreshold = report.None
	rep, err := run(t, newEngine(), `{"oneOf":[{},{"$ref":"#"}]}`, `{}`, opts)
	assert.ErrorIs(t, err, report.ErrValidationLoop)
	assert.Len(t, rep.Messages(), 1)
	assert.True(t, rep.HasFatal())
}

func TestDiamondReferencesAreNotLoops(t *testing.T) {
	tests := []struct {
		name     string
		schema   string
		instance string
		want     []entry
	}{
		{
			name: "two properties share a definition",
			schema: `{
				"properties": {"a": {"$ref": "#/definitions/x"}, "b": {"$ref": "#/definitions/x"}},
				"definitions": {"x": {"type": "integer"}}
			}`,
			instance: `{"a":1,"b":"no"}`,
			want:     []entry{{"/b", "type", report.Error}},
		},
		{
			name: "allOf branches share a definition",
			schema: `{
				"allOf": [{"$ref": "#/definitions/x"}, {"$ref": "#/definitions/x"}],
				"definitions": {"x": {"minimum": 0}}
			}`,
			instance: `1`,
		},
		{
			name:     "recursive schema over nested instance",
			schema:   `{"type":"object","properties":{"child":{"$ref":"#"}},"additionalProperties":false}`,
			instance: `{"child":{"child":{"child":{}}}}`,
		},
		{
			name:     "recursive schema finds deep error",
			schema:   `{"type":"object","properties":{"child":{"$ref":"#"}},"additionalProperties":false}`,
			instance: `{"child":{"child":{"oops":1}}}`,
			want:     []entry{{"/child/child/oops", "additionalProperties", report.Error}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep, err := run(t, newEngine(), tt.schema, tt.instance, deep())
			require.NoError(t, err)
			assert.False(t, rep.HasFatal())
			assert.Equal(t, tt.want, entries(rep))
		})
	}
}

func TestRefLoop(t *testing.T) {
	rep, err := run(t, newEngine(), `{"$ref":"#/definitions/a","definitions":{"a":{"$ref":"#"}}}`, `1`, engine.DefaultOptions())
	assert.ErrorIs(t, err, report.ErrRefResolving)
	require.Len(t, rep.Messages(), 1)
	assert.Equal(t, report.DomainRefResolving, rep.Messages()[0].Domain)
	assert.True(t, rep.HasFatal())
}

func TestRefSiblingsIgnored(t *testing.T) {
	rep, err := run(t, newEngine(), `{"$ref":"#/definitions/a","minimum":100,"definitions":{"a":{"type":"integer"}}}`, `1`, engine.DefaultOptions())
	require.NoError(t, err)
	assert.True(t, rep.IsSuccess())
}

func TestUnresolvableRef(t *testing.T) {
	rep, err := run(t, newEngine(), `{"properties":{"a":{"$ref":"#/definitions/missing"}}}`, `{"a":1}`, engine.DefaultOptions())
	assert.ErrorIs(t, err, report.ErrRefResolving)
	assert.ErrorIs(t, err, ports.ErrInvalidPointer)
	require.Len(t, rep.Messages(), 1)
	m := rep.Messages()[0]
	assert.Equal(t, report.DomainRefResolving, m.Domain)
	assert.Equal(t, jsonptr.Pointer("/a"), m.Pointer)
}

func TestExternalRef(t *testing.T) {
	defs := value.MustParse(`{"definitions":{"pos":{"type":"integer","minimum":1}},"neg":{"$ref":"#/definitions/pos"}}`)
	loads := 0
	resolver := ports.ResolverFunc(func(_ context.Context, uri string) (value.Value, error) {
		if uri != "mem://defs.json" {
			return value.Value{}, ports.ErrNotFound
		}
		loads++
		return defs, nil
	})
	e := engine.New(cache.New(keyword.DraftV4(), regex.NewECMA()), engine.NewRefResolver(resolver, nil, nil))

	s := tree.MustSchema("mem://main.json", value.MustParse(`{"items":{"$ref":"mem://defs.json#/neg"}}`))
	rep, err := e.Validate(context.Background(), s, value.MustParse(`[1,0,2]`), engine.DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, []entry{{"/1", "minimum", report.Error}}, entries(rep))
	assert.Equal(t, "mem://defs.json#/definitions/pos", rep.Messages()[0].Schema)
	assert.Equal(t, 1, loads, "documents are loaded once")

	s = tree.MustSchema("mem://main.json", value.MustParse(`{"$ref":"mem://nowhere.json"}`))
	rep, err = e.Validate(context.Background(), s, value.MustParse(`1`), engine.DefaultOptions())
	assert.ErrorIs(t, err, ports.ErrNotFound)
	assert.ErrorIs(t, err, report.ErrRefResolving)
	assert.True(t, rep.HasFatal())
}

func TestInvalidSchema(t *testing.T) {
	schema := `{"type":"object","properties":{"a":{"minimum":"x"}}}`

	rep, err := run(t, newEngine(), schema, `{"a":1}`, engine.DefaultOptions())
	assert.ErrorIs(t, err, report.ErrInvalidSchema)
	assert.False(t, errors.Is(err, report.ErrValidationLoop))
	require.Len(t, rep.Messages(), 1)
	m := rep.Messages()[0]
	assert.Equal(t, report.DomainSyntax, m.Domain)
	assert.Equal(t, "minimum", m.Keyword)
	assert.Equal(t, "/properties/a/minimum", m.Extra["schemaPointer"].Str())

	rep, err = run(t, newEngine(), schema, `{"b":1}`, engine.DefaultOptions())
	require.NoError(t, err, "fragments never visited are never checked")
	assert.True(t, rep.IsSuccess())
}

func TestExceptionThreshold(t *testing.T) {
	opts := deep()
	opts.ExceptionThreshold = report.Error
	rep, err := run(t, newEngine(), `{"properties":{"a":{"type":"string"},"b":{"type":"string"}}}`, `{"a":1,"b":2}`, opts)
	assert.ErrorIs(t, err, report.ErrThreshold)

	var abort *report.AbortError
	require.True(t, errors.As(err, &abort))
	assert.Equal(t, jsonptr.Pointer("/a"), abort.Message.Pointer)
	assert.Equal(t, []entry{{"/a", "type", report.Error}}, entries(rep))
}

func TestCombinatorErrorsDoNotHitThreshold(t *testing.T) {
	opts := engine.DefaultOptions()
	opts.ExceptionThreshold = report.Error
	rep, err := run(t, newEngine(), `{"anyOf":[{"type":"string"},{"type":"integer"}]}`, `1`, opts)
	require.NoError(t, err)
	assert.True(t, rep.IsSuccess())
}

func TestLogLevel(t *testing.T) {
	opts := engine.DefaultOptions()
	rep, err := run(t, newEngine(), `{"format":"color"}`, `"red"`, opts)
	require.NoError(t, err)
	assert.Len(t, rep.Messages(), 1)

	opts.LogLevel = report.Error
	rep, err = run(t, newEngine(), `{"format":"color"}`, `"red"`, opts)
	require.NoError(t, err)
	assert.Empty(t, rep.Messages())
	assert.Equal(t, report.Warning, rep.CurrentLevel())
}

func TestCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := tree.MustSchema("", value.MustParse(`{"type":"integer"}`))
	rep, err := newEngine().Validate(ctx, s, value.MustParse(`1`), engine.DefaultOptions())
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, rep.HasFatal())
	assert.Len(t, rep.Messages(), 1)
}

func TestMaxDepth(t *testing.T) {
	opts := engine.DefaultOptions()
	opts.MaxDepth = 3
	schema := `{"properties":{"child":{"$ref":"#"}}}`
	_, err := run(t, newEngine(), schema, `{"child":{"child":{"child":{"child":{}}}}}`, opts)
	assert.ErrorIs(t, err, report.ErrDepthExceeded)

	_, err = run(t, newEngine(), schema, `{"child":{}}`, opts)
	assert.NoError(t, err)
}

func TestFieldOrder(t *testing.T) {
	rep, err := run(t, newEngine(), `{"additionalProperties":{"type":"string"},"items":{"type":"string"}}`, `{"b":1,"a":2,"c":"ok"}`, deep())
	require.NoError(t, err)
	assert.Equal(t, []entry{{"/a", "type", report.Error}, {"/b", "type", report.Error}}, entries(rep))
}

const richSchema = `{
	"type": "object",
	"required": ["id", "tags"],
	"properties": {
		"id": {"type": "integer", "minimum": 1},
		"tags": {"type": "array", "items": {"type": "string", "minLength": 2}, "uniqueItems": true},
		"meta": {"$ref": "#/definitions/meta"}
	},
	"patternProperties": {"^x-": {"type": "string"}},
	"additionalProperties": false,
	"definitions": {
		"meta": {"type": "object", "properties": {"parent": {"$ref": "#/definitions/meta"}}, "maxProperties": 2}
	}
}`

const richInstance = `{
	"id": 0,
	"tags": ["a", "bb", "bb", 3],
	"meta": {"parent": {"parent": {"a": 1, "b": 2, "c": 3}}},
	"x-note": 5,
	"extra": true
}`

func TestDeterminism(t *testing.T) {
	e := newEngine()
	first, err := run(t, e, richSchema, richInstance, deep())
	require.NoError(t, err)
	require.NotEmpty(t, first.Messages())
	for i := 0; i < 5; i++ {
		again, err := run(t, e, richSchema, richInstance, deep())
		require.NoError(t, err)
		assert.Equal(t, first.Messages(), again.Messages())
	}
}

func TestCacheTransparency(t *testing.T) {
	cached, err := run(t, newEngine(), richSchema, richInstance, deep())
	require.NoError(t, err)
	uncached, err := run(t, newEngine(cache.WithSize(0)), richSchema, richInstance, deep())
	require.NoError(t, err)
	tiny, err := run(t, newEngine(cache.WithSize(1)), richSchema, richInstance, deep())
	require.NoError(t, err)

	assert.Equal(t, cached.Messages(), uncached.Messages())
	assert.Equal(t, cached.Messages(), tiny.Messages())
}

func TestConcurrentCalls(t *testing.T) {
	e := newEngine(cache.WithSize(4))
	want, err := run(t, e, richSchema, richInstance, deep())
	require.NoError(t, err)

	s := tree.MustSchema("", value.MustParse(richSchema))
	inst := value.MustParse(richInstance)
	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < 32; i++ {
		g.Go(func() error {
			rep, err := e.Validate(ctx, s, inst, deep())
			if err != nil {
				return err
			}
			if fmt.Sprint(rep.Messages()) != fmt.Sprint(want.Messages()) {
				return errors.New("concurrent call produced a different report")
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
}

func TestRegexTimeoutAborts(t *testing.T) {
	field := strings.Repeat("a", 40) + "b"
	tests := []struct {
		name     string
		schema   string
		instance string
		keyword  string
		pointer  jsonptr.Pointer
	}{
		{
			name:     "closed object",
			schema:   `{"patternProperties":{"^(a+)+$|b":{}},"additionalProperties":false}`,
			instance: fmt.Sprintf(`{%q:1}`, field),
			keyword:  "patternProperties",
			pointer:  jsonptr.Root.Append(field),
		},
		{
			name:     "child selection",
			schema:   `{"patternProperties":{"^(a+)+$|b":{"type":"integer"}}}`,
			instance: fmt.Sprintf(`{%q:1}`, field),
			keyword:  "patternProperties",
			pointer:  jsonptr.Root.Append(field),
		},
		{
			name:     "pattern",
			schema:   `{"pattern":"^(a+)+$|b"}`,
			instance: fmt.Sprintf(`%q`, field),
			keyword:  "pattern",
			pointer:  jsonptr.Root,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := engine.New(cache.New(keyword.DraftV4(), regex.NewECMA(regex.WithTimeout(time.Millisecond))), nil)
			rep, err := run(t, e, tt.schema, tt.instance, deep())
			require.Error(t, err)
			assert.ErrorIs(t, err, regex.ErrTimeout)

			var abort *report.AbortError
			require.True(t, errors.As(err, &abort))
			require.Equal(t, 1, rep.Len())
			m := rep.Messages()[0]
			assert.Equal(t, report.Fatal, m.Level)
			assert.Equal(t, report.DomainSyntax, m.Domain)
			assert.Equal(t, tt.keyword, m.Keyword)
			assert.Equal(t, tt.pointer, m.Pointer)
			assert.Contains(t, m.Text, "timed out")
		})
	}
}

type failingValidator struct{}

func (failingValidator) Keyword() string { return "explode" }

func (failingValidator) Validate(keyword.Context, *report.Report, tree.Instance) error {
	return errors.New("backend unavailable")
}

func TestValidatorErrorYieldsAbortReport(t *testing.T) {
	reg := keyword.DraftV4()
	require.NoError(t, reg.Register(keyword.Entry{
		Name:  "explode",
		Kinds: value.Kinds(value.KindString),
		Check: func(value.Value, value.Value, regex.Engine) error { return nil },
		Build: func(value.Value, value.Value, digest.Digest) (keyword.Validator, error) {
			return failingValidator{}, nil
		},
	}))
	e := engine.New(cache.New(reg, regex.NewECMA()), nil)

	rep, err := run(t, e, `{"explode":true}`, `"x"`, engine.DefaultOptions())
	var abort *report.AbortError
	require.True(t, errors.As(err, &abort))
	assert.EqualError(t, errors.Unwrap(err), "backend unavailable")
	require.Equal(t, 1, rep.Len())
	assert.Equal(t, report.Fatal, rep.Messages()[0].Level)
	assert.Contains(t, rep.Messages()[0].Text, "backend unavailable")
	assert.False(t, rep.IsSuccess())
}
