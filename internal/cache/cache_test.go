package cache_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/jsonval/internal/cache"
	"github.com/aretw0/jsonval/internal/metrics"
	"github.com/aretw0/jsonval/pkg/digest"
	"github.com/aretw0/jsonval/pkg/keyword"
	"github.com/aretw0/jsonval/pkg/regex"
	"github.com/aretw0/jsonval/pkg/tree"
	"github.com/aretw0/jsonval/pkg/value"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func schema(t *testing.T, s string) tree.Schema {
	t.Helper()
	sc, err := tree.NewSchema("", value.MustParse(s))
	require.NoError(t, err)
	return sc
}

func names(e *cache.Entry) []string {
	var out []string
	for _, v := range e.Validators {
		out = append(out, v.Keyword())
	}
	return out
}

func TestProcessor_BuildsApplicableValidators(t *testing.T) {
	p := cache.New(keyword.DraftV4(), regex.NewECMA())
	s := schema(t, `{"type":"object","minimum":1,"required":["a"],"properties":{"a":{}},"maxLength":2}`)

	obj := p.Get(s, value.KindObject)
	require.False(t, obj.Invalid())
	assert.Equal(t, []string{"required", "type"}, names(obj))
	assert.Equal(t, digest.Object{Properties: []string{"a"}}, obj.Digest)

	num := p.Get(s, value.KindInteger)
	assert.Equal(t, []string{"minimum", "type"}, names(num))
	assert.Nil(t, num.Digest)
}

func TestProcessor_SameKeySameEntry(t *testing.T) {
	p := cache.New(keyword.DraftV4(), regex.NewECMA())
	a := p.Get(schema(t, `{"minimum":1}`), value.KindInteger)
	b := p.Get(schema(t, `{"minimum":1}`), value.KindInteger)
	assert.Same(t, a, b)
	assert.Equal(t, 1, p.Len())

	c := p.Get(schema(t, `{"minimum":1}`), value.KindDecimal)
	assert.NotSame(t, a, c)
	assert.Equal(t, 2, p.Len())

	p.Purge()
	assert.Equal(t, 0, p.Len())
}

func TestProcessor_Disabled(t *testing.T) {
	for _, size := range []int{0, -1} {
		p := cache.New(keyword.DraftV4(), regex.NewECMA(), cache.WithSize(size))
		s := schema(t, `{"minimum":1}`)
		a := p.Get(s, value.KindInteger)
		b := p.Get(s, value.KindInteger)
		assert.NotSame(t, a, b)
		assert.Equal(t, names(a), names(b))
		assert.Equal(t, 0, p.Len())
	}
}

func TestProcessor_InvalidSchema(t *testing.T) {
	p := cache.New(keyword.DraftV4(), regex.NewECMA())
	e := p.Get(schema(t, `{"minimum":"x","type":"strin"}`), value.KindString)
	require.True(t, e.Invalid())
	assert.Empty(t, e.Validators)

	var se *keyword.SyntaxError
	require.True(t, errors.As(e.Err, &se))
	assert.Equal(t, "minimum", se.Keyword)

	root := tree.MustSchema("", value.MustParse(`{"items":[1]}`))
	assert.True(t, p.Get(root, value.KindNull).Invalid())
}

func TestProcessor_EvictionAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	p := cache.New(keyword.DraftV4(), regex.NewECMA(), cache.WithSize(1), cache.WithMetrics(m))

	p.Get(schema(t, `{"minimum":1}`), value.KindInteger)
	p.Get(schema(t, `{"minimum":1}`), value.KindInteger)
	p.Get(schema(t, `{"minimum":2}`), value.KindInteger)

	assert.Equal(t, 1, p.Len())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheHits))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheMisses))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheEvictions))
}

func TestProcessor_Concurrent(t *testing.T) {
	p := cache.New(keyword.DraftV4(), regex.NewECMA(), cache.WithSize(8))
	docs := []string{`{"minimum":1}`, `{"maxLength":3}`, `{"type":"array","uniqueItems":true}`}
	kinds := []value.Kind{value.KindInteger, value.KindString, value.KindArray}

	g, _ := errgroup.WithContext(context.Background())
	for i := 0; i < 64; i++ {
		i := i
		g.Go(func() error {
			s := tree.MustSchema("", value.MustParse(docs[i%len(docs)]))
			e := p.Get(s, kinds[i%len(kinds)])
			if e == nil || e.Invalid() || len(e.Validators) == 0 {
				return errors.New("incomplete entry")
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.LessOrEqual(t, p.Len(), 3)
}
