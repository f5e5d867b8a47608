package keyword

import (
	"slices"

	"github.com/aretw0/jsonval/pkg/digest"
	"github.com/aretw0/jsonval/pkg/jsonptr"
	"github.com/aretw0/jsonval/pkg/regex"
	"github.com/aretw0/jsonval/pkg/report"
	"github.com/aretw0/jsonval/pkg/tree"
	"github.com/aretw0/jsonval/pkg/value"
)

var simpleTypes = []string{"array", "boolean", "integer", "null", "number", "object", "string"}

func checkType(kw, _ value.Value, _ regex.Engine) error {
	switch kw.Kind() {
	case value.KindString:
		if !slices.Contains(simpleTypes, kw.Str()) {
			return syntaxErrorf(kw, "unknown type %q", kw.Str())
		}
		return nil
	case value.KindArray:
		if err := isStringSet(kw); err != nil {
			return err
		}
		for i, e := range kw.Elements() {
			if !slices.Contains(simpleTypes, e.Str()) {
				return syntaxErrorAt(jsonptr.Root.AppendIndex(i), e, "unknown type %q", e.Str())
			}
		}
		return nil
	}
	return syntaxErrorf(kw, "must be a string or an array, found %s", kw.Kind())
}

type typeValidator struct {
	types []string
}

func buildType(kw, _ value.Value, _ digest.Digest) (Validator, error) {
	if kw.Kind() == value.KindString {
		return typeValidator{types: []string{kw.Str()}}, nil
	}
	types := make([]string, 0, kw.Len())
	for _, e := range kw.Elements() {
		types = append(types, e.Str())
	}
	return typeValidator{types: types}, nil
}

func (typeValidator) Keyword() string { return "type" }

func (v typeValidator) Validate(ctx Context, rep *report.Report, inst tree.Instance) error {
	found := TypeName(inst.Node())
	for _, t := range v.types {
		if t == found || (t == "number" && found == "integer") {
			return nil
		}
	}
	m := Fail(ctx, inst, "type", "instance type (%s) does not match any allowed primitive type (allowed: %v)", found, v.types).
		With("found", value.String(found)).
		With("expected", stringArray(v.types...))
	return rep.Log(m)
}

// TypeName returns the JSON Schema type of v. Decimals with a zero
// fractional part count as integers.
func TypeName(v value.Value) string {
	if v.Kind() == value.KindDecimal && v.IsIntegral() {
		return "integer"
	}
	return v.Kind().String()
}

func checkEnum(kw, _ value.Value, _ regex.Engine) error {
	if kw.Kind() != value.KindArray {
		return syntaxErrorf(kw, "must be an array, found %s", kw.Kind())
	}
	if kw.Len() == 0 {
		return syntaxErrorf(kw, "must not be empty")
	}
	elems := kw.Elements()
	for i := range elems {
		for j := range i {
			if value.Equal(elems[i], elems[j]) {
				return syntaxErrorf(kw, "elements must be unique, %s is repeated", elems[i])
			}
		}
	}
	return nil
}

type enumValidator struct {
	values value.Value
	hashes map[uint64][]value.Value
}

func buildEnum(kw, _ value.Value, _ digest.Digest) (Validator, error) {
	v := enumValidator{values: kw, hashes: make(map[uint64][]value.Value, kw.Len())}
	for _, e := range kw.Elements() {
		h := value.Hash(e)
		v.hashes[h] = append(v.hashes[h], e)
	}
	return v, nil
}

func (enumValidator) Keyword() string { return "enum" }

func (v enumValidator) Validate(ctx Context, rep *report.Report, inst tree.Instance) error {
	for _, candidate := range v.hashes[value.Hash(inst.Node())] {
		if value.Equal(candidate, inst.Node()) {
			return nil
		}
	}
	m := Fail(ctx, inst, "enum", "instance value (%s) not found in enum (possible values: %s)", inst.Node(), v.values).
		With("value", inst.Node()).
		With("enum", v.values)
	return rep.Log(m)
}

type constValidator struct {
	want value.Value
}

func buildConst(kw, _ value.Value, _ digest.Digest) (Validator, error) {
	return constValidator{want: kw}, nil
}

func (constValidator) Keyword() string { return "const" }

func (v constValidator) Validate(ctx Context, rep *report.Report, inst tree.Instance) error {
	if value.Equal(v.want, inst.Node()) {
		return nil
	}
	m := Fail(ctx, inst, "const", "instance value (%s) is not the expected constant %s", inst.Node(), v.want).
		With("value", inst.Node()).
		With("const", v.want)
	return rep.Log(m)
}
