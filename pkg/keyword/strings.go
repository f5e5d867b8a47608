package keyword

import (
	"unicode/utf8"

	"github.com/aretw0/jsonval/pkg/digest"
	"github.com/aretw0/jsonval/pkg/regex"
	"github.com/aretw0/jsonval/pkg/report"
	"github.com/aretw0/jsonval/pkg/tree"
	"github.com/aretw0/jsonval/pkg/value"
)

// sizeValidator bounds the size of strings, arrays or objects.
type sizeValidator struct {
	name  string
	limit int64
	lower bool
	unit  string
	size  func(value.Value) int
}

func buildSize(name, unit string, lower bool, size func(value.Value) int) Factory {
	return func(kw, _ value.Value, _ digest.Digest) (Validator, error) {
		return sizeValidator{name: name, limit: kw.Rat().Num().Int64(), lower: lower, unit: unit, size: size}, nil
	}
}

func (v sizeValidator) Keyword() string { return v.name }

func (v sizeValidator) Validate(ctx Context, rep *report.Report, inst tree.Instance) error {
	n := int64(v.size(inst.Node()))
	if v.lower && n >= v.limit || !v.lower && n <= v.limit {
		return nil
	}
	var m report.Message
	if v.lower {
		m = Fail(ctx, inst, v.name, "instance has too few %s (%d), minimum %d required", v.unit, n, v.limit)
	} else {
		m = Fail(ctx, inst, v.name, "instance has too many %s (%d), maximum %d allowed", v.unit, n, v.limit)
	}
	m = m.With(v.name, value.Int(v.limit)).With("found", value.Int(n))
	return rep.Log(m)
}

// runeCount measures strings in Unicode code points.
func runeCount(v value.Value) int { return utf8.RuneCountInString(v.Str()) }

func checkPattern(kw, schema value.Value, re regex.Engine) error {
	if err := isString(kw, schema, re); err != nil {
		return err
	}
	if !re.IsValid(kw.Str()) {
		return syntaxErrorf(kw, "%q is not a valid ECMA 262 regular expression", kw.Str())
	}
	return nil
}

type patternValidator struct {
	pattern string
}

func buildPattern(kw, _ value.Value, _ digest.Digest) (Validator, error) {
	return patternValidator{pattern: kw.Str()}, nil
}

func (patternValidator) Keyword() string { return "pattern" }

func (v patternValidator) Validate(ctx Context, rep *report.Report, inst tree.Instance) error {
	ok, err := ctx.Regex().Matches(v.pattern, inst.Node().Str())
	if err != nil {
		return Abort(ctx, inst, "pattern", err)
	}
	if ok {
		return nil
	}
	m := Fail(ctx, inst, "pattern", "ECMA 262 regex %q does not match input string %q", v.pattern, inst.Node().Str()).
		With("regex", value.String(v.pattern)).
		With("string", inst.Node())
	return rep.Log(m)
}
