package keyword

import (
	"math/big"

	"github.com/aretw0/jsonval/pkg/digest"
	"github.com/aretw0/jsonval/pkg/report"
	"github.com/aretw0/jsonval/pkg/tree"
	"github.com/aretw0/jsonval/pkg/value"
)

// compare orders two numbers exactly. Integers compare as big.Int, anything
// involving a decimal as big.Rat.
func compare(a, b value.Value) int {
	if a.Kind() == value.KindInteger && b.Kind() == value.KindInteger {
		return a.BigInt().Cmp(b.BigInt())
	}
	return a.Rat().Cmp(b.Rat())
}

// isMultiple reports whether a is an integral multiple of b. b is non-zero.
func isMultiple(a, b value.Value) bool {
	if a.Kind() == value.KindInteger && b.Kind() == value.KindInteger {
		return new(big.Int).Rem(a.BigInt(), b.BigInt()).Sign() == 0
	}
	return new(big.Rat).Quo(a.Rat(), b.Rat()).IsInt()
}

type boundValidator struct {
	name      string
	limit     value.Value
	exclusive bool
	// sign is -1 for minimum and +1 for maximum.
	sign int
}

func buildBound(name, exclusiveName string, sign int) Factory {
	return func(kw, schema value.Value, _ digest.Digest) (Validator, error) {
		ex, _ := schema.Field(exclusiveName)
		return boundValidator{name: name, limit: kw, exclusive: ex.Bool(), sign: sign}, nil
	}
}

func (v boundValidator) Keyword() string { return v.name }

func (v boundValidator) Validate(ctx Context, rep *report.Report, inst tree.Instance) error {
	c := compare(inst.Node(), v.limit) * v.sign
	switch {
	case c < 0:
		return nil
	case c == 0 && !v.exclusive:
		return nil
	}
	var m report.Message
	switch {
	case c == 0 && v.sign < 0:
		m = Fail(ctx, inst, v.name, "numeric instance is not strictly greater than the required minimum %s", v.limit)
	case c == 0:
		m = Fail(ctx, inst, v.name, "numeric instance is not strictly lower than the required maximum %s", v.limit)
	case v.sign < 0:
		m = Fail(ctx, inst, v.name, "numeric instance is lower than the required minimum (minimum: %s, found: %s)", v.limit, inst.Node())
	default:
		m = Fail(ctx, inst, v.name, "numeric instance is greater than the required maximum (maximum: %s, found: %s)", v.limit, inst.Node())
	}
	m = m.With(v.name, v.limit).With("found", inst.Node())
	if v.exclusive {
		m = m.With("exclusive"+capitalize(v.name), value.Bool(true))
	}
	return rep.Log(m)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}

type multipleValidator struct {
	name    string
	divisor value.Value
}

func buildMultiple(name string) Factory {
	return func(kw, _ value.Value, _ digest.Digest) (Validator, error) {
		return multipleValidator{name: name, divisor: kw}, nil
	}
}

func (v multipleValidator) Keyword() string { return v.name }

func (v multipleValidator) Validate(ctx Context, rep *report.Report, inst tree.Instance) error {
	if isMultiple(inst.Node(), v.divisor) {
		return nil
	}
	m := Fail(ctx, inst, v.name, "remainder of division is not zero (%s / %s)", inst.Node(), v.divisor).
		With("divisor", v.divisor).
		With("found", inst.Node())
	return rep.Log(m)
}
