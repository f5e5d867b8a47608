package keyword

import (
	"github.com/aretw0/jsonval/pkg/digest"
	"github.com/aretw0/jsonval/pkg/jsonptr"
	"github.com/aretw0/jsonval/pkg/report"
	"github.com/aretw0/jsonval/pkg/tree"
	"github.com/aretw0/jsonval/pkg/value"
)

// branches evaluates inst against each sub-schema of an allOf, anyOf or
// oneOf keyword, each into its own report.
type branches struct {
	name string
	n    int
}

type outcome struct {
	matched int
	// reports maps each branch's schema pointer to its messages.
	reports value.Value
}

func (b branches) run(ctx Context, rep *report.Report, inst tree.Instance) (outcome, error) {
	var out outcome
	reports := make(map[string]value.Value, b.n)
	base := jsonptr.Root.Append(b.name)
	for i := range b.n {
		ptr := base.AppendIndex(i)
		sub := rep.Sub()
		if err := ctx.Validate(sub, ptr, inst); err != nil {
			return outcome{}, err
		}
		if sub.IsSuccess() {
			out.matched++
		}
		reports[string(ctx.Schema().Pointer().Join(ptr))] = sub.AsValue()
	}
	out.reports = value.Object(reports)
	return out, nil
}

func buildBranches(name string, mode func(branches) Validator) Factory {
	return func(kw, _ value.Value, _ digest.Digest) (Validator, error) {
		return mode(branches{name: name, n: kw.Len()}), nil
	}
}

type allOfValidator struct{ branches }

func (allOfValidator) Keyword() string { return "allOf" }

func (v allOfValidator) Validate(ctx Context, rep *report.Report, inst tree.Instance) error {
	out, err := v.run(ctx, rep, inst)
	if err != nil || out.matched == v.n {
		return err
	}
	m := Fail(ctx, inst, "allOf", "instance failed to match all required schemas (matched only %d out of %d)", out.matched, v.n).
		With("matched", value.Int(int64(out.matched))).
		With("nrSchemas", value.Int(int64(v.n))).
		With("reports", out.reports)
	return rep.Log(m)
}

type anyOfValidator struct{ branches }

func (anyOfValidator) Keyword() string { return "anyOf" }

func (v anyOfValidator) Validate(ctx Context, rep *report.Report, inst tree.Instance) error {
	out, err := v.run(ctx, rep, inst)
	if err != nil || out.matched > 0 {
		return err
	}
	m := Fail(ctx, inst, "anyOf", "instance failed to match at least one required schema among %d", v.n).
		With("nrSchemas", value.Int(int64(v.n))).
		With("reports", out.reports)
	return rep.Log(m)
}

type oneOfValidator struct{ branches }

func (oneOfValidator) Keyword() string { return "oneOf" }

func (v oneOfValidator) Validate(ctx Context, rep *report.Report, inst tree.Instance) error {
	out, err := v.run(ctx, rep, inst)
	if err != nil || out.matched == 1 {
		return err
	}
	m := Fail(ctx, inst, "oneOf", "instance failed to match exactly one schema (matched %d out of %d)", out.matched, v.n).
		With("matched", value.Int(int64(out.matched))).
		With("nrSchemas", value.Int(int64(v.n))).
		With("reports", out.reports)
	return rep.Log(m)
}

type notValidator struct{}

func buildNot(_, _ value.Value, _ digest.Digest) (Validator, error) {
	return notValidator{}, nil
}

func (notValidator) Keyword() string { return "not" }

func (notValidator) Validate(ctx Context, rep *report.Report, inst tree.Instance) error {
	sub := rep.Sub()
	if err := ctx.Validate(sub, jsonptr.Root.Append("not"), inst); err != nil {
		return err
	}
	if !sub.IsSuccess() {
		return nil
	}
	m := Fail(ctx, inst, "not", "instance matched a schema which it should not have")
	return rep.Log(m)
}
