package keyword

import (
	"fmt"

	"github.com/aretw0/jsonval/pkg/digest"
	"github.com/aretw0/jsonval/pkg/jsonptr"
	"github.com/aretw0/jsonval/pkg/regex"
	"github.com/aretw0/jsonval/pkg/report"
	"github.com/aretw0/jsonval/pkg/tree"
	"github.com/aretw0/jsonval/pkg/value"
)

// Context is what a validator sees of the engine while it runs.
type Context interface {
	// Schema is the fragment the validator was built from.
	Schema() tree.Schema
	// Regex is the regular expression engine in use.
	Regex() regex.Engine
	// Validate validates inst against the sub-schema at ptr, relative to
	// Schema(), logging into rep. It returns a non-nil error only when the
	// whole call must stop.
	Validate(rep *report.Report, ptr jsonptr.Pointer, inst tree.Instance) error
}

// Validator checks one keyword of one schema fragment. Validators are built
// once per fragment and hold no per-call state. Constraint violations are
// logged to the report; the returned error is reserved for conditions that
// end the call.
type Validator interface {
	Keyword() string
	Validate(ctx Context, rep *report.Report, inst tree.Instance) error
}

// Checker verifies the syntax of a keyword's value inside schema.
type Checker func(kw value.Value, schema value.Value, re regex.Engine) error

// Factory builds a validator from the keyword's value, the enclosing schema
// fragment and the fragment's digest for the instance kind (nil for scalars).
// A nil Validator means the keyword imposes nothing in this configuration.
type Factory func(kw value.Value, schema value.Value, d digest.Digest) (Validator, error)

// Entry describes one keyword.
type Entry struct {
	Name string
	// Kinds lists the instance kinds the validator applies to.
	Kinds value.KindSet
	Check Checker
	// Build is nil for keywords that only shape the schema, such as
	// properties or definitions.
	Build Factory
}

// SyntaxError describes a malformed keyword.
type SyntaxError struct {
	Keyword string
	// Pointer locates the offending value relative to the schema fragment.
	Pointer jsonptr.Pointer
	Reason  string
	Value   value.Value
}

func (e *SyntaxError) Error() string {
	if e.Pointer == jsonptr.Root || e.Pointer == jsonptr.Root.Append(e.Keyword) {
		return fmt.Sprintf("keyword %q: %s", e.Keyword, e.Reason)
	}
	return fmt.Sprintf("keyword %q at %s: %s", e.Keyword, e.Pointer, e.Reason)
}

func syntaxErrorf(kw value.Value, format string, args ...any) error {
	return &SyntaxError{Reason: fmt.Sprintf(format, args...), Value: kw}
}

// syntaxErrorAt reports a problem with a value nested inside the keyword.
func syntaxErrorAt(ptr jsonptr.Pointer, v value.Value, format string, args ...any) error {
	return &SyntaxError{Pointer: ptr, Reason: fmt.Sprintf(format, args...), Value: v}
}

// Fail returns an error-level validation message for keyword at inst.
func Fail(ctx Context, inst tree.Instance, keyword, format string, args ...any) report.Message {
	return report.Message{
		Level:   report.Error,
		Domain:  report.DomainValidation,
		Keyword: keyword,
		Text:    fmt.Sprintf(format, args...),
		Pointer: inst.Pointer(),
		Schema:  ctx.Schema().Location(),
	}
}

// Abort returns the error that ends the call when keyword could not be
// evaluated at inst, such as a regex match that timed out. The message is
// fatal and in the syntax domain; it bypasses the report's threshold.
func Abort(ctx Context, inst tree.Instance, keyword string, err error) error {
	m := Fail(ctx, inst, keyword, "%s could not be evaluated: %v", keyword, err)
	m.Level = report.Fatal
	m.Domain = report.DomainSyntax
	return &report.AbortError{Message: m, Err: err}
}

// Warn returns a warning-level validation message for keyword at inst.
func Warn(ctx Context, inst tree.Instance, keyword, format string, args ...any) report.Message {
	m := Fail(ctx, inst, keyword, format, args...)
	m.Level = report.Warning
	return m
}

func stringArray(names ...string) value.Value {
	elems := make([]value.Value, len(names))
	for i, n := range names {
		elems[i] = value.String(n)
	}
	return value.Array(elems...)
}
