// Package engine implements the recursive instance validator.
//
// A call walks the instance depth first. At every node it asks the cache
// for the validator set of the current schema fragment, runs it, and then
// descends into children through the digest selectors. Array elements are
// visited in index order and object members in sorted name order, so the
// same inputs always produce the same messages.
//
// Every call carries its own loop guard: the stack of (schema location,
// instance pointer) pairs currently being validated. Entering a pair that
// is already on the stack is a validation loop and ends the call with a
// single fatal message. The same schema at another instance pointer, or
// another schema at the same pointer, is legal.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/jsonval/internal/cache"
	"github.com/aretw0/jsonval/internal/logging"
	"github.com/aretw0/jsonval/internal/metrics"
	"github.com/aretw0/jsonval/pkg/digest"
	"github.com/aretw0/jsonval/pkg/jsonptr"
	"github.com/aretw0/jsonval/pkg/keyword"
	"github.com/aretw0/jsonval/pkg/regex"
	"github.com/aretw0/jsonval/pkg/report"
	"github.com/aretw0/jsonval/pkg/tree"
	"github.com/aretw0/jsonval/pkg/value"
)

// Options control one validation call.
type Options struct {
	// DeepCheck keeps descending into children of nodes that already failed.
	DeepCheck bool
	// LogLevel is the lowest level recorded in the report.
	LogLevel report.Level
	// ExceptionThreshold is the lowest level that aborts the call.
	ExceptionThreshold report.Level
	// MaxDepth bounds the loop guard stack. Zero means unbounded.
	MaxDepth int
}

// DefaultOptions records info and above and aborts on fatal messages only.
func DefaultOptions() Options {
	return Options{LogLevel: report.Info, ExceptionThreshold: report.Fatal}
}

// Engine validates instances. It holds no per-call state and is safe for
// concurrent use.
type Engine struct {
	processor *cache.Processor
	refs      *RefResolver
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for call-level diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithMetrics records call outcomes and message counts.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// New returns an engine. A nil refs resolves only references that point
// inside the schema being validated.
func New(p *cache.Processor, refs *RefResolver, opts ...Option) *Engine {
	e := &Engine{processor: p, refs: refs, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	if e.refs == nil {
		e.refs = NewRefResolver(nil, e.logger, e.metrics)
	}
	return e
}

// Validate validates instance against schema.
//
// The returned report is always complete: either the full accounting of the
// call, or, when the call was aborted, a report holding exactly the message
// that caused it. In the latter case the error is an *report.AbortError
// wrapping the cause (report.ErrValidationLoop, report.ErrInvalidSchema,
// report.ErrRefResolving, report.ErrThreshold, report.ErrDepthExceeded,
// regex.ErrTimeout, the context's error, or any other error returned by a
// keyword validator).
func (e *Engine) Validate(ctx context.Context, schema tree.Schema, instance value.Value, opts Options) (*report.Report, error) {
	start := time.Now()
	r := &run{
		ctx:    ctx,
		engine: e,
		opts:   opts,
		root:   schema,
		active: make(map[guardKey]bool),
	}
	rep := report.New(opts.LogLevel, opts.ExceptionThreshold)
	err := r.validate(rep, schema, tree.NewInstance(instance))

	var abort *report.AbortError
	if err != nil && !errors.As(err, &abort) {
		// A validator failed without a message of its own.
		abort = &report.AbortError{Message: report.Message{
			Level:  report.Fatal,
			Domain: report.DomainValidation,
			Text:   fmt.Sprintf("validation failed: %v", err),
			Schema: schema.Location(),
		}, Err: err}
		err = abort
	}
	switch {
	case abort != nil:
		rep = report.Aborted(opts.LogLevel, opts.ExceptionThreshold, abort.Message)
		e.logger.Debug("validation aborted", "schema", schema.Location(), "pointer", string(abort.Message.Pointer), "error", err)
		e.metrics.RecordValidation("aborted", time.Since(start))
	case rep.IsSuccess():
		e.metrics.RecordValidation("valid", time.Since(start))
	default:
		e.metrics.RecordValidation("invalid", time.Since(start))
	}
	for _, m := range rep.Messages() {
		e.metrics.RecordMessage(m.Level.String())
	}
	return rep, err
}

type guardKey struct {
	schema  string
	pointer jsonptr.Pointer
}

type frame struct {
	key guardKey
	ref bool
}

// run is the state of one Validate call.
type run struct {
	ctx    context.Context
	engine *Engine
	opts   Options
	root   tree.Schema

	stack  []frame
	active map[guardKey]bool
}

func (r *run) validate(rep *report.Report, s tree.Schema, inst tree.Instance) error {
	if err := r.ctx.Err(); err != nil {
		return abort(fatal(report.DomainValidation, "", s, inst, "validation cancelled: %v", err), err)
	}
	key := guardKey{schema: s.Location(), pointer: inst.Pointer()}
	if r.active[key] {
		return r.loop(s, inst, key)
	}
	if r.opts.MaxDepth > 0 && len(r.stack) >= r.opts.MaxDepth {
		m := fatal(report.DomainValidation, "", s, inst, "maximum validation depth %d exceeded", r.opts.MaxDepth)
		return abort(m, report.ErrDepthExceeded)
	}

	ref, isRef := s.Ref()
	r.active[key] = true
	r.stack = append(r.stack, frame{key: key, ref: isRef})
	defer func() {
		r.stack = r.stack[:len(r.stack)-1]
		delete(r.active, key)
	}()

	// A $ref replaces the whole fragment; its siblings are ignored.
	if isRef {
		target, err := r.engine.refs.resolve(r.ctx, s, r.root, ref)
		if err != nil {
			if ctxErr := r.ctx.Err(); ctxErr != nil {
				return abort(fatal(report.DomainValidation, "", s, inst, "validation cancelled: %v", ctxErr), ctxErr)
			}
			return abort(refMessage(s, inst, ref, err), fmt.Errorf("%w: %w", report.ErrRefResolving, err))
		}
		return r.validate(rep, target, inst)
	}

	entry := r.engine.processor.Get(s, inst.Kind())
	if entry.Invalid() {
		return abort(syntaxMessage(s, inst, entry.Err), fmt.Errorf("%w: %w", report.ErrInvalidSchema, entry.Err))
	}

	nc := nodeContext{run: r, schema: s}
	for _, v := range entry.Validators {
		if err := v.Validate(nc, rep, inst); err != nil {
			return err
		}
	}

	if !r.opts.DeepCheck && !rep.IsSuccess() {
		return nil
	}

	switch d := entry.Digest.(type) {
	case digest.Array:
		for i := range inst.Node().Len() {
			for _, ptr := range d.Select(i) {
				if err := r.descend(rep, s, ptr, inst.Index(i)); err != nil {
					return err
				}
			}
		}
	case digest.Object:
		for _, field := range inst.Node().Fields() {
			selected, err := d.Select(field, r.engine.processor.Regex())
			if err != nil {
				child := inst.Field(field)
				m := fatal(report.DomainSyntax, "patternProperties", s, child, "patternProperties could not be evaluated: %v", err)
				return abort(m, err)
			}
			for _, ptr := range selected {
				if err := r.descend(rep, s, ptr, inst.Field(field)); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (r *run) descend(rep *report.Report, s tree.Schema, ptr jsonptr.Pointer, inst tree.Instance) error {
	child, err := s.Append(ptr)
	if err != nil {
		m := fatal(report.DomainSyntax, ptr.Last(), s, inst, "schema fragment missing: %v", err)
		return abort(m, fmt.Errorf("%w: %w", report.ErrInvalidSchema, err))
	}
	return r.validate(rep, child, inst)
}

// loop builds the abort for re-entering key. When every frame since the
// first visit is a bare $ref, the loop is a reference cycle.
func (r *run) loop(s tree.Schema, inst tree.Instance, key guardKey) error {
	first := 0
	for i, f := range r.stack {
		if f.key == key {
			first = i
			break
		}
	}
	path := make([]value.Value, 0, len(r.stack)-first+1)
	refOnly := true
	for _, f := range r.stack[first:] {
		path = append(path, value.String(f.key.schema))
		refOnly = refOnly && f.ref
	}
	path = append(path, value.String(key.schema))

	if refOnly {
		ref, _ := s.Ref()
		m := fatal(report.DomainRefResolving, "$ref", s, inst, "JSON reference loop detected").
			With("ref", value.String(ref)).
			With("path", value.Array(path...))
		return abort(m, report.ErrRefResolving)
	}
	m := fatal(report.DomainValidation, "", s, inst,
		"validation loop: schema %q visited twice for pointer %q of validated instance", key.schema, string(key.pointer)).
		With("alreadyVisited", value.String(key.schema)).
		With("instancePointer", value.String(string(key.pointer))).
		With("validationPath", value.Array(path...))
	return abort(m, report.ErrValidationLoop)
}

// nodeContext is the keyword.Context handed to validators of one fragment.
type nodeContext struct {
	run    *run
	schema tree.Schema
}

func (c nodeContext) Schema() tree.Schema { return c.schema }
func (c nodeContext) Regex() regex.Engine { return c.run.engine.processor.Regex() }

func (c nodeContext) Validate(rep *report.Report, ptr jsonptr.Pointer, inst tree.Instance) error {
	return c.run.descend(rep, c.schema, ptr, inst)
}

var _ keyword.Context = nodeContext{}

func fatal(domain report.Domain, kw string, s tree.Schema, inst tree.Instance, format string, args ...any) report.Message {
	return report.Message{
		Level:   report.Fatal,
		Domain:  domain,
		Keyword: kw,
		Text:    fmt.Sprintf(format, args...),
		Pointer: inst.Pointer(),
		Schema:  s.Location(),
	}
}

func syntaxMessage(s tree.Schema, inst tree.Instance, err error) report.Message {
	m := fatal(report.DomainSyntax, "", s, inst, "invalid schema: %v", err)
	var se *keyword.SyntaxError
	if errors.As(err, &se) {
		m.Keyword = se.Keyword
		m = m.With("schemaPointer", value.String(string(s.Pointer().Join(se.Pointer))))
	}
	return m
}

func abort(m report.Message, cause error) error {
	return &report.AbortError{Message: m, Err: cause}
}
