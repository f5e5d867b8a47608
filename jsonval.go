package jsonval

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/aretw0/jsonval/internal/cache"
	"github.com/aretw0/jsonval/internal/engine"
	"github.com/aretw0/jsonval/internal/logging"
	"github.com/aretw0/jsonval/internal/metrics"
	"github.com/aretw0/jsonval/pkg/jsonptr"
	"github.com/aretw0/jsonval/pkg/keyword"
	"github.com/aretw0/jsonval/pkg/ports"
	"github.com/aretw0/jsonval/pkg/regex"
	"github.com/aretw0/jsonval/pkg/report"
	"github.com/aretw0/jsonval/pkg/tree"
	"github.com/aretw0/jsonval/pkg/value"
	"github.com/prometheus/client_golang/prometheus"
)

// Validator is the high-level entry point for the jsonval library.
// It wraps the internal engine and its caching processor and is safe for
// concurrent use.
type Validator struct {
	engine    *engine.Engine
	processor *cache.Processor
	refs      *engine.RefResolver

	registry  *keyword.Registry
	regex     regex.Engine
	resolver  ports.SchemaResolver
	cacheSize int
	defaults  CallOptions
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// CallOptions control a single validation call. The mapstructure tags let
// configuration files and request payloads decode straight into it.
type CallOptions struct {
	DeepCheck          bool         `mapstructure:"deep_check" json:"deep_check"`
	LogLevel           report.Level `mapstructure:"log_level" json:"log_level"`
	ExceptionThreshold report.Level `mapstructure:"exception_threshold" json:"exception_threshold"`
	MaxDepth           int          `mapstructure:"max_depth" json:"max_depth"`
}

// DefaultCallOptions records info and above, aborts on fatal messages only
// and stops descending below the first failure.
func DefaultCallOptions() CallOptions {
	d := engine.DefaultOptions()
	return CallOptions{LogLevel: d.LogLevel, ExceptionThreshold: d.ExceptionThreshold}
}

func (o CallOptions) engineOptions() engine.Options {
	return engine.Options{
		DeepCheck:          o.DeepCheck,
		LogLevel:           o.LogLevel,
		ExceptionThreshold: o.ExceptionThreshold,
		MaxDepth:           o.MaxDepth,
	}
}

// Option defines a functional option for configuring the Validator.
type Option func(*Validator)

// WithCacheSize bounds the validator cache. Zero disables caching.
func WithCacheSize(n int) Option {
	return func(v *Validator) {
		v.cacheSize = n
	}
}

// WithDeepCheck makes every call descend into children of failing nodes.
func WithDeepCheck(deep bool) Option {
	return func(v *Validator) {
		v.defaults.DeepCheck = deep
	}
}

// WithLogLevel sets the lowest level recorded in reports.
func WithLogLevel(l report.Level) Option {
	return func(v *Validator) {
		v.defaults.LogLevel = l
	}
}

// WithExceptionThreshold sets the lowest level that aborts a call.
func WithExceptionThreshold(l report.Level) Option {
	return func(v *Validator) {
		v.defaults.ExceptionThreshold = l
	}
}

// WithMaxDepth bounds schema nesting during a call. Zero means unbounded.
func WithMaxDepth(n int) Option {
	return func(v *Validator) {
		v.defaults.MaxDepth = n
	}
}

// WithResolver sets where documents referenced by URI are loaded from.
func WithResolver(r ports.SchemaResolver) Option {
	return func(v *Validator) {
		v.resolver = r
	}
}

// WithRegistry replaces the draft v4 keyword set.
func WithRegistry(r *keyword.Registry) Option {
	return func(v *Validator) {
		v.registry = r
	}
}

// WithRegex replaces the ECMA-262 regex engine.
func WithRegex(re regex.Engine) Option {
	return func(v *Validator) {
		v.regex = re
	}
}

// WithLogger sets a custom structured logger for the validator.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Validator) {
		v.logger = logger
	}
}

// WithMetrics registers the validator's Prometheus collectors with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(v *Validator) {
		v.metrics = metrics.New(reg)
	}
}

// New creates a Validator. Without options it validates draft v4 schemas,
// caches up to cache.DefaultSize fragments and resolves no external
// references.
func New(opts ...Option) *Validator {
	v := &Validator{
		cacheSize: cache.DefaultSize,
		defaults:  DefaultCallOptions(),
	}
	for _, opt := range opts {
		opt(v)
	}

	if v.logger == nil {
		v.logger = logging.NewNop()
	}
	if v.registry == nil {
		v.registry = keyword.DraftV4()
	}
	if v.regex == nil {
		v.regex = regex.NewECMA()
	}

	v.processor = cache.New(v.registry, v.regex, cache.WithSize(v.cacheSize), cache.WithMetrics(v.metrics))
	v.refs = engine.NewRefResolver(v.resolver, v.logger, v.metrics)
	v.engine = engine.New(v.processor, v.refs, engine.WithLogger(v.logger), engine.WithMetrics(v.metrics))
	return v
}

// Options returns the per-call defaults this validator was built with.
func (v *Validator) Options() CallOptions {
	return v.defaults
}

// Validate validates instance against schema with the default call options.
//
// The report is never nil. When the call was aborted the report holds the
// single message that caused it, and the error is a *report.AbortError.
func (v *Validator) Validate(ctx context.Context, schema tree.Schema, instance value.Value) (*report.Report, error) {
	return v.ValidateWith(ctx, schema, instance, v.defaults)
}

// ValidateWith validates instance against schema with explicit call options.
func (v *Validator) ValidateWith(ctx context.Context, schema tree.Schema, instance value.Value, opts CallOptions) (*report.Report, error) {
	return v.engine.Validate(ctx, schema, instance, opts.engineOptions())
}

// LoadSchema parses data as the schema document named by uri. Documents whose
// name ends in .yaml or .yml are parsed as YAML, everything else as JSON.
func (v *Validator) LoadSchema(uri string, data []byte) (tree.Schema, error) {
	doc, err := ParseDocument(uri, data)
	if err != nil {
		return tree.Schema{}, fmt.Errorf("load schema %s: %w", uri, err)
	}
	return tree.NewSchema(uri, doc)
}

// ResolveSchema loads the document at uri through the configured resolver.
// A fragment in uri selects a node inside the document.
func (v *Validator) ResolveSchema(ctx context.Context, uri string) (tree.Schema, error) {
	base, frag, _ := strings.Cut(uri, "#")
	doc, err := v.refs.Load(ctx, base)
	if err != nil {
		return tree.Schema{}, err
	}
	if frag == "" {
		return doc, nil
	}
	ptr, err := jsonptr.Parse(frag)
	if err != nil {
		return tree.Schema{}, fmt.Errorf("%w: %v", ports.ErrInvalidPointer, err)
	}
	return doc.At(ptr)
}

// Forget drops a memoized external document so it is loaded again on the
// next reference, and empties the validator cache.
func (v *Validator) Forget(uri string) {
	v.refs.Forget(uri)
	v.processor.Purge()
}

// Keywords returns the names of the registered keywords, sorted.
func (v *Validator) Keywords() []string {
	return v.registry.Names()
}

// ParseDocument parses a JSON or YAML document, picking the format from the
// extension of name.
func ParseDocument(name string, data []byte) (value.Value, error) {
	switch strings.ToLower(filepath.Ext(stripQuery(name))) {
	case ".yaml", ".yml":
		return value.ParseYAML(data)
	default:
		return value.ParseJSON(data)
	}
}

func stripQuery(name string) string {
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		return name[:i]
	}
	return name
}
