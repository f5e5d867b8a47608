// Package cache memoizes the analysis of schema fragments: syntax checking,
// digesting and building keyword validators.
package cache

import (
	"errors"
	"fmt"

	"github.com/aretw0/jsonval/internal/metrics"
	"github.com/aretw0/jsonval/pkg/digest"
	"github.com/aretw0/jsonval/pkg/jsonptr"
	"github.com/aretw0/jsonval/pkg/keyword"
	"github.com/aretw0/jsonval/pkg/regex"
	"github.com/aretw0/jsonval/pkg/tree"
	"github.com/aretw0/jsonval/pkg/value"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// DefaultSize is the number of entries kept when no size is configured.
const DefaultSize = 1024

// Key identifies a cache entry. Which validators apply depends only on the
// schema fragment and the coarse kind of the instance.
type Key struct {
	Schema tree.Key
	Kind   value.Kind
}

func (k Key) String() string {
	return fmt.Sprintf("%016x|%s|%s|%s|%d", k.Schema.Fingerprint, k.Schema.Locator, k.Schema.Context, k.Schema.Pointer, k.Kind)
}

// Entry is the analysis of one schema fragment for one instance kind.
// Entries are immutable once returned.
type Entry struct {
	// Validators are in keyword name order.
	Validators []keyword.Validator
	// Digest is nil for scalar kinds.
	Digest digest.Digest
	// Err is non-nil when the fragment is not a valid schema.
	Err error
}

// Invalid reports whether the fragment failed syntax checking.
func (e *Entry) Invalid() bool { return e.Err != nil }

// Processor builds and caches entries. It is safe for concurrent use.
type Processor struct {
	registry *keyword.Registry
	regex    regex.Engine
	size     int
	lru      *lru.Cache[Key, *Entry]
	group    singleflight.Group
	metrics  *metrics.Metrics
}

// Option configures a Processor.
type Option func(*Processor)

// WithSize bounds the number of cached entries. Zero or a negative size
// disables caching.
func WithSize(n int) Option {
	return func(p *Processor) { p.size = n }
}

// WithMetrics records cache hits, misses and evictions.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Processor) { p.metrics = m }
}

// New returns a processor using the given keyword registry and regex engine.
func New(reg *keyword.Registry, re regex.Engine, opts ...Option) *Processor {
	p := &Processor{registry: reg, regex: re, size: DefaultSize}
	for _, opt := range opts {
		opt(p)
	}
	if p.size > 0 {
		// NewWithEvict only fails for a non-positive size.
		p.lru, _ = lru.NewWithEvict(p.size, func(Key, *Entry) {
			p.metrics.RecordCacheEviction()
		})
	}
	return p
}

// Regex returns the processor's regex engine.
func (p *Processor) Regex() regex.Engine { return p.regex }

// Get returns the entry for s and kind, building it on a miss. Concurrent
// misses on the same key share a single build.
func (p *Processor) Get(s tree.Schema, kind value.Kind) *Entry {
	if p.lru == nil {
		p.metrics.RecordCacheMiss()
		return p.Build(s, kind)
	}
	key := Key{Schema: s.Key(), Kind: kind}
	if e, ok := p.lru.Get(key); ok {
		p.metrics.RecordCacheHit()
		return e
	}
	v, _, _ := p.group.Do(key.String(), func() (any, error) {
		if e, ok := p.lru.Get(key); ok {
			return e, nil
		}
		p.metrics.RecordCacheMiss()
		e := p.Build(s, kind)
		p.lru.Add(key, e)
		return e, nil
	})
	return v.(*Entry)
}

// Build analyzes s for instances of kind without consulting the cache.
func (p *Processor) Build(s tree.Schema, kind value.Kind) *Entry {
	node := s.Node()
	if errs := p.registry.Check(node, p.regex); len(errs) > 0 {
		return &Entry{Err: errors.Join(errs...)}
	}
	e := &Entry{Digest: digest.For(node, kind)}
	for _, name := range p.registry.Names() {
		kw, ok := node.Field(name)
		if !ok {
			continue
		}
		ke, ok := p.registry.Lookup(name)
		if !ok || ke.Build == nil || !ke.Kinds.Has(kind) {
			continue
		}
		v, err := ke.Build(kw, node, e.Digest)
		if err != nil {
			return &Entry{Err: &keyword.SyntaxError{Keyword: name, Pointer: jsonptr.Root.Append(name), Reason: err.Error(), Value: kw}}
		}
		if v != nil {
			e.Validators = append(e.Validators, v)
		}
	}
	return e
}

// Len returns the number of cached entries.
func (p *Processor) Len() int {
	if p.lru == nil {
		return 0
	}
	return p.lru.Len()
}

// Purge empties the cache.
func (p *Processor) Purge() {
	if p.lru != nil {
		p.lru.Purge()
	}
}
