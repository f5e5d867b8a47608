package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/jsonval/internal/logging"
	"github.com/aretw0/jsonval/internal/metrics"
	"github.com/aretw0/jsonval/pkg/ports"
	"github.com/aretw0/jsonval/pkg/report"
	"github.com/aretw0/jsonval/pkg/tree"
	"github.com/aretw0/jsonval/pkg/value"
)

// RefResolver loads external schema documents for $ref and memoizes them.
// It is safe for concurrent use.
type RefResolver struct {
	resolver ports.SchemaResolver
	logger   *slog.Logger
	metrics  *metrics.Metrics

	mu   sync.Mutex
	docs map[string]tree.Schema
}

// NewRefResolver returns a RefResolver backed by r. A nil r resolves nothing
// outside the schema being validated.
func NewRefResolver(r ports.SchemaResolver, logger *slog.Logger, m *metrics.Metrics) *RefResolver {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &RefResolver{resolver: r, logger: logger, metrics: m, docs: make(map[string]tree.Schema)}
}

// Load returns the root of the document at uri, which must carry no fragment.
// Failed loads are not memoized.
func (r *RefResolver) Load(ctx context.Context, uri string) (tree.Schema, error) {
	r.mu.Lock()
	doc, ok := r.docs[uri]
	r.mu.Unlock()
	if ok {
		return doc, nil
	}
	if r.resolver == nil {
		return tree.Schema{}, fmt.Errorf("%w: %s", ports.ErrNotFound, uri)
	}

	v, err := r.resolver.Resolve(ctx, uri)
	r.metrics.RecordRefLoad(err)
	if err != nil {
		r.logger.Debug("schema load failed", "uri", uri, "error", err)
		return tree.Schema{}, fmt.Errorf("load %s: %w", uri, err)
	}
	doc, err = tree.NewSchema(uri, v)
	if err != nil {
		return tree.Schema{}, err
	}
	r.logger.Debug("schema loaded", "uri", uri)

	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.docs[uri]; ok {
		return prev, nil
	}
	r.docs[uri] = doc
	return doc, nil
}

// Forget drops a memoized document, so the next reference reloads it.
func (r *RefResolver) Forget(uri string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.docs, uri)
}

// resolve finds the fragment that ref, written inside from, points to.
// Documents already in play (from and root) are searched before loading.
func (r *RefResolver) resolve(ctx context.Context, from, root tree.Schema, ref string) (tree.Schema, error) {
	u, err := from.ResolveReference(ref)
	if err != nil {
		return tree.Schema{}, err
	}
	for _, doc := range []tree.Schema{from, root} {
		target, ok, err := doc.Lookup(u)
		if ok {
			return target, pointerError(err)
		}
	}

	base := *u
	base.Fragment, base.RawFragment = "", ""
	if !base.IsAbs() {
		return tree.Schema{}, fmt.Errorf("%w: cannot load relative URI %q", ports.ErrNotFound, base.String())
	}
	doc, err := r.Load(ctx, base.String())
	if err != nil {
		return tree.Schema{}, err
	}
	target, ok, err := doc.Lookup(u)
	if !ok {
		return tree.Schema{}, fmt.Errorf("%w: %s", ports.ErrInvalidPointer, u)
	}
	return target, pointerError(err)
}

func pointerError(err error) error {
	if err == nil || errors.Is(err, ports.ErrInvalidPointer) {
		return err
	}
	return fmt.Errorf("%w: %v", ports.ErrInvalidPointer, err)
}

// refMessage describes a failed resolution.
func refMessage(s tree.Schema, inst tree.Instance, ref string, err error) report.Message {
	m := report.Message{
		Level:   report.Fatal,
		Domain:  report.DomainRefResolving,
		Keyword: "$ref",
		Text:    fmt.Sprintf("unable to resolve reference %q: %v", ref, err),
		Pointer: inst.Pointer(),
		Schema:  s.Location(),
	}
	if u, uerr := s.ResolveReference(ref); uerr == nil {
		m = m.With("ref", value.String(u.String()))
	}
	return m
}
