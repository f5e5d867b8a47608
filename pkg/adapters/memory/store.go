package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/aretw0/jsonval/pkg/ports"
	"github.com/aretw0/jsonval/pkg/value"
)

// Store implements ports.SchemaStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]value.Value
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]value.Value),
	}
}

// Put stores the document. Values are immutable, so no copy is needed.
func (s *Store) Put(ctx context.Context, uri string, doc value.Value) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[uri] = doc
	return nil
}

// Resolve retrieves the document from memory.
func (s *Store) Resolve(ctx context.Context, uri string) (value.Value, error) {
	if err := ctx.Err(); err != nil {
		return value.Value{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.data[uri]
	if !ok {
		return value.Value{}, fmt.Errorf("%w: %s", ports.ErrNotFound, uri)
	}
	return doc, nil
}

// Delete removes the document.
func (s *Store) Delete(ctx context.Context, uri string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, uri)
	return nil
}

// List returns the stored URIs, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	uris := make([]string, 0, len(s.data))
	for uri := range s.data {
		uris = append(uris, uri)
	}
	slices.Sort(uris)
	return uris, nil
}

var _ ports.SchemaStore = (*Store)(nil)
