package ports

import (
	"context"
	"errors"

	"github.com/aretw0/jsonval/pkg/value"
)

var (
	// ErrNotFound means no document exists at the URI.
	ErrNotFound = errors.New("schema not found")
	// ErrNetwork means the backend could not be reached.
	ErrNetwork = errors.New("schema backend unavailable")
	// ErrInvalidPointer means the URI fragment does not address a node.
	ErrInvalidPointer = errors.New("invalid JSON pointer")
)

// SchemaResolver defines how the engine retrieves schema documents that are
// referenced with $ref but not part of the schema being validated.
type SchemaResolver interface {
	// Resolve returns the whole document at uri. The URI carries no fragment;
	// the engine applies fragments itself.
	// Returns ErrNotFound if no document exists at uri.
	Resolve(ctx context.Context, uri string) (value.Value, error)
}

// ResolverFunc adapts a function to SchemaResolver.
type ResolverFunc func(ctx context.Context, uri string) (value.Value, error)

func (f ResolverFunc) Resolve(ctx context.Context, uri string) (value.Value, error) {
	return f(ctx, uri)
}

// Chain tries each resolver in order and returns the first document found.
// Errors other than ErrNotFound stop the search.
type Chain []SchemaResolver

func (c Chain) Resolve(ctx context.Context, uri string) (value.Value, error) {
	for _, r := range c {
		v, err := r.Resolve(ctx, uri)
		if err == nil {
			return v, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return value.Value{}, err
		}
	}
	return value.Value{}, ErrNotFound
}
