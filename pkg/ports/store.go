package ports

import (
	"context"

	"github.com/aretw0/jsonval/pkg/value"
)

// SchemaStore is a SchemaResolver that can also be written to.
// It lets services register schemas once and reference them by URI.
type SchemaStore interface {
	SchemaResolver

	// Put stores the document at uri, replacing any previous one.
	Put(ctx context.Context, uri string, doc value.Value) error

	// Delete removes the document at uri.
	// Deleting a missing document is not an error.
	Delete(ctx context.Context, uri string) error

	// List returns the URIs of all stored documents, sorted.
	List(ctx context.Context) ([]string, error)
}
