package memory

import (
	"context"
	"fmt"

	"github.com/aretw0/jsonval/pkg/ports"
	"github.com/aretw0/jsonval/pkg/value"
)

// Loader implements ports.SchemaResolver over raw JSON text.
// Documents are parsed on every Resolve, so malformed entries surface as
// errors at reference time rather than at construction.
type Loader struct {
	docs map[string][]byte
}

// NewLoader creates a new Loader with the provided raw data (JSON strings)
// keyed by URI.
func NewLoader(data map[string]string) *Loader {
	docs := make(map[string][]byte, len(data))
	for k, v := range data {
		docs[k] = []byte(v)
	}
	return &Loader{
		docs: docs,
	}
}

// NewFromValues creates a Loader from parsed documents.
func NewFromValues(docs map[string]value.Value) (*Loader, error) {
	data := make(map[string][]byte, len(docs))
	for uri, doc := range docs {
		if uri == "" {
			return nil, fmt.Errorf("document missing URI")
		}
		raw, err := doc.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("failed to marshal document %s: %w", uri, err)
		}
		data[uri] = raw
	}
	return &Loader{docs: data}, nil
}

// Resolve parses and returns the document at uri.
func (l *Loader) Resolve(ctx context.Context, uri string) (value.Value, error) {
	if err := ctx.Err(); err != nil {
		return value.Value{}, err
	}
	raw, ok := l.docs[uri]
	if !ok {
		return value.Value{}, fmt.Errorf("%w: %s", ports.ErrNotFound, uri)
	}
	doc, err := value.ParseJSON(raw)
	if err != nil {
		return value.Value{}, fmt.Errorf("document %s: %w", uri, err)
	}
	return doc, nil
}
