package tests

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/jsonval/pkg/ports"
	"github.com/aretw0/jsonval/pkg/value"
)

// SchemaResolverContractTest is a reusable test suite that verifies if an adapter complies with ports.SchemaResolver.
// setupData maps the URIs the resolver is expected to serve to their documents.
func SchemaResolverContractTest(t *testing.T, resolver ports.SchemaResolver, setupData map[string]value.Value) {
	t.Helper()
	ctx := context.Background()

	// 1. Resolve (Success)
	t.Run("Resolve_Success", func(t *testing.T) {
		for uri, expected := range setupData {
			doc, err := resolver.Resolve(ctx, uri)
			if err != nil {
				t.Fatalf("unexpected error resolving %s: %v", uri, err)
			}
			if !value.Equal(doc, expected) {
				t.Errorf("content mismatch for %s. got %s, want %s", uri, doc, expected)
			}
		}
	})

	// 2. Resolve (NotFound)
	t.Run("Resolve_NotFound", func(t *testing.T) {
		_, err := resolver.Resolve(ctx, "mem://non-existent-schema.json")
		if !errors.Is(err, ports.ErrNotFound) {
			t.Errorf("expected ErrNotFound for non-existent schema, got %v", err)
		}
	})

	// 3. Resolve (Cancelled)
	t.Run("Resolve_Cancelled", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		for uri := range setupData {
			if _, err := resolver.Resolve(cctx, uri); err == nil {
				t.Errorf("expected error resolving %s with a cancelled context", uri)
			}
			break
		}
	})
}
