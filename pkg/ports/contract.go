package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/jsonval/pkg/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSchemaStoreContract runs a suite of tests to verify that a SchemaStore implementation
// adheres to the defined interface contract.
func RunSchemaStoreContract(t *testing.T, store SchemaStore) {
	ctx := context.Background()
	uri := "mem://contract/" + time.Now().Format("20060102150405") + ".json"
	doc := value.MustParse(`{"type":"object","properties":{"n":{"minimum":1.50}}}`)

	t.Run("Put and Resolve", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, uri, doc), "Put should not return error")

		loaded, err := store.Resolve(ctx, uri)
		require.NoError(t, err, "Resolve should not return error")
		assert.True(t, value.Equal(doc, loaded), "stored document should round-trip")
	})

	t.Run("Resolve Non-Existent", func(t *testing.T) {
		_, err := store.Resolve(ctx, uri+".missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, uri, doc))
		require.NoError(t, store.Delete(ctx, uri), "Delete should not return error")

		_, err := store.Resolve(ctx, uri)
		assert.ErrorIs(t, err, ErrNotFound, "Resolve after Delete should return ErrNotFound")

		assert.NoError(t, store.Delete(ctx, uri), "deleting twice is not an error")
	})

	t.Run("List", func(t *testing.T) {
		id1 := uri + "-1"
		id2 := uri + "-2"
		_ = store.Put(ctx, id1, doc)
		_ = store.Put(ctx, id2, doc)

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		uris, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, uris, id1)
		assert.Contains(t, uris, id2)
		assert.IsNonDecreasing(t, uris)
	})
}
