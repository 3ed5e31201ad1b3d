package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSchemeStoreContract runs a suite of tests to verify that a SchemeStore
// implementation adheres to the defined interface contract.
func RunSchemeStoreContract(t *testing.T, store SchemeStore) {
	ctx := context.Background()
	name := "contract-" + time.Now().Format("20060102150405")
	definition := []byte("name:\n  type: string\nage:\n  type: number\n  default: 18\n")

	t.Run("Save and Load", func(t *testing.T) {
		err := store.Save(ctx, name, definition)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, name)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, string(definition), string(loaded))
	})

	t.Run("Save Overwrites", func(t *testing.T) {
		replaced := []byte("name: string\n")
		require.NoError(t, store.Save(ctx, name, replaced))

		loaded, err := store.Load(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, string(replaced), string(loaded))
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+name)
		assert.ErrorIs(t, err, ErrSchemeNotFound)
	})

	t.Run("Invalid Name", func(t *testing.T) {
		assert.ErrorIs(t, store.Save(ctx, "../escape", definition), ErrInvalidName)
		_, err := store.Load(ctx, "")
		assert.ErrorIs(t, err, ErrInvalidName)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, name, definition))

		err := store.Delete(ctx, name)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, name)
		assert.ErrorIs(t, err, ErrSchemeNotFound, "Load after Delete should return ErrSchemeNotFound")

		assert.NoError(t, store.Delete(ctx, name), "Delete of a missing name should succeed")
	})

	t.Run("List", func(t *testing.T) {
		a, b := name+"-a", name+"-b"
		require.NoError(t, store.Save(ctx, b, definition))
		require.NoError(t, store.Save(ctx, a, definition))
		defer func() {
			_ = store.Delete(ctx, a)
			_ = store.Delete(ctx, b)
		}()

		names, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, names, a)
		assert.Contains(t, names, b)
		assert.IsIncreasing(t, names)
	})
}
