package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/vali/pkg/adapters/file"
	"github.com/aretw0/vali/pkg/ports"
)

func TestFileStore_Contract(t *testing.T) {
	store := file.New(t.TempDir())
	ports.RunSchemeStoreContract(t, store)
}

func TestFileStore_ExistingExtensions(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "user.json"), []byte(`{"name": "string"}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "order.yml"), []byte("id: number\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# schemes"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0755))

	store := file.New(dir)
	ctx := context.Background()

	names, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"order", "user"}, names)

	def, err := store.Load(ctx, "user")
	require.NoError(t, err)
	assert.JSONEq(t, `{"name": "string"}`, string(def))

	require.NoError(t, store.Save(ctx, "user", []byte(`{"name": "number"}`)))
	_, err = os.Stat(filepath.Join(dir, "user.json"))
	assert.NoError(t, err, "overwrite keeps the original extension")
	_, err = os.Stat(filepath.Join(dir, "user.yaml"))
	assert.True(t, os.IsNotExist(err))
}

func TestFileStore_MissingDirectory(t *testing.T) {
	store := file.New(filepath.Join(t.TempDir(), "absent"))
	names, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, names)
}
