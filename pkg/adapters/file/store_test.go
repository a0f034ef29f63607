package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xdsai/persephone/pkg/adapters/file"
	"github.com/xdsai/persephone/pkg/domain"
	"github.com/xdsai/persephone/pkg/ports"
)

// Ensure Store implements SaveStore
var _ ports.SaveStore = (*file.Store)(nil)

func TestFileStore_Contract(t *testing.T) {
	ports.RunSaveStoreContract(t, file.New(t.TempDir()))
}

func TestFileStore_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.SaveKey, `{"currentId":"intro"}`))
	require.NoError(t, store.Save(ctx, domain.SaveKey, `{"currentId":"hub"}`))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ".save", filepath.Ext(entries[0].Name()))

	keys, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{domain.SaveKey}, keys)
}

func TestFileStore_MissingDirectory(t *testing.T) {
	store := file.New(filepath.Join(t.TempDir(), "never-created"))
	ctx := context.Background()

	keys, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)

	_, err = store.Load(ctx, domain.SaveKey)
	assert.ErrorIs(t, err, domain.ErrSaveNotFound)
}

func TestFileStore_EmptyKey(t *testing.T) {
	store := file.New(t.TempDir())
	ctx := context.Background()

	assert.Error(t, store.Save(ctx, "", "{}"))
	_, err := store.Load(ctx, "")
	assert.Error(t, err)
	assert.Error(t, store.Delete(ctx, ""))
}
