package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xdsai/persephone/pkg/domain"
)

// RunSaveStoreContract runs the behaviour every SaveStore implementation must share.
func RunSaveStoreContract(t *testing.T, store SaveStore) {
	ctx := context.Background()
	key := domain.SessionSaveKey("contract-" + time.Now().Format("20060102150405"))
	payload := `{"currentId":"hub","state":{"credits":7},"history":["intro"]}`

	t.Run("Save and Load", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, key, payload), "Save should not return error")

		loaded, err := store.Load(ctx, key)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, payload, loaded, "payload must come back byte for byte")
	})

	t.Run("Save Overwrites", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, key, payload))
		require.NoError(t, store.Save(ctx, key, `{"currentId":"tower"}`))

		loaded, err := store.Load(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, `{"currentId":"tower"}`, loaded)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, key+"-missing")
		assert.ErrorIs(t, err, domain.ErrSaveNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, key, payload))

		require.NoError(t, store.Delete(ctx, key), "Delete should not return error")

		_, err := store.Load(ctx, key)
		assert.ErrorIs(t, err, domain.ErrSaveNotFound, "Load after Delete should return ErrSaveNotFound")
		assert.NoError(t, store.Delete(ctx, key), "deleting twice is fine")
	})

	t.Run("List", func(t *testing.T) {
		k1, k2 := key+"-1", key+"-2"
		require.NoError(t, store.Save(ctx, k1, payload))
		require.NoError(t, store.Save(ctx, k2, payload))
		defer func() {
			_ = store.Delete(ctx, k1)
			_ = store.Delete(ctx, k2)
		}()

		keys, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, keys, k1)
		assert.Contains(t, keys, k2)
	})
}
