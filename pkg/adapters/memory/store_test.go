package memory_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xdsai/persephone/pkg/adapters/memory"
	"github.com/xdsai/persephone/pkg/ports"
)

func TestMemoryStore_Contract(t *testing.T) {
	ports.RunSaveStoreContract(t, memory.NewStore())
}

func TestMemoryStore_ConcurrentSaves(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = store.Save(ctx, fmt.Sprintf("run-%02d", i), "{}")
		}(i)
	}
	wg.Wait()

	keys, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, keys, 50)
	assert.Equal(t, "run-00", keys[0])
}
