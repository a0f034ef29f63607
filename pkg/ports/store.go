package ports

import (
	"context"
)

// SaveStore persists serialized runs under string keys.
// Payloads are opaque to the store.
type SaveStore interface {
	// Save stores the payload for key, replacing any previous value.
	Save(ctx context.Context, key string, payload string) error

	// Load retrieves the payload for key.
	// Returns domain.ErrSaveNotFound if nothing was saved under key.
	Load(ctx context.Context, key string) (string, error)

	// Delete removes the payload for key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// List returns every stored key.
	List(ctx context.Context) ([]string, error)
}
