package metadata

import (
	"context"
)

// Keys written by the sync journal.
const (
	KeyLastSyncedAt = "last_synced_at"
	KeyLastError    = "last_error"
)

// Repository is a string key-value table next to the sync journal.
type Repository interface {
	// Get returns ("", false, nil) for a missing key.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string]string, error)
}
