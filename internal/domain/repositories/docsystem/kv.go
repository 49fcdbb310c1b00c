package docsystem

import "context"

// KVStore is an opaque string key-value store. Implementations must be
// safe for concurrent use.
type KVStore interface {
	// Get returns the stored value; found is false when the key is absent
	Get(ctx context.Context, key string) (value string, found bool, err error)

	// Set stores value under key, replacing any previous value
	Set(ctx context.Context, key, value string) error

	// Delete removes key; deleting an absent key is not an error
	Delete(ctx context.Context, key string) error
}
