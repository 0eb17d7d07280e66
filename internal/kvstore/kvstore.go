// Package kvstore provides the narrow key-value storage interface the
// application persists local state behind: settings, credentials and the
// local fallback year-document.
package kvstore

import "context"

// Store is a get/set/delete string key-value store. Implementations must be
// safe for concurrent use.
type Store interface {
	// Get returns the value for key. The second result is false when the key
	// does not exist.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores the value under key, overwriting any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes the key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any underlying resources.
	Close() error
}
