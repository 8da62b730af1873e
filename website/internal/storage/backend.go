// Package storage persists assessment sessions and results.
//
// Collections are serialized to JSON, passed through a reversible XOR
// transform keyed by a locally generated secret, and base64 encoded. The
// transform is obfuscation, not encryption: anyone holding the backend can
// recover the key and the plaintext. Integrity is checked with a rolling
// hash stored in a metadata sidecar, and a collection that fails the check
// is discarded.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by a Backend when a key does not exist.
var ErrNotFound = errors.New("storage: key not found")

// Backend is a flat key/value store.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// Delete is a no-op for missing keys.
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
}

// Pinger is implemented by backends that can report connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}
