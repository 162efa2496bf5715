package cache

import (
	"context"
	"errors"
)

// ErrCacheMiss is returned when a key is absent or its entry has gone stale.
var ErrCacheMiss = errors.New("cache: key not found")

// Store is the artifact cache contract. Staleness is a read-time decision:
// an expired entry stays on the backing store until a sweep removes it.
// There is no authoritative in-memory index; every call consults the
// backing store directly so that external interference (a manually deleted
// file, a flushed redis) is observed immediately.
type Store interface {
	// Get unmarshals the payload under key into dest, or returns ErrCacheMiss
	// when the entry is absent or older than the expiry window.
	Get(ctx context.Context, key string, dest interface{}) error

	// Put writes the payload under key, replacing any previous entry wholesale.
	Put(ctx context.Context, key string, value interface{}) error

	// InvalidateExpired deletes every entry older than the expiry window.
	// Individual deletion failures are skipped, not fatal. Returns the number
	// of entries removed.
	InvalidateExpired(ctx context.Context) (int, error)

	// ClearAll deletes every entry regardless of age.
	ClearAll(ctx context.Context) error

	// Stats reports entry count and total payload bytes on the backing store,
	// stale entries included.
	Stats(ctx context.Context) (Stats, error)
}

// Stats describes the physical state of the backing store.
type Stats struct {
	Entries    int   `json:"entries"`
	TotalBytes int64 `json:"total_bytes"`
}
