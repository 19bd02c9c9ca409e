package driven

import (
	"cmp"
	"context"
	"io"

	"github.com/custodia-labs/lsmkv/internal/core/domain"
)

// DataStore is an ordered key/value store.
type DataStore[K cmp.Ordered, V any] interface {
	// Put stores value under key.
	Put(ctx context.Context, key K, value V) error

	// Get retrieves the value for key.
	// The boolean is false when the key does not exist or was deleted.
	Get(ctx context.Context, key K) (V, bool, error)

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key K) error

	// Close releases files and handles held by the store.
	Close() error
}

// Maintainer is implemented by stores that buffer writes or keep
// multiple on-disk generations.
type Maintainer interface {
	// Flush persists buffered writes.
	// Returns the number of entries written.
	Flush(ctx context.Context) (int, error)

	// Compact merges on-disk generations.
	// Returns the number of tables removed.
	Compact(ctx context.Context) (int, error)
}

// StatsReporter is implemented by stores that can describe their state.
type StatsReporter interface {
	// Stats returns a point-in-time view of the store.
	Stats() domain.StoreStats
}

// Dumper is implemented by stores that can print their internal layout.
type Dumper interface {
	// Dump writes a human-readable description of the store's structure.
	Dump(w io.Writer) error
}
