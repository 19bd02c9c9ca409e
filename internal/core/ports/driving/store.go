package driving

import (
	"context"
	"io"

	"github.com/custodia-labs/lsmkv/internal/core/domain"
)

// StoreService is the entry point for reading and writing keys.
type StoreService interface {
	// Put stores value under key.
	Put(ctx context.Context, key, value string) error

	// Get retrieves the value for key.
	// Returns domain.ErrNotFound if the key does not exist.
	Get(ctx context.Context, key string) (string, error)

	// Delete removes key.
	Delete(ctx context.Context, key string) error

	// Flush writes buffered entries to disk.
	// Returns the number of entries flushed.
	Flush(ctx context.Context) (int, error)

	// Compact merges SSTables.
	// Returns the number of tables removed.
	Compact(ctx context.Context) (int, error)

	// Stats returns the current store statistics.
	Stats(ctx context.Context) (*domain.StoreStats, error)

	// Dump writes the internal structure of the store to w.
	// Returns domain.ErrNotSupported when the backend cannot describe itself.
	Dump(ctx context.Context, w io.Writer) error
}
