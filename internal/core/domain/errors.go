package domain

import "errors"

// Domain errors represent storage failures visible to callers.
// Adapters wrap them with context using fmt.Errorf and %w.
var (
	// ErrNotFound indicates a requested key or entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a key already exists in a store that
	// does not overwrite.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotSupported indicates the backend does not provide the operation
	// (e.g. compacting an in-memory B-tree).
	ErrNotSupported = errors.New("operation not supported by backend")

	// ErrCorrupted indicates on-disk data could not be decoded.
	ErrCorrupted = errors.New("corrupted data")

	// ErrClosed indicates the store has been closed.
	ErrClosed = errors.New("store closed")

	// ErrTableExists indicates an SSTable with the same name was already written.
	// SSTables are immutable once their index is on disk.
	ErrTableExists = errors.New("sstable already exists")
)
