// Package domain defines the core entities for lsmkv.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Record: A key/value pair as stored by every backend
//   - StoreStats: Observable state of a store (memtable, tables, cache)
//   - EngineSettings: Tunables for the storage engine
//   - ScheduledTask: Background maintenance task state
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
