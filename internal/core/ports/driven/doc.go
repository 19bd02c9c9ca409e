// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - DataStore: Key/value persistence (LSM tree, B-tree, bbolt)
//   - Codec: Converts keys and values to their on-disk string form
//   - ConfigStore: Application configuration
//   - SchedulerStore: Background task state and history
//
// # Optional Interfaces
//
// Stores may additionally implement these; callers type-assert:
//
//   - Maintainer: Flush and compaction
//   - StatsReporter: Point-in-time statistics
//   - Dumper: Internal structure for debugging
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
