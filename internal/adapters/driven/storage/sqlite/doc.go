// Package sqlite persists scheduler state in a SQLite database.
//
// The adapter uses modernc.org/sqlite, a pure Go SQLite implementation, so the
// binary builds without cgo. It backs the driven SchedulerStore port: the
// state of the maintenance tasks (compaction, memtable flush) and a bounded
// history of their runs.
//
// # Schema
//
// The schema is managed through numbered migrations embedded from the
// migrations/ directory and recorded in schema_migrations.
//
// # Data Location
//
// The database lives at <data dir>/scheduler.db, next to the key/value data.
package sqlite
