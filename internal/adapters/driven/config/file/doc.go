// Package file provides the TOML configuration store.
//
// Keys are addressed in dot notation ("memtable.flush_threshold") and written
// back as nested TOML tables:
//
//	[memtable]
//	flush_threshold = 5000
package file
