// Package lsm implements a log-structured merge tree key/value store.
//
// Writes are appended to a commit log and buffered in a memtable. When the
// memtable grows past its flush threshold it is written out as an immutable
// SSTable: a data file of sorted lines, a dense index of key offsets and a
// Bloom filter. Reads consult the memtable first and then the SSTables from
// newest to oldest; the first hit, value or tombstone, decides.
//
// After a configurable number of flushes, adjacent small tables are merged by
// a row-count based compactor. The ordered list of live tables is kept in
// MANIFEST.toml so a restart sees tables in the order they were written.
//
// # On-disk layout
//
//	<dir>/commit.log           escaped "key;value" lines, replayed on open
//	<dir>/MANIFEST.toml        ordered table names
//	<dir>/sstable-<uuid>.data   sorted "key;value" lines
//	<dir>/sstable-<uuid>.index  "key;offset" lines
//	<dir>/sstable-<uuid>.filter Bloom filter parameters and bits
package lsm
