// Package bbolt provides a single-file key/value store backed by bbolt.
//
// Keys and values live in one "kv" bucket of kv.db inside the data
// directory. Every write is its own bbolt transaction, so Flush only syncs
// and Compact has nothing to do.
package bbolt
