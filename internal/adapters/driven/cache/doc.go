// Package cache provides a read-through cache in front of a string store.
//
// Values are held in a fastcache.Cache. Writes go through to the wrapped
// store under a per-key stripe lock; a fill from a read that overlapped a
// write to the same stripe is discarded.
package cache
