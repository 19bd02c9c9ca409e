package domain

import "cmp"

// Record is a single key/value pair.
type Record[K cmp.Ordered, V any] struct {
	Key   K
	Value V
}

// NewRecord creates a record.
func NewRecord[K cmp.Ordered, V any](key K, value V) Record[K, V] {
	return Record[K, V]{Key: key, Value: value}
}

// Compare orders records by key.
func (r Record[K, V]) Compare(other Record[K, V]) int {
	return cmp.Compare(r.Key, other.Key)
}
