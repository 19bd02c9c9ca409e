package lsm

import (
	"cmp"

	"github.com/custodia-labs/lsmkv/internal/adapters/driven/storage/btree"
)

type slot[V any] struct {
	value   V
	deleted bool
}

// memtable buffers recent writes in key order.
type memtable[K cmp.Ordered, V any] struct {
	tree *btree.Tree[K, slot[V]]
}

func newMemtable[K cmp.Ordered, V any]() *memtable[K, V] {
	return &memtable[K, V]{tree: btree.New[K, slot[V]]()}
}

func (m *memtable[K, V]) put(e entry[K, V]) {
	m.tree.Set(e.key, slot[V]{value: e.value, deleted: e.deleted})
}

// get reports the buffered state of key. found is false when the memtable
// has nothing for key; deleted is true for a tombstone.
func (m *memtable[K, V]) get(key K) (value V, deleted, found bool) {
	s, ok := m.tree.Get(key)
	if !ok {
		return value, false, false
	}
	return s.value, s.deleted, true
}

func (m *memtable[K, V]) len() int {
	return m.tree.Len()
}

// entries returns the buffered records in key order.
func (m *memtable[K, V]) entries() []entry[K, V] {
	out := make([]entry[K, V], 0, m.tree.Len())
	m.tree.Ascend(func(k K, s slot[V]) bool {
		out = append(out, entry[K, V]{key: k, value: s.value, deleted: s.deleted})
		return true
	})
	return out
}

func (m *memtable[K, V]) clear() {
	m.tree.Clear()
}
