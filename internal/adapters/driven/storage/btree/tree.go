package btree

import (
	"cmp"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/lsmkv/internal/core/domain"
)

// Tree is an in-memory B-tree. It is not safe for concurrent use.
type Tree[K cmp.Ordered, V any] struct {
	root *node[K, V]
	size int
}

// New creates an empty tree.
func New[K cmp.Ordered, V any]() *Tree[K, V] {
	return &Tree[K, V]{root: &node[K, V]{}}
}

// Len returns the number of keys in the tree.
func (t *Tree[K, V]) Len() int {
	return t.size
}

// Height returns the number of levels; an empty tree has height 1.
func (t *Tree[K, V]) Height() int {
	h := 1
	for cur := t.root; !cur.leaf(); cur = cur.children[0] {
		h++
	}
	return h
}

// Get returns the value stored under key.
func (t *Tree[K, V]) Get(key K) (V, bool) {
	n, i, ok := t.root.search(key)
	if !ok {
		var zero V
		return zero, false
	}
	return n.items[i].value, true
}

// Insert adds key. Returns domain.ErrAlreadyExists if key is present.
func (t *Tree[K, V]) Insert(key K, value V) error {
	if _, _, ok := t.root.search(key); ok {
		return fmt.Errorf("key %v: %w", key, domain.ErrAlreadyExists)
	}
	t.insert(key, value)
	return nil
}

// Set adds key or replaces its value. Reports whether a value was replaced.
func (t *Tree[K, V]) Set(key K, value V) bool {
	if n, i, ok := t.root.search(key); ok {
		n.items[i].value = value
		return true
	}
	t.insert(key, value)
	return false
}

func (t *Tree[K, V]) insert(key K, value V) {
	if len(t.root.items) == maxKeys {
		// Root is full; split it and grow the tree by one level
		old := t.root
		t.root = &node[K, V]{children: []*node[K, V]{old}}
		t.root.splitChild(0)
	}
	t.root.insertNonFull(key, value)
	t.size++
}

// Delete removes key. Reports whether it was present.
func (t *Tree[K, V]) Delete(key K) bool {
	removed := t.root.remove(key)

	// An emptied internal root hands over to its only child
	if len(t.root.items) == 0 && !t.root.leaf() {
		t.root = t.root.children[0]
	}

	if removed {
		t.size--
	}
	return removed
}

// Ascend calls fn for every key in ascending order until fn returns false.
func (t *Tree[K, V]) Ascend(fn func(key K, value V) bool) {
	t.root.ascend(fn)
}

// Clear removes every key.
func (t *Tree[K, V]) Clear() {
	t.root = &node[K, V]{}
	t.size = 0
}

// Dump writes the keys of every node, one level per line.
func (t *Tree[K, V]) Dump(w io.Writer) error {
	level := []*node[K, V]{t.root}
	for depth := 0; len(level) > 0; depth++ {
		var next []*node[K, V]
		groups := make([]string, 0, len(level))
		for _, n := range level {
			keys := make([]string, 0, len(n.items))
			for _, it := range n.items {
				keys = append(keys, fmt.Sprint(it.key))
			}
			groups = append(groups, "["+strings.Join(keys, ", ")+"]")
			next = append(next, n.children...)
		}
		if _, err := fmt.Fprintf(w, "Level %d | %s\n", depth, strings.Join(groups, " ")); err != nil {
			return err
		}
		level = next
	}
	return nil
}
