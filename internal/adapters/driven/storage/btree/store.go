package btree

import (
	"cmp"
	"context"
	"io"
	"sync"

	"github.com/custodia-labs/lsmkv/internal/core/domain"
	"github.com/custodia-labs/lsmkv/internal/core/ports/driven"
)

// Ensure Store implements the interfaces.
var (
	_ driven.DataStore[string, string] = (*Store[string, string])(nil)
	_ driven.StatsReporter             = (*Store[string, string])(nil)
	_ driven.Dumper                    = (*Store[string, string])(nil)
)

// Store is an in-memory DataStore backed by a Tree.
// Keys are write-once: Put on an existing key fails with domain.ErrAlreadyExists.
type Store[K cmp.Ordered, V any] struct {
	mu     sync.RWMutex
	tree   *Tree[K, V]
	closed bool
}

// NewStore creates an empty B-tree store.
func NewStore[K cmp.Ordered, V any]() *Store[K, V] {
	return &Store[K, V]{tree: New[K, V]()}
}

// Put inserts key.
func (s *Store[K, V]) Put(_ context.Context, key K, value V) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.ErrClosed
	}
	return s.tree.Insert(key, value)
}

// Get retrieves the value for key.
func (s *Store[K, V]) Get(_ context.Context, key K) (V, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		var zero V
		return zero, false, domain.ErrClosed
	}
	v, ok := s.tree.Get(key)
	return v, ok, nil
}

// Delete removes key.
func (s *Store[K, V]) Delete(_ context.Context, key K) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.ErrClosed
	}
	s.tree.Delete(key)
	return nil
}

// Close marks the store closed. The tree is released.
func (s *Store[K, V]) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.tree = New[K, V]()
	return nil
}

// Stats reports the key count.
func (s *Store[K, V]) Stats() domain.StoreStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.StoreStats{
		Backend: domain.BackendBTree,
		Keys:    s.tree.Len(),
	}
}

// Dump writes the tree level by level.
func (s *Store[K, V]) Dump(w io.Writer) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return domain.ErrClosed
	}
	return s.tree.Dump(w)
}
