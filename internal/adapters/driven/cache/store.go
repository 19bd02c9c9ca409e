package cache

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/VictoriaMetrics/fastcache"
	"github.com/cespare/xxhash/v2"

	"github.com/custodia-labs/lsmkv/internal/core/domain"
	"github.com/custodia-labs/lsmkv/internal/core/ports/driven"
)

// Verify interface compliance.
var (
	_ driven.DataStore[string, string] = (*Store)(nil)
	_ driven.Maintainer                = (*Store)(nil)
	_ driven.StatsReporter             = (*Store)(nil)
	_ driven.Dumper                    = (*Store)(nil)
)

const stripes = 64

// stripe serialises writes to the keys hashed onto it. gen counts those
// writes so a fill that raced one can be dropped.
type stripe struct {
	mu  sync.Mutex
	gen uint64
}

// Store caches found values of the wrapped store in memory.
// Misses are not cached, so a key created behind the cache's back is still
// found.
type Store struct {
	cache   *fastcache.Cache
	inner   driven.DataStore[string, string]
	stripes [stripes]stripe
	hits    atomic.Uint64
	misses  atomic.Uint64
}

// New wraps inner with a cache of at most maxBytes.
func New(inner driven.DataStore[string, string], maxBytes int) *Store {
	return &Store{
		cache: fastcache.New(maxBytes),
		inner: inner,
	}
}

func (s *Store) stripeFor(key string) *stripe {
	return &s.stripes[xxhash.Sum64String(key)%stripes]
}

// Put writes through to the inner store, then caches value.
func (s *Store) Put(ctx context.Context, key, value string) error {
	st := s.stripeFor(key)
	st.mu.Lock()
	defer st.mu.Unlock()

	st.gen++
	if err := s.inner.Put(ctx, key, value); err != nil {
		s.cache.Del([]byte(key))
		return err
	}
	s.cache.Set([]byte(key), []byte(value))
	return nil
}

// Get serves key from the cache, falling back to the inner store.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	// HasGet tells an empty cached value apart from a miss.
	if v, ok := s.cache.HasGet(nil, []byte(key)); ok {
		s.hits.Add(1)
		return string(v), true, nil
	}
	s.misses.Add(1)

	st := s.stripeFor(key)
	st.mu.Lock()
	gen := st.gen
	st.mu.Unlock()

	value, found, err := s.inner.Get(ctx, key)
	if err != nil || !found {
		return value, found, err
	}

	st.mu.Lock()
	if st.gen == gen {
		s.cache.Set([]byte(key), []byte(value))
	}
	st.mu.Unlock()
	return value, true, nil
}

// Delete removes key from the inner store and the cache.
func (s *Store) Delete(ctx context.Context, key string) error {
	st := s.stripeFor(key)
	st.mu.Lock()
	defer st.mu.Unlock()

	st.gen++
	s.cache.Del([]byte(key))
	return s.inner.Delete(ctx, key)
}

// Flush delegates to the inner store.
func (s *Store) Flush(ctx context.Context) (int, error) {
	m, ok := s.inner.(driven.Maintainer)
	if !ok {
		return 0, fmt.Errorf("flush: %w", domain.ErrNotSupported)
	}
	return m.Flush(ctx)
}

// Compact delegates to the inner store.
func (s *Store) Compact(ctx context.Context) (int, error) {
	m, ok := s.inner.(driven.Maintainer)
	if !ok {
		return 0, fmt.Errorf("compact: %w", domain.ErrNotSupported)
	}
	return m.Compact(ctx)
}

// Dump delegates to the inner store.
func (s *Store) Dump(w io.Writer) error {
	d, ok := s.inner.(driven.Dumper)
	if !ok {
		return fmt.Errorf("dump: %w", domain.ErrNotSupported)
	}
	return d.Dump(w)
}

// Stats returns the inner store's stats with the cache counters filled in.
func (s *Store) Stats() domain.StoreStats {
	var stats domain.StoreStats
	if r, ok := s.inner.(driven.StatsReporter); ok {
		stats = r.Stats()
	}
	stats.CacheHits = s.hits.Load()
	stats.CacheMisses = s.misses.Load()
	return stats
}

// Reset drops every cached entry.
func (s *Store) Reset() {
	s.cache.Reset()
}

// Close releases the cache and closes the inner store.
func (s *Store) Close() error {
	s.cache.Reset()
	return s.inner.Close()
}
