package services

import (
	"context"
	"fmt"
	"io"

	"github.com/custodia-labs/lsmkv/internal/core/domain"
	"github.com/custodia-labs/lsmkv/internal/core/ports/driven"
	"github.com/custodia-labs/lsmkv/internal/core/ports/driving"
	"github.com/custodia-labs/lsmkv/internal/logger"
)

// Ensure StoreService implements the interface.
var _ driving.StoreService = (*StoreService)(nil)

// StoreService validates requests and forwards them to the configured
// data store.
type StoreService struct {
	store driven.DataStore[string, string]
	log   logger.Scope
}

// NewStoreService creates a store service over store.
func NewStoreService(store driven.DataStore[string, string]) *StoreService {
	return &StoreService{
		store: store,
		log:   logger.For("store"),
	}
}

// Put stores value under key.
func (s *StoreService) Put(ctx context.Context, key, value string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := s.store.Put(ctx, key, value); err != nil {
		return fmt.Errorf("put %q: %w", key, err)
	}
	s.log.Debug("put %q (%d bytes)", key, len(value))
	return nil
}

// Get returns the value of key or domain.ErrNotFound.
func (s *StoreService) Get(ctx context.Context, key string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}
	value, found, err := s.store.Get(ctx, key)
	if err != nil {
		return "", fmt.Errorf("get %q: %w", key, err)
	}
	if !found {
		s.log.Debug("get %q: not found", key)
		return "", fmt.Errorf("key %q: %w", key, domain.ErrNotFound)
	}
	s.log.Debug("get %q: hit", key)
	return value, nil
}

// Delete removes key.
func (s *StoreService) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	s.log.Debug("delete %q", key)
	return nil
}

// Flush writes buffered entries to disk.
func (s *StoreService) Flush(ctx context.Context) (int, error) {
	m, err := s.maintainer()
	if err != nil {
		return 0, err
	}
	n, err := m.Flush(ctx)
	if err != nil {
		return n, fmt.Errorf("flush: %w", err)
	}
	s.log.Info("flushed %d entries", n)
	return n, nil
}

// Compact merges on-disk tables.
func (s *StoreService) Compact(ctx context.Context) (int, error) {
	m, err := s.maintainer()
	if err != nil {
		return 0, err
	}
	n, err := m.Compact(ctx)
	if err != nil {
		return n, fmt.Errorf("compact: %w", err)
	}
	s.log.Info("compaction removed %d tables", n)
	return n, nil
}

// Stats describes the underlying store.
func (s *StoreService) Stats(_ context.Context) (*domain.StoreStats, error) {
	r, ok := s.store.(driven.StatsReporter)
	if !ok {
		return nil, fmt.Errorf("stats: %w", domain.ErrNotSupported)
	}
	stats := r.Stats()
	return &stats, nil
}

// Dump describes the structure of the underlying store.
func (s *StoreService) Dump(_ context.Context, w io.Writer) error {
	d, ok := s.store.(driven.Dumper)
	if !ok {
		return fmt.Errorf("dump: %w", domain.ErrNotSupported)
	}
	return d.Dump(w)
}

func (s *StoreService) maintainer() (driven.Maintainer, error) {
	m, ok := s.store.(driven.Maintainer)
	if !ok {
		return nil, fmt.Errorf("maintenance: %w", domain.ErrNotSupported)
	}
	return m, nil
}

func validateKey(key string) error {
	if key == "" {
		return fmt.Errorf("key must not be empty: %w", domain.ErrInvalidInput)
	}
	return nil
}
