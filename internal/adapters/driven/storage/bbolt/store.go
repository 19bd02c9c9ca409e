package bbolt

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/custodia-labs/lsmkv/internal/core/domain"
	"github.com/custodia-labs/lsmkv/internal/core/ports/driven"
)

const (
	// FileName is the database file created inside the data directory.
	FileName = "kv.db"

	bucketName  = "kv"
	openTimeout = time.Second
)

// Verify interface compliance.
var (
	_ driven.DataStore[string, string] = (*Store)(nil)
	_ driven.Maintainer                = (*Store)(nil)
	_ driven.StatsReporter             = (*Store)(nil)
)

var errBucketMissing = errors.New("kv bucket missing")

// Store keeps string keys and values in a bbolt database.
type Store struct {
	db *bolt.DB
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, fmt.Errorf("open bbolt database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}
	return &Store{db: db}, nil
}

// Put stores value under key.
func (s *Store) Put(_ context.Context, key, value string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return errBucketMissing
		}
		return b.Put([]byte(key), []byte(value))
	})
	return mapErr(err)
}

// Get returns the value stored under key.
func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	var (
		value string
		found bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return errBucketMissing
		}
		// Values are only valid inside the transaction.
		if v := b.Get([]byte(key)); v != nil {
			value, found = string(v), true
		}
		return nil
	})
	if err != nil {
		return "", false, mapErr(err)
	}
	return value, found, nil
}

// Delete removes key.
func (s *Store) Delete(_ context.Context, key string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return errBucketMissing
		}
		return b.Delete([]byte(key))
	})
	return mapErr(err)
}

// Flush forces the database file to disk. Returns 0: bbolt commits every
// write, so nothing is buffered.
func (s *Store) Flush(_ context.Context) (int, error) {
	return 0, mapErr(s.db.Sync())
}

// Compact is a no-op; bbolt reuses freed pages in place.
func (s *Store) Compact(_ context.Context) (int, error) {
	return 0, nil
}

// Stats reports the key count.
func (s *Store) Stats() domain.StoreStats {
	stats := domain.StoreStats{Backend: domain.BackendBolt}
	_ = s.db.View(func(tx *bolt.Tx) error {
		if b := tx.Bucket([]byte(bucketName)); b != nil {
			stats.Keys = b.Stats().KeyN
		}
		return nil
	})
	return stats
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.db.Path()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bolt.ErrDatabaseNotOpen):
		return domain.ErrClosed
	case errors.Is(err, bolt.ErrKeyRequired), errors.Is(err, bolt.ErrKeyTooLarge), errors.Is(err, bolt.ErrValueTooLarge):
		return fmt.Errorf("%v: %w", err, domain.ErrInvalidInput)
	case errors.Is(err, errBucketMissing):
		return fmt.Errorf("%v: %w", err, domain.ErrCorrupted)
	default:
		return err
	}
}
