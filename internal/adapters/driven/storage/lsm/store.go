package lsm

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/custodia-labs/lsmkv/internal/core/domain"
	"github.com/custodia-labs/lsmkv/internal/core/ports/driven"
	"github.com/custodia-labs/lsmkv/internal/logger"
)

// Verify interface compliance.
var (
	_ driven.DataStore[string, string] = (*Store[string, string])(nil)
	_ driven.Maintainer                = (*Store[string, string])(nil)
	_ driven.StatsReporter             = (*Store[string, string])(nil)
)

// Store is an LSM tree key/value store rooted in a directory.
// Reads run concurrently; writes, flushes and compactions are exclusive.
type Store[K cmp.Ordered, V any] struct {
	mu     sync.RWMutex
	dir    string
	opts   Options
	codecs codecs[K, V]
	log    logger.Scope

	commitLog *CommitLog
	memtable  *memtable[K, V]
	tables    *TableManager[K, V]
	files     *fileCache
	closed    bool
}

// Open opens the store in dir, creating it if needed, and replays the
// commit log into the memtable.
func Open[K cmp.Ordered, V any](
	dir string,
	keys driven.Codec[K],
	values driven.Codec[V],
	opts Options,
) (*Store[K, V], error) {
	opts = opts.withDefaults()
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	files, err := newFileCache(opts.OpenFiles)
	if err != nil {
		return nil, err
	}
	tables, err := newTableManager(dir, keys, values, files, opts)
	if err != nil {
		files.close()
		return nil, err
	}
	commitLog, err := OpenCommitLog(dir, opts.SyncWrites)
	if err != nil {
		files.close()
		return nil, err
	}

	s := &Store[K, V]{
		dir:       dir,
		opts:      opts,
		codecs:    codecs[K, V]{keys: keys, values: values},
		log:       logger.For("lsm"),
		commitLog: commitLog,
		memtable:  newMemtable[K, V](),
		tables:    tables,
		files:     files,
	}
	if err := s.replay(); err != nil {
		_ = commitLog.Close()
		files.close()
		return nil, err
	}
	s.log.Debug("opened %s: %d buffered records, %d tables", dir, s.memtable.len(), len(tables.tables))
	return s, nil
}

func (s *Store[K, V]) replay() error {
	records, err := s.commitLog.Replay()
	if err != nil {
		return err
	}
	for _, raw := range records {
		e, err := s.codecs.decode(raw)
		if err != nil {
			return fmt.Errorf("replay commit log: %v: %w", err, domain.ErrCorrupted)
		}
		s.memtable.put(e)
	}
	return nil
}

// Put stores value under key.
func (s *Store[K, V]) Put(ctx context.Context, key K, value V) error {
	return s.write(ctx, entry[K, V]{key: key, value: value})
}

// Delete records a tombstone for key.
func (s *Store[K, V]) Delete(ctx context.Context, key K) error {
	return s.write(ctx, entry[K, V]{key: key, deleted: true})
}

func (s *Store[K, V]) write(ctx context.Context, e entry[K, V]) error {
	raw, err := s.codecs.encode(e)
	if err != nil {
		return fmt.Errorf("%v: %w", err, domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.ErrClosed
	}

	if err := s.commitLog.Append(raw); err != nil {
		return err
	}
	s.memtable.put(e)

	if s.memtable.len() > s.opts.FlushThreshold {
		if _, err := s.flushLocked(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the value for key. A tombstone hides older values.
func (s *Store[K, V]) Get(_ context.Context, key K) (V, bool, error) {
	var zero V

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return zero, false, domain.ErrClosed
	}

	if value, deleted, found := s.memtable.get(key); found {
		if deleted {
			return zero, false, nil
		}
		return value, true, nil
	}

	value, deleted, found, err := s.tables.Find(key)
	if err != nil {
		return zero, false, err
	}
	if !found || deleted {
		return zero, false, nil
	}
	return value, true, nil
}

// Flush writes the memtable out as a new table and clears the commit log.
// Returns the number of records written.
func (s *Store[K, V]) Flush(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, domain.ErrClosed
	}
	return s.flushLocked(ctx)
}

func (s *Store[K, V]) flushLocked(ctx context.Context) (int, error) {
	records := s.memtable.entries()
	if len(records) == 0 {
		return 0, nil
	}

	if _, err := s.tables.Flush(ctx, records); err != nil {
		return 0, err
	}
	s.memtable.clear()
	if err := s.commitLog.Clear(); err != nil {
		return len(records), err
	}
	s.log.Debug("flushed %d records", len(records))
	return len(records), nil
}

// Compact merges small tables. Returns the number of tables removed.
func (s *Store[K, V]) Compact(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, domain.ErrClosed
	}
	return s.tables.Compact(ctx)
}

// Stats describes the store.
func (s *Store[K, V]) Stats() domain.StoreStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.StoreStats{
		Backend:                domain.BackendLSM,
		Keys:                   -1,
		MemtableSize:           s.memtable.len(),
		CommitLogEntries:       s.commitLog.Size(),
		Tables:                 s.tables.Tables(),
		FlushesSinceCompaction: s.tables.FlushesSinceCompaction(),
	}
}

// Dir returns the data directory.
func (s *Store[K, V]) Dir() string {
	return s.dir
}

// Close releases the commit log and cached file handles.
// Buffered writes stay in the commit log and are replayed on the next Open.
func (s *Store[K, V]) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.files.close()
	return s.commitLog.Close()
}
