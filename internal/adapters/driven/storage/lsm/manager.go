package lsm

import (
	"cmp"
	"context"
	"slices"

	"github.com/custodia-labs/lsmkv/internal/core/domain"
	"github.com/custodia-labs/lsmkv/internal/core/ports/driven"
	"github.com/custodia-labs/lsmkv/internal/logger"
)

// TableManager owns the SSTables of a store and decides when to compact.
// It is not safe for concurrent use; Store serialises access.
type TableManager[K cmp.Ordered, V any] struct {
	dir       string
	codecs    codecs[K, V]
	files     *fileCache
	opts      Options
	compactor Compactor[K, V]
	log       logger.Scope

	// tables are ordered oldest to newest.
	tables                 []*SSTable[K, V]
	flushesSinceCompaction int
}

func newTableManager[K cmp.Ordered, V any](
	dir string,
	keys driven.Codec[K],
	values driven.Codec[V],
	files *fileCache,
	opts Options,
) (*TableManager[K, V], error) {
	m := &TableManager[K, V]{
		dir:    dir,
		codecs: codecs[K, V]{keys: keys, values: values},
		files:  files,
		opts:   opts,
		log:    logger.For("sstable"),
	}
	m.compactor = NewRowCountCompactor(opts.CompactionSizeLimit, opts.CompactionRate, m.newTable)

	mf, err := loadManifest(dir)
	if err != nil {
		return nil, err
	}
	for _, name := range mf.Tables {
		t, err := m.openTable(name)
		if err != nil {
			return nil, err
		}
		m.tables = append(m.tables, t)
	}
	m.log.Debug("loaded %d tables from %s", len(m.tables), dir)
	return m, nil
}

func (m *TableManager[K, V]) openTable(name string) (*SSTable[K, V], error) {
	return openTable(m.dir, name, m.codecs.keys, m.codecs.values, m.files, m.opts.FalsePositiveRate)
}

func (m *TableManager[K, V]) newTable() (*SSTable[K, V], error) {
	return m.openTable(newTableName())
}

// Flush writes records, sorted by key, as the newest table. It compacts
// once more than CompactionTrigger tables were flushed since the last
// compaction. A failed compaction is logged and retried after the next
// flush; the flushed table stays.
func (m *TableManager[K, V]) Flush(ctx context.Context, records []entry[K, V]) (*SSTable[K, V], error) {
	t, err := m.newTable()
	if err != nil {
		return nil, err
	}
	if err := t.Write(records); err != nil {
		_ = t.Remove()
		return nil, err
	}

	m.tables = append(m.tables, t)
	if err := m.saveManifest(); err != nil {
		m.tables = m.tables[:len(m.tables)-1]
		_ = t.Remove()
		return nil, err
	}
	m.flushesSinceCompaction++
	m.log.Debug("flushed %d records to %s", len(records), t.Name())

	if m.flushesSinceCompaction > m.opts.CompactionTrigger {
		if _, err := m.Compact(ctx); err != nil {
			m.log.Warn("compaction after flush failed: %v", err)
		}
	}
	return t, nil
}

// Find looks key up from the newest table to the oldest.
func (m *TableManager[K, V]) Find(key K) (value V, deleted, found bool, err error) {
	for i := len(m.tables) - 1; i >= 0; i-- {
		value, deleted, found, err = m.tables[i].Lookup(key)
		if err != nil || found {
			return value, deleted, found, err
		}
	}
	return value, false, false, nil
}

// Compact merges small tables and removes the ones no longer referenced.
// Returns the number of tables removed.
func (m *TableManager[K, V]) Compact(ctx context.Context) (int, error) {
	before := len(m.tables)
	compacted, err := m.compactor.Compact(ctx, m.tables)
	if err != nil {
		return 0, err
	}

	obsolete := make([]*SSTable[K, V], 0, len(m.tables))
	for _, t := range m.tables {
		if !slices.Contains(compacted, t) {
			obsolete = append(obsolete, t)
		}
	}

	previous := m.tables
	m.tables = compacted
	if err := m.saveManifest(); err != nil {
		m.tables = previous
		for _, t := range compacted {
			if !slices.Contains(previous, t) {
				if rmErr := t.Remove(); rmErr != nil {
					m.log.Warn("failed to remove %s: %v", t.Name(), rmErr)
				}
			}
		}
		return 0, err
	}
	m.flushesSinceCompaction = 0

	for _, t := range obsolete {
		if err := t.Remove(); err != nil {
			m.log.Warn("failed to remove %s: %v", t.Name(), err)
		}
	}
	m.log.Info("compacted %d tables into %d", before, len(m.tables))
	return len(obsolete), nil
}

// Tables describes the live tables from oldest to newest.
func (m *TableManager[K, V]) Tables() []domain.TableInfo {
	infos := make([]domain.TableInfo, len(m.tables))
	for i, t := range m.tables {
		infos[i] = t.info()
	}
	return infos
}

// FlushesSinceCompaction returns the number of tables written since the
// last compaction.
func (m *TableManager[K, V]) FlushesSinceCompaction() int {
	return m.flushesSinceCompaction
}

func (m *TableManager[K, V]) saveManifest() error {
	mf := manifest{Version: manifestVersion, Tables: make([]string, len(m.tables))}
	for i, t := range m.tables {
		mf.Tables[i] = t.Name()
	}
	return mf.save(m.dir)
}
