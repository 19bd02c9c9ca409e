package lsm

import (
	"bufio"
	"cmp"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/custodia-labs/lsmkv/internal/core/domain"
	"github.com/custodia-labs/lsmkv/internal/core/ports/driven"
)

const (
	dataExt   = ".data"
	indexExt  = ".index"
	filterExt = ".filter"

	tablePrefix = "sstable-"
)

// newTableName returns a fresh, unique table name.
func newTableName() string {
	return tablePrefix + uuid.NewString()
}

// SSTable is an immutable sorted table on disk.
type SSTable[K cmp.Ordered, V any] struct {
	codecs[K, V]

	name   string
	dir    string
	files  *fileCache
	fpRate float64

	index  *Index
	filter *BloomFilter
}

// openTable loads the index and filter of table name. Tables that have not
// been written yet come back empty.
func openTable[K cmp.Ordered, V any](
	dir, name string,
	keys driven.Codec[K],
	values driven.Codec[V],
	files *fileCache,
	fpRate float64,
) (*SSTable[K, V], error) {
	t := &SSTable[K, V]{
		codecs: codecs[K, V]{keys: keys, values: values},
		name:   name,
		dir:    dir,
		files:  files,
		fpRate: fpRate,
	}

	index, err := OpenIndex(t.path(indexExt))
	if err != nil {
		return nil, fmt.Errorf("table %s: %w", name, err)
	}
	filter, err := OpenBloomFilter(t.path(filterExt), index.Len(), fpRate)
	if err != nil {
		return nil, fmt.Errorf("table %s: %w", name, err)
	}
	t.index = index
	t.filter = filter
	return t, nil
}

func (t *SSTable[K, V]) path(ext string) string {
	return filepath.Join(t.dir, t.name+ext)
}

// Name returns the file stem of the table.
func (t *SSTable[K, V]) Name() string {
	return t.name
}

// Len returns the number of records, tombstones included.
func (t *SSTable[K, V]) Len() int {
	return t.index.Len()
}

// Write persists records, which must be sorted by key without duplicates.
// A table can be written once.
func (t *SSTable[K, V]) Write(records []entry[K, V]) error {
	if t.index.Exists() {
		return fmt.Errorf("table %s: %w", t.name, domain.ErrTableExists)
	}
	for i := 1; i < len(records); i++ {
		if cmp.Compare(records[i-1].key, records[i].key) >= 0 {
			return fmt.Errorf("table %s: records not sorted at position %d: %w", t.name, i, domain.ErrInvalidInput)
		}
	}

	f, err := os.OpenFile(t.path(dataExt), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("create data file: %w", err)
	}

	index := &Index{path: t.path(indexExt), offsets: make(map[string]int64, len(records))}
	filter := NewBloomFilter(t.path(filterExt), len(records), t.fpRate)
	w := bufio.NewWriter(f)
	var offset int64
	for _, r := range records {
		raw, err := t.encode(r)
		if err != nil {
			_ = f.Close()
			return err
		}
		line := formatLine(raw)
		if _, err := w.WriteString(line); err != nil {
			_ = f.Close()
			return fmt.Errorf("write data file: %w", err)
		}
		index.Add(raw.key, offset)
		filter.Add(raw.key)
		offset += int64(len(line))
	}

	if err := w.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("write data file: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("sync data file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close data file: %w", err)
	}

	if err := filter.Save(); err != nil {
		return err
	}
	// The index goes last: its presence marks the table as complete.
	if err := index.Save(); err != nil {
		return err
	}
	t.index = index
	t.filter = filter
	return nil
}

// Lookup finds key in the table. found is false when the table has no
// record for key; deleted is true when the record is a tombstone.
func (t *SSTable[K, V]) Lookup(key K) (value V, deleted, found bool, err error) {
	encoded, err := t.keys.Encode(key)
	if err != nil {
		return value, false, false, fmt.Errorf("encode key: %w", err)
	}
	if !t.filter.MayContain(encoded) {
		return value, false, false, nil
	}
	offset, ok := t.index.Offset(encoded)
	if !ok {
		return value, false, false, nil
	}

	raw, err := t.readAt(offset)
	if err != nil {
		return value, false, false, err
	}
	if raw.key != encoded {
		return value, false, false, fmt.Errorf("table %s: expected key %q at offset %d, found %q: %w",
			t.name, encoded, offset, raw.key, domain.ErrCorrupted)
	}
	if raw.deleted {
		return value, true, true, nil
	}
	value, err = t.values.Decode(raw.value)
	if err != nil {
		return value, false, false, fmt.Errorf("table %s: decode value: %w", t.name, err)
	}
	return value, false, true, nil
}

// readAt parses the line starting at offset. A handle closed by a
// concurrent cache eviction is reopened once.
func (t *SSTable[K, V]) readAt(offset int64) (rawEntry, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		f, err := t.files.get(t.path(dataExt))
		if err != nil {
			return rawEntry{}, fmt.Errorf("open data file: %w", err)
		}
		r := bufio.NewReader(io.NewSectionReader(f, offset, math.MaxInt64-offset))
		line, err := r.ReadString('\n')
		if errors.Is(err, os.ErrClosed) {
			lastErr = err
			continue
		}
		if err != nil {
			return rawEntry{}, fmt.Errorf("table %s: read at offset %d: %w", t.name, offset, err)
		}
		return parseLine(line[:len(line)-1])
	}
	return rawEntry{}, fmt.Errorf("table %s: read at offset %d: %w", t.name, offset, lastErr)
}

// Records returns all records in key order.
func (t *SSTable[K, V]) Records() ([]entry[K, V], error) {
	f, err := os.Open(t.path(dataExt))
	if os.IsNotExist(err) && t.index.Len() == 0 {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open data file: %w", err)
	}
	defer f.Close()

	records := make([]entry[K, V], 0, t.index.Len())
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		raw, err := parseLine(scanner.Text())
		if err != nil {
			return nil, fmt.Errorf("table %s: %w", t.name, err)
		}
		r, err := t.decode(raw)
		if err != nil {
			return nil, fmt.Errorf("table %s: %w", t.name, err)
		}
		records = append(records, r)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read data file: %w", err)
	}
	return records, nil
}

// Remove deletes the files of the table.
func (t *SSTable[K, V]) Remove() error {
	t.files.evict(t.path(dataExt))

	var errs []error
	// Index first, so a partial removal never looks like a complete table.
	for _, ext := range []string{indexExt, filterExt, dataExt} {
		if err := os.Remove(t.path(ext)); err != nil && !os.IsNotExist(err) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (t *SSTable[K, V]) info() domain.TableInfo {
	return domain.TableInfo{Name: t.name, Records: t.Len()}
}
