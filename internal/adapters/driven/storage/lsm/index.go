package lsm

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/custodia-labs/lsmkv/internal/core/domain"
)

// Index maps each key of an SSTable to the byte offset of its line in the
// data file. Keys are kept in file order.
type Index struct {
	path    string
	offsets map[string]int64
	keys    []string
}

// OpenIndex loads the index at path. A missing file yields an empty index.
func OpenIndex(path string) (*Index, error) {
	idx := &Index{path: path, offsets: make(map[string]int64)}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return idx, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		e, err := parseLine(scanner.Text())
		if err != nil || e.deleted {
			return nil, fmt.Errorf("index %s line %d: %w", path, lineNo, domain.ErrCorrupted)
		}
		offset, err := strconv.ParseInt(e.value, 10, 64)
		if err != nil || offset < 0 {
			return nil, fmt.Errorf("index %s line %d: bad offset %q: %w", path, lineNo, e.value, domain.ErrCorrupted)
		}
		idx.Add(e.key, offset)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}
	return idx, nil
}

// Add records the offset of key.
func (i *Index) Add(key string, offset int64) {
	if _, ok := i.offsets[key]; !ok {
		i.keys = append(i.keys, key)
	}
	i.offsets[key] = offset
}

// Offset returns the offset of key.
func (i *Index) Offset(key string) (int64, bool) {
	offset, ok := i.offsets[key]
	return offset, ok
}

// Len returns the number of indexed keys.
func (i *Index) Len() int {
	return len(i.keys)
}

// Keys returns the indexed keys in file order.
func (i *Index) Keys() []string {
	return i.keys
}

// Exists reports whether the index has been saved.
func (i *Index) Exists() bool {
	_, err := os.Stat(i.path)
	return err == nil
}

// Save writes the index to its path.
func (i *Index) Save() error {
	var b strings.Builder
	for _, key := range i.keys {
		b.WriteString(formatLine(rawEntry{key: key, value: strconv.FormatInt(i.offsets[key], 10)}))
	}
	return writeFileAtomic(i.path, []byte(b.String()))
}
