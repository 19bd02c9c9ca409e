package lsm

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lsmkv/internal/adapters/driven/codec"
)

func newTestFiles(t *testing.T) *fileCache {
	t.Helper()
	files, err := newFileCache(8)
	require.NoError(t, err)
	t.Cleanup(files.close)
	return files
}

func emptyTable(t *testing.T, dir string, files *fileCache) *SSTable[string, string] {
	t.Helper()
	table, err := openTable[string, string](dir, newTableName(), codec.String{}, codec.String{}, files, 0.01)
	require.NoError(t, err)
	return table
}

// writeTable writes records as a new table. An empty value with a key
// prefixed by "-" is a tombstone for the rest of the key.
func writeTable(t *testing.T, dir string, files *fileCache, records map[string]string) *SSTable[string, string] {
	t.Helper()
	table := emptyTable(t, dir, files)
	require.NoError(t, table.Write(sortedEntries(records)))
	return table
}

func sortedEntries(records map[string]string) []entry[string, string] {
	entries := make([]entry[string, string], 0, len(records))
	for k, v := range records {
		if len(k) > 1 && k[0] == '-' && v == "" {
			entries = append(entries, entry[string, string]{key: k[1:], deleted: true})
			continue
		}
		entries = append(entries, entry[string, string]{key: k, value: v})
	}
	slices.SortFunc(entries, func(a, b entry[string, string]) int {
		if a.key < b.key {
			return -1
		}
		if a.key > b.key {
			return 1
		}
		return 0
	})
	return entries
}

func keysOf(entries []entry[string, string]) []string {
	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = e.key
	}
	return keys
}
