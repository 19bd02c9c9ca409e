package sqlite

import (
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestStore creates a store in a temporary directory.
func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, store.Close()) })
	return store
}

func TestNewStore_CreatesDatabase(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(dir, FileName), store.Path())
	assert.FileExists(t, store.Path())
}

func TestNewStore_RequiresDirectory(t *testing.T) {
	_, err := NewStore("")
	assert.Error(t, err)
}

func TestNewStore_ReopenSkipsAppliedMigrations(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	var count int
	require.NoError(t, store.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestMigrate_AppliesInOrderAndRecordsVersions(t *testing.T) {
	store := setupTestStore(t)

	fsys := fstest.MapFS{
		"002_extra.up.sql":  {Data: []byte("CREATE TABLE extra_b (id INTEGER);")},
		"003_more.up.sql":   {Data: []byte("CREATE TABLE extra_c (id INTEGER);")},
		"003_more.down.sql": {Data: []byte("DROP TABLE extra_c;")},
		"notes.txt":         {Data: []byte("ignored")},
		"bad_name.up.sql":   {Data: []byte("this is not sql")},
	}
	require.NoError(t, store.migrate(fsys))

	var version int
	require.NoError(t, store.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version))
	assert.Equal(t, 3, version)

	for _, table := range []string{"extra_b", "extra_c"} {
		var name string
		err := store.db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
		require.NoError(t, err, table)
	}

	// Running again is a no-op.
	require.NoError(t, store.migrate(fsys))
}

func TestMigrate_FailedMigrationRollsBack(t *testing.T) {
	store := setupTestStore(t)

	fsys := fstest.MapFS{
		"002_broken.up.sql": {Data: []byte("CREATE TABLE half (id INTEGER); SELECT * FROM no_such_table;")},
	}
	err := store.migrate(fsys)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "002_broken.up.sql")

	var version int
	require.NoError(t, store.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version))
	assert.Equal(t, 1, version)
}
