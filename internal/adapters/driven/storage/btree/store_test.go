package btree

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lsmkv/internal/core/domain"
)

func TestStore_PutAndGetSingleRecord(t *testing.T) {
	store := NewStore[string, string]()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "key1", "value1"))

	v, ok, err := store.Get(ctx, "key1")
	require.NoError(t, err)
	assert.True(t, ok, "Expected key1 to be present")
	assert.Equal(t, "value1", v)
}

func TestStore_PutMultipleRecords(t *testing.T) {
	store := NewStore[string, string]()
	ctx := context.Background()

	for _, k := range []string{"a", "b", "c", "d", "e", "f"} {
		require.NoError(t, store.Put(ctx, k, "v-"+k))
	}

	for _, k := range []string{"a", "b", "c", "d", "e", "f"} {
		v, ok, err := store.Get(ctx, k)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "v-"+k, v)
	}
}

func TestStore_GetNonExistentKey(t *testing.T) {
	store := NewStore[string, string]()
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "key1", "value1"))

	_, ok, err := store.Get(ctx, "nonExistentKey")

	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_PutExistingKeyFails(t *testing.T) {
	store := NewStore[string, string]()
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "key1", "value1"))

	err := store.Put(ctx, "key1", "newValue1")

	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestStore_DeleteThenPut(t *testing.T) {
	store := NewStore[string, string]()
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "key1", "value1"))

	require.NoError(t, store.Delete(ctx, "key1"))
	_, ok, err := store.Get(ctx, "key1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Put(ctx, "key1", "value2"))
	v, _, _ := store.Get(ctx, "key1")
	assert.Equal(t, "value2", v)
}

func TestStore_DeleteMissingIsNoop(t *testing.T) {
	store := NewStore[string, string]()
	assert.NoError(t, store.Delete(context.Background(), "missing"))
}

func TestStore_Stats(t *testing.T) {
	store := NewStore[int, int]()
	ctx := context.Background()
	for i := 0; i < 12; i++ {
		require.NoError(t, store.Put(ctx, i, i))
	}

	stats := store.Stats()

	assert.Equal(t, domain.BackendBTree, stats.Backend)
	assert.Equal(t, 12, stats.Keys)
}

func TestStore_Closed(t *testing.T) {
	store := NewStore[string, string]()
	ctx := context.Background()
	require.NoError(t, store.Close())

	assert.ErrorIs(t, store.Put(ctx, "k", "v"), domain.ErrClosed)
	_, _, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, domain.ErrClosed)
	assert.ErrorIs(t, store.Delete(ctx, "k"), domain.ErrClosed)
}

func TestStore_Dump(t *testing.T) {
	store := NewStore[int, string]()
	ctx := context.Background()
	for i := 1; i <= 6; i++ {
		require.NoError(t, store.Put(ctx, i, ""))
	}

	var buf bytes.Buffer
	require.NoError(t, store.Dump(&buf))
	assert.Equal(t, "Level 0 | [3]\nLevel 1 | [1, 2] [4, 5, 6]\n", buf.String())

	require.NoError(t, store.Close())
	assert.ErrorIs(t, store.Dump(&buf), domain.ErrClosed)
}
