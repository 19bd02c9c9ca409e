package lsm

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lsmkv/internal/core/domain"
)

func TestIndex_AddAndSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.index")
	idx, err := OpenIndex(path)
	require.NoError(t, err)
	assert.False(t, idx.Exists())
	assert.Equal(t, 0, idx.Len())

	idx.Add("a", 0)
	idx.Add("b;c", 6)
	idx.Add("d", 14)
	require.NoError(t, idx.Save())
	assert.True(t, idx.Exists())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a;0\nb\\sc;6\nd;14\n", string(data))

	loaded, err := OpenIndex(path)
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.Len())
	assert.Equal(t, []string{"a", "b;c", "d"}, loaded.Keys())

	offset, ok := loaded.Offset("b;c")
	assert.True(t, ok)
	assert.Equal(t, int64(6), offset)

	_, ok = loaded.Offset("zzz")
	assert.False(t, ok)
}

func TestIndex_AddSameKeyKeepsOrder(t *testing.T) {
	idx, err := OpenIndex(filepath.Join(t.TempDir(), "t.index"))
	require.NoError(t, err)

	idx.Add("a", 1)
	idx.Add("a", 2)
	assert.Equal(t, 1, idx.Len())
	offset, _ := idx.Offset("a")
	assert.Equal(t, int64(2), offset)
}

func TestOpenIndex_BadOffset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.index")
	require.NoError(t, os.WriteFile(path, []byte("a;0\nb;minus\n"), 0600))

	_, err := OpenIndex(path)
	assert.ErrorIs(t, err, domain.ErrCorrupted)
}
