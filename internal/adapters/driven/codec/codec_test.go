package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lsmkv/internal/core/domain"
)

func TestString_PassesThrough(t *testing.T) {
	var c String

	encoded, err := c.Encode("a;b\nc")
	require.NoError(t, err)
	assert.Equal(t, "a;b\nc", encoded)

	decoded, err := c.Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, "a;b\nc", decoded)
}

func TestInt_Base10(t *testing.T) {
	var c Int

	encoded, err := c.Encode(-42)
	require.NoError(t, err)
	assert.Equal(t, "-42", encoded)

	decoded, err := c.Decode("1337")
	require.NoError(t, err)
	assert.Equal(t, 1337, decoded)
}

func TestInt_DecodeRejectsGarbage(t *testing.T) {
	_, err := Int{}.Decode("twelve")
	assert.ErrorIs(t, err, domain.ErrCorrupted)
}

type point struct {
	X int    `json:"x"`
	Y int    `json:"y"`
	L string `json:"label,omitempty"`
}

func TestJSON_Struct(t *testing.T) {
	var c JSON[point]

	encoded, err := c.Encode(point{X: 1, Y: 2})
	require.NoError(t, err)
	assert.Equal(t, `{"x":1,"y":2}`, encoded)

	decoded, err := c.Decode(`{"x":3,"y":4,"label":"p"}`)
	require.NoError(t, err)
	assert.Equal(t, point{X: 3, Y: 4, L: "p"}, decoded)
}

func TestJSON_DecodeRejectsInvalidDocument(t *testing.T) {
	_, err := JSON[point]{}.Decode(`{"x":`)
	assert.ErrorIs(t, err, domain.ErrCorrupted)
}

func TestJSON_EncodeError(t *testing.T) {
	_, err := JSON[chan int]{}.Encode(make(chan int))
	assert.Error(t, err)
}
