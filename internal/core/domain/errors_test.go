package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrAlreadyExists", ErrAlreadyExists},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrNotSupported", ErrNotSupported},
		{"ErrCorrupted", ErrCorrupted},
		{"ErrClosed", ErrClosed},
		{"ErrTableExists", ErrTableExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestErrNotFound(t *testing.T) {
	assert.Equal(t, "not found", ErrNotFound.Error())
	assert.True(t, errors.Is(ErrNotFound, ErrNotFound))
	assert.False(t, errors.Is(ErrNotFound, ErrAlreadyExists))
}

func TestErrors_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("reading sstable-1.data: %w", ErrCorrupted)

	assert.True(t, errors.Is(wrapped, ErrCorrupted))
	assert.False(t, errors.Is(wrapped, ErrNotFound))
	assert.Contains(t, wrapped.Error(), "corrupted data")
}
