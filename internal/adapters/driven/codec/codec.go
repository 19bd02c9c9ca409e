package codec

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/custodia-labs/lsmkv/internal/core/domain"
	"github.com/custodia-labs/lsmkv/internal/core/ports/driven"
)

// Verify interface compliance.
var (
	_ driven.Codec[string] = String{}
	_ driven.Codec[int]    = Int{}
	_ driven.Codec[any]    = JSON[any]{}
)

// String stores strings as they are.
type String struct{}

// Encode implements driven.Codec.
func (String) Encode(value string) (string, error) {
	return value, nil
}

// Decode implements driven.Codec.
func (String) Decode(data string) (string, error) {
	return data, nil
}

// Int stores integers in base 10.
type Int struct{}

// Encode implements driven.Codec.
func (Int) Encode(value int) (string, error) {
	return strconv.Itoa(value), nil
}

// Decode implements driven.Codec.
func (Int) Decode(data string) (int, error) {
	n, err := strconv.Atoi(data)
	if err != nil {
		return 0, fmt.Errorf("decode int %q: %w", data, domain.ErrCorrupted)
	}
	return n, nil
}

// JSON stores values as compact JSON documents.
type JSON[T any] struct{}

// Encode implements driven.Codec.
func (JSON[T]) Encode(value T) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("encode json: %w", err)
	}
	return string(data), nil
}

// Decode implements driven.Codec.
func (JSON[T]) Decode(data string) (T, error) {
	var value T
	if err := json.Unmarshal([]byte(data), &value); err != nil {
		return value, fmt.Errorf("decode json: %v: %w", err, domain.ErrCorrupted)
	}
	return value, nil
}
