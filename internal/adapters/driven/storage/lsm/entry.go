package lsm

import (
	"cmp"
	"fmt"

	"github.com/custodia-labs/lsmkv/internal/core/ports/driven"
)

// entry is a typed record: a value or a tombstone.
type entry[K cmp.Ordered, V any] struct {
	key     K
	value   V
	deleted bool
}

// codecs converts entries to and from their persisted form.
type codecs[K cmp.Ordered, V any] struct {
	keys   driven.Codec[K]
	values driven.Codec[V]
}

func (c codecs[K, V]) encode(e entry[K, V]) (rawEntry, error) {
	key, err := c.keys.Encode(e.key)
	if err != nil {
		return rawEntry{}, fmt.Errorf("encode key: %w", err)
	}
	if e.deleted {
		return rawEntry{key: key, deleted: true}, nil
	}
	value, err := c.values.Encode(e.value)
	if err != nil {
		return rawEntry{}, fmt.Errorf("encode value: %w", err)
	}
	return rawEntry{key: key, value: value}, nil
}

func (c codecs[K, V]) decode(raw rawEntry) (entry[K, V], error) {
	key, err := c.keys.Decode(raw.key)
	if err != nil {
		return entry[K, V]{}, fmt.Errorf("decode key %q: %w", raw.key, err)
	}
	if raw.deleted {
		return entry[K, V]{key: key, deleted: true}, nil
	}
	value, err := c.values.Decode(raw.value)
	if err != nil {
		return entry[K, V]{}, fmt.Errorf("decode value of %q: %w", raw.key, err)
	}
	return entry[K, V]{key: key, value: value}, nil
}
