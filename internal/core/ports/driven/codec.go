package driven

// Codec converts values to and from their persisted string form.
// Encoded keys must not depend on anything but the key itself: they are
// hashed into Bloom filters and compared against index entries.
type Codec[T any] interface {
	Encode(value T) (string, error)
	Decode(data string) (T, error)
}
