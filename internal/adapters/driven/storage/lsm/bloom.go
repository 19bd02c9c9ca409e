package lsm

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/custodia-labs/lsmkv/internal/core/domain"
)

// BloomFilter answers "definitely absent" or "maybe present" for keys.
type BloomFilter struct {
	path   string
	bits   []uint64
	m      uint64
	k      int
	filled bool
}

// NewBloomFilter sizes an empty filter for expected keys at the given
// false positive rate.
func NewBloomFilter(path string, expected int, fpRate float64) *BloomFilter {
	m, k := bloomParameters(expected, fpRate)
	return &BloomFilter{
		path: path,
		bits: make([]uint64, (m+63)/64),
		m:    m,
		k:    k,
	}
}

// OpenBloomFilter loads the filter stored at path. A missing file yields
// an empty filter sized for expected keys.
func OpenBloomFilter(path string, expected int, fpRate float64) (*BloomFilter, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return NewBloomFilter(path, expected, fpRate), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read bloom filter: %w", err)
	}

	header, body, _ := strings.Cut(strings.TrimSpace(string(data)), "\n")
	fields := strings.Fields(header)
	if len(fields) != 2 {
		return nil, fmt.Errorf("bloom filter %s: bad header %q: %w", path, header, domain.ErrCorrupted)
	}
	m, err := strconv.ParseUint(fields[0], 10, 64)
	if err != nil || m == 0 {
		return nil, fmt.Errorf("bloom filter %s: bad size %q: %w", path, fields[0], domain.ErrCorrupted)
	}
	k, err := strconv.Atoi(fields[1])
	if err != nil || k < 1 {
		return nil, fmt.Errorf("bloom filter %s: bad hash count %q: %w", path, fields[1], domain.ErrCorrupted)
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(body))
	if err != nil {
		return nil, fmt.Errorf("bloom filter %s: %v: %w", path, err, domain.ErrCorrupted)
	}
	words := int((m + 63) / 64)
	if len(raw) != words*8 {
		return nil, fmt.Errorf("bloom filter %s: %d bytes for %d bits: %w", path, len(raw), m, domain.ErrCorrupted)
	}

	f := &BloomFilter{path: path, bits: make([]uint64, words), m: m, k: k}
	for i := range f.bits {
		f.bits[i] = binary.LittleEndian.Uint64(raw[i*8:])
		if f.bits[i] != 0 {
			f.filled = true
		}
	}
	return f, nil
}

// bloomParameters returns the bit count m and hash count k for n keys at
// false positive rate p.
func bloomParameters(n int, p float64) (uint64, int) {
	if n < 1 {
		n = 1
	}
	if p <= 0 || p >= 1 {
		p = 0.01
	}
	m := math.Ceil(-float64(n) * math.Log(p) / (math.Ln2 * math.Ln2))
	if m < 1 {
		m = 1
	}
	k := int(math.Round(m / float64(n) * math.Ln2))
	if k < 1 {
		k = 1
	}
	return uint64(m), k
}

func (f *BloomFilter) positions(key string, fn func(word int, mask uint64) bool) bool {
	h := xxhash.Sum64String(key)
	h1, h2 := h&math.MaxUint32, h>>32
	for i := 0; i < f.k; i++ {
		bit := (h1 + uint64(i)*h2) % f.m
		if !fn(int(bit/64), 1<<(bit%64)) {
			return false
		}
	}
	return true
}

// Add records key.
func (f *BloomFilter) Add(key string) {
	f.positions(key, func(word int, mask uint64) bool {
		f.bits[word] |= mask
		return true
	})
	f.filled = true
}

// MayContain reports whether key might have been added.
func (f *BloomFilter) MayContain(key string) bool {
	if !f.filled {
		return false
	}
	return f.positions(key, func(word int, mask uint64) bool {
		return f.bits[word]&mask != 0
	})
}

// Bits returns the filter size in bits.
func (f *BloomFilter) Bits() uint64 {
	return f.m
}

// Hashes returns the number of hash functions.
func (f *BloomFilter) Hashes() int {
	return f.k
}

// Save writes the filter to its path.
func (f *BloomFilter) Save() error {
	raw := make([]byte, len(f.bits)*8)
	for i, w := range f.bits {
		binary.LittleEndian.PutUint64(raw[i*8:], w)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%d %d\n", f.m, f.k)
	buf.WriteString(base64.StdEncoding.EncodeToString(raw))
	buf.WriteByte('\n')
	return writeFileAtomic(f.path, buf.Bytes())
}
