// Package payload holds the corpus vectors: a single contiguous,
// 64-byte-aligned buffer of N*D float32s, borrowed and read-only for the
// lifetime of the engine.
package payload

import "fmt"

// AlignBytes is the alignment contract the distance kernel relies on.
const AlignBytes = 64

// Store is a borrowed, read-only view over N vectors of dimension D.
type Store struct {
	data []float32 // len == n*d, aligned by the caller/loader
	n    int
	d    int
}

// New wraps a pre-aligned buffer. It does not copy data; the caller owns
// the buffer's lifetime (typically a memory-mapped file, see
// internal/diskformat).
func New(data []float32, n, d int) (*Store, error) {
	if d <= 0 {
		return nil, fmt.Errorf("payload: dimension must be positive, got %d", d)
	}
	if n < 0 {
		return nil, fmt.Errorf("payload: node count must be non-negative, got %d", n)
	}
	if len(data) != n*d {
		return nil, fmt.Errorf("payload: buffer has %d float32s, want n*d=%d", len(data), n*d)
	}
	return &Store{data: data, n: n, d: d}, nil
}

// N returns the number of vectors in the store.
func (s *Store) N() int { return s.n }

// D returns the dimension of every vector in the store.
func (s *Store) D() int { return s.d }

// Vector returns a zero-copy slice view of the vector for id. Bounds are
// trusted: callers (the search driver, via a validated graph store) only
// ever pass ids already checked to be in [0, N).
func (s *Store) Vector(id uint32) []float32 {
	off := int(id) * s.d
	return s.data[off : off+s.d]
}
