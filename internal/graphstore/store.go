// Package graphstore holds the proximity graph's adjacency data: a
// CSR-style offsets/neighbors pair plus the entry-point ids, borrowed
// and read-only for the lifetime of the engine.
package graphstore

import "fmt"

// Store is a borrowed, read-only directed graph over [0, N) node ids.
type Store struct {
	offsets     []uint64 // len N+1, offsets[N] == len(neighbors)
	neighbors   []uint32 // len E, flat adjacency
	entryPoints []uint32 // non-empty, each < N
	n           int
}

// New validates and wraps CSR adjacency data. Every neighbor id must be
// in [0, N); every entry point must be in [0, N).
func New(offsets []uint64, neighbors []uint32, entryPoints []uint32) (*Store, error) {
	if len(offsets) == 0 {
		return nil, fmt.Errorf("graphstore: offsets must have at least one entry")
	}
	n := len(offsets) - 1
	if offsets[n] != uint64(len(neighbors)) {
		return nil, fmt.Errorf("graphstore: offsets[N]=%d does not match len(neighbors)=%d", offsets[n], len(neighbors))
	}
	for i := 1; i < len(offsets); i++ {
		if offsets[i] < offsets[i-1] {
			return nil, fmt.Errorf("graphstore: offsets must be non-decreasing at index %d", i)
		}
	}
	for i, nb := range neighbors {
		if int(nb) >= n {
			return nil, fmt.Errorf("graphstore: neighbor id %d at position %d out of range [0,%d)", nb, i, n)
		}
	}
	if len(entryPoints) == 0 {
		return nil, fmt.Errorf("graphstore: at least one entry point is required")
	}
	for _, e := range entryPoints {
		if int(e) >= n {
			return nil, fmt.Errorf("graphstore: entry point %d out of range [0,%d)", e, n)
		}
	}

	ep := make([]uint32, len(entryPoints))
	copy(ep, entryPoints)

	return &Store{offsets: offsets, neighbors: neighbors, entryPoints: ep, n: n}, nil
}

// N returns the number of nodes in the graph.
func (s *Store) N() int { return s.n }

// Neighbors returns the flat out-neighbor slice for id, in stored order.
func (s *Store) Neighbors(id uint32) []uint32 {
	return s.neighbors[s.offsets[id]:s.offsets[id+1]]
}

// EntryPoints returns the configured entry-point ids, in file order.
func (s *Store) EntryPoints() []uint32 {
	return s.entryPoints
}
