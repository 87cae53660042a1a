package graphstore

import "testing"

func TestNewValidatesNeighborBounds(t *testing.T) {
	offsets := []uint64{0, 2, 2, 3}
	neighbors := []uint32{1, 2, 5}
	if _, err := New(offsets, neighbors, []uint32{0}); err == nil {
		t.Fatal("expected out-of-range neighbor to be rejected")
	}
}

func TestNewValidatesEntryPoints(t *testing.T) {
	offsets := []uint64{0, 1, 2, 3}
	neighbors := []uint32{1, 2, 0}
	if _, err := New(offsets, neighbors, []uint32{9}); err == nil {
		t.Fatal("expected out-of-range entry point to be rejected")
	}
}

func TestNeighborsSlicesCorrectly(t *testing.T) {
	offsets := []uint64{0, 2, 3, 3}
	neighbors := []uint32{1, 2, 0}
	s, err := New(offsets, neighbors, []uint32{0})
	if err != nil {
		t.Fatal(err)
	}

	if got := s.Neighbors(0); len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("unexpected neighbors(0): %v", got)
	}
	if got := s.Neighbors(2); len(got) != 0 {
		t.Fatalf("expected no neighbors for node 2, got %v", got)
	}
	if s.N() != 3 {
		t.Fatalf("expected N=3, got %d", s.N())
	}
}
