package payload

import "testing"

func TestNewValidatesShape(t *testing.T) {
	if _, err := New(make([]float32, 16), 2, 8); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := New(make([]float32, 15), 2, 8); err == nil {
		t.Fatal("expected error for mismatched buffer size")
	}
	if _, err := New(nil, 0, 8); err != nil {
		t.Fatalf("unexpected error for empty store: %v", err)
	}
	if _, err := New(make([]float32, 8), 1, 0); err == nil {
		t.Fatal("expected error for non-positive dimension")
	}
}

func TestVectorIsZeroCopy(t *testing.T) {
	data := []float32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}
	s, err := New(data, 2, 8)
	if err != nil {
		t.Fatal(err)
	}

	v0 := s.Vector(0)
	v1 := s.Vector(1)

	if len(v0) != 8 || v0[0] != 1 {
		t.Fatalf("unexpected v0: %v", v0)
	}
	if len(v1) != 8 || v1[0] != 9 {
		t.Fatalf("unexpected v1: %v", v1)
	}

	data[0] = 99
	if v0[0] != 99 {
		t.Fatal("Vector should be a zero-copy view into the backing buffer")
	}
}
