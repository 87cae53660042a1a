package visited

import "testing"

func TestMarkIfNew(t *testing.T) {
	f := New(4)

	if !f.MarkIfNew(2) {
		t.Fatal("expected first mark to report new")
	}
	if f.MarkIfNew(2) {
		t.Fatal("expected second mark of same id to report not-new")
	}
	if !f.Visited(2) {
		t.Fatal("expected id 2 to be visited")
	}
	if f.Visited(0) {
		t.Fatal("expected id 0 to be unvisited")
	}
}

func TestResetClearsGeneration(t *testing.T) {
	f := New(4)
	f.MarkIfNew(1)
	f.Reset()

	if !f.MarkIfNew(1) {
		t.Fatal("expected id to be markable again after reset")
	}
}

func TestGenerationWrap(t *testing.T) {
	f := New(4)
	f.gen = ^uint64(0)
	f.stamps[1] = ^uint64(0)

	f.Reset()

	if f.gen != 1 {
		t.Fatalf("expected generation to reset to 1 after overflow, got %d", f.gen)
	}
	if f.Visited(1) {
		t.Fatal("expected stale stamp to be wiped on overflow")
	}
	if !f.MarkIfNew(1) {
		t.Fatal("expected id to be markable after overflow wipe")
	}
}
