// Package visited implements the per-query "have I already computed a
// distance for this id" set, using a generation-stamped array so
// clearing between queries is O(1) instead of O(N).
package visited

// Filter answers mark_if_new in O(1) and clears in O(1) by bumping a
// generation counter instead of zeroing the backing array.
type Filter struct {
	stamps []uint64
	gen    uint64
}

// New allocates a filter sized for n ids.
func New(n int) *Filter {
	return &Filter{stamps: make([]uint64, n), gen: 1}
}

// Reset starts a new query generation. O(1) except on the rare
// generation-counter overflow, where it does a single full wipe.
func (f *Filter) Reset() {
	f.gen++
	if f.gen == 0 {
		for i := range f.stamps {
			f.stamps[i] = 0
		}
		f.gen = 1
	}
}

// MarkIfNew marks id as visited in the current generation and reports
// whether it was not already visited this generation.
func (f *Filter) MarkIfNew(id uint32) bool {
	if f.stamps[id] == f.gen {
		return false
	}
	f.stamps[id] = f.gen
	return true
}

// Visited reports whether id has been marked in the current generation,
// without marking it.
func (f *Filter) Visited(id uint32) bool {
	return f.stamps[id] == f.gen
}
