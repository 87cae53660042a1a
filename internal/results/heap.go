// Package results implements the bounded max-heap of best-so-far
// results, capacity k, keyed by distance with a replace-if-better
// eviction rule.
package results

import (
	"container/heap"
	"sort"
)

// Entry is one result: a corpus id and its squared L2 distance to the
// current query.
type Entry struct {
	ID   uint32
	Dist float32
}

// Heap is a bounded max-heap of Entry, capacity k.
type Heap struct {
	items []Entry
	cap   int
}

// New returns an empty result heap with capacity k.
func New(k int) *Heap {
	return &Heap{items: make([]Entry, 0, k), cap: k}
}

// Reset empties the heap for reuse on the next query.
func (h *Heap) Reset() {
	h.items = h.items[:0]
}

// Len implements sort.Interface / heap.Interface.
func (h *Heap) Len() int { return len(h.items) }

// Less orders by distance descending so index 0 is the current worst.
func (h *Heap) Less(i, j int) bool {
	if h.items[i].Dist != h.items[j].Dist {
		return h.items[i].Dist > h.items[j].Dist
	}
	return h.items[i].ID > h.items[j].ID
}

func (h *Heap) Swap(i, j int) { h.items[i], h.items[j] = h.items[j], h.items[i] }

// Push implements heap.Interface; use Insert instead of calling this
// directly.
func (h *Heap) Push(x any) { h.items = append(h.items, x.(Entry)) }

// Pop implements heap.Interface; use Insert instead of calling this
// directly.
func (h *Heap) Pop() any {
	old := h.items
	n := len(old)
	item := old[n-1]
	h.items = old[:n-1]
	return item
}

// Worst returns the current worst (largest-distance) held entry and
// whether the heap is at capacity.
func (h *Heap) Worst() (Entry, bool) {
	if len(h.items) == 0 {
		return Entry{}, false
	}
	return h.items[0], len(h.items) >= h.cap
}

// Insert adds (id, d) if there is room, or if d improves on the current
// worst when full, evicting that worst entry. Returns true if the
// result set changed.
func (h *Heap) Insert(id uint32, d float32) bool {
	if len(h.items) < h.cap {
		heap.Push(h, Entry{ID: id, Dist: d})
		return true
	}
	if worst, full := h.Worst(); full && d < worst.Dist {
		heap.Pop(h)
		heap.Push(h, Entry{ID: id, Dist: d})
		return true
	}
	return false
}

// Sorted returns a copy of the held entries sorted by distance
// ascending, id ascending on ties. The heap itself is left unchanged;
// call Reset to empty it.
func (h *Heap) Sorted() []Entry {
	out := make([]Entry, len(h.items))
	copy(out, h.items)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Dist != out[j].Dist {
			return out[i].Dist < out[j].Dist
		}
		return out[i].ID < out[j].ID
	})
	return out
}
