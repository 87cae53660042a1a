// Package search implements the beam-search query engine: the driver
// that orchestrates the frontier, result heap, visited filter, and
// catapult buffer over the borrowed payload and graph stores.
package search

import (
	"github.com/mrandl/catapult/internal/catapult"
	"github.com/mrandl/catapult/internal/frontier"
	"github.com/mrandl/catapult/internal/results"
	"github.com/mrandl/catapult/internal/visited"
)

// Params are the per-call parameters a search needs beyond the query
// vector itself.
type Params struct {
	K                int
	BeamWidth        int
	CatapultsEnabled bool
	CatapultCapacity int // C
	CatapultReinject int // R
}

// State is the exclusively-owned, per-worker scratch a single in-flight
// query uses: the frontier, the result heap, the visited filter, and
// the catapult buffer. A State is reused across successive queries;
// reset brings it back to a clean slate (generation bump, length
// resets, ring-buffer head and re-injection bitset reset) and
// reallocates a structure only when W, k or C differ from the previous
// query's.
type State struct {
	nodeCount int

	frontier *frontier.Queue
	results  *results.Heap
	visitedF *visited.Filter
	cat      *catapult.Buffer

	beamWidth        int
	k                int
	catapultCapacity int
}

// NewState allocates a reusable search state whose visited filter is
// sized for a corpus of nodeCount ids. The frontier, result heap and
// catapult buffer are allocated lazily by reset, sized from the Params
// of the query being run.
func NewState(nodeCount int) *State {
	return &State{nodeCount: nodeCount, visitedF: visited.New(nodeCount)}
}

// reset (re)allocates the frontier/results/catapult structures if the
// requested sizes differ from what is currently held, then clears all
// four structures for a new query. Per-query structures are sized once
// per distinct (W, k, C) combination and reused across queries that
// share those parameters, per the "reused across successive queries"
// resource model.
func (s *State) reset(p Params) {
	if s.frontier == nil || s.beamWidth != p.BeamWidth {
		s.frontier = frontier.New(p.BeamWidth)
		s.beamWidth = p.BeamWidth
	}
	if s.results == nil || s.k != p.K {
		s.results = results.New(p.K)
		s.k = p.K
	}
	if s.cat == nil || s.catapultCapacity != p.CatapultCapacity {
		s.cat = catapult.New(p.CatapultCapacity)
		s.catapultCapacity = p.CatapultCapacity
	}

	s.frontier.Reset()
	s.results.Reset()
	s.visitedF.Reset()
	s.cat.Reset()
}
