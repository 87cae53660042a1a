package search

import (
	"fmt"

	"github.com/mrandl/catapult/internal/graphstore"
	"github.com/mrandl/catapult/internal/kernel"
	"github.com/mrandl/catapult/internal/payload"
	"github.com/mrandl/catapult/internal/results"
)

// DistanceFunc computes the distance between query and the vector of
// id. Production callers pass kernel.L2Squared wrapped to discard id;
// tests pass a kernel.CountingKernel.Distance to assert visited-once.
type DistanceFunc func(id uint32, query, vec []float32) float32

// PlainDistance adapts kernel.L2Squared to the DistanceFunc shape.
func PlainDistance(_ uint32, query, vec []float32) float32 {
	return kernel.L2Squared(query, vec)
}

// Stats reports per-query counters, surfaced to internal/obs and
// internal/report.
type Stats struct {
	BeamSteps          int
	Stalls             int
	CatapultInjections int
	DistanceCalls      int
}

// Run executes one beam-search query against p/g using s as scratch
// state, and returns the top-k results sorted distance-ascending,
// id-ascending on ties, plus stats about the run.
//
// query must have length p.D(). params.K must be positive and
// params.BeamWidth must be >= params.K; these are contract violations
// the caller (internal/engine) validates before calling Run.
func Run(s *State, p *payload.Store, g *graphstore.Store, query []float32, params Params, dist DistanceFunc) ([]results.Entry, Stats, error) {
	if len(query) != p.D() {
		return nil, Stats{}, fmt.Errorf("search: query dimension %d does not match payload dimension %d", len(query), p.D())
	}
	if params.K <= 0 {
		return nil, Stats{}, fmt.Errorf("search: k must be positive, got %d", params.K)
	}
	if params.BeamWidth < params.K {
		return nil, Stats{}, fmt.Errorf("search: beam width %d must be >= k %d", params.BeamWidth, params.K)
	}

	s.reset(params)

	var stats Stats
	countDistance := func(id uint32) float32 {
		stats.DistanceCalls++
		return dist(id, query, p.Vector(id))
	}

	for _, e := range g.EntryPoints() {
		if s.visitedF.MarkIfNew(e) {
			d := countDistance(e)
			s.frontier.Insert(e, d)
			s.results.Insert(e, d)
		}
	}

	// justInjected suspends the optimistic prune below for the one loop
	// iteration that follows a catapult injection. Without this, a node
	// the catapult just rescued from a frontier-admission rejection could
	// be farther than the current worst result and end the search on the
	// very next check, before ever being expanded. That iteration pops
	// the best unexpanded entry, which is the injected node only when no
	// closer entry is still unexpanded.
	justInjected := false

	for {
		if s.frontier.AllExpanded() {
			break
		}

		worstResult, resultsFull := s.results.Worst()
		bestUnexpanded := s.frontier.PeekBestUnexpandedDistance()
		if resultsFull && bestUnexpanded > worstResult.Dist && !justInjected {
			break
		}

		id, _, ok := s.frontier.PopNextUnexpanded()
		if !ok {
			break
		}
		stats.BeamSteps++

		improved := false
		for _, n := range g.Neighbors(id) {
			if !s.visitedF.MarkIfNew(n) {
				continue
			}
			d := countDistance(n)
			s.results.Insert(n, d)
			if d < s.frontier.WorstDistance() {
				if s.frontier.Insert(n, d) {
					improved = true
				}
			} else if params.CatapultsEnabled {
				// Visited but turned away by the frontier's admission
				// cutoff: a dead end for now, but worth remembering as a
				// shortcut back into this region if the beam stalls.
				s.cat.Append(n, d)
			}
		}

		justInjected = false
		if !improved {
			stats.Stalls++
			if params.CatapultsEnabled {
				injected := runCatapultInjection(s, params)
				stats.CatapultInjections += injected
				justInjected = injected > 0
			}
		}
	}

	return s.results.Sorted(), stats, nil
}

// runCatapultInjection force-admits up to R historical trajectory entries
// into the frontier using their already-computed distance, with no
// further distance calls (preserving the visited-once invariant). These
// entries lost the frontier's normal admission cutoff once already, and
// that same cutoff can never relax for them later: WorstDistance only
// shrinks as the frontier fills with better candidates, so re-running
// the ordinary Insert check would reject them again every time. Forcing
// admission is the deliberate escape hatch — the frontier temporarily
// holds a candidate that looks worse by the greedy metric, on the bet
// that its unexplored neighborhood reaches somewhere the current
// cluster cannot.
func runCatapultInjection(s *State, params Params) int {
	candidates := s.cat.SelectForReinjection(params.CatapultReinject)
	for _, c := range candidates {
		s.frontier.ForceInsert(c.ID, c.Dist)
	}
	return len(candidates)
}
