// Package report aggregates per-query search statistics into a
// run-level summary and prints it in the tabwriter-aligned style used
// throughout the example pack's CLIs.
package report

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/mrandl/catapult/internal/search"
)

// QueryRecord is one completed query's timing and stats, as produced
// by the worker pool.
type QueryRecord struct {
	Latency time.Duration
	Stats   search.Stats
}

// Summary holds the aggregated counters and latency percentiles for a
// batch of queries.
type Summary struct {
	Count int

	TotalBeamSteps          int64
	TotalStalls             int64
	TotalCatapultInjections int64
	TotalDistanceCalls      int64

	MeanLatency time.Duration
	P50Latency  time.Duration
	P95Latency  time.Duration
	P99Latency  time.Duration
	MaxLatency  time.Duration
}

// Aggregate computes a Summary over a batch of completed queries.
// The input slice is not mutated; percentile computation sorts a copy.
func Aggregate(records []QueryRecord) Summary {
	var s Summary
	s.Count = len(records)
	if s.Count == 0 {
		return s
	}

	latencies := make([]time.Duration, s.Count)
	var total time.Duration
	for i, r := range records {
		s.TotalBeamSteps += int64(r.Stats.BeamSteps)
		s.TotalStalls += int64(r.Stats.Stalls)
		s.TotalCatapultInjections += int64(r.Stats.CatapultInjections)
		s.TotalDistanceCalls += int64(r.Stats.DistanceCalls)
		latencies[i] = r.Latency
		total += r.Latency
		if r.Latency > s.MaxLatency {
			s.MaxLatency = r.Latency
		}
	}
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	s.MeanLatency = total / time.Duration(s.Count)
	s.P50Latency = percentile(latencies, 0.50)
	s.P95Latency = percentile(latencies, 0.95)
	s.P99Latency = percentile(latencies, 0.99)
	return s
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(p * float64(len(sorted)))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// WriteTo prints the summary as an aligned key/value table.
func (s Summary) WriteTo(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "queries\t%d\n", s.Count)
	fmt.Fprintf(tw, "beam steps (total)\t%d\n", s.TotalBeamSteps)
	fmt.Fprintf(tw, "stalls (total)\t%d\n", s.TotalStalls)
	fmt.Fprintf(tw, "catapult injections (total)\t%d\n", s.TotalCatapultInjections)
	fmt.Fprintf(tw, "distance calls (total)\t%d\n", s.TotalDistanceCalls)
	fmt.Fprintf(tw, "latency mean\t%s\n", s.MeanLatency)
	fmt.Fprintf(tw, "latency p50\t%s\n", s.P50Latency)
	fmt.Fprintf(tw, "latency p95\t%s\n", s.P95Latency)
	fmt.Fprintf(tw, "latency p99\t%s\n", s.P99Latency)
	fmt.Fprintf(tw, "latency max\t%s\n", s.MaxLatency)
	return tw.Flush()
}
