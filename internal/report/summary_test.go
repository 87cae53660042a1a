package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/mrandl/catapult/internal/search"
)

func TestAggregateEmpty(t *testing.T) {
	s := Aggregate(nil)
	if s.Count != 0 {
		t.Fatalf("expected zero count, got %d", s.Count)
	}
}

func TestAggregateSumsAndPercentiles(t *testing.T) {
	records := []QueryRecord{
		{Latency: 10 * time.Millisecond, Stats: search.Stats{BeamSteps: 3, Stalls: 1, CatapultInjections: 0, DistanceCalls: 12}},
		{Latency: 20 * time.Millisecond, Stats: search.Stats{BeamSteps: 5, Stalls: 0, CatapultInjections: 2, DistanceCalls: 18}},
		{Latency: 30 * time.Millisecond, Stats: search.Stats{BeamSteps: 4, Stalls: 2, CatapultInjections: 1, DistanceCalls: 15}},
	}

	s := Aggregate(records)
	if s.Count != 3 {
		t.Fatalf("expected count 3, got %d", s.Count)
	}
	if s.TotalBeamSteps != 12 {
		t.Fatalf("expected total beam steps 12, got %d", s.TotalBeamSteps)
	}
	if s.TotalStalls != 3 {
		t.Fatalf("expected total stalls 3, got %d", s.TotalStalls)
	}
	if s.TotalCatapultInjections != 3 {
		t.Fatalf("expected total catapult injections 3, got %d", s.TotalCatapultInjections)
	}
	if s.MaxLatency != 30*time.Millisecond {
		t.Fatalf("expected max latency 30ms, got %v", s.MaxLatency)
	}
	if s.MeanLatency != 20*time.Millisecond {
		t.Fatalf("expected mean latency 20ms, got %v", s.MeanLatency)
	}
	if s.P50Latency != 20*time.Millisecond {
		t.Fatalf("expected p50 latency 20ms, got %v", s.P50Latency)
	}
	if s.P99Latency != 30*time.Millisecond {
		t.Fatalf("expected p99 latency 30ms, got %v", s.P99Latency)
	}
}

func TestWriteToProducesTable(t *testing.T) {
	s := Aggregate([]QueryRecord{{Latency: time.Millisecond, Stats: search.Stats{BeamSteps: 1, DistanceCalls: 2}}})
	var buf bytes.Buffer
	if err := s.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "queries") || !strings.Contains(out, "latency p99") {
		t.Fatalf("unexpected output: %q", out)
	}
}
