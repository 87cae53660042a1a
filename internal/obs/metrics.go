// Package obs holds the engine's Prometheus instrumentation.
package obs

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mrandl/catapult/internal/search"
)

// Metrics holds the counters and histograms published for one engine.
type Metrics struct {
	QueriesTotal       prometheus.Counter
	BeamStepsTotal     prometheus.Counter
	StallsTotal        prometheus.Counter
	CatapultInjections prometheus.Counter
	DistanceCallsTotal prometheus.Counter
	SearchLatency      prometheus.Histogram
}

// NewMetrics registers and returns a fresh Metrics instance.
func NewMetrics() *Metrics {
	return &Metrics{
		QueriesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "catapult_queries_total",
			Help: "Total search queries served",
		}),
		BeamStepsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "catapult_beam_steps_total",
			Help: "Total beam-search expansion steps across all queries",
		}),
		StallsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "catapult_stalls_total",
			Help: "Total beam steps in which no neighbor improved the frontier",
		}),
		CatapultInjections: promauto.NewCounter(prometheus.CounterOpts{
			Name: "catapult_reinjections_total",
			Help: "Total historical nodes re-injected into the frontier via catapults",
		}),
		DistanceCallsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "catapult_distance_calls_total",
			Help: "Total distance kernel invocations across all queries",
		}),
		SearchLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "catapult_search_latency_seconds",
			Help:    "Per-query beam-search latency",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// Observe records one completed query's stats.
func (m *Metrics) Observe(elapsed time.Duration, stats search.Stats) {
	m.QueriesTotal.Inc()
	m.BeamStepsTotal.Add(float64(stats.BeamSteps))
	m.StallsTotal.Add(float64(stats.Stalls))
	m.CatapultInjections.Add(float64(stats.CatapultInjections))
	m.DistanceCallsTotal.Add(float64(stats.DistanceCalls))
	m.SearchLatency.Observe(elapsed.Seconds())
}
