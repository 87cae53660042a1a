// Package engine is the long-lived, read-only handle a host obtains
// once: it owns the borrowed payload/graph stores, a pool of reusable
// per-worker search state, and the Prometheus metrics registry, and
// exposes Search as the entry point the CLI and the worker pool call.
package engine

import (
	"errors"
	"io/fs"
	"sync"
	"time"

	"github.com/mrandl/catapult/internal/diskformat"
	"github.com/mrandl/catapult/internal/graphstore"
	"github.com/mrandl/catapult/internal/obs"
	"github.com/mrandl/catapult/internal/payload"
	"github.com/mrandl/catapult/internal/results"
	"github.com/mrandl/catapult/internal/search"
)

// Config holds engine-wide, load-time configuration.
type Config struct {
	GraphPath   string
	PayloadPath string

	DefaultK         int
	DefaultBeamWidth int
	CatapultsEnabled bool
	CatapultCapacity int // C; 0 means derive as 4*BeamWidth at Search time
	CatapultReinject int // R; 0 means derive as max(1, BeamWidth/8) at Search time
	MetricsEnabled   bool
}

// Option configures an Engine at construction time.
type Option func(*Config) error

// WithGraphFile sets the graph metadata file path.
func WithGraphFile(path string) Option {
	return func(c *Config) error {
		c.GraphPath = path
		return nil
	}
}

// WithPayloadFile sets the graph payload file path.
func WithPayloadFile(path string) Option {
	return func(c *Config) error {
		c.PayloadPath = path
		return nil
	}
}

// WithDefaults sets the default k and beam width used when a caller of
// Search passes zero values.
func WithDefaults(k, beamWidth int) Option {
	return func(c *Config) error {
		c.DefaultK = k
		c.DefaultBeamWidth = beamWidth
		return nil
	}
}

// WithCatapults enables the catapult augmentation and sets its tuning
// constants. A zero capacity/reinject count means "derive from beam
// width at search time" per SPEC_FULL.md's open-question resolution
// (C = 4*W, R = max(1, W/8)).
func WithCatapults(enabled bool, capacity, reinject int) Option {
	return func(c *Config) error {
		c.CatapultsEnabled = enabled
		c.CatapultCapacity = capacity
		c.CatapultReinject = reinject
		return nil
	}
}

// WithMetrics enables or disables Prometheus metrics collection.
func WithMetrics(enabled bool) Option {
	return func(c *Config) error {
		c.MetricsEnabled = enabled
		return nil
	}
}

// Engine is the read-only query handle over one corpus + graph.
type Engine struct {
	payload *payload.Store
	graph   *graphstore.Store
	metrics *obs.Metrics
	config  Config

	closeGraph   func() error
	closePayload func() error

	statePool sync.Pool
}

// Open loads the graph and payload files and returns a ready-to-query
// Engine. The two files are validated against each other (matching node
// counts) before the engine is returned.
func Open(opts ...Option) (*Engine, error) {
	cfg := Config{
		DefaultK:         10,
		DefaultBeamWidth: 64,
		MetricsEnabled:   true,
	}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, wrapError(ErrCodeInvalidParams, err, "applying engine option")
		}
	}
	if cfg.GraphPath == "" || cfg.PayloadPath == "" {
		return nil, newError(ErrCodeInvalidParams, "both graph and payload file paths are required")
	}

	// A failure to open or stat a file is an I/O error; anything else the
	// loaders reject is malformed file content.
	loadErrCode := func(err error) ErrorCode {
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			return ErrCodeIO
		}
		return ErrCodeMalformedInput
	}

	g, closeGraph, err := diskformat.LoadGraph(cfg.GraphPath)
	if err != nil {
		return nil, wrapError(loadErrCode(err), err, "loading graph file %q", cfg.GraphPath)
	}

	p, closePayload, err := diskformat.LoadPayload(cfg.PayloadPath)
	if err != nil {
		closeGraph()
		return nil, wrapError(loadErrCode(err), err, "loading payload file %q", cfg.PayloadPath)
	}

	if err := diskformat.ValidateShapeMatch(g.N(), p.N()); err != nil {
		closeGraph()
		closePayload()
		return nil, wrapError(ErrCodeMalformedInput, err, "validating graph/payload shape match")
	}

	var metrics *obs.Metrics
	if cfg.MetricsEnabled {
		metrics = obs.NewMetrics()
	}

	e := &Engine{
		payload:      p,
		graph:        g,
		metrics:      metrics,
		config:       cfg,
		closeGraph:   closeGraph,
		closePayload: closePayload,
	}
	e.statePool.New = func() any {
		return search.NewState(p.N())
	}

	return e, nil
}

// Close releases the memory-mapped payload and graph files.
func (e *Engine) Close() error {
	var firstErr error
	if err := e.closePayload(); err != nil {
		firstErr = err
	}
	if err := e.closeGraph(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// Dimension returns the corpus's fixed vector dimension.
func (e *Engine) Dimension() int { return e.payload.D() }

// QueryParams are the per-call parameters exposed to a Search caller.
// Zero values mean "use the engine's configured default".
type QueryParams struct {
	K                int
	BeamWidth        int
	CatapultsEnabled *bool // nil means "use engine default"
	CatapultCapacity int
	CatapultReinject int
}

// resolve fills in zero/nil fields from the engine's configured
// defaults and derives catapult constants per SPEC_FULL.md §9 when the
// caller did not supply explicit values.
func (e *Engine) resolve(qp QueryParams) search.Params {
	k := qp.K
	if k == 0 {
		k = e.config.DefaultK
	}
	w := qp.BeamWidth
	if w == 0 {
		w = e.config.DefaultBeamWidth
	}

	catapults := e.config.CatapultsEnabled
	if qp.CatapultsEnabled != nil {
		catapults = *qp.CatapultsEnabled
	}

	c := qp.CatapultCapacity
	if c == 0 {
		c = e.config.CatapultCapacity
	}
	if c == 0 {
		c = 4 * w
	}

	r := qp.CatapultReinject
	if r == 0 {
		r = e.config.CatapultReinject
	}
	if r == 0 {
		r = w / 8
		if r < 1 {
			r = 1
		}
	}

	return search.Params{
		K:                k,
		BeamWidth:        w,
		CatapultsEnabled: catapults,
		CatapultCapacity: c,
		CatapultReinject: r,
	}
}

// Search runs one beam-search query and returns its k nearest
// neighbors, discarding the per-query Stats. See SearchDetailed for
// callers that want the beam-step/stall/catapult counters too.
func (e *Engine) Search(query []float32, qp QueryParams) ([]results.Entry, error) {
	out, _, _, err := e.SearchDetailed(query, qp)
	return out, err
}

// SearchDetailed runs one beam-search query, validating parameters per
// §7 before invoking the core driver, and records Prometheus metrics
// around the call. It additionally returns the query's wall-clock
// latency and Stats for callers building a run-level report.
func (e *Engine) SearchDetailed(query []float32, qp QueryParams) ([]results.Entry, time.Duration, search.Stats, error) {
	params := e.resolve(qp)

	if len(query) != e.payload.D() {
		return nil, 0, search.Stats{}, newError(ErrCodeInvalidParams, "query dimension %d does not match corpus dimension %d", len(query), e.payload.D())
	}
	if params.K <= 0 {
		return nil, 0, search.Stats{}, newError(ErrCodeInvalidParams, "k must be positive, got %d", params.K)
	}
	if params.BeamWidth < params.K {
		return nil, 0, search.Stats{}, newError(ErrCodeInvalidParams, "beam width %d must be >= k %d", params.BeamWidth, params.K)
	}

	st := e.statePool.Get().(*search.State)
	defer e.statePool.Put(st)

	start := time.Now()
	out, stats, err := search.Run(st, e.payload, e.graph, query, params, search.PlainDistance)
	elapsed := time.Since(start)

	if e.metrics != nil {
		e.metrics.Observe(elapsed, stats)
	}

	if err != nil {
		return nil, elapsed, stats, wrapError(ErrCodeInvalidParams, err, "running search")
	}
	return out, elapsed, stats, nil
}
