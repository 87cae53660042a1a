// Package workerpool fans queries from an input channel across T
// goroutines. Workers do not hold a search.State of their own: each
// query runs through engine.SearchDetailed, which takes a State from
// the engine's pool for that one query and returns it afterwards, so a
// State is owned by one in-flight query at a time but is not bound to a
// particular worker.
package workerpool

import (
	"sync"
	"time"

	"github.com/mrandl/catapult/internal/engine"
	"github.com/mrandl/catapult/internal/results"
	"github.com/mrandl/catapult/internal/search"
)

// Job is one query to run, tagged with an index so results can be
// reassembled in input order even though completion order is
// unspecified.
type Job struct {
	Index  int
	Query  []float32
	Params engine.QueryParams
}

// Result pairs a Job's index with its outcome, including the latency
// and Stats engine.SearchDetailed reports for it.
type Result struct {
	Index   int
	Entries []results.Entry
	Latency time.Duration
	Stats   search.Stats
	Err     error
}

// Run starts T workers draining jobs and sends one Result per Job to
// the returned channel. It returns immediately; the channel is closed
// once every job has been processed.
func Run(e *engine.Engine, jobs []Job, threads int) <-chan Result {
	if threads < 1 {
		threads = 1
	}

	in := make(chan Job)
	out := make(chan Result, len(jobs))

	var wg sync.WaitGroup
	wg.Add(threads)
	for i := 0; i < threads; i++ {
		go func() {
			defer wg.Done()
			for job := range in {
				entries, latency, stats, err := e.SearchDetailed(job.Query, job.Params)
				out <- Result{Index: job.Index, Entries: entries, Latency: latency, Stats: stats, Err: err}
			}
		}()
	}

	go func() {
		for _, j := range jobs {
			in <- j
		}
		close(in)
	}()

	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}
