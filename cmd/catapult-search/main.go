// Command catapult-search runs batch beam-search k-ANN queries against
// a memory-mapped proximity graph and prints, one line per query, the
// ids of its k nearest neighbors in ascending-distance order.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/mrandl/catapult/internal/engine"
	"github.com/mrandl/catapult/internal/npy"
	"github.com/mrandl/catapult/internal/report"
	"github.com/mrandl/catapult/internal/workerpool"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr *os.File) int {
	fs := pflag.NewFlagSet("catapult-search", pflag.ContinueOnError)
	fs.SetOutput(stderr)

	queriesPath := fs.StringP("queries", "q", "", "path to a .npy file of query vectors (required)")
	graphPath := fs.StringP("graph", "g", "", "path to the graph metadata file (required)")
	payloadPath := fs.StringP("payload", "p", "", "path to the graph payload file (required)")
	k := fs.Int("num-neighbors", 10, "number of nearest neighbors to return per query")
	beamWidth := fs.Int("beam-width", 64, "beam search frontier width")
	catapults := fs.BoolP("catapults", "c", false, "enable catapult re-injection")
	catapultCapacity := fs.Int("catapult-capacity", 0, "catapult ring buffer capacity (0 derives 4*beam-width)")
	catapultReinject := fs.Int("catapult-reinject", 0, "catapult candidates re-injected per stall (0 derives max(1, beam-width/8))")
	threads := fs.IntP("threads", "t", 1, "number of worker goroutines")
	reportPath := fs.String("report", "", "optional path to write a run summary (default: none)")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *queriesPath == "" || *graphPath == "" || *payloadPath == "" {
		fmt.Fprintln(stderr, "catapult-search: --queries, --graph, and --payload are all required")
		fs.PrintDefaults()
		return 2
	}

	queries, err := npy.ReadFile(*queriesPath)
	if err != nil {
		fmt.Fprintf(stderr, "catapult-search: loading queries: %v\n", err)
		return 3
	}

	e, err := engine.Open(
		engine.WithGraphFile(*graphPath),
		engine.WithPayloadFile(*payloadPath),
		engine.WithDefaults(*k, *beamWidth),
		engine.WithCatapults(*catapults, *catapultCapacity, *catapultReinject),
	)
	if err != nil {
		fmt.Fprintf(stderr, "catapult-search: %v\n", err)
		return exitCodeFor(err)
	}
	defer e.Close()

	if queries.Cols != e.Dimension() {
		fmt.Fprintf(stderr, "catapult-search: query dimension %d does not match corpus dimension %d\n", queries.Cols, e.Dimension())
		return 2
	}

	qp := engine.QueryParams{
		K:                *k,
		BeamWidth:        *beamWidth,
		CatapultsEnabled: catapults,
		CatapultCapacity: *catapultCapacity,
		CatapultReinject: *catapultReinject,
	}

	jobs := make([]workerpool.Job, queries.Rows)
	for i := 0; i < queries.Rows; i++ {
		jobs[i] = workerpool.Job{Index: i, Query: queries.Row(i), Params: qp}
	}

	results := make([][]string, queries.Rows)
	records := make([]report.QueryRecord, 0, queries.Rows)

	for res := range workerpool.Run(e, jobs, *threads) {
		if res.Err != nil {
			fmt.Fprintf(stderr, "catapult-search: query %d: %v\n", res.Index, res.Err)
			return exitCodeFor(res.Err)
		}
		ids := make([]string, len(res.Entries))
		for i, entry := range res.Entries {
			ids[i] = strconv.FormatUint(uint64(entry.ID), 10)
		}
		results[res.Index] = ids
		records = append(records, report.QueryRecord{Latency: res.Latency, Stats: res.Stats})
	}

	w := bufio.NewWriter(stdout)
	for _, ids := range results {
		for i, id := range ids {
			if i > 0 {
				w.WriteByte(' ')
			}
			w.WriteString(id)
		}
		w.WriteByte('\n')
	}
	w.Flush()

	if *reportPath != "" {
		summary := report.Aggregate(records)
		f, err := os.Create(*reportPath)
		if err != nil {
			fmt.Fprintf(stderr, "catapult-search: writing report: %v\n", err)
			return 4
		}
		defer f.Close()
		summary.WriteTo(f)
	}

	return 0
}

func exitCodeFor(err error) int {
	if qerr, ok := err.(*engine.QueryError); ok {
		return qerr.Code.ExitCode()
	}
	return 1
}
