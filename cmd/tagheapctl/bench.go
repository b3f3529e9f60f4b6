package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/joshuapare/tagheap/pkg/trace"
)

var (
	benchRuns    int
	benchWorkers int
)

func init() {
	cmd := newBenchCmd()
	cmd.Flags().IntVar(&benchRuns, "runs", 5, "Replays per trace and insertion mode")
	cmd.Flags().IntVar(&benchWorkers, "workers", 0, "Parallel replays (default from config, else GOMAXPROCS)")
	rootCmd.AddCommand(cmd)
}

func newBenchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bench <trace>...",
		Short: "Benchmark traces with list-walk and indexed insertion",
		Long: `The bench command replays each trace several times on independent
heaps, once with free-list insertion by list walk and once with the address
index, and reports throughput for both. Both modes must leave identical heaps.

Example:
  tagheapctl bench traces/*.rep
  tagheapctl bench --runs 20 --workers 4 random.rep --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(cmd.Context(), args)
		},
	}
	return cmd
}

// benchRow reports one trace in one insertion mode.
type benchRow struct {
	Trace       string  `json:"trace"`
	Indexed     bool    `json:"indexed"`
	Runs        int     `json:"runs"`
	Ops         int     `json:"ops"`
	MeanUS      int64   `json:"mean_us"`
	MinUS       int64   `json:"min_us"`
	KopsPerSec  float64 `json:"kops_per_sec"`
	Utilization float64 `json:"utilization"`
	InsertSteps int64   `json:"insert_steps"`
	Checksum    string  `json:"checksum"`
}

func runBench(ctx context.Context, paths []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if benchRuns < 1 {
		return fmt.Errorf("--runs must be at least 1, got %d", benchRuns)
	}
	workers := cfg.Workers
	if benchWorkers > 0 {
		workers = benchWorkers
	}

	var rows []benchRow
	for _, path := range paths {
		t, err := trace.ParseFile(path)
		if err != nil {
			return err
		}
		linear, err := benchTrace(ctx, t, false, workers)
		if err != nil {
			return err
		}
		indexed, err := benchTrace(ctx, t, true, workers)
		if err != nil {
			return err
		}
		if linear.Checksum != indexed.Checksum {
			return fmt.Errorf("%s: indexed insertion changed the heap (%s vs %s)",
				t.Name, linear.Checksum, indexed.Checksum)
		}
		rows = append(rows, linear, indexed)
	}

	if jsonOut {
		return printJSON(rows)
	}
	printInfo("%-24s %-7s %5s %8s %10s %10s %10s %12s\n",
		"TRACE", "MODE", "RUNS", "OPS", "MEAN", "MIN", "KOPS/S", "INSERT-STEPS")
	for _, r := range rows {
		mode := "walk"
		if r.Indexed {
			mode = "index"
		}
		printInfo("%-24s %-7s %5d %8d %10s %10s %10.1f %12d\n",
			r.Trace, mode, r.Runs, r.Ops,
			time.Duration(r.MeanUS)*time.Microsecond, time.Duration(r.MinUS)*time.Microsecond,
			r.KopsPerSec, r.InsertSteps)
	}
	return nil
}

// benchTrace replays t benchRuns times, up to workers at once.
func benchTrace(ctx context.Context, t *trace.Trace, indexed bool, workers int) (benchRow, error) {
	s := cfg
	s.AddressIndex = indexed

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))

	var mu sync.Mutex
	results := make([]*trace.Result, 0, benchRuns)
	for range benchRuns {
		g.Go(func() error {
			res, err := trace.Replay(ctx, t, trace.Options{Config: s.heapConfig(), MaxHeap: s.MaxHeap})
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			results = append(results, res)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return benchRow{}, err
	}

	row := benchRow{
		Trace:       t.Name,
		Indexed:     indexed,
		Runs:        len(results),
		Ops:         len(t.Ops),
		Utilization: results[0].Utilization,
		InsertSteps: results[0].Stats.InsertSteps,
		Checksum:    fmt.Sprintf("%016x", results[0].Checksum),
	}
	var total, fastest time.Duration
	for i, res := range results {
		total += res.Elapsed
		if i == 0 || res.Elapsed < fastest {
			fastest = res.Elapsed
		}
	}
	mean := total / time.Duration(len(results))
	row.MeanUS = mean.Microseconds()
	row.MinUS = fastest.Microseconds()
	if mean > 0 {
		row.KopsPerSec = float64(row.Ops) / mean.Seconds() / 1000
	}
	return row, nil
}
