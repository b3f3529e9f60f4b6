package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/joshuapare/tagheap/arena"
	"github.com/joshuapare/tagheap/arena/dirty"
	"github.com/joshuapare/tagheap/pkg/trace"
)

var (
	replayCheck bool
	replayIndex bool
	replayFile  string
	replayImage string
)

func init() {
	cmd := newReplayCmd()
	cmd.Flags().BoolVar(&replayCheck, "check", false, "Validate the heap after every operation")
	cmd.Flags().BoolVar(&replayIndex, "index", false, "Use the address index for free-list insertion")
	cmd.Flags().StringVar(&replayFile, "file", "", "Replay into a persistent heap file (one trace only)")
	cmd.Flags().StringVar(&replayImage, "image", "", "Write the final heap as a compressed image (one trace only)")
	rootCmd.AddCommand(cmd)
}

func newReplayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay <trace>...",
		Short: "Replay allocation traces and check every payload",
		Long: `The replay command runs each trace on a fresh heap. Every payload is
filled with a pattern derived from its id and checked for alignment,
bounds, overlap with live payloads, and intact content on resize and free.

Example:
  tagheapctl replay traces/*.rep
  tagheapctl replay --check short1.rep
  tagheapctl replay --file heap.bin short1.rep
  tagheapctl replay --image heap.zst random.rep --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd.Context(), args)
		},
	}
	return cmd
}

// replayRow is one line of replay output.
type replayRow struct {
	Trace       string  `json:"trace"`
	Ops         int     `json:"ops"`
	PeakPayload int64   `json:"peak_payload"`
	HeapSize    int     `json:"heap_size"`
	Utilization float64 `json:"utilization"`
	Checksum    string  `json:"checksum"`
	ElapsedUS   int64   `json:"elapsed_us"`
	Grows       int     `json:"grows"`
	Splits      int     `json:"splits"`
	FitSteps    int64   `json:"fit_steps"`
	InsertSteps int64   `json:"insert_steps"`
}

func newReplayRow(res *trace.Result) replayRow {
	return replayRow{
		Trace:       res.Name,
		Ops:         res.Ops,
		PeakPayload: res.PeakPayload,
		HeapSize:    res.HeapSize,
		Utilization: res.Utilization,
		Checksum:    fmt.Sprintf("%016x", res.Checksum),
		ElapsedUS:   res.Elapsed.Microseconds(),
		Grows:       res.Stats.GrowCalls,
		Splits:      res.Stats.SplitCount,
		FitSteps:    res.Stats.FitSteps,
		InsertSteps: res.Stats.InsertSteps,
	}
}

func runReplay(ctx context.Context, paths []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if (replayFile != "" || replayImage != "") && len(paths) != 1 {
		return errors.New("--file and --image take exactly one trace")
	}

	s := cfg
	s.Check = s.Check || replayCheck
	s.AddressIndex = s.AddressIndex || replayIndex

	rows := make([]replayRow, 0, len(paths))
	for _, path := range paths {
		printVerbose("Replaying %s\n", path)

		t, err := trace.ParseFile(path)
		if err != nil {
			return err
		}

		var res *trace.Result
		switch {
		case replayFile != "":
			res, err = replayToFile(ctx, t, s)
		case replayImage != "":
			res, err = replayToImage(ctx, t, s)
		default:
			res, err = trace.Replay(ctx, t, trace.Options{Config: s.heapConfig(), MaxHeap: s.MaxHeap, Check: s.Check})
		}
		if err != nil {
			return err
		}
		rows = append(rows, newReplayRow(res))
	}

	if jsonOut {
		return printJSON(rows)
	}
	printReplayRows(rows)
	return nil
}

// replayToFile runs t in a new heap file and flushes it.
func replayToFile(ctx context.Context, t *trace.Trace, s settings) (*trace.Result, error) {
	if _, err := os.Stat(replayFile); err == nil {
		return nil, fmt.Errorf("%s already exists", replayFile)
	}
	a, err := arena.OpenFile(replayFile, s.MaxHeap)
	if err != nil {
		return nil, err
	}
	defer a.Close()

	tracker := dirty.NewTracker()
	hc := s.heapConfig()
	hc.Dirty = tracker

	res, err := trace.Replay(ctx, t, trace.Options{Config: hc, Arena: a, Check: s.Check})
	if err != nil {
		return nil, err
	}
	printVerbose("Flushing %d dirty ranges to %s\n", tracker.Len(), replayFile)
	if err := a.Flush(ctx, tracker, dirty.FlushAuto); err != nil {
		return nil, fmt.Errorf("failed to flush %s: %w", replayFile, err)
	}
	return res, nil
}

// replayToImage runs t in memory and saves the final heap.
func replayToImage(ctx context.Context, t *trace.Trace, s settings) (*trace.Result, error) {
	m := arena.NewMemory(s.MaxHeap)
	defer m.Close()

	res, err := trace.Replay(ctx, t, trace.Options{Config: s.heapConfig(), Arena: m, Check: s.Check})
	if err != nil {
		return nil, err
	}

	f, err := os.Create(replayImage)
	if err != nil {
		return nil, err
	}
	if err := arena.WriteImage(f, m); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write image %s: %w", replayImage, err)
	}
	return res, f.Close()
}

func printReplayRows(rows []replayRow) {
	printInfo("%-24s %8s %10s %10s %7s %10s  %s\n", "TRACE", "OPS", "PEAK", "HEAP", "UTIL", "TIME", "CHECKSUM")
	var util float64
	for _, r := range rows {
		printInfo("%-24s %8d %10s %10s %6.1f%% %10s  %s\n",
			r.Trace, r.Ops, formatSize(int(r.PeakPayload)), formatSize(r.HeapSize),
			r.Utilization*100, time.Duration(r.ElapsedUS)*time.Microsecond, r.Checksum)
		util += r.Utilization
	}
	if len(rows) > 1 {
		printInfo("%-24s %8s %10s %10s %6.1f%%\n", "mean", "", "", "", util*100/float64(len(rows)))
	}
}
