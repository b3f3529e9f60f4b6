package main

import (
	"fmt"
	"math/rand"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/tagheap/pkg/trace"
)

var (
	genIDs     int
	genOps     int
	genMaxSize string
	genSeed    int64
)

func init() {
	cmd := newGenCmd()
	cmd.Flags().IntVar(&genIDs, "ids", 100, "Number of distinct block ids")
	cmd.Flags().IntVar(&genOps, "ops", 1000, "Number of operations before the final frees")
	cmd.Flags().StringVar(&genMaxSize, "max-size", "4KB", "Largest request size")
	cmd.Flags().Int64Var(&genSeed, "seed", 1, "Random seed")
	rootCmd.AddCommand(cmd)
}

func newGenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gen <output>",
		Short: "Generate a random allocation trace",
		Long: `The gen command writes a random, well-formed trace: ids are only
resized or freed while live, and every block is freed at the end.

Example:
  tagheapctl gen --ids 500 --ops 20000 --max-size 16KB random.rep`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGen(args[0])
		},
	}
	return cmd
}

func runGen(out string) error {
	if genIDs < 1 || genOps < 0 {
		return fmt.Errorf("need --ids >= 1 and --ops >= 0, got %d and %d", genIDs, genOps)
	}
	maxSize, err := parseSize(genMaxSize)
	if err != nil {
		return fmt.Errorf("--max-size: %w", err)
	}
	if maxSize < 1 {
		return fmt.Errorf("--max-size must be at least 1 byte")
	}

	t := trace.Random(rand.New(rand.NewSource(genSeed)), genIDs, genOps, maxSize)

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if _, err := t.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", out, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	printVerbose("Wrote %d ops over %d ids to %s\n", len(t.Ops), t.NumIDs, out)
	return nil
}
