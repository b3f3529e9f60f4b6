package main

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/joshuapare/tagheap/arena/verify"
)

func init() {
	rootCmd.AddCommand(newCheckCmd())
}

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <heap>...",
		Short: "Validate heap files and images",
		Long: `The check command validates the sentinels, block chain, and free
list of each heap and reports the first violation found in each.

Example:
  tagheapctl check heap.bin
  tagheapctl check *.zst --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(args)
		},
	}
	return cmd
}

type checkResult struct {
	Path    string                 `json:"path"`
	OK      bool                   `json:"ok"`
	Type    string                 `json:"type,omitempty"`
	Offset  int                    `json:"offset,omitempty"`
	Message string                 `json:"message,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func runCheck(paths []string) error {
	results := make([]checkResult, 0, len(paths))
	failed := 0
	for _, path := range paths {
		r := checkOne(path)
		if !r.OK {
			failed++
		}
		results = append(results, r)
	}

	if jsonOut {
		if err := printJSON(results); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			if r.OK {
				printInfo("%s: OK\n", r.Path)
				continue
			}
			printInfo("%s: %s\n", r.Path, r.Message)
			keys := make([]string, 0, len(r.Details))
			for k := range r.Details {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				printVerbose("  %s: %v\n", k, r.Details[k])
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d heaps failed validation", failed, len(paths))
	}
	return nil
}

func checkOne(path string) checkResult {
	printVerbose("Checking %s\n", path)

	oh, err := openHeap(path, cfg)
	if err == nil {
		err = oh.Heap.CheckHeap("check")
		oh.Close()
	}
	if err == nil {
		return checkResult{Path: path, OK: true}
	}

	r := checkResult{Path: path, Message: err.Error()}
	var ve *verify.ValidationError
	if errors.As(err, &ve) {
		r.Type = ve.Type
		r.Offset = ve.Offset
		r.Details = ve.Details
	}
	return r
}
