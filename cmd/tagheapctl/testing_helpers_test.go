package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// tracePath returns a trace from the trace package's testdata.
func tracePath(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join("..", "..", "pkg", "trace", "testdata", name)
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("test trace not found: %s", path)
	}
	return path
}

// writeTrace writes src to a trace file in a temp dir.
func writeTrace(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "t.rep")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

// resetFlags restores every command flag and the settings to defaults.
func resetFlags() {
	verbose, quiet, jsonOut = false, false, false
	cfg = defaultSettings()
	replayCheck, replayIndex, replayFile, replayImage = false, false, "", ""
	benchRuns, benchWorkers = 5, 0
	dumpFreeOnly, dumpLimit = false, 0
	genIDs, genOps, genMaxSize, genSeed = 100, 1000, "4KB", 1
}

// captureOutput captures stdout while running a function
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	origStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	done := make(chan []byte)
	go func() {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r)
		done <- buf.Bytes()
	}()

	fnErr := fn()

	w.Close()
	os.Stdout = origStdout
	return string(<-done), fnErr
}
