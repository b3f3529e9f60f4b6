package alloc

import (
	"log/slog"
	"os"

	"github.com/joshuapare/tagheap/arena/dirty"
	"github.com/joshuapare/tagheap/internal/format"
)

// Runtime debug flag for allocation logging - controlled by TAGHEAP_LOG_ALLOC env var.
var logAlloc = os.Getenv("TAGHEAP_LOG_ALLOC") != ""

// Config tunes a Heap.
type Config struct {
	// ChunkSize is the minimum number of bytes the heap grows by when no
	// free block fits. Rounded up to a multiple of 8. Zero selects
	// format.ChunkSize.
	ChunkSize int

	// AddressIndex keeps a B-tree of free block offsets next to the list so
	// ordered insertion finds its predecessor in O(log n) instead of walking
	// the list. The list itself, and every placement decision, is the same.
	AddressIndex bool

	// Dirty receives every byte range the allocator writes. Nil disables tracking.
	Dirty dirty.DirtyTracker

	// Logger receives growth and failure events at Debug level. Nil selects
	// the process logger, or stderr when TAGHEAP_LOG_ALLOC is set.
	Logger *slog.Logger
}

// DefaultConfig is used when New or Open is given a nil config.
var DefaultConfig = Config{
	ChunkSize: format.ChunkSize,
}

// noDirty discards dirty ranges.
type noDirty struct{}

func (noDirty) Add(int, int) {}
