package trace

import (
	"fmt"
	"time"

	"github.com/joshuapare/tagheap/arena/alloc"
)

// OpKind is a trace operation.
type OpKind byte

const (
	OpAlloc  OpKind = 'a'
	OpResize OpKind = 'r'
	OpFree   OpKind = 'f'
)

func (k OpKind) String() string {
	switch k {
	case OpAlloc:
		return "alloc"
	case OpResize:
		return "resize"
	case OpFree:
		return "free"
	}
	return fmt.Sprintf("OpKind(%q)", byte(k))
}

// Op is one trace line.
type Op struct {
	Kind OpKind
	ID   int
	Size int // unused for OpFree
	Line int // 1-based source line, 0 for generated traces
}

func (o Op) String() string {
	if o.Kind == OpFree {
		return fmt.Sprintf("f %d", o.ID)
	}
	return fmt.Sprintf("%c %d %d", o.Kind, o.ID, o.Size)
}

// Trace is a parsed trace file.
type Trace struct {
	Name              string
	SuggestedHeapSize int
	NumIDs            int
	Weight            int
	Ops               []Op
}

// Result summarizes one replay.
type Result struct {
	Name        string
	Ops         int
	PeakPayload int64   // highest total of live requested bytes
	HeapSize    int     // arena size at the end of the replay
	Utilization float64 // PeakPayload / HeapSize
	Checksum    uint64  // xxhash of the final arena
	Elapsed     time.Duration
	Stats       alloc.Stats
}
