package alloc

import "github.com/joshuapare/tagheap/internal/format"

// Ptr is a payload offset relative to the start of the arena.
type Ptr uint32

// Nil is the null pointer. Offset 0 is the free-list root and is never
// returned as a payload.
const Nil Ptr = 0

// Block is a decoded view of one block's header.
type Block struct {
	Off       Ptr    // payload offset
	Size      uint32 // total size, header and footer included
	Allocated bool
}

// Next returns the payload offset of the physically following block.
func (b Block) Next() Ptr { return b.Off + Ptr(b.Size) }

// PayloadSize returns the usable bytes of the block.
func (b Block) PayloadSize() int { return int(b.Size) - format.Overhead }

// coalesceCase classifies a newly freed block by its neighbours.
type coalesceCase uint8

const (
	bothAllocated coalesceCase = iota
	nextFree
	prevFree
	bothFree
)

func (c coalesceCase) String() string {
	switch c {
	case bothAllocated:
		return "both-allocated"
	case nextFree:
		return "next-free"
	case prevFree:
		return "prev-free"
	case bothFree:
		return "both-free"
	}
	return "unknown"
}
