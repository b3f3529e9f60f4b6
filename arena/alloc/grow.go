package alloc

import (
	"fmt"

	"github.com/joshuapare/tagheap/arena"
	"github.com/joshuapare/tagheap/internal/format"
)

// extend grows the arena by words words (rounded up to an even count) and
// turns the new bytes into one free block, merged with a free block that
// ended at the old top. It returns the payload offset of the resulting free
// block. On failure nothing in the heap has been written.
func (h *Heap) extend(words int) (uint32, error) {
	size := format.EvenWords(words) * format.WordSize
	if uint64(len(h.data))+uint64(size) > maxArena {
		return 0, fmt.Errorf("%w: heap of %d bytes cannot grow by %d within 32-bit offsets",
			arena.ErrExhausted, len(h.data), size)
	}

	old, err := h.a.Grow(size)
	if err != nil {
		return 0, err
	}
	h.refresh()

	// The old epilogue header becomes the new block's header.
	bp := format.TopPayload(old)
	h.writeTags(bp, uint32(size), false)
	format.WriteEpilogue(h.data, bp+uint32(size))
	h.dt.Add(int(format.EpilogueOffset(len(h.data))), format.WordSize)

	h.stats.GrowCalls++
	h.stats.GrowBytes += int64(size)
	h.log.Debug("grow", "bytes", size, "heap", len(h.data), "grows", h.stats.GrowCalls)

	return h.coalesce(bp), nil
}
