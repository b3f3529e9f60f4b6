package alloc

import "github.com/joshuapare/tagheap/internal/format"

// place allocates asize bytes at the start of the free block bp. A
// remainder of at least MinBlockSize becomes a free block that takes bp's
// place in the list; a smaller remainder stays inside the allocated block.
func (h *Heap) place(bp, asize uint32) {
	size, _ := format.ReadHeader(h.data, bp)

	if rem := size - asize; rem >= format.MinBlockSize {
		h.writeTags(bp, asize, true)
		tail := bp + asize
		h.writeTags(tail, rem, false)
		h.replace(bp, tail)

		h.stats.SplitCount++
		h.stats.BytesAllocated += int64(asize)
		if logAlloc {
			h.log.Debug("split", "block", bp, "size", size, "alloc", asize, "remainder", rem)
		}
		return
	}

	h.unlink(bp)
	h.writeTags(bp, size, true)
	h.stats.BytesAllocated += int64(size)
}
