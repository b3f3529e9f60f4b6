package alloc

import "github.com/joshuapare/tagheap/internal/format"

// classify looks at the footer below bp and the header above it. The
// prologue and epilogue are allocated, so every block has two neighbours.
func (h *Heap) classify(bp, size uint32) coalesceCase {
	_, prevAlloc := format.ReadTag(h.data, format.PrevFooterOffset(bp))
	_, nextAlloc := format.ReadHeader(h.data, bp+size)

	switch {
	case prevAlloc && nextAlloc:
		return bothAllocated
	case prevAlloc:
		return nextFree
	case nextAlloc:
		return prevFree
	default:
		return bothFree
	}
}

// coalesce merges the free, unlisted block bp with its free neighbours and
// leaves the result on the list. It returns the merged block's payload offset.
func (h *Heap) coalesce(bp uint32) uint32 {
	size, _ := format.ReadHeader(h.data, bp)

	switch h.classify(bp, size) {
	case nextFree:
		h.stats.CoalesceNext++
		return h.mergeNext(bp, size)
	case prevFree:
		h.stats.CoalescePrev++
		return h.mergePrev(bp, size)
	case bothFree:
		h.stats.CoalesceBoth++
		return h.mergeBoth(bp, size)
	default:
		h.stats.CoalesceNone++
		return h.mergeNone(bp)
	}
}

func (h *Heap) mergeNone(bp uint32) uint32 {
	h.insertOrdered(bp)
	return bp
}

// mergeNext absorbs the following block; bp inherits its list position.
func (h *Heap) mergeNext(bp, size uint32) uint32 {
	next := bp + size
	nsize, _ := format.ReadHeader(h.data, next)

	h.writeTags(bp, size+nsize, false)
	h.replace(next, bp)
	return bp
}

// mergePrev grows the preceding block, which is already listed.
func (h *Heap) mergePrev(bp, size uint32) uint32 {
	psize := format.TagSize(format.ReadU32(h.data, int(format.PrevFooterOffset(bp))))
	prev := bp - psize

	h.writeTags(prev, psize+size, false)
	return prev
}

// mergeBoth folds bp and the following block into the preceding one. The
// two neighbours are adjacent on the list, so dropping the upper one is enough.
func (h *Heap) mergeBoth(bp, size uint32) uint32 {
	psize := format.TagSize(format.ReadU32(h.data, int(format.PrevFooterOffset(bp))))
	prev := bp - psize
	next := bp + size
	nsize, _ := format.ReadHeader(h.data, next)

	h.unlink(next)
	h.writeTags(prev, psize+size+nsize, false)
	return prev
}
