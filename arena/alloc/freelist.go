package alloc

import "github.com/joshuapare/tagheap/internal/format"

// Free-list primitives.
//
// The list is doubly linked through the first two payload words of each
// free block and rooted at the prologue, whose payload offset is 0. A next
// link of 0 ends the list; a prev link of 0 points at the root. The list is
// kept in ascending address order.

func (h *Heap) next(bp uint32) uint32 {
	return format.ReadLink(h.data, format.NextFreeOffset(bp))
}

func (h *Heap) prev(bp uint32) uint32 {
	return format.ReadLink(h.data, format.PrevFreeOffset(bp))
}

func (h *Heap) setNext(bp, v uint32) {
	off := format.NextFreeOffset(bp)
	format.WriteLink(h.data, off, v)
	h.dt.Add(int(off), format.WordSize)
}

func (h *Heap) setPrev(bp, v uint32) {
	off := format.PrevFreeOffset(bp)
	format.WriteLink(h.data, off, v)
	h.dt.Add(int(off), format.WordSize)
}

// link inserts bp directly after pred, which is the root or a listed block.
func (h *Heap) link(pred, bp uint32) {
	succ := h.next(pred)
	h.setPrev(bp, pred)
	h.setNext(bp, succ)
	h.setNext(pred, bp)
	if succ != 0 {
		h.setPrev(succ, bp)
	}
	if h.index != nil {
		h.index.insert(bp)
	}
}

// unlink removes bp from the list. bp's own link words are left as they are.
func (h *Heap) unlink(bp uint32) {
	pred, succ := h.prev(bp), h.next(bp)
	h.setNext(pred, succ)
	if succ != 0 {
		h.setPrev(succ, pred)
	}
	if h.index != nil {
		h.index.remove(bp)
	}
}

// replace puts nb into old's list position. Callers guarantee the swap
// keeps address order: nb is old's split tail, or the merged block that
// now starts just below old.
func (h *Heap) replace(old, nb uint32) {
	pred, succ := h.prev(old), h.next(old)
	h.setPrev(nb, pred)
	h.setNext(nb, succ)
	h.setNext(pred, nb)
	if succ != 0 {
		h.setPrev(succ, nb)
	}
	if h.index != nil {
		h.index.remove(old)
		h.index.insert(nb)
	}
}

// insertOrdered links bp after the last listed block below it.
func (h *Heap) insertOrdered(bp uint32) {
	h.link(h.predecessor(bp), bp)
}

// predecessor returns the listed block with the highest address below bp,
// or the root when there is none.
func (h *Heap) predecessor(bp uint32) uint32 {
	if h.index != nil {
		h.stats.InsertSteps++
		return h.index.floor(bp)
	}
	pred := uint32(format.RootOffset)
	for n := h.next(pred); n != 0 && n < bp; n = h.next(n) {
		h.stats.InsertSteps++
		pred = n
	}
	return pred
}

// findFit returns the first listed block of at least asize bytes, or 0.
func (h *Heap) findFit(asize uint32) uint32 {
	for bp := h.next(format.RootOffset); bp != 0; bp = h.next(bp) {
		h.stats.FitSteps++
		if size, _ := format.ReadHeader(h.data, bp); size >= asize {
			return bp
		}
	}
	return 0
}
