package alloc

import (
	"fmt"

	"github.com/google/btree"
)

// addrIndex mirrors the free list as a B-tree of payload offsets.
type addrIndex struct {
	t *btree.BTreeG[uint32]
}

func newAddrIndex() *addrIndex {
	return &addrIndex{
		t: btree.NewG[uint32](32, func(a, b uint32) bool { return a < b }),
	}
}

func (x *addrIndex) insert(bp uint32) { x.t.ReplaceOrInsert(bp) }

func (x *addrIndex) remove(bp uint32) { x.t.Delete(bp) }

func (x *addrIndex) len() int { return x.t.Len() }

// floor returns the largest indexed offset below bp, or 0.
func (x *addrIndex) floor(bp uint32) uint32 {
	var pred uint32
	x.t.DescendLessOrEqual(bp, func(v uint32) bool {
		if v == bp {
			return true
		}
		pred = v
		return false
	})
	return pred
}

// checkIndex compares the index with the free list.
func (h *Heap) checkIndex() error {
	if h.index == nil {
		return nil
	}
	var listed []uint32
	h.FreeBlocks(func(b Block) bool {
		listed = append(listed, uint32(b.Off))
		return true
	})
	if len(listed) != h.index.len() {
		return fmt.Errorf("address index holds %d blocks, free list %d", h.index.len(), len(listed))
	}
	i := 0
	var err error
	h.index.t.Ascend(func(v uint32) bool {
		if v != listed[i] {
			err = fmt.Errorf("address index entry %d is 0x%X, free list has 0x%X", i, v, listed[i])
			return false
		}
		i++
		return true
	})
	return err
}
