package verify

import (
	"fmt"
	"math"

	"github.com/joshuapare/tagheap/internal/format"
)

// Validation categories reported in ValidationError.Type.
const (
	TypeSentinel = "Sentinel"
	TypeBlock    = "Block"
	TypeFreeList = "FreeList"
)

// ValidationError describes the first invariant violation found.
type ValidationError struct {
	Type    string
	Message string
	Offset  int
	Details map[string]interface{}
}

func (e *ValidationError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("%s at offset 0x%X: %s", e.Type, e.Offset, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Heap validates every invariant in one call.
// Returns the first error encountered, or nil if all checks pass.
func Heap(data []byte) error {
	if err := Sentinels(data); err != nil {
		return err
	}
	free, err := walkBlocks(data)
	if err != nil {
		return err
	}
	return checkFreeList(data, free)
}

// Sentinels checks the prologue and epilogue words and the overall image size.
func Sentinels(data []byte) error {
	if len(data) < format.SentinelSize {
		return &ValidationError{
			Type:    TypeSentinel,
			Message: fmt.Sprintf("image too small: %d bytes (need %d)", len(data), format.SentinelSize),
			Offset:  -1,
		}
	}
	if uint64(len(data)) > math.MaxUint32 {
		return &ValidationError{
			Type:    TypeSentinel,
			Message: fmt.Sprintf("image exceeds 32-bit offsets: %d bytes", len(data)),
			Offset:  -1,
		}
	}
	if len(data)%format.Alignment != 0 {
		return &ValidationError{
			Type:    TypeSentinel,
			Message: fmt.Sprintf("image size %d is not %d-aligned", len(data), format.Alignment),
			Offset:  -1,
		}
	}

	if tag := format.ReadU32(data, format.PrologueFooterOffset); tag != format.PrologueTag {
		return &ValidationError{
			Type:    TypeSentinel,
			Message: "bad prologue footer",
			Offset:  format.PrologueFooterOffset,
			Details: map[string]interface{}{"got": tag, "want": uint32(format.PrologueTag)},
		}
	}
	if prev := format.ReadU32(data, format.RootPrevOffset); prev != 0 {
		return &ValidationError{
			Type:    TypeSentinel,
			Message: fmt.Sprintf("root prev link is 0x%X, want 0", prev),
			Offset:  format.RootPrevOffset,
		}
	}

	epi := int(format.EpilogueOffset(len(data)))
	if tag := format.ReadU32(data, epi); tag != format.EpilogueTag {
		return &ValidationError{
			Type:    TypeSentinel,
			Message: "bad epilogue header",
			Offset:  epi,
			Details: map[string]interface{}{"got": tag, "want": uint32(format.EpilogueTag)},
		}
	}
	return nil
}

// Blocks walks the block chain from the first block to the epilogue.
// Sentinels must already hold.
func Blocks(data []byte) error {
	if err := Sentinels(data); err != nil {
		return err
	}
	_, err := walkBlocks(data)
	return err
}

// walkBlocks returns the payload offsets of all free blocks in address order.
func walkBlocks(data []byte) ([]uint32, error) {
	epi := format.EpilogueOffset(len(data))
	var free []uint32
	prevFree := false

	for bp := uint32(format.FirstBlockOffset); ; {
		hdr := format.HeaderOffset(bp)
		tag := format.ReadU32(data, int(hdr))
		size, allocated := format.TagSize(tag), format.TagAllocated(tag)

		if hdr == epi {
			// Sentinels already checked the tag.
			return free, nil
		}

		if size == 0 {
			return nil, &ValidationError{
				Type:    TypeBlock,
				Message: "zero-size block before the epilogue",
				Offset:  int(bp),
				Details: map[string]interface{}{"epilogue": epi},
			}
		}
		if size < format.MinBlockSize {
			return nil, &ValidationError{
				Type:    TypeBlock,
				Message: fmt.Sprintf("block size %d below minimum %d", size, format.MinBlockSize),
				Offset:  int(bp),
			}
		}
		if tag&^(format.SizeMask|format.AllocBit) != 0 {
			return nil, &ValidationError{
				Type:    TypeBlock,
				Message: fmt.Sprintf("reserved tag bits set: 0x%08X", tag),
				Offset:  int(bp),
			}
		}
		// Next header is at bp+size-4; it must not pass the epilogue.
		if uint64(bp)+uint64(size)-format.WordSize > uint64(epi) {
			return nil, &ValidationError{
				Type:    TypeBlock,
				Message: fmt.Sprintf("block of %d bytes runs past the epilogue", size),
				Offset:  int(bp),
				Details: map[string]interface{}{"size": size, "epilogue": epi},
			}
		}

		if ftr := format.ReadU32(data, int(format.FooterOffset(bp, size))); ftr != tag {
			return nil, &ValidationError{
				Type:    TypeBlock,
				Message: "header does not match footer",
				Offset:  int(bp),
				Details: map[string]interface{}{"header": tag, "footer": ftr},
			}
		}

		if !allocated {
			if prevFree {
				return nil, &ValidationError{
					Type:    TypeBlock,
					Message: "contiguous free blocks escaped coalescing",
					Offset:  int(bp),
				}
			}
			free = append(free, bp)
		}
		prevFree = !allocated
		bp += size
	}
}

// checkFreeList walks the list from the root. free holds the free blocks in
// address order as found by walkBlocks; an ordered list that is in bijection
// with them must visit exactly that sequence.
func checkFreeList(data []byte, free []uint32) error {
	if off, ok := findCycle(data); ok {
		return &ValidationError{
			Type:    TypeFreeList,
			Message: "free list contains a cycle",
			Offset:  int(off),
		}
	}

	prev := uint32(format.RootOffset)
	i := 0
	for bp := format.ReadLink(data, format.NextFreeOffset(format.RootOffset)); bp != 0; {
		if !validLinkTarget(data, bp) {
			return &ValidationError{
				Type:    TypeFreeList,
				Message: fmt.Sprintf("link to 0x%X points outside the block area", bp),
				Offset:  int(prev),
			}
		}
		if i >= len(free) || free[i] != bp {
			return classifyStray(data, free, i, prev, bp)
		}
		if back := format.ReadLink(data, format.PrevFreeOffset(bp)); back != prev {
			return &ValidationError{
				Type:    TypeFreeList,
				Message: fmt.Sprintf("prev link is 0x%X, want 0x%X", back, prev),
				Offset:  int(bp),
			}
		}
		prev = bp
		i++
		bp = format.ReadLink(data, format.NextFreeOffset(bp))
	}

	if i < len(free) {
		return &ValidationError{
			Type:    TypeFreeList,
			Message: "free block missing from the free list",
			Offset:  int(free[i]),
			Details: map[string]interface{}{"listed": i, "free": len(free)},
		}
	}
	return nil
}

// classifyStray explains why bp is not the i-th free block.
func classifyStray(data []byte, free []uint32, i int, prev, bp uint32) error {
	if bp <= prev {
		return &ValidationError{
			Type:    TypeFreeList,
			Message: fmt.Sprintf("free list out of address order: 0x%X after 0x%X", bp, prev),
			Offset:  int(bp),
		}
	}
	for _, f := range free[i:] {
		if f == bp {
			// bp is a later free block, so free[i] was skipped.
			return &ValidationError{
				Type:    TypeFreeList,
				Message: "free block missing from the free list",
				Offset:  int(free[i]),
			}
		}
	}
	if _, allocated := format.ReadHeader(data, bp); allocated {
		return &ValidationError{
			Type:    TypeFreeList,
			Message: "allocated block on the free list",
			Offset:  int(bp),
		}
	}
	return &ValidationError{
		Type:    TypeFreeList,
		Message: "free list entry is not a block boundary",
		Offset:  int(bp),
	}
}

// findCycle runs Floyd's tortoise and hare over the next links. Links that
// leave the block area end the walk; checkFreeList reports those.
func findCycle(data []byte) (uint32, bool) {
	next := func(bp uint32) uint32 {
		if bp == 0 || !validLinkTarget(data, bp) {
			return 0
		}
		return format.ReadLink(data, format.NextFreeOffset(bp))
	}

	slow := format.ReadLink(data, format.NextFreeOffset(format.RootOffset))
	fast := slow
	for {
		if fast = next(fast); fast == 0 {
			return 0, false
		}
		if fast = next(fast); fast == 0 {
			return 0, false
		}
		slow = next(slow)
		if slow == fast {
			return slow, true
		}
	}
}

// validLinkTarget reports whether bp can be the payload offset of a block
// with room for both link words.
func validLinkTarget(data []byte, bp uint32) bool {
	return bp >= format.FirstBlockOffset &&
		format.IsAligned(bp) &&
		uint64(bp)+format.MinBlockSize-format.WordSize <= uint64(format.EpilogueOffset(len(data)))
}
