// Package alloc implements a boundary-tag allocator with an explicit,
// address-ordered free list and immediate coalescing.
//
// # Overview
//
// A Heap hands out variable-sized, 8-byte-aligned payloads from a single
// arena.Arena. Every block carries identical header and footer tag words
// (size | allocated), so the neighbours of any block can be found in O(1)
// in both directions. Free blocks are chained through their own payloads
// into a doubly linked list kept in ascending address order. Freed blocks
// are merged with free neighbours immediately, so no two free blocks are
// ever adjacent.
//
// # Heap Layout
//
//	offset 0        8    12   16
//	| next | prev | 4/1 | hdr | payload ... | ftr | hdr | ... | 0/1 |
//	 \_____ prologue ___/                                       epilogue
//
// The prologue doubles as the free-list root (payload offset 0). The
// epilogue is a zero-size allocated header at the very end of the arena;
// growing the arena turns it into the header of the new free block.
//
// Pointers are Ptr values: payload offsets from the start of the arena.
// Offsets, not addresses, are stored in the tags and links, so a heap image
// can be flushed to a file or saved with arena.WriteImage and reopened with
// Open.
//
// # Allocation
//
//   - Request size is adjusted to a block size: 16 for 1..8 bytes, else the
//     8-aligned size plus 8 bytes of tags
//   - First fit: the free list is scanned from the lowest address
//   - A remainder of 16 bytes or more is split off as a free block that
//     takes the old block's list position; otherwise the whole block is used
//   - On a miss the arena grows by max(block size, Config.ChunkSize)
//
// # Usage Example
//
//	h, err := alloc.New(arena.NewMemory(0), nil)
//	if err != nil {
//	    return err
//	}
//
//	p, err := h.Alloc(100)
//	if err != nil {
//	    return err
//	}
//	copy(h.Bytes(p), payload)
//
//	p, err = h.Resize(p, 400)
//	if err != nil {
//	    return err
//	}
//	_ = h.Free(p)
//
// # Debugging
//
// CheckHeap runs the arena/verify checks over the live heap. Set
// TAGHEAP_LOG_ALLOC=1 to trace growth and splits on stderr.
//
// # Thread Safety
//
// A Heap is NOT thread-safe. Independent heaps on independent arenas can be
// used from different goroutines.
//
// # Related Packages
//
//   - github.com/joshuapare/tagheap/arena: arena implementations and images
//   - github.com/joshuapare/tagheap/arena/dirty: dirty tracking for File arenas
//   - github.com/joshuapare/tagheap/arena/verify: heap validation
//   - github.com/joshuapare/tagheap/internal/format: tag codec
package alloc
