// Package arena provides the contiguous, grow-only byte regions that a
// tagheap allocator lives in.
//
// # Overview
//
// An Arena behaves like the classic sbrk facility: it starts empty, can only
// be extended at the top, and never shrinks. Grow(n) returns the offset of
// the old break, which is where the n new bytes begin. Offsets, not
// addresses, are the currency of this package; the allocator stores them in
// its boundary tags and free-list links so an arena image stays meaningful
// after it is remapped, written to disk, or restored somewhere else.
//
// # Implementations
//
// Memory: a byte slice reserved up front at its maximum size
//
//   - Grow reslices within the reserved capacity, so Bytes never moves
//   - Used by tests, trace replay, and restored images
//
// Mapped: an anonymous mapping reserved with PROT_NONE (linux, darwin)
//
//   - Grow commits whole pages with mprotect
//   - Untouched reservation costs address space only
//
// File: a file-backed shared mapping (linux, darwin)
//
//   - The file is mapped once at the maximum size; Grow extends it with ftruncate
//   - An exclusive flock is held while the arena is open
//   - Flush writes dirty ranges back with msync
//
// # Images
//
// WriteImage and ReadImage store an arena's bytes as a zstd stream so a heap
// can be captured after a replay and inspected later:
//
//	f, _ := os.Create("heap.img.zst")
//	if err := arena.WriteImage(f, a); err != nil {
//	    return err
//	}
//
// # Thread Safety
//
// Arena instances are not thread-safe. A heap and its arena belong to one
// goroutine at a time.
//
// # Related Packages
//
//   - github.com/joshuapare/tagheap/arena/alloc: the boundary-tag allocator
//   - github.com/joshuapare/tagheap/arena/dirty: dirty range tracking for File arenas
//   - github.com/joshuapare/tagheap/arena/verify: heap image validation
package arena
