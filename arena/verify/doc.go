// Package verify checks the structural invariants of a tagheap arena image.
//
// # Overview
//
// The allocator keeps its whole state inside the arena: boundary tags on
// every block, the free-list links in free payloads, and the two sentinels.
// This package reads a raw arena image and reports the first place where
// that state is inconsistent. It never modifies the image and never panics,
// whatever the bytes contain. It is used by the allocator's CheckHeap hook,
// by tests after every operation, and by tagheapctl check.
//
// Validation categories:
//   - Sentinels: prologue footer, root prev link, epilogue position
//   - Blocks: size and alignment, header/footer agreement, heap bounds,
//     no two free blocks next to each other
//   - FreeList (checked by Heap after the block walk): no cycles, every
//     entry is a free block, strictly ascending addresses, back links agree,
//     every free block is listed exactly once
//
// # Quick Start
//
//	data := a.Bytes()
//	if err := verify.Heap(data); err != nil {
//	    fmt.Printf("heap corrupt: %v\n", err)
//	}
//
// # ValidationError
//
// All validation functions return *ValidationError on failure:
//
//	type ValidationError struct {
//	    Type    string                 // Error category (e.g., "Block")
//	    Message string                 // Human-readable description
//	    Offset  int                    // Arena offset where the error occurred (-1 if N/A)
//	    Details map[string]interface{} // Additional context
//	}
//
// Example:
//
//	var verr *verify.ValidationError
//	if errors.As(err, &verr) {
//	    fmt.Printf("%s at 0x%X: %s\n", verr.Type, verr.Offset, verr.Message)
//	}
package verify
