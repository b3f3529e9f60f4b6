package alloc

import "errors"

var (
	// ErrNoSpace indicates that no free block was large enough and growing the arena failed.
	ErrNoSpace = errors.New("alloc: no free block large enough")

	// ErrTooLarge indicates a request that cannot be expressed as a block size.
	ErrTooLarge = errors.New("alloc: request too large")

	// ErrBadPtr indicates a pointer outside the heap's block area or not 8-byte aligned.
	ErrBadPtr = errors.New("alloc: bad pointer")

	// ErrInit indicates the arena could not hold the initial heap.
	ErrInit = errors.New("alloc: heap initialization failed")

	// ErrCorrupt indicates a heap image that fails validation.
	ErrCorrupt = errors.New("alloc: heap corrupt")
)
