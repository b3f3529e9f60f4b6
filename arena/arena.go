package arena

import "errors"

// DefaultMaxHeap is the reservation used when a constructor is given a
// non-positive maximum: 20 MiB.
const DefaultMaxHeap = 20 << 20

var (
	// ErrExhausted indicates the arena cannot grow by the requested amount.
	ErrExhausted = errors.New("arena: out of memory")

	// ErrNegativeGrow indicates a Grow call with a negative byte count.
	ErrNegativeGrow = errors.New("arena: negative grow")

	// ErrClosed indicates use of an arena after Close.
	ErrClosed = errors.New("arena: closed")

	// ErrLocked indicates a file arena is already open elsewhere.
	ErrLocked = errors.New("arena: file is locked")

	// ErrBadImage indicates an image stream that is not a tagheap arena image.
	ErrBadImage = errors.New("arena: bad image")
)

// Arena is a contiguous, grow-only byte region.
//
// Implementations:
//   - Memory: fixed-capacity byte slice
//   - Mapped: anonymous mmap reservation (linux, darwin)
//   - File: shared file mapping (linux, darwin)
type Arena interface {
	// Grow extends the arena by n bytes and returns the offset of the old
	// break, where the new bytes start. New bytes read as zero. On failure
	// the arena is unchanged.
	Grow(n int) (int, error)

	// Bytes returns the current contents, offsets [0, Size()). The slice
	// may be invalidated by Grow on implementations that remap; callers
	// must re-fetch it after growing.
	Bytes() []byte

	// Size returns the current break offset.
	Size() int

	// Close releases the arena's resources.
	Close() error
}

// Bounds returns the lowest and highest valid offsets of a, mirroring the
// lo/hi pair of a brk heap. hi is -1 for an empty arena.
func Bounds(a Arena) (lo, hi int) {
	return 0, a.Size() - 1
}
