package dirty

// DirtyTracker is the minimal interface for tracking dirty (modified) byte ranges.
//
// This interface is intended for components that only need to notify about
// dirty regions but don't manage flushing themselves (the allocator).
type DirtyTracker interface {
	// Add marks a byte range as dirty.
	// off is the offset from the start of the arena, length is the number of bytes.
	Add(off, length int)
}
