package alloc

// Stats holds allocator counters and a snapshot of the heap's shape.
type Stats struct {
	AllocCalls     int   // Total Alloc() calls, including zero-size ones
	AllocFastPath  int   // Allocations served from the free list
	AllocSlowPath  int   // Allocations that required growing the arena
	FailedAllocs   int   // Allocations that failed because growth failed
	FreeCalls      int   // Total Free() calls on real blocks
	ResizeCalls    int   // Total Resize() calls
	GrowCalls      int   // Number of arena growths, init included
	GrowBytes      int64 // Total bytes added by growth
	BytesAllocated int64 // Total block bytes handed out (including tags)
	BytesFreed     int64 // Total block bytes returned
	SplitCount     int   // Number of block splits

	CoalesceNone int // Frees with both neighbours allocated
	CoalesceNext int // Frees merged with the following block
	CoalescePrev int // Frees merged with the preceding block
	CoalesceBoth int // Frees merged with both neighbours

	FitSteps    int64 // Free-list nodes visited by first-fit
	InsertSteps int64 // Free-list nodes (or index lookups) visited by ordered insertion

	// Snapshot, filled by Stats()
	HeapSize        int    // Arena size in bytes
	AllocatedBlocks int    // Blocks currently allocated
	AllocatedBytes  int64  // Their total size (including tags)
	FreeBlocks      int    // Blocks currently free
	FreeBytes       int64  // Their total size (including tags)
	LargestFree     uint32 // Size of the largest free block
}

// Stats returns the counters plus a fresh walk of the block chain.
func (h *Heap) Stats() Stats {
	s := h.stats
	s.HeapSize = len(h.data)
	h.Walk(func(b Block) bool {
		if b.Allocated {
			s.AllocatedBlocks++
			s.AllocatedBytes += int64(b.Size)
			return true
		}
		s.FreeBlocks++
		s.FreeBytes += int64(b.Size)
		s.LargestFree = max(s.LargestFree, b.Size)
		return true
	})
	return s
}

// Utilization returns the fraction of the arena held by allocated blocks.
func (s Stats) Utilization() float64 {
	if s.HeapSize == 0 {
		return 0
	}
	return float64(s.AllocatedBytes) / float64(s.HeapSize)
}

// Fragmentation returns 1 - largest free block / free bytes: 0 when all free
// space is one block, approaching 1 as it splinters.
func (s Stats) Fragmentation() float64 {
	if s.FreeBytes == 0 {
		return 0
	}
	return 1 - float64(s.LargestFree)/float64(s.FreeBytes)
}
