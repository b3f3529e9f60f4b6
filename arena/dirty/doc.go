// Package dirty provides page-level dirty tracking for file-backed arenas.
//
// # Overview
//
// The allocator rewrites boundary tags and free-list links in place. When the
// arena is a shared file mapping, those writes only reach disk when the
// containing pages are flushed. A Tracker records every modified byte range
// so a commit can msync just the touched pages instead of the whole file.
//
// # Usage
//
//	tracker := dirty.NewTracker()
//	h, _ := alloc.New(fileArena, &alloc.Config{Dirty: tracker})
//	// ... Alloc / Free / Resize ...
//	err := fileArena.Flush(ctx, tracker, dirty.FlushAuto)
//
// # Range Coalescing
//
// Ranges() page-aligns, sorts, and merges the recorded ranges:
//
//	Dirty pages: [0, 1, 2, 5, 6] → Ranges: [0x0-0x3000, 0x5000-0x7000]
//
// # Thread Safety
//
// Tracker instances are not thread-safe.
package dirty
