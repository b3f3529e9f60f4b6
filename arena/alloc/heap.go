package alloc

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/cespare/xxhash/v2"

	"github.com/joshuapare/tagheap/arena"
	"github.com/joshuapare/tagheap/arena/dirty"
	"github.com/joshuapare/tagheap/arena/verify"
	"github.com/joshuapare/tagheap/internal/format"
	"github.com/joshuapare/tagheap/internal/logger"
)

// Heap is a boundary-tag allocator over a single arena.
//
// All state lives in the arena bytes; the struct only caches a view of them
// plus counters and the optional address index. NOT thread-safe.
type Heap struct {
	a     arena.Arena
	data  []byte // a.Bytes(), refreshed after every Grow
	dt    dirty.DirtyTracker
	log   *slog.Logger
	chunk uint32
	index *addrIndex
	stats Stats
}

func newHeap(a arena.Arena, cfg *Config) *Heap {
	if cfg == nil {
		cfg = &DefaultConfig
	}

	chunk := cfg.ChunkSize
	if chunk <= 0 {
		chunk = format.ChunkSize
	}
	chunk = min(max(format.Align8(chunk), format.MinBlockSize), format.MaxBlockSize)

	var dt dirty.DirtyTracker = noDirty{}
	if cfg.Dirty != nil {
		dt = cfg.Dirty
	}

	log := cfg.Logger
	if log == nil {
		if logAlloc {
			log = logger.Stderr(slog.LevelDebug)
		} else {
			log = logger.L
		}
	}

	h := &Heap{
		a:     a,
		dt:    dt,
		log:   log,
		chunk: uint32(chunk),
	}
	if cfg.AddressIndex {
		h.index = newAddrIndex()
	}
	return h
}

// New lays out an empty heap in a and grows it by one chunk.
//
// Parameters:
//   - a: An empty arena the heap takes ownership of
//   - cfg: Heap configuration (use nil for DefaultConfig)
func New(a arena.Arena, cfg *Config) (*Heap, error) {
	if a.Size() != 0 {
		return nil, fmt.Errorf("%w: arena already holds %d bytes", ErrInit, a.Size())
	}
	h := newHeap(a, cfg)

	if _, err := a.Grow(format.SentinelSize); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInit, err)
	}
	h.refresh()
	if err := format.WriteSentinels(h.data); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInit, err)
	}
	h.dt.Add(0, format.SentinelSize)

	if _, err := h.extend(int(h.chunk / format.WordSize)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInit, err)
	}
	return h, nil
}

// Open attaches to an arena that already holds a heap, such as a reopened
// File arena or a restored image. The image is validated first; a corrupt
// image returns an error wrapping ErrCorrupt and a *verify.ValidationError.
func Open(a arena.Arena, cfg *Config) (*Heap, error) {
	h := newHeap(a, cfg)
	h.refresh()

	if err := verify.Heap(h.data); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if h.index != nil {
		h.FreeBlocks(func(b Block) bool {
			h.index.insert(uint32(b.Off))
			return true
		})
	}
	return h, nil
}

// Alloc returns a payload of at least size bytes, 8-byte aligned.
//
// A zero size returns Nil and changes nothing. When no free block fits, the
// arena grows by max(block size, chunk size); if that fails Alloc returns
// an error wrapping ErrNoSpace and the heap is unchanged.
func (h *Heap) Alloc(size int) (Ptr, error) {
	h.stats.AllocCalls++
	if size == 0 {
		return Nil, nil
	}
	if size < 0 {
		return Nil, fmt.Errorf("%w: negative size %d", ErrTooLarge, size)
	}
	asize, ok := format.AdjustedSize(size)
	if !ok {
		return Nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, size)
	}

	if bp := h.findFit(asize); bp != 0 {
		h.place(bp, asize)
		h.stats.AllocFastPath++
		return Ptr(bp), nil
	}

	grow := max(asize, h.chunk)
	bp, err := h.extend(int(grow / format.WordSize))
	if err != nil {
		h.stats.FailedAllocs++
		h.log.Debug("alloc failed", "size", size, "block", asize, "heap", len(h.data), "err", err)
		return Nil, fmt.Errorf("%w: %d bytes: %w", ErrNoSpace, size, err)
	}
	h.place(bp, asize)
	h.stats.AllocSlowPath++
	return Ptr(bp), nil
}

// Free returns the block at p to the heap, merging it with free neighbours.
//
// Free(Nil) is a no-op. A pointer outside the block area, misaligned, or
// whose header is nonsense returns ErrBadPtr. Freeing a block twice, or a
// pointer that was never returned by Alloc, is not detected.
func (h *Heap) Free(p Ptr) error {
	if p == Nil {
		return nil
	}
	b, err := h.checkPtr(p)
	if err != nil {
		return err
	}

	h.stats.FreeCalls++
	h.stats.BytesFreed += int64(b.Size)

	bp := uint32(p)
	h.writeTags(bp, b.Size, false)
	h.coalesce(bp)
	return nil
}

// Resize moves the payload at p into a block of at least size bytes.
//
// It always allocates a new block, copies min(old payload, size) bytes,
// and frees the old block. Resize(Nil, n) is Alloc(n). Resize(p, 0) returns
// Nil and leaves p allocated. If allocation fails the old block is left
// untouched and still live.
func (h *Heap) Resize(p Ptr, size int) (Ptr, error) {
	h.stats.ResizeCalls++
	if p == Nil {
		return h.Alloc(size)
	}
	old, err := h.checkPtr(p)
	if err != nil {
		return Nil, err
	}

	np, err := h.Alloc(size)
	if err != nil || np == Nil {
		return Nil, err
	}

	n := min(old.PayloadSize(), size)
	copy(h.data[np:int(np)+n], h.data[p:int(p)+n])
	h.dt.Add(int(np), n)

	if err := h.Free(p); err != nil {
		return Nil, err
	}
	return np, nil
}

// Bytes returns the payload of the block at p, or nil if p is not a block.
// The slice stays valid until the block is freed.
func (h *Heap) Bytes(p Ptr) []byte {
	b, err := h.checkPtr(p)
	if err != nil {
		return nil
	}
	end := int(p) + b.PayloadSize()
	return h.data[p:end:end]
}

// PayloadSize returns the usable size of the block at p, or 0 if p is not a block.
func (h *Heap) PayloadSize(p Ptr) int {
	b, err := h.checkPtr(p)
	if err != nil {
		return 0
	}
	return b.PayloadSize()
}

// Touch marks the payload at p dirty. Callers writing through Bytes on a
// File arena use it so a tracked flush picks the write up.
func (h *Heap) Touch(p Ptr) {
	if b, err := h.checkPtr(p); err == nil {
		h.dt.Add(int(p), b.PayloadSize())
	}
}

// CheckHeap validates every heap invariant and returns the first violation,
// wrapped with ErrCorrupt and the caller's context label.
func (h *Heap) CheckHeap(context string) error {
	if err := verify.Heap(h.data); err != nil {
		return fmt.Errorf("%w (%s): %w", ErrCorrupt, context, err)
	}
	if err := h.checkIndex(); err != nil {
		return fmt.Errorf("%w (%s): %w", ErrCorrupt, context, err)
	}
	return nil
}

// Walk calls fn for every block in address order, stopping when fn returns false.
func (h *Heap) Walk(fn func(Block) bool) {
	for bp := uint32(format.FirstBlockOffset); ; {
		b := h.block(bp)
		if b.Size == 0 {
			return
		}
		if !fn(b) {
			return
		}
		bp = uint32(b.Next())
	}
}

// FreeBlocks calls fn for every block on the free list in list order, which
// is address order, stopping when fn returns false.
func (h *Heap) FreeBlocks(fn func(Block) bool) {
	for bp := h.next(format.RootOffset); bp != 0; bp = h.next(bp) {
		if !fn(h.block(bp)) {
			return
		}
	}
}

// Checksum returns the xxhash64 of the arena bytes.
func (h *Heap) Checksum() uint64 {
	return xxhash.Sum64(h.data)
}

// Size returns the arena size in bytes.
func (h *Heap) Size() int { return len(h.data) }

// Arena returns the arena the heap lives in.
func (h *Heap) Arena() arena.Arena { return h.a }

// refresh re-reads the arena view after a Grow.
func (h *Heap) refresh() {
	h.data = h.a.Bytes()
}

// block decodes the header of the block at bp.
func (h *Heap) block(bp uint32) Block {
	size, allocated := format.ReadHeader(h.data, bp)
	return Block{Off: Ptr(bp), Size: size, Allocated: allocated}
}

// writeTags writes a block's header and footer and marks both dirty.
func (h *Heap) writeTags(bp, size uint32, allocated bool) {
	format.WriteTags(h.data, bp, size, allocated)
	h.dt.Add(int(format.HeaderOffset(bp)), format.WordSize)
	h.dt.Add(int(format.FooterOffset(bp, size)), format.WordSize)
}

// checkPtr rejects pointers that cannot be a block in this heap.
func (h *Heap) checkPtr(p Ptr) (Block, error) {
	bp := uint32(p)
	epi := uint64(format.EpilogueOffset(len(h.data)))
	if bp < format.FirstBlockOffset || !format.IsAligned(bp) || uint64(format.HeaderOffset(bp)) >= epi {
		return Block{}, fmt.Errorf("%w: 0x%X outside [0x%X, 0x%X)", ErrBadPtr, bp, format.FirstBlockOffset, epi)
	}
	b := h.block(bp)
	if b.Size < format.MinBlockSize || uint64(bp)+uint64(b.Size)-format.WordSize > epi {
		return Block{}, fmt.Errorf("%w: 0x%X has header size %d", ErrBadPtr, bp, b.Size)
	}
	return b, nil
}

// maxArena is the largest arena whose offsets fit a link word.
const maxArena = math.MaxUint32 &^ format.AlignmentMask
