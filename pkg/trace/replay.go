package trace

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/btree"

	"github.com/joshuapare/tagheap/arena"
	"github.com/joshuapare/tagheap/arena/alloc"
	"github.com/joshuapare/tagheap/internal/format"
	"github.com/joshuapare/tagheap/internal/logger"
)

var (
	// ErrUnknownID indicates a resize or free of an id that is not live.
	ErrUnknownID = errors.New("trace: id not allocated")

	// ErrPayload indicates a payload that failed a placement or content check.
	ErrPayload = errors.New("trace: bad payload")
)

// Options controls a replay.
type Options struct {
	// Config is passed to alloc.New. Nil selects alloc.DefaultConfig.
	Config *alloc.Config

	// Arena is an empty arena to run in. If nil, a Memory arena of MaxHeap
	// bytes is created and released when the replay ends.
	Arena arena.Arena

	// MaxHeap is the reservation for the default arena. Zero selects
	// arena.DefaultMaxHeap.
	MaxHeap int

	// Check runs the heap validator after every operation.
	Check bool
}

// Replay runs t on a fresh heap and verifies every payload it hands out.
// It stops at the first allocator error, payload violation, or context
// cancellation.
func Replay(ctx context.Context, t *Trace, opts Options) (*Result, error) {
	a := opts.Arena
	if a == nil {
		m := arena.NewMemory(opts.MaxHeap)
		defer m.Close()
		a = m
	}

	h, err := alloc.New(a, opts.Config)
	if err != nil {
		return nil, err
	}

	r := &replayer{
		h:     h,
		live:  newSpanTree(),
		ptrs:  make(map[int]span, t.NumIDs),
		check: opts.Check,
	}

	start := time.Now()
	for i, op := range t.Ops {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := r.step(op); err != nil {
			return nil, fmt.Errorf("%s: op %d (%s, line %d): %w", t.Name, i, op, op.Line, err)
		}
	}

	// Every block still live must be intact at the end.
	for id, s := range r.ptrs {
		if err := r.verifyContent(id, s); err != nil {
			return nil, fmt.Errorf("%s: at end: %w", t.Name, err)
		}
	}

	res := &Result{
		Name:        t.Name,
		Ops:         len(t.Ops),
		PeakPayload: r.peak,
		HeapSize:    h.Size(),
		Checksum:    h.Checksum(),
		Elapsed:     time.Since(start),
		Stats:       h.Stats(),
	}
	if res.HeapSize > 0 {
		res.Utilization = float64(res.PeakPayload) / float64(res.HeapSize)
	}
	logger.Debug("replay done", "trace", t.Name, "ops", res.Ops, "heap", res.HeapSize,
		"util", res.Utilization, "elapsed", res.Elapsed)
	return res, nil
}

// span is a live payload: [start, start+size) holding id's pattern.
type span struct {
	start alloc.Ptr
	size  int
	id    int
}

func newSpanTree() *btree.BTreeG[span] {
	return btree.NewG[span](32, func(a, b span) bool { return a.start < b.start })
}

type replayer struct {
	h     *alloc.Heap
	live  *btree.BTreeG[span] // non-empty payloads by address
	ptrs  map[int]span        // id → payload, including zero-size ones
	cur   int64
	peak  int64
	check bool
}

func (r *replayer) step(op Op) error {
	switch op.Kind {
	case OpAlloc:
		if _, ok := r.ptrs[op.ID]; ok {
			return fmt.Errorf("%w: id %d is already live", ErrUnknownID, op.ID)
		}
		p, err := r.h.Alloc(op.Size)
		if err != nil {
			return err
		}
		if err := r.add(op.ID, p, op.Size); err != nil {
			return err
		}

	case OpResize:
		old, ok := r.ptrs[op.ID]
		if !ok {
			return fmt.Errorf("%w: resize of id %d", ErrUnknownID, op.ID)
		}
		if err := r.verifyContent(op.ID, old); err != nil {
			return err
		}
		p, err := r.h.Resize(old.start, op.Size)
		if err != nil {
			return err
		}
		if p == alloc.Nil && op.Size == 0 {
			// The old block stays allocated; nothing more to track.
			return r.checkHeap(op)
		}
		r.remove(op.ID, old)
		if err := r.addResized(op.ID, p, op.Size, old.size); err != nil {
			return err
		}

	case OpFree:
		old, ok := r.ptrs[op.ID]
		if !ok {
			return fmt.Errorf("%w: free of id %d", ErrUnknownID, op.ID)
		}
		if err := r.verifyContent(op.ID, old); err != nil {
			return err
		}
		r.remove(op.ID, old)
		if err := r.h.Free(old.start); err != nil {
			return err
		}
	}
	return r.checkHeap(op)
}

func (r *replayer) checkHeap(op Op) error {
	if !r.check {
		return nil
	}
	return r.h.CheckHeap(op.String())
}

// add checks a new payload's placement, records it, and fills it.
func (r *replayer) add(id int, p alloc.Ptr, size int) error {
	s := span{start: p, size: size, id: id}
	if err := r.checkPlacement(s); err != nil {
		return err
	}
	r.track(s)
	r.fill(s, 0)
	return nil
}

// addResized is add for a resized block: the first min(old, new) bytes must
// have been carried over before the rest is filled.
func (r *replayer) addResized(id int, p alloc.Ptr, size, oldSize int) error {
	s := span{start: p, size: size, id: id}
	if err := r.checkPlacement(s); err != nil {
		return err
	}
	kept := min(size, oldSize)
	if err := r.verifyContent(id, span{start: p, size: kept, id: id}); err != nil {
		return fmt.Errorf("resize did not preserve content: %w", err)
	}
	r.track(s)
	r.fill(s, kept)
	return nil
}

func (r *replayer) track(s span) {
	r.ptrs[s.id] = s
	if s.size > 0 {
		r.live.ReplaceOrInsert(s)
	}
	r.cur += int64(s.size)
	r.peak = max(r.peak, r.cur)
}

func (r *replayer) remove(id int, s span) {
	delete(r.ptrs, id)
	if s.size > 0 {
		r.live.Delete(s)
	}
	r.cur -= int64(s.size)
}

// checkPlacement verifies alignment, heap bounds, and that the payload
// overlaps no other live payload.
func (r *replayer) checkPlacement(s span) error {
	if s.size == 0 {
		if s.start != alloc.Nil {
			return fmt.Errorf("%w: zero-size request returned 0x%X", ErrPayload, s.start)
		}
		return nil
	}
	if s.start == alloc.Nil {
		return fmt.Errorf("%w: nil payload for %d bytes", ErrPayload, s.size)
	}
	if uint32(s.start)%format.Alignment != 0 {
		return fmt.Errorf("%w: payload 0x%X not %d-byte aligned", ErrPayload, s.start, format.Alignment)
	}
	lo, hi := arena.Bounds(r.h.Arena())
	if int(s.start) < lo || int(s.start)+s.size-1 > hi {
		return fmt.Errorf("%w: payload [0x%X, 0x%X) outside heap [0x%X, 0x%X]",
			ErrPayload, s.start, int(s.start)+s.size, lo, hi)
	}
	if got := r.h.PayloadSize(s.start); got < s.size {
		return fmt.Errorf("%w: payload 0x%X holds %d bytes, asked for %d", ErrPayload, s.start, got, s.size)
	}

	end := int(s.start) + s.size
	var clash *span
	r.live.DescendLessOrEqual(s, func(o span) bool {
		if int(o.start)+o.size > int(s.start) {
			clash = &o
		}
		return false
	})
	if clash == nil {
		r.live.AscendGreaterOrEqual(s, func(o span) bool {
			if int(o.start) < end {
				clash = &o
			}
			return false
		})
	}
	if clash != nil {
		return fmt.Errorf("%w: payload [0x%X, 0x%X) overlaps id %d at [0x%X, 0x%X)",
			ErrPayload, s.start, end, clash.id, clash.start, int(clash.start)+clash.size)
	}
	return nil
}

// patternByte is the value byte i of id's payload holds.
func patternByte(id, i int) byte {
	return byte(id*131+i) ^ 0x5A
}

func (r *replayer) fill(s span, from int) {
	if s.size == 0 {
		return
	}
	b := r.h.Bytes(s.start)
	for i := from; i < s.size; i++ {
		b[i] = patternByte(s.id, i)
	}
	r.h.Touch(s.start)
}

func (r *replayer) verifyContent(id int, s span) error {
	if s.size == 0 {
		return nil
	}
	b := r.h.Bytes(s.start)
	for i := range s.size {
		if b[i] != patternByte(id, i) {
			return fmt.Errorf("%w: id %d byte %d at 0x%X is 0x%02X, want 0x%02X",
				ErrPayload, id, i, int(s.start)+i, b[i], patternByte(id, i))
		}
	}
	return nil
}
