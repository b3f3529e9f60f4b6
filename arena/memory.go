package arena

import "fmt"

// Memory is an Arena backed by a byte slice whose capacity is reserved at
// construction. The break moves within that capacity, so the slice returned
// by Bytes never moves.
type Memory struct {
	buf    []byte
	closed bool
}

// NewMemory reserves max bytes. A non-positive max selects DefaultMaxHeap.
func NewMemory(max int) *Memory {
	if max <= 0 {
		max = DefaultMaxHeap
	}
	return &Memory{buf: make([]byte, 0, max)}
}

// Grow extends the break by n bytes.
func (m *Memory) Grow(n int) (int, error) {
	if m.closed {
		return -1, ErrClosed
	}
	if n < 0 {
		return -1, ErrNegativeGrow
	}
	old := len(m.buf)
	if n > cap(m.buf)-old {
		return -1, fmt.Errorf("%w: break=%d grow=%d max=%d", ErrExhausted, old, n, cap(m.buf))
	}
	m.buf = m.buf[:old+n]
	return old, nil
}

// Bytes returns the arena contents up to the break.
func (m *Memory) Bytes() []byte { return m.buf }

// Size returns the break offset.
func (m *Memory) Size() int { return len(m.buf) }

// Cap returns the reserved maximum.
func (m *Memory) Cap() int { return cap(m.buf) }

// Reset moves the break back to zero and clears the used bytes, like a
// fresh reservation. Used between trace replays.
func (m *Memory) Reset() {
	clear(m.buf)
	m.buf = m.buf[:0]
}

// Close marks the arena closed. The memory is left to the garbage collector.
func (m *Memory) Close() error {
	m.closed = true
	m.buf = nil
	return nil
}
