//go:build linux || darwin

package arena

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Mapped is an Arena backed by an anonymous private mapping. The whole
// maximum is reserved PROT_NONE up front; Grow commits pages with mprotect
// as the break crosses into them, so the region never moves.
type Mapped struct {
	region    []byte
	brk       int
	committed int
	pageSize  int
}

// NewMapped reserves max bytes of address space, rounded up to the page
// size. A non-positive max selects DefaultMaxHeap.
func NewMapped(max int) (*Mapped, error) {
	if max <= 0 {
		max = DefaultMaxHeap
	}
	page := unix.Getpagesize()
	max = roundUp(max, page)

	region, err := unix.Mmap(-1, 0, max, unix.PROT_NONE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("arena: reserve %d bytes: %w", max, err)
	}
	return &Mapped{region: region, pageSize: page}, nil
}

// Grow extends the break by n bytes, committing pages as needed.
func (m *Mapped) Grow(n int) (int, error) {
	if m.region == nil {
		return -1, ErrClosed
	}
	if n < 0 {
		return -1, ErrNegativeGrow
	}
	old := m.brk
	if n > len(m.region)-old {
		return -1, fmt.Errorf("%w: break=%d grow=%d max=%d", ErrExhausted, old, n, len(m.region))
	}

	newBrk := old + n
	if newBrk > m.committed {
		want := min(roundUp(newBrk, m.pageSize), len(m.region))
		if err := unix.Mprotect(m.region[m.committed:want], unix.PROT_READ|unix.PROT_WRITE); err != nil {
			return -1, fmt.Errorf("%w: commit pages: %w", ErrExhausted, err)
		}
		m.committed = want
	}
	m.brk = newBrk
	return old, nil
}

// Bytes returns the committed contents up to the break.
func (m *Mapped) Bytes() []byte { return m.region[:m.brk] }

// Size returns the break offset.
func (m *Mapped) Size() int { return m.brk }

// Close unmaps the reservation. Calling Close twice is a no-op.
func (m *Mapped) Close() error {
	if m.region == nil {
		return nil
	}
	err := unix.Munmap(m.region)
	m.region = nil
	m.brk = 0
	m.committed = 0
	return err
}

func roundUp(n, to int) int {
	return (n + to - 1) / to * to
}
