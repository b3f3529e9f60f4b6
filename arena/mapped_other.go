//go:build !linux && !darwin

package arena

// Mapped falls back to a Memory arena where anonymous reservations are not
// available.
type Mapped struct {
	*Memory
}

// NewMapped reserves max bytes. A non-positive max selects DefaultMaxHeap.
func NewMapped(max int) (*Mapped, error) {
	return &Mapped{Memory: NewMemory(max)}, nil
}
