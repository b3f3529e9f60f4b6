//go:build !linux && !darwin

package dirty

// File arenas are only available on linux and darwin; elsewhere there is no
// mapping to flush.
func msync([]byte) error { return nil }

func fdatasync(int, bool) error { return nil }
