//go:build linux || darwin

package arena

import (
	"context"
	"fmt"
	"os"

	"github.com/gofrs/flock"
	"golang.org/x/sys/unix"

	"github.com/joshuapare/tagheap/arena/dirty"
)

// File is an Arena stored in a file and accessed through a shared mapping.
//
// The mapping is created once at the maximum size. Pages past the end of the
// file are never touched because Bytes only exposes [0, Size()); Grow extends
// the file with ftruncate before the break moves over the new bytes, so the
// mapping, and every slice handed out from it, stays put.
type File struct {
	f    *os.File
	lock *flock.Flock
	path string
	data []byte // whole reservation
	size int
}

// OpenFile opens or creates the arena file at path, reserving max bytes of
// mapping. An existing file keeps its contents and its size becomes the
// break. The file is locked exclusively until Close.
func OpenFile(path string, max int) (*File, error) {
	if max <= 0 {
		max = DefaultMaxHeap
	}
	max = roundUp(max, unix.Getpagesize())

	lock, err := lockFile(path)
	if err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		_ = lock.Unlock()
		return nil, err
	}
	fail := func(err error) (*File, error) {
		_ = f.Close()
		_ = lock.Unlock()
		return nil, err
	}

	st, err := f.Stat()
	if err != nil {
		return fail(err)
	}
	size := st.Size()
	if size > int64(max) {
		return fail(fmt.Errorf("%w: file %s is %d bytes, max is %d", ErrExhausted, path, size, max))
	}

	data, err := unix.Mmap(int(f.Fd()), 0, max, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return fail(fmt.Errorf("arena: mmap %s: %w", path, err))
	}

	return &File{f: f, lock: lock, path: path, data: data, size: int(size)}, nil
}

// Grow extends the file by n bytes. The new bytes are zero-filled by the OS.
func (a *File) Grow(n int) (int, error) {
	if a.f == nil {
		return -1, ErrClosed
	}
	if n < 0 {
		return -1, ErrNegativeGrow
	}
	old := a.size
	if n > len(a.data)-old {
		return -1, fmt.Errorf("%w: break=%d grow=%d max=%d", ErrExhausted, old, n, len(a.data))
	}
	if n == 0 {
		return old, nil
	}
	if err := a.f.Truncate(int64(old + n)); err != nil {
		return -1, fmt.Errorf("%w: extend %s: %w", ErrExhausted, a.path, err)
	}
	a.size = old + n
	return old, nil
}

// Bytes returns the mapped contents up to the break.
func (a *File) Bytes() []byte { return a.data[:a.size] }

// Size returns the break offset, which is also the file size.
func (a *File) Size() int { return a.size }

// Path returns the backing file path.
func (a *File) Path() string { return a.path }

// Flush writes the pages recorded in tracker back to the file and syncs the
// descriptor according to mode. A nil tracker flushes the whole arena.
func (a *File) Flush(ctx context.Context, tracker *dirty.Tracker, mode dirty.FlushMode) error {
	if a.f == nil {
		return ErrClosed
	}
	if tracker == nil {
		tracker = dirty.NewTracker()
		tracker.Add(0, a.size)
	}
	if err := tracker.Flush(ctx, a.Bytes()); err != nil {
		return fmt.Errorf("arena: flush %s: %w", a.path, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return dirty.Sync(int(a.f.Fd()), mode)
}

// Close unmaps the file, releases the lock, and closes the descriptor.
func (a *File) Close() error {
	if a.f == nil {
		return nil
	}
	var err error
	if a.data != nil {
		err = unix.Munmap(a.data)
		a.data = nil
	}
	if closeErr := a.f.Close(); err == nil {
		err = closeErr
	}
	if unlockErr := a.lock.Unlock(); err == nil {
		err = unlockErr
	}
	a.f = nil
	a.size = 0
	return err
}
