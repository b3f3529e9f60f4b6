//go:build !linux && !darwin

package arena

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/gofrs/flock"

	"github.com/joshuapare/tagheap/arena/dirty"
)

// File keeps the arena in memory and writes it back to path on Flush where
// shared file mappings are not available.
type File struct {
	*Memory
	f    *os.File
	lock *flock.Flock
	path string
}

// OpenFile opens or creates the arena file at path and loads its contents.
func OpenFile(path string, max int) (*File, error) {
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
	m := NewMemory(max)
	if st.Size() > int64(m.Cap()) {
		return fail(fmt.Errorf("%w: file %s is %d bytes, max is %d", ErrExhausted, path, st.Size(), m.Cap()))
	}
	if _, err := m.Grow(int(st.Size())); err != nil {
		return fail(err)
	}
	if _, err := io.ReadFull(f, m.Bytes()); err != nil {
		return fail(fmt.Errorf("arena: read %s: %w", path, err))
	}
	return &File{Memory: m, f: f, lock: lock, path: path}, nil
}

// Path returns the backing file path.
func (a *File) Path() string { return a.path }

// Flush rewrites the file with the current contents. The tracker is reset;
// its ranges are not needed without a mapping.
func (a *File) Flush(ctx context.Context, tracker *dirty.Tracker, mode dirty.FlushMode) error {
	if a.f == nil {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := a.f.WriteAt(a.Bytes(), 0); err != nil {
		return fmt.Errorf("arena: flush %s: %w", a.path, err)
	}
	if tracker != nil {
		tracker.Reset()
	}
	if mode == dirty.FlushDataOnly {
		return nil
	}
	return a.f.Sync()
}

// Close closes the file. Unflushed changes are lost.
func (a *File) Close() error {
	if a.f == nil {
		return nil
	}
	err := errors.Join(a.Memory.Close(), a.f.Close(), a.lock.Unlock())
	a.f = nil
	return err
}
