package arena

import (
	"fmt"

	"github.com/gofrs/flock"
)

// lockFile takes an exclusive, non-blocking lock on path, creating the file
// if needed.
func lockFile(path string) (*flock.Flock, error) {
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("arena: lock %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, path)
	}
	return lock, nil
}
