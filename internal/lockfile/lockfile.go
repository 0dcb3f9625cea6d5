// Package lockfile enforces at-most-one running instance via an advisory
// file lock held for the process lifetime.
package lockfile

import (
	"errors"
	"fmt"

	"github.com/gofrs/flock"
)

// ErrLockHeld means another instance already holds the lock. Callers must
// exit immediately with a distinguished status, never wait.
var ErrLockHeld = errors.New("another instance is running")

// Lock is a held advisory lock.
type Lock struct {
	fl *flock.Flock
}

// Acquire attempts a non-blocking exclusive lock on path. The file is
// created if absent; its content is irrelevant.
func Acquire(path string) (*Lock, error) {
	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to lock %s: %w", path, err)
	}
	if !ok {
		return nil, ErrLockHeld
	}
	return &Lock{fl: fl}, nil
}

// Release unlocks and closes the lock file. Safe to call exactly once, on
// every exit path.
func (l *Lock) Release() error {
	if l == nil || l.fl == nil {
		return nil
	}
	return l.fl.Unlock()
}
