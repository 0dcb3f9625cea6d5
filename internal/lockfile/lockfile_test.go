package lockfile

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "process.lock")

	lock, err := Acquire(path)
	require.NoError(t, err)
	require.NotNil(t, lock)

	// A second contender must fail fast, not block.
	_, err = Acquire(path)
	assert.ErrorIs(t, err, ErrLockHeld)

	require.NoError(t, lock.Release())

	// Once released the lock is free again.
	lock2, err := Acquire(path)
	require.NoError(t, err)
	require.NoError(t, lock2.Release())
}

func TestReleaseNil(t *testing.T) {
	var lock *Lock
	assert.NoError(t, lock.Release())
}
