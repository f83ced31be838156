package config

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileLock_LockUnlock(t *testing.T) {
	// Given: a lock for a config file in a missing directory
	path := filepath.Join(t.TempDir(), "nested", ".fzsearch.yaml")
	l := NewFileLock(path)
	assert.Equal(t, path+LockSuffix, l.Path())

	// When
	require.NoError(t, l.Lock(t.Context()))

	// Then: the lock file exists and unlocking twice is fine
	assert.FileExists(t, l.Path())
	require.NoError(t, l.Unlock())
	require.NoError(t, l.Unlock())
}

func TestFileLock_HeldLockTimesOut(t *testing.T) {
	// Given: a held lock
	path := filepath.Join(t.TempDir(), ".fzsearch.yaml")
	holder := NewFileLock(path)
	require.NoError(t, holder.Lock(t.Context()))
	defer func() { _ = holder.Unlock() }()

	// When: another lock for the same file waits briefly
	ctx, cancel := context.WithTimeout(t.Context(), 150*time.Millisecond)
	defer cancel()
	err := NewFileLock(path).Lock(ctx)

	// Then: it gives up
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to acquire lock")
}

func TestWithLock_Serializes(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".fzsearch.yaml")

	var (
		mu      sync.Mutex
		inside  int
		overlap bool
		wg      sync.WaitGroup
	)
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := WithLock(context.Background(), path, func() error {
				mu.Lock()
				inside++
				if inside > 1 {
					overlap = true
				}
				mu.Unlock()

				time.Sleep(20 * time.Millisecond)

				mu.Lock()
				inside--
				mu.Unlock()
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.False(t, overlap, "writers held the lock at the same time")
}

func TestWithLock_ReturnsFnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".fzsearch.yaml")

	err := WithLock(t.Context(), path, func() error { return assert.AnError })

	assert.ErrorIs(t, err, assert.AnError)

	// The lock was released.
	require.NoError(t, WithLock(t.Context(), path, func() error { return nil }))
}
