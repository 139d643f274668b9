package checkout

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/danjacques/gofslock/fslock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeforasia/git-jekyll-preview/errors"
)

func TestLockersSerialize(t *testing.T) {
	lockers := map[string]Locker{
		"file":  NewFileLocker(5 * time.Millisecond),
		"mutex": NewMutexLocker(),
	}

	for name, locker := range lockers {
		locker := locker
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "nested", "x.git-lock")
			var active, peak int32
			var wg sync.WaitGroup

			for i := 0; i < 6; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					err := locker.WithLock(context.Background(), path, func() error {
						n := atomic.AddInt32(&active, 1)
						for {
							p := atomic.LoadInt32(&peak)
							if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
								break
							}
						}
						time.Sleep(2 * time.Millisecond)
						atomic.AddInt32(&active, -1)
						return nil
					})
					assert.NoError(t, err)
				}()
			}
			wg.Wait()

			assert.Equal(t, int32(1), peak)
		})
	}
}

func TestLockerReturnsCallbackError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.git-lock")
	want := errors.New(errors.CodeExecutionFailed, "boom")

	err := NewFileLocker(0).WithLock(context.Background(), path, func() error { return want })
	assert.Equal(t, want, err)

	// The lock is free again afterwards.
	require.NoError(t, NewFileLocker(0).WithLock(context.Background(), path, func() error { return nil }))
}

func TestFileLockerWaitsForOtherHolder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.git-lock")

	handle, err := fslock.Lock(path)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	ran := false
	err = NewFileLocker(5*time.Millisecond).WithLock(ctx, path, func() error {
		ran = true
		return nil
	})
	require.Error(t, err)
	assert.False(t, ran)
	assert.Equal(t, errors.CodeTimeout, errors.GetCode(err))

	require.NoError(t, handle.Unlock())
	require.NoError(t, NewFileLocker(5*time.Millisecond).WithLock(context.Background(), path, func() error {
		ran = true
		return nil
	}))
	assert.True(t, ran)
}

func TestMutexLockerCancellation(t *testing.T) {
	locker := NewMutexLocker()
	held := make(chan struct{})
	release := make(chan struct{})

	go func() {
		_ = locker.WithLock(context.Background(), "p", func() error {
			close(held)
			<-release
			return nil
		})
	}()
	<-held

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := locker.WithLock(ctx, "p", func() error { return nil })
	assert.Equal(t, errors.CodeLockFailed, errors.GetCode(err))

	// Other paths are independent.
	require.NoError(t, locker.WithLock(context.Background(), "q", func() error { return nil }))
	close(release)
}
