package checkout

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/danjacques/gofslock/fslock"
	logger "github.com/sirupsen/logrus"

	"github.com/codeforasia/git-jekyll-preview/errors"
)

// DefaultPollInterval is how often a held lock file is retried.
const DefaultPollInterval = 250 * time.Millisecond

// Locker runs fn while holding an exclusive lock on path. The lock is
// released on every return path, including panics in fn.
type Locker interface {
	WithLock(ctx context.Context, path string, fn func() error) error
}

// FileLocker locks files on disk so separate processes sharing a base path
// exclude each other. Callers inside one process are serialized before they
// touch the file.
type FileLocker struct {
	poll  time.Duration
	local *MutexLocker
}

// NewFileLocker returns a FileLocker that retries a held lock every poll.
func NewFileLocker(poll time.Duration) *FileLocker {
	if poll <= 0 {
		poll = DefaultPollInterval
	}
	return &FileLocker{poll: poll, local: NewMutexLocker()}
}

// WithLock blocks until the lock file at path is held or ctx ends.
func (l *FileLocker) WithLock(ctx context.Context, path string, fn func() error) error {
	return l.local.WithLock(ctx, path, func() error {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return errors.Wrapf(err, errors.CodeStorage, "failed to create lock directory for %s", path)
		}

		var fnErr error
		ran := false
		err := fslock.WithBlocking(path, l.blocker(ctx, path), func() error {
			ran = true
			fnErr = fn()
			return nil
		})
		if ran {
			return fnErr
		}
		return lockError(ctx, err, path)
	})
}

// blocker sleeps one poll interval between attempts and gives up once ctx
// is done.
func (l *FileLocker) blocker(ctx context.Context, path string) fslock.Blocker {
	return func() error {
		logger.Debugf("Lock %s is currently held. Sleeping %v and retrying...", path, l.poll)

		timer := time.NewTimer(l.poll)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return nil
		}
	}
}

// MutexLocker locks paths within the current process only.
type MutexLocker struct {
	mu    sync.Mutex
	slots map[string]*slot
}

type slot struct {
	ch   chan struct{}
	refs int
}

// NewMutexLocker returns an empty MutexLocker.
func NewMutexLocker() *MutexLocker {
	return &MutexLocker{slots: make(map[string]*slot)}
}

// WithLock blocks until path is free or ctx ends.
func (m *MutexLocker) WithLock(ctx context.Context, path string, fn func() error) error {
	s := m.acquireSlot(path)
	defer m.releaseSlot(path, s)

	select {
	case s.ch <- struct{}{}:
	case <-ctx.Done():
		return lockError(ctx, ctx.Err(), path)
	}
	defer func() { <-s.ch }()

	return fn()
}

func (m *MutexLocker) acquireSlot(path string) *slot {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.slots[path]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		m.slots[path] = s
	}
	s.refs++
	return s
}

func (m *MutexLocker) releaseSlot(path string, s *slot) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s.refs--
	if s.refs == 0 {
		delete(m.slots, path)
	}
}

func lockError(ctx context.Context, err error, path string) error {
	code := errors.CodeLockFailed
	if ctx.Err() == context.DeadlineExceeded {
		code = errors.CodeTimeout
	}
	return errors.WithContext(errors.Wrap(err, code, "failed to acquire lock"), "lock", path)
}
