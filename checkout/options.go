package checkout

import (
	"time"

	"github.com/go-git/go-billy/v5"
)

// Option configures a Coordinator.
type Option func(*options)

type options struct {
	fs        billy.Filesystem
	freshness Freshness
	locker    Locker
	records   RecordStore
	askPass   string
	cloneURL  string
	now       func() time.Time
}

// WithFilesystem sets the filesystem used for every path the coordinator
// inspects itself. Git still works on the real disk, so a substitute is
// only useful together with a substitute GitBackend.
func WithFilesystem(fs billy.Filesystem) Option {
	return func(o *options) {
		o.fs = fs
	}
}

// WithFreshness sets the check that lets a cached checkout skip the remote.
func WithFreshness(f Freshness) Option {
	return func(o *options) {
		o.freshness = f
	}
}

// WithLocker sets the lock implementation.
func WithLocker(l Locker) Option {
	return func(o *options) {
		o.locker = l
	}
}

// WithRecords sets where materialized commits are recorded.
func WithRecords(r RecordStore) Option {
	return func(o *options) {
		o.records = r
	}
}

// WithAskPass uses an existing askpass helper instead of writing one into
// the base path.
func WithAskPass(path string) Option {
	return func(o *options) {
		o.askPass = path
	}
}

// WithCloneURL sets the base remote URLs are built from, for example a
// GitHub Enterprise host.
func WithCloneURL(base string) Option {
	return func(o *options) {
		if base != "" {
			o.cloneURL = base
		}
	}
}

// WithClock sets the time source used to touch paths.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}
