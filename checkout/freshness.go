package checkout

import (
	"time"

	"github.com/go-git/go-billy/v5"
)

// DefaultMaxAge is how long a checkout is served without asking the remote.
const DefaultMaxAge = time.Minute

// Freshness decides whether a cached path can be reused as is.
type Freshness interface {
	IsFresh(fs billy.Filesystem, path string) bool
}

// FreshnessFunc adapts a function to Freshness.
type FreshnessFunc func(fs billy.Filesystem, path string) bool

// IsFresh calls f.
func (f FreshnessFunc) IsFresh(fs billy.Filesystem, path string) bool {
	return f(fs, path)
}

type maxAge struct {
	age time.Duration
	now func() time.Time
}

// MaxAge treats a path as fresh when it exists and was modified less than
// age ago.
func MaxAge(age time.Duration) Freshness {
	return &maxAge{age: age, now: time.Now}
}

func (m *maxAge) IsFresh(fs billy.Filesystem, path string) bool {
	info, err := fs.Stat(path)
	if err != nil {
		return false
	}
	return m.now().Sub(info.ModTime()) < m.age
}

// Never treats every path as stale.
func Never() Freshness {
	return FreshnessFunc(func(billy.Filesystem, string) bool { return false })
}
