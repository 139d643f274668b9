package checkout

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	logger "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/codeforasia/git-jekyll-preview/errors"
	"github.com/codeforasia/git-jekyll-preview/git"
	"github.com/codeforasia/git-jekyll-preview/github"
)

// Coordinator prepares local checkouts of GitHub repositories.
//
// Mirrors live under <base>/repos and are shared by every ref of a
// repository. Checkouts live under <base>/checkouts, one directory per
// (account, repo, ref). A Coordinator is safe for concurrent use, and
// several processes may share one base path.
type Coordinator struct {
	layout    layout
	backend   GitBackend
	providers github.ProviderFactory

	fs        billy.Filesystem
	freshness Freshness
	locker    Locker
	records   RecordStore
	touch     func(path string, t time.Time) error
	now       func() time.Time

	askPass     string
	askPassOnce sync.Once
	askPassErr  error

	group singleflight.Group
}

// New creates a Coordinator rooted at basePath. The repos and checkouts
// directories are created if missing.
//
// Example:
//
//	coord, err := checkout.New("/var/cache/jekit",
//	    git.NewCLI(exec.New(exec.WithInheritEnv())),
//	    sdk.NewFactory(),
//	)
//	path, err := coord.PrepareCheckout(ctx, "octo", "demo", "main", token)
func New(basePath string, backend GitBackend, providers github.ProviderFactory, opts ...Option) (*Coordinator, error) {
	if backend == nil {
		return nil, errors.New(errors.CodeInvalidInput, "git backend cannot be nil")
	}
	if providers == nil {
		return nil, errors.New(errors.CodeInvalidInput, "provider factory cannot be nil")
	}
	if basePath == "" {
		return nil, errors.New(errors.CodeInvalidInput, "base path cannot be empty")
	}

	o := &options{
		cloneURL: DefaultCloneURL,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}

	base, err := filepath.Abs(basePath)
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeInvalidInput, "invalid base path %s", basePath)
	}

	c := &Coordinator{
		layout:    layout{base: base, cloneURL: o.cloneURL},
		backend:   backend,
		providers: providers,
		fs:        o.fs,
		freshness: o.freshness,
		locker:    o.locker,
		records:   o.records,
		askPass:   o.askPass,
		now:       o.now,
	}

	if c.fs == nil {
		c.fs = osfs.New("/")
		c.touch = func(path string, t time.Time) error { return os.Chtimes(path, t, t) }
	} else {
		c.touch = changeTouch(c.fs)
	}
	if c.freshness == nil {
		c.freshness = MaxAge(DefaultMaxAge)
	}
	if c.locker == nil {
		c.locker = NewFileLocker(DefaultPollInterval)
	}
	if c.records == nil {
		c.records = NewSidecarRecords(c.fs)
	}

	for _, dir := range []string{c.layout.reposRoot(), c.layout.checkoutsRoot()} {
		if err := c.fs.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrapf(err, errors.CodeStorage, "failed to create %s", dir)
		}
	}

	return c, nil
}

// changeTouch touches through fs when it supports changing times, and does
// nothing otherwise.
func changeTouch(fs billy.Filesystem) func(string, time.Time) error {
	if ch, ok := fs.(billy.Change); ok {
		return func(path string, t time.Time) error { return ch.Chtimes(path, t, t) }
	}
	return func(string, time.Time) error { return nil }
}

// BasePath returns the absolute base directory.
func (c *Coordinator) BasePath() string {
	return c.layout.base
}

// Target validates the inputs and returns the paths they map to.
func (c *Coordinator) Target(account, repo, ref string) (Target, error) {
	return c.layout.target(account, repo, ref)
}

// PrepareCheckout returns a directory holding the contents of ref.
//
// A checkout that is still fresh and has a commit record is returned without
// contacting GitHub.
// Otherwise ref is resolved through the API, then the mirror is cloned or
// fetched and the tree is written while the checkout's lock is held.
//
// Failures carry CodeRepositoryPrivate, CodeRepositoryNotFound or
// CodeReferenceNotFound when GitHub reports the matching condition.
func (c *Coordinator) PrepareCheckout(ctx context.Context, account, repo, ref, token string) (string, error) {
	t, err := c.layout.target(account, repo, ref)
	if err != nil {
		return "", err
	}

	if c.isFresh(t) {
		logger.Debugf("Checkout %s is fresh", t.Checkout)
		return t.Checkout, nil
	}

	sha, err := c.resolve(ctx, t, token)
	if err != nil {
		return "", err
	}

	creds, err := c.credentials(token)
	if err != nil {
		return "", err
	}

	_, err, shared := c.group.Do(t.Checkout+"@"+sha, func() (interface{}, error) {
		return nil, c.locker.WithLock(ctx, t.LockPath(), func() error {
			return c.materialize(ctx, t, sha, creds)
		})
	})
	if shared {
		logger.Debugf("Shared materialization of %s at %s", t, sha)
	}
	if err != nil {
		return "", err
	}

	return t.Checkout, nil
}

// isFresh reports whether the checkout was used recently and holds a
// completed tree. A checkout without a commit record never finished
// materializing.
func (c *Coordinator) isFresh(t Target) bool {
	if !c.freshness.IsFresh(c.fs, t.Checkout) {
		return false
	}
	_, ok, err := c.records.Get(t.Checkout)
	return err == nil && ok
}

// ResolveRef returns the commit GitHub reports for ref without touching
// anything on disk.
func (c *Coordinator) ResolveRef(ctx context.Context, account, repo, ref, token string) (string, error) {
	t, err := c.layout.target(account, repo, ref)
	if err != nil {
		return "", err
	}
	return c.resolve(ctx, t, token)
}

func (c *Coordinator) resolve(ctx context.Context, t Target, token string) (string, error) {
	provider, err := c.providers(token)
	if err != nil {
		return "", errors.Wrap(err, errors.CodeInvalidConfig, "failed to create GitHub provider")
	}
	return github.NewClient(provider, t.Account).Repository(t.Repo).ResolveRef(ctx, t.Ref)
}

// credentials builds the git credentials for one call. The askpass helper
// is written on first use when none was configured.
func (c *Coordinator) credentials(token string) (git.Credentials, error) {
	if token == "" {
		logger.Debugf("Using anonymous git credentials")
		return git.Credentials{}, nil
	}

	c.askPassOnce.Do(func() {
		if c.askPass == "" {
			c.askPass, c.askPassErr = git.WriteAskPass(c.layout.base)
		}
	})
	if c.askPassErr != nil {
		return git.Credentials{}, c.askPassErr
	}

	logger.Debugf("Using token credentials through %s", c.askPass)
	return git.NewCredentials(token, c.askPass), nil
}

// materialize runs with the checkout lock held.
func (c *Coordinator) materialize(ctx context.Context, t Target, sha string, creds git.Credentials) error {
	if err := c.syncMirror(ctx, t, sha, creds); err != nil {
		return err
	}
	return c.checkoutTree(ctx, t)
}

func (c *Coordinator) exists(path string) bool {
	_, err := c.fs.Stat(path)
	return err == nil
}

func (c *Coordinator) touchPath(path string) error {
	if err := c.touch(path, c.now()); err != nil {
		return errors.Wrapf(err, errors.CodeStorage, "failed to touch %s", path)
	}
	return nil
}
