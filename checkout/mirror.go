package checkout

import (
	"context"

	logger "github.com/sirupsen/logrus"

	"github.com/codeforasia/git-jekyll-preview/git"
)

// syncMirror makes sure the mirror for t exists and holds sha. Checkouts of
// different refs share one mirror, so the mirror has a lock of its own.
func (c *Coordinator) syncMirror(ctx context.Context, t Target, sha string, creds git.Credentials) error {
	return c.locker.WithLock(ctx, t.Mirror+lockSuffix, func() error {
		if !c.exists(t.Mirror) {
			if err := c.backend.CloneMirror(ctx, t.Remote, t.Mirror, creds); err != nil {
				return err
			}
			return c.touchPath(t.Mirror)
		}
		return c.fetchMirror(ctx, t, sha, creds)
	})
}

// fetchMirror fetches only when the mirror does not already hold sha for
// the ref. A ref the mirror does not know yet gets one full fetch before it
// is resolved again, and a second one if it still differs from sha. The
// mirror is touched either way.
func (c *Coordinator) fetchMirror(ctx context.Context, t Target, sha string, creds git.Credentials) error {
	fetched := false

	found, err := c.backend.ResolveRef(ctx, t.Mirror, t.Ref)
	if err != nil {
		if ctx.Err() != nil {
			return err
		}
		logger.Debugf("Complete fetch in %s: %v", t.Mirror, err)
		if err := c.backend.Fetch(ctx, t.Mirror, creds); err != nil {
			return err
		}
		fetched = true

		found, err = c.backend.ResolveRef(ctx, t.Mirror, t.Ref)
		if err != nil {
			return err
		}
	}

	if found == sha {
		logger.Debugf("Skipping fetch in %s", t.Mirror)
	} else {
		if fetched {
			logger.Debugf("Mirror %s has %s for %s after fetching, GitHub reported %s", t.Mirror, found, t.Ref, sha)
		}
		if err := c.backend.Fetch(ctx, t.Mirror, creds); err != nil {
			return err
		}
	}

	return c.touchPath(t.Mirror)
}
