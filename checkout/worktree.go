package checkout

import (
	"context"

	logger "github.com/sirupsen/logrus"

	"github.com/codeforasia/git-jekyll-preview/errors"
)

// checkoutTree writes the mirror's commit for t.Ref into the checkout
// directory unless the record says that commit is already there.
func (c *Coordinator) checkoutTree(ctx context.Context, t Target) error {
	if err := c.fs.MkdirAll(t.Checkout, 0o755); err != nil {
		return errors.Wrapf(err, errors.CodeStorage, "failed to create checkout %s", t.Checkout)
	}

	commit, err := c.backend.ResolveRef(ctx, t.Mirror, t.Ref)
	if err != nil {
		return err
	}

	previous, ok, err := c.records.Get(t.Checkout)
	if err != nil {
		logger.Warnf("Ignoring unreadable commit record for %s: %v", t.Checkout, err)
		ok = false
	}

	if ok && previous == commit {
		logger.Debugf("Skipping checkout to %s", t.Checkout)
	} else {
		logger.Infof("Checking out %s at %s to %s", t, commit, t.Checkout)
		// Without a record the tree is not trusted until the checkout
		// below completes.
		if err := c.records.Delete(t.Checkout); err != nil {
			return err
		}
		if err := c.backend.CheckoutTree(ctx, t.Mirror, t.Checkout, t.IndexPath(), commit); err != nil {
			return err
		}
	}

	if err := c.touchPath(t.Checkout); err != nil {
		return err
	}
	return c.records.Put(t.Checkout, commit)
}
