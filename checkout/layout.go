package checkout

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/codeforasia/git-jekyll-preview/errors"
)

// Directory names under the base path.
const (
	reposDir     = "repos"
	checkoutsDir = "checkouts"
)

// Suffixes of the files kept next to a checkout directory.
const (
	lockSuffix   = ".git-lock"
	recordSuffix = ".commit-hash"
	indexSuffix  = ".index"
)

// DefaultCloneURL is the base remote URLs are built from.
const DefaultCloneURL = "https://github.com"

// Target identifies one requested checkout and every path derived from it.
type Target struct {
	Account string
	Repo    string
	Ref     string

	Mirror   string
	Checkout string
	Remote   string
}

// LockPath is the lock file guarding the checkout.
func (t Target) LockPath() string {
	return t.Checkout + lockSuffix
}

// IndexPath is the private git index used when materializing the checkout.
func (t Target) IndexPath() string {
	return t.Checkout + indexSuffix
}

// String returns account/repo@ref.
func (t Target) String() string {
	return fmt.Sprintf("%s/%s@%s", t.Account, t.Repo, t.Ref)
}

// layout maps repository identities onto the directory structure:
//
//	<base>/repos/<account>/<repo>                 mirror
//	<base>/checkouts/<account>/<repo>/<ref>       working tree
//	<base>/checkouts/<account>/<repo>/<ref>.*     lock, record and index
//
// Names hold no separator, so each identity owns its own directories.
type layout struct {
	base     string
	cloneURL string
}

func (l layout) reposRoot() string {
	return filepath.Join(l.base, reposDir)
}

func (l layout) checkoutsRoot() string {
	return filepath.Join(l.base, checkoutsDir)
}

// target validates the inputs and derives every path for them.
func (l layout) target(account, repo, ref string) (Target, error) {
	if err := validateName("account", account); err != nil {
		return Target{}, err
	}
	if err := validateName("repository", repo); err != nil {
		return Target{}, err
	}
	if err := validateRef(ref); err != nil {
		return Target{}, err
	}

	return Target{
		Account:  account,
		Repo:     repo,
		Ref:      ref,
		Mirror:   filepath.Join(l.reposRoot(), account, repo),
		Checkout: filepath.Join(l.checkoutsRoot(), account, repo, url.PathEscape(ref)),
		Remote:   fmt.Sprintf("%s/%s/%s.git", strings.TrimSuffix(l.cloneURL, "/"), account, repo),
	}, nil
}

func validateName(field, value string) error {
	var problem string
	switch {
	case value == "":
		problem = "must not be empty"
	case value == "." || value == "..":
		problem = "must not be a relative path element"
	case strings.ContainsAny(value, `/\`):
		problem = "must not contain a path separator"
	case strings.HasPrefix(value, "-"):
		problem = "must not start with a dash"
	case strings.HasSuffix(value, lockSuffix):
		problem = "must not end with " + lockSuffix
	default:
		return nil
	}
	return errors.WithContext(
		errors.Newf(errors.CodeInvalidInput, "%s %q %s", field, value, problem),
		"field", field,
	)
}

func validateRef(ref string) error {
	var problem string
	switch {
	case ref == "":
		problem = "must not be empty"
	case strings.HasPrefix(ref, "-"):
		problem = "must not start with a dash"
	case ref == "." || ref == "..":
		problem = "must not be a relative path element"
	case hasReservedSuffix(ref):
		problem = "must not end with a reserved suffix"
	default:
		return nil
	}
	return errors.WithContext(
		errors.Newf(errors.CodeInvalidInput, "ref %q %s", ref, problem),
		"field", "ref",
	)
}

// hasReservedSuffix reports whether a checkout directory named value would
// collide with the lock, record or index file of a sibling checkout.
func hasReservedSuffix(value string) bool {
	for _, suffix := range []string{lockSuffix, recordSuffix, indexSuffix} {
		if strings.HasSuffix(value, suffix) {
			return true
		}
	}
	return false
}
