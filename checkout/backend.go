package checkout

import (
	"context"

	"github.com/codeforasia/git-jekyll-preview/git"
)

// GitBackend performs the version control work on local mirrors.
// git.CLI is the production implementation.
type GitBackend interface {
	// CloneMirror creates a mirror of url at mirror.
	CloneMirror(ctx context.Context, url, mirror string, creds git.Credentials) error

	// Fetch updates every ref of mirror from its remote.
	Fetch(ctx context.Context, mirror string, creds git.Credentials) error

	// ResolveRef returns the commit ref points at inside mirror.
	ResolveRef(ctx context.Context, mirror, ref string) (string, error)

	// CheckoutTree overwrites workTree with the contents of ref, using
	// indexFile as the git index.
	CheckoutTree(ctx context.Context, mirror, workTree, indexFile, ref string) error
}

var _ GitBackend = (*git.CLI)(nil)
