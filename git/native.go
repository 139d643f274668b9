package git

import (
	"context"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// NativeResolver resolves refs with go-git instead of spawning git.
type NativeResolver struct{}

// NewNativeResolver returns a go-git backed Resolver.
func NewNativeResolver() *NativeResolver {
	return &NativeResolver{}
}

// ResolveRef opens mirror and resolves ref to a commit hash. Branch names,
// tags, full and abbreviated hashes are accepted.
func (r *NativeResolver) ResolveRef(ctx context.Context, mirror, ref string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	repo, err := gogit.PlainOpen(mirror)
	if err != nil {
		return "", classifyNativeError(err, "failed to open mirror")
	}

	hash, err := repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return "", classifyNativeError(err, "failed to resolve ref "+ref)
	}

	// Annotated tags resolve to the tag object; peel to the commit.
	if tag, err := repo.TagObject(*hash); err == nil {
		commit, err := tag.Commit()
		if err != nil {
			return "", classifyNativeError(err, "failed to peel tag "+ref)
		}
		return commit.Hash.String(), nil
	}

	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return "", classifyNativeError(err, "ref "+ref+" is not a commit")
	}
	return commit.Hash.String(), nil
}
