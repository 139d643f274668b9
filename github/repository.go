package github

import (
	"context"
	"fmt"
	"net/http"

	logger "github.com/sirupsen/logrus"

	"github.com/codeforasia/git-jekyll-preview/errors"
)

// Repository provides repository-scoped operations.
//
// Repository instances are created through a Client:
//
//	repo := github.NewClient(provider, "octo").Repository("demo")
type Repository struct {
	client *Client
	owner  string
	name   string
}

// Owner returns the repository owner (organization or username).
func (r *Repository) Owner() string {
	return r.owner
}

// Name returns the repository name (without owner).
func (r *Repository) Name() string {
	return r.name
}

// FullName returns owner/name.
func (r *Repository) FullName() string {
	return fmt.Sprintf("%s/%s", r.owner, r.name)
}

// Branches returns a map of branch name to head commit hash.
//
// A 401 from the API yields CodeRepositoryPrivate and a 404 yields
// CodeRepositoryNotFound. Other failures are returned unchanged.
func (r *Repository) Branches(ctx context.Context) (map[string]string, error) {
	branches, err := r.client.provider.ListBranches(ctx, r.owner, r.name)
	if err != nil {
		switch errors.GetCode(err) {
		case errors.CodeUnauthorized:
			return nil, r.repoError(err, errors.CodeRepositoryPrivate, "repository requires authentication")
		case errors.CodeNotFound:
			return nil, r.repoError(err, errors.CodeRepositoryNotFound, "repository not found")
		}
		return nil, err
	}

	heads := make(map[string]string, len(branches))
	for _, b := range branches {
		heads[b.Name] = b.SHA
	}
	return heads, nil
}

// ResolveRef returns the commit hash for ref. A branch of that name wins;
// otherwise ref is looked up as a commit.
//
// A commit lookup answered with 404 or 422 yields CodeReferenceNotFound.
// Any 401 yields CodeRepositoryPrivate.
func (r *Repository) ResolveRef(ctx context.Context, ref string) (string, error) {
	heads, err := r.Branches(ctx)
	if err != nil {
		return "", err
	}

	if sha, ok := heads[ref]; ok {
		logger.Debugf("Ref %s of %s is a branch at %s", ref, r.FullName(), sha)
		return sha, nil
	}

	commit, err := r.client.provider.GetCommit(ctx, r.owner, r.name, ref)
	if err != nil {
		switch errors.GetCode(err) {
		case errors.CodeUnauthorized:
			return "", r.repoError(err, errors.CodeRepositoryPrivate, "repository requires authentication")
		case errors.CodeNotFound, errors.CodeInvalidInput:
			status := StatusCode(err)
			if status == 0 || status == http.StatusNotFound || status == http.StatusUnprocessableEntity {
				return "", errors.WithContext(
					r.repoError(err, errors.CodeReferenceNotFound, fmt.Sprintf("no branch or commit named %q", ref)),
					"ref", ref,
				)
			}
		}
		return "", err
	}

	if commit == nil || commit.SHA == "" {
		return "", errors.WithContext(
			r.repoError(fmt.Errorf("empty commit response"), errors.CodeReferenceNotFound, fmt.Sprintf("no branch or commit named %q", ref)),
			"ref", ref,
		)
	}

	logger.Debugf("Ref %s of %s is commit %s", ref, r.FullName(), commit.SHA)
	return commit.SHA, nil
}

func (r *Repository) repoError(cause error, code errors.ErrorCode, message string) error {
	return errors.WithContextMap(errors.Wrap(cause, code, message), map[string]interface{}{
		"account":    r.owner,
		"repository": r.name,
	})
}
