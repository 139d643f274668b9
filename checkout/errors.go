package checkout

import "github.com/codeforasia/git-jekyll-preview/errors"

// IsPrivateRepo reports whether err means the repository needs credentials
// the caller did not supply, or the supplied token was rejected.
func IsPrivateRepo(err error) bool {
	return errors.HasCode(err, errors.CodeRepositoryPrivate)
}

// IsRepoNotFound reports whether err means the repository does not exist.
func IsRepoNotFound(err error) bool {
	return errors.HasCode(err, errors.CodeRepositoryNotFound)
}

// IsRefNotFound reports whether err means the ref is neither a branch nor a
// commit of an existing repository.
func IsRefNotFound(err error) bool {
	return errors.HasCode(err, errors.CodeReferenceNotFound)
}
