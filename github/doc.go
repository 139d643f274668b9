// Package github resolves repository refs through the GitHub REST API.
//
// The package is built around the Provider interface, which has two
// implementations:
//
//   - providers/sdk talks to the API with google/go-github.
//   - providers/cli shells out to `gh api`.
//
// Providers are created per token through a ProviderFactory, because the
// caller of a checkout supplies its own (possibly empty) access token.
//
// # Resolving refs
//
// Repository.ResolveRef turns a branch name or commit identifier into a
// full commit hash:
//
//	provider, err := factory(token)
//	if err != nil {
//	    return err
//	}
//	sha, err := github.NewClient(provider, "octo").Repository("demo").ResolveRef(ctx, "main")
//
// Branches win over commit lookup. Failures are reported with the repository
// error codes of the errors package:
//
//   - REPOSITORY_PRIVATE when the API answers 401
//   - REPOSITORY_NOT_FOUND when the branch listing answers 404
//   - REFERENCE_NOT_FOUND when the commit lookup answers 404 or 422
//
// # Error handling
//
// Providers translate HTTP failures with WrapHTTPError, so callers can switch
// on errors.GetCode regardless of which provider is in use.
package github
