package github

import "context"

//go:generate go run github.com/matryer/moq@latest -out mocks/provider.go -pkg mocks . Provider

// Provider is a read-only view of the GitHub API.
// Implementations include sdk.SDKProvider (go-github) and cli.CLIProvider
// (gh CLI).
//
// All methods take a context for cancellation. Errors carry codes produced by
// WrapHTTPError: CodeUnauthorized for 401, CodeNotFound for 404,
// CodeInvalidInput for 422, and so on.
type Provider interface {
	// ListBranches returns every branch of the repository, following
	// pagination to the end.
	ListBranches(ctx context.Context, owner, repo string) ([]*BranchData, error)

	// GetCommit looks up a single commit by hash, abbreviated hash or any
	// other ref the API accepts.
	GetCommit(ctx context.Context, owner, repo, ref string) (*CommitData, error)
}

// ProviderFactory builds a Provider authenticated with token. An empty token
// yields an anonymous provider.
type ProviderFactory func(token string) (Provider, error)

// StaticFactory returns a factory that ignores the token and always yields p.
// It is mostly useful in tests.
func StaticFactory(p Provider) ProviderFactory {
	return func(string) (Provider, error) {
		return p, nil
	}
}
