// Package sdk provides a GitHub provider implementation using the go-github SDK.
package sdk

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v67/github"
	logger "github.com/sirupsen/logrus"

	"github.com/codeforasia/git-jekyll-preview/errors"
	gh "github.com/codeforasia/git-jekyll-preview/github"
)

// branchPageSize is the largest page the branches endpoint serves.
const branchPageSize = 100

// SDKProvider implements github.Provider using the go-github SDK.
type SDKProvider struct {
	client *github.Client
}

// config holds configuration for SDKProvider.
type config struct {
	client     *github.Client
	httpClient *http.Client
	token      string
	baseURL    string
}

// Option configures the SDK provider.
type Option func(*config) error

// WithToken sets the authentication token. An empty token leaves the
// provider anonymous.
func WithToken(token string) Option {
	return func(cfg *config) error {
		cfg.token = token
		return nil
	}
}

// WithClient sets a custom GitHub client for the SDK provider.
func WithClient(client *github.Client) Option {
	return func(cfg *config) error {
		if client == nil {
			err := errors.New(errors.CodeInvalidInput, "client cannot be nil")
			return errors.WithContext(err, "field", "client")
		}
		cfg.client = client
		return nil
	}
}

// WithHTTPClient sets the HTTP client used when no GitHub client is given.
func WithHTTPClient(client *http.Client) Option {
	return func(cfg *config) error {
		cfg.httpClient = client
		return nil
	}
}

// WithBaseURL points the provider at another API root, such as a GitHub
// Enterprise server ("https://ghe.example.com/api/v3/").
func WithBaseURL(base string) Option {
	return func(cfg *config) error {
		if base == "" {
			return nil
		}
		if _, err := url.Parse(base); err != nil {
			return errors.WithContext(
				errors.Wrap(err, errors.CodeInvalidInput, "invalid API base URL"),
				"field", "base_url",
			)
		}
		cfg.baseURL = base
		return nil
	}
}

// NewSDKProvider creates a provider using the GitHub SDK.
//
// Example with token authentication:
//
//	provider, err := sdk.NewSDKProvider(sdk.WithToken("ghp_..."))
//
// Example against GitHub Enterprise:
//
//	provider, err := sdk.NewSDKProvider(
//	    sdk.WithToken(token),
//	    sdk.WithBaseURL("https://ghe.example.com/api/v3/"),
//	)
func NewSDKProvider(opts ...Option) (*SDKProvider, error) {
	cfg := &config{}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	client := cfg.client
	if client == nil {
		client = github.NewClient(cfg.httpClient)
	}
	if cfg.token != "" {
		client = client.WithAuthToken(cfg.token)
	}
	if cfg.baseURL != "" {
		base := cfg.baseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		parsed, err := url.Parse(base)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInvalidInput, "invalid API base URL")
		}
		client.BaseURL = parsed
	}

	return &SDKProvider{
		client: client,
	}, nil
}

// NewFactory returns a github.ProviderFactory that builds an SDKProvider per
// token with the given options applied first.
func NewFactory(opts ...Option) gh.ProviderFactory {
	return func(token string) (gh.Provider, error) {
		all := append(append([]Option{}, opts...), WithToken(token))
		return NewSDKProvider(all...)
	}
}

// Client returns the underlying go-github client.
func (s *SDKProvider) Client() *github.Client {
	return s.client
}

// ListBranches lists every branch, following pagination.
func (s *SDKProvider) ListBranches(ctx context.Context, owner, repo string) ([]*gh.BranchData, error) {
	opts := &github.BranchListOptions{
		ListOptions: github.ListOptions{PerPage: branchPageSize},
	}

	var result []*gh.BranchData
	for {
		branches, resp, err := s.client.Repositories.ListBranches(ctx, owner, repo, opts)
		if err != nil {
			return nil, s.wrapError(err, resp, "failed to list branches")
		}

		for _, b := range branches {
			result = append(result, &gh.BranchData{
				Name:      b.GetName(),
				SHA:       b.GetCommit().GetSHA(),
				Protected: b.GetProtected(),
			})
		}

		if resp == nil || resp.NextPage == 0 {
			break
		}
		logger.Debugf("Fetching page %d of %s/%s branches", resp.NextPage, owner, repo)
		opts.Page = resp.NextPage
	}

	return result, nil
}

// GetCommit looks up a single commit.
func (s *SDKProvider) GetCommit(ctx context.Context, owner, repo, ref string) (*gh.CommitData, error) {
	commit, resp, err := s.client.Repositories.GetCommit(ctx, owner, repo, ref, nil)
	if err != nil {
		return nil, s.wrapError(err, resp, "failed to get commit")
	}

	data := &gh.CommitData{
		SHA:     commit.GetSHA(),
		HTMLURL: commit.GetHTMLURL(),
	}
	if c := commit.GetCommit(); c != nil {
		data.Message = c.GetMessage()
		if author := c.GetAuthor(); author != nil {
			data.Author = author.GetName()
			data.Date = author.GetDate().Time
		}
	}

	return data, nil
}

// wrapError converts go-github errors into platform errors.
func (s *SDKProvider) wrapError(err error, resp *github.Response, message string) error {
	if err == nil {
		return nil
	}

	statusCode := 0
	if resp != nil {
		statusCode = resp.StatusCode
	}

	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		statusCode = ghErr.Response.StatusCode
	}

	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return errors.Wrap(err, errors.CodeRateLimit, message)
	}

	if statusCode != 0 {
		return gh.WrapHTTPError(err, statusCode, message)
	}

	// Fallback to network error for unknown errors
	return errors.Wrap(err, errors.CodeNetwork, message)
}
