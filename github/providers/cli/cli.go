// Package cli provides a GitHub provider implementation using the gh CLI.
package cli

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/codeforasia/git-jekyll-preview/errors"
	"github.com/codeforasia/git-jekyll-preview/exec"
	"github.com/codeforasia/git-jekyll-preview/github"
)

// CLIProvider implements github.Provider using `gh api`.
//
// The token is handed to gh through GH_TOKEN on each invocation. Without a
// token gh falls back to whatever login it has stored.
type CLIProvider struct {
	executor exec.Executor
	binary   string
	token    string
	host     string
}

// Option configures the CLI provider.
type Option func(*CLIProvider) error

// WithExecutor sets the executor gh is run through.
func WithExecutor(executor exec.Executor) Option {
	return func(c *CLIProvider) error {
		if executor == nil {
			return errors.New(errors.CodeInvalidInput, "executor cannot be nil")
		}
		c.executor = executor
		return nil
	}
}

// WithBinary sets the gh executable name or path.
func WithBinary(binary string) Option {
	return func(c *CLIProvider) error {
		if binary != "" {
			c.binary = binary
		}
		return nil
	}
}

// WithToken sets the token passed to gh.
func WithToken(token string) Option {
	return func(c *CLIProvider) error {
		c.token = token
		return nil
	}
}

// WithHost targets a GitHub Enterprise host through GH_HOST.
func WithHost(host string) Option {
	return func(c *CLIProvider) error {
		c.host = host
		return nil
	}
}

// NewCLIProvider creates a provider using the gh CLI.
//
// Example:
//
//	provider, err := cli.NewCLIProvider(cli.WithToken(token))
//	if err != nil {
//	    log.Fatal(err)
//	}
func NewCLIProvider(opts ...Option) (*CLIProvider, error) {
	provider := &CLIProvider{
		executor: exec.New(exec.WithInheritEnv(), exec.WithDisableColors()),
		binary:   "gh",
	}

	for _, opt := range opts {
		if err := opt(provider); err != nil {
			return nil, err
		}
	}

	return provider, nil
}

// NewFactory returns a github.ProviderFactory that builds a CLIProvider per
// token with the given options applied first.
func NewFactory(opts ...Option) github.ProviderFactory {
	return func(token string) (github.Provider, error) {
		all := append(append([]Option{}, opts...), WithToken(token))
		return NewCLIProvider(all...)
	}
}

type apiBranch struct {
	Name   string `json:"name"`
	Commit struct {
		SHA string `json:"sha"`
	} `json:"commit"`
	Protected bool `json:"protected"`
}

type apiCommit struct {
	SHA     string `json:"sha"`
	HTMLURL string `json:"html_url"`
	Commit  struct {
		Message string `json:"message"`
		Author  struct {
			Name string `json:"name"`
			Date string `json:"date"`
		} `json:"author"`
	} `json:"commit"`
}

// ListBranches lists every branch through `gh api --paginate`.
func (c *CLIProvider) ListBranches(ctx context.Context, owner, repo string) ([]*github.BranchData, error) {
	endpoint := fmt.Sprintf("repos/%s/%s/branches?per_page=100", url.PathEscape(owner), url.PathEscape(repo))

	result, err := c.gh(ctx).Run("api", "--paginate", endpoint)
	if err != nil {
		return nil, c.wrapCLIError(err, "failed to list branches")
	}

	// --paginate prints one JSON array per page back to back.
	var branches []*github.BranchData
	dec := json.NewDecoder(strings.NewReader(result.Stdout))
	for {
		var page []apiBranch
		if err := dec.Decode(&page); err != nil {
			if stderrors.Is(err, io.EOF) {
				break
			}
			return nil, errors.Wrap(err, errors.CodeInternal, "failed to parse branch list")
		}
		for _, b := range page {
			branches = append(branches, &github.BranchData{
				Name:      b.Name,
				SHA:       b.Commit.SHA,
				Protected: b.Protected,
			})
		}
	}

	return branches, nil
}

// GetCommit looks up a single commit through `gh api`.
func (c *CLIProvider) GetCommit(ctx context.Context, owner, repo, ref string) (*github.CommitData, error) {
	endpoint := fmt.Sprintf("repos/%s/%s/commits/%s", url.PathEscape(owner), url.PathEscape(repo), url.PathEscape(ref))

	result, err := c.gh(ctx).Run("api", endpoint)
	if err != nil {
		return nil, c.wrapCLIError(err, "failed to get commit")
	}

	var commit apiCommit
	if err := json.Unmarshal([]byte(result.Stdout), &commit); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to parse commit")
	}

	data := &github.CommitData{
		SHA:     commit.SHA,
		Message: commit.Commit.Message,
		Author:  commit.Commit.Author.Name,
		HTMLURL: commit.HTMLURL,
	}
	if commit.Commit.Author.Date != "" {
		if date, err := github.ParseGitHubTime(commit.Commit.Author.Date); err == nil {
			data.Date = date
		}
	}

	return data, nil
}

func (c *CLIProvider) gh(ctx context.Context) exec.Executor {
	env := map[string]string{"GH_PROMPT_DISABLED": "1"}
	if c.token != "" {
		env["GH_TOKEN"] = c.token
	}
	if c.host != "" {
		env["GH_HOST"] = c.host
	}
	return exec.NewWrapper(c.executor, c.binary).WithContext(ctx).WithEnv(env)
}

// wrapCLIError maps a failed gh invocation. gh reports API failures as
// "gh: <message> (HTTP <status>)", which is translated like any HTTP error.
func (c *CLIProvider) wrapCLIError(err error, message string) error {
	var execErr *exec.ExecError
	if !stderrors.As(err, &execErr) {
		return errors.Wrap(err, errors.CodeExecutionFailed, message)
	}

	stderr := strings.TrimSpace(execErr.Stderr)
	if status := github.StatusFromCLI(stderr); status != 0 {
		return errors.WithContext(github.WrapHTTPError(err, status, message), "stderr", stderr)
	}

	code := errors.CodeExecutionFailed
	lower := strings.ToLower(stderr)
	switch {
	case strings.Contains(lower, "rate limit"):
		code = errors.CodeRateLimit
	case strings.Contains(lower, "gh auth login"), strings.Contains(lower, "authentication"):
		code = errors.CodeUnauthorized
	case strings.Contains(lower, "error connecting"), strings.Contains(lower, "timeout"):
		code = errors.CodeNetwork
	}

	return errors.WithContext(errors.Wrap(err, code, message), "stderr", stderr)
}
