package git

import (
	"context"
	stderrors "errors"
	"os"
	"strings"
	"time"

	logger "github.com/sirupsen/logrus"

	"github.com/codeforasia/git-jekyll-preview/errors"
	"github.com/codeforasia/git-jekyll-preview/exec"
)

// DefaultBinary is the git executable looked up on PATH.
const DefaultBinary = "git"

// Resolver resolves a ref to a full commit hash inside a local mirror.
type Resolver interface {
	ResolveRef(ctx context.Context, mirror, ref string) (string, error)
}

// CLI runs git operations by invoking the git binary.
// It is safe for concurrent use.
type CLI struct {
	executor exec.Executor
	binary   string
	timeout  time.Duration
	resolver Resolver
}

// Option configures a CLI.
type Option func(*CLI)

// WithBinary sets the git executable name or path.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// WithTimeout bounds every git invocation. Zero disables the bound.
func WithTimeout(timeout time.Duration) Option {
	return func(c *CLI) {
		c.timeout = timeout
	}
}

// WithResolver delegates ResolveRef to r instead of git rev-parse.
func WithResolver(r Resolver) Option {
	return func(c *CLI) {
		c.resolver = r
	}
}

// NewCLI returns a CLI that runs git through executor.
func NewCLI(executor exec.Executor, opts ...Option) *CLI {
	c := &CLI{
		executor: executor,
		binary:   DefaultBinary,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// git returns an executor for one invocation.
func (c *CLI) git(ctx context.Context, dir string, env map[string]string) exec.Executor {
	var e exec.Executor = exec.NewWrapper(c.executor, c.binary)
	e = e.WithContext(ctx)
	if dir != "" {
		e = e.WithDir(dir)
	}
	if c.timeout > 0 {
		e = e.WithTimeout(c.timeout)
	}
	if env == nil {
		env = map[string]string{EnvTerminalPrompt: "0"}
	}
	return e.WithEnv(env)
}

// CloneMirror creates a mirror clone of url at mirror. The clone is staged
// next to the destination and renamed into place, so an interrupted clone
// never leaves a half-populated mirror behind.
func (c *CLI) CloneMirror(ctx context.Context, url, mirror string, creds Credentials) error {
	staging := mirror + ".partial"
	if err := os.RemoveAll(staging); err != nil {
		return errors.Wrapf(err, errors.CodeStorage, "failed to clear staging directory %s", staging)
	}

	logger.Infof("Cloning %s into %s (%s)", url, mirror, creds)
	if _, err := c.git(ctx, "", creds.Env()).Run("clone", "--mirror", "--quiet", url, staging); err != nil {
		_ = os.RemoveAll(staging)
		return errors.WithContext(wrapCLIError(err, "failed to clone mirror"), "url", url)
	}

	if err := os.Rename(staging, mirror); err != nil {
		_ = os.RemoveAll(staging)
		return errors.Wrapf(err, errors.CodeStorage, "failed to move mirror into %s", mirror)
	}
	return nil
}

// Fetch updates every ref of an existing mirror from its remote.
func (c *CLI) Fetch(ctx context.Context, mirror string, creds Credentials) error {
	logger.Infof("Fetching %s (%s)", mirror, creds)
	if _, err := c.git(ctx, mirror, creds.Env()).Run("fetch", "--quiet"); err != nil {
		return errors.WithContext(wrapCLIError(err, "failed to fetch mirror"), "mirror", mirror)
	}
	return nil
}

// ResolveRef returns the commit hash ref points at inside mirror. A ref the
// mirror does not know yields CodeReferenceNotFound.
func (c *CLI) ResolveRef(ctx context.Context, mirror, ref string) (string, error) {
	if strings.HasPrefix(ref, "-") {
		return "", errors.Newf(errors.CodeInvalidInput, "invalid ref %q", ref)
	}
	if c.resolver != nil {
		return c.resolver.ResolveRef(ctx, mirror, ref)
	}

	result, err := c.git(ctx, mirror, nil).Run("rev-parse", "--verify", "--quiet", ref+"^{commit}")
	if err != nil {
		var execErr *exec.ExecError
		if stderrors.As(err, &execErr) && execErr.ExitCode == 1 && strings.TrimSpace(execErr.Stderr) == "" {
			return "", errors.WithContext(
				errors.Newf(errors.CodeReferenceNotFound, "ref %q not found in mirror", ref),
				"mirror", mirror,
			)
		}
		return "", errors.WithContext(wrapCLIError(err, "failed to resolve ref"), "ref", ref)
	}

	sha := strings.TrimSpace(result.Stdout)
	if sha == "" {
		return "", errors.Newf(errors.CodeReferenceNotFound, "ref %q not found in mirror", ref)
	}
	return sha, nil
}

// CheckoutTree writes the contents of ref from mirror into workTree.
// indexFile, when set, gives the checkout a private index so concurrent
// checkouts from one mirror do not contend for the mirror's index.
func (c *CLI) CheckoutTree(ctx context.Context, mirror, workTree, indexFile, ref string) error {
	if strings.HasPrefix(ref, "-") {
		return errors.Newf(errors.CodeInvalidInput, "invalid ref %q", ref)
	}

	env := map[string]string{EnvTerminalPrompt: "0"}
	if indexFile != "" {
		env["GIT_INDEX_FILE"] = indexFile
	}

	logger.Infof("Checking out %s from %s into %s", ref, mirror, workTree)
	_, err := c.git(ctx, mirror, env).Run(
		"--git-dir="+mirror,
		"--work-tree="+workTree,
		"checkout", "--force", ref, "--", ".",
	)
	if err != nil {
		return errors.WithContextMap(wrapCLIError(err, "failed to check out tree"), map[string]interface{}{
			"ref":       ref,
			"work_tree": workTree,
		})
	}
	return nil
}
