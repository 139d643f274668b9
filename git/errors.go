package git

import (
	"context"
	stderrors "errors"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/codeforasia/git-jekyll-preview/errors"
	"github.com/codeforasia/git-jekyll-preview/exec"
)

// stderrPatterns map fragments of git's stderr to error codes. Matching is
// case-insensitive and the first hit wins.
var stderrPatterns = []struct {
	fragment string
	code     errors.ErrorCode
}{
	{"authentication failed", errors.CodeRepositoryPrivate},
	{"could not read username", errors.CodeRepositoryPrivate},
	{"terminal prompts disabled", errors.CodeRepositoryPrivate},
	{"invalid username or password", errors.CodeRepositoryPrivate},
	{"repository not found", errors.CodeRepositoryNotFound},
	{"does not appear to be a git repository", errors.CodeRepositoryNotFound},
	{"' does not exist", errors.CodeRepositoryNotFound},
	{"could not resolve host", errors.CodeNetwork},
	{"connection timed out", errors.CodeNetwork},
	{"connection refused", errors.CodeNetwork},
	{"unable to access", errors.CodeNetwork},
}

// wrapCLIError converts a failed git invocation into a platform error.
// The captured stderr and exit code are attached as context.
func wrapCLIError(err error, message string) error {
	if err == nil {
		return nil
	}

	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.Wrap(err, errors.CodeTimeout, message)
	}

	var execErr *exec.ExecError
	if !stderrors.As(err, &execErr) {
		return errors.Wrap(err, errors.CodeExecutionFailed, message)
	}

	code := errors.CodeExecutionFailed
	stderr := strings.ToLower(execErr.Stderr)
	for _, p := range stderrPatterns {
		if strings.Contains(stderr, p.fragment) {
			code = p.code
			break
		}
	}

	return errors.WrapWithContext(err, code, message, map[string]interface{}{
		"args":      execErr.Command,
		"exit_code": execErr.ExitCode,
		"stderr":    strings.TrimSpace(execErr.Stderr),
	})
}

// classifyNativeError maps go-git failures raised while resolving refs.
func classifyNativeError(err error, message string) error {
	if err == nil {
		return nil
	}

	switch {
	case stderrors.Is(err, plumbing.ErrReferenceNotFound),
		stderrors.Is(err, plumbing.ErrObjectNotFound):
		return errors.Wrap(err, errors.CodeReferenceNotFound, message)
	case stderrors.Is(err, gogit.ErrRepositoryNotExists):
		return errors.Wrap(err, errors.CodeNotFound, message)
	default:
		return errors.Wrap(err, errors.CodeExecutionFailed, message)
	}
}
