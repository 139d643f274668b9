// Package exec runs local commands behind a mockable interface.
//
// Command wraps os/exec and implements Executor. Configuration is split
// between creation-time options and per-invocation With* calls; the latter
// return a derived executor, so a single base executor can be shared safely
// between goroutines.
//
// # Basic Usage
//
//	e := exec.New()
//	result, err := e.Run("git", "--version")
//	if err != nil {
//		return err
//	}
//	fmt.Println(result.Stdout)
//
// # Configuration
//
//	e := exec.New(
//		exec.WithInheritEnv(),
//		exec.WithEnv(map[string]string{"GIT_TERMINAL_PROMPT": "0"}),
//	)
//
//	result, err := e.
//		WithContext(ctx).
//		WithDir(mirrorPath).
//		WithEnv(map[string]string{"GIT_ASKPASS": helper}).
//		Run("git", "fetch")
//
// The environment passed through WithEnv exists only in the child process.
// The parent process environment is never modified.
//
// # Command Wrappers
//
// CommandWrapper fixes the program name:
//
//	git := exec.NewWrapper(exec.New(), "git")
//	result, err := git.WithDir(repo).Run("rev-parse", "HEAD")
//
// # Error Handling
//
// A failed command returns an *ExecError holding the exit code and captured
// output. The Result is returned alongside the error.
//
//	result, err := git.Run("fetch")
//	var execErr *exec.ExecError
//	if errors.As(err, &execErr) {
//		log.Printf("git exited %d: %s", execErr.ExitCode, execErr.Stderr)
//	}
//
// # Testing
//
// The mocks package contains a moq-generated ExecutorMock.
package exec
