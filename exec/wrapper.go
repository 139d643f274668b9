package exec

import (
	"context"
	"io"
	"time"
)

// CommandWrapper prepends a fixed program name to every Run call, which
// suits tools invoked repeatedly with different arguments (git, gh).
// It implements Executor, so it can be passed anywhere one is expected.
type CommandWrapper struct {
	executor Executor
	cmd      string
}

// NewWrapper creates a new CommandWrapper around executor. The executor may
// be any Executor implementation, including mocks.
func NewWrapper(executor Executor, cmd string) *CommandWrapper {
	return &CommandWrapper{
		executor: executor,
		cmd:      cmd,
	}
}

// Name returns the wrapped program name.
func (w *CommandWrapper) Name() string {
	return w.cmd
}

func (w *CommandWrapper) with(next Executor) *CommandWrapper {
	return &CommandWrapper{executor: next, cmd: w.cmd}
}

func (w *CommandWrapper) WithEnv(env map[string]string) Executor {
	return w.with(w.executor.WithEnv(env))
}

func (w *CommandWrapper) WithDir(dir string) Executor {
	return w.with(w.executor.WithDir(dir))
}

func (w *CommandWrapper) WithContext(ctx context.Context) Executor {
	return w.with(w.executor.WithContext(ctx))
}

func (w *CommandWrapper) WithTimeout(timeout time.Duration) Executor {
	return w.with(w.executor.WithTimeout(timeout))
}

func (w *CommandWrapper) WithStdin(r io.Reader) Executor {
	return w.with(w.executor.WithStdin(r))
}

// Run executes the wrapped command with the given arguments.
func (w *CommandWrapper) Run(args ...string) (*Result, error) {
	fullArgs := append([]string{w.cmd}, args...)
	return w.executor.Run(fullArgs...)
}
