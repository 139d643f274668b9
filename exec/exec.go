package exec

import (
	"context"
	"io"
	"time"

	"github.com/sirupsen/logrus"
)

//go:generate go run github.com/matryer/moq@latest -out mocks/executor.go -pkg mocks . Executor

// Executor runs external commands.
//
// Every With* method returns a derived Executor and leaves the receiver
// untouched, so one base executor can be shared by concurrent callers that
// each attach their own per-invocation environment.
type Executor interface {
	// WithEnv adds environment variables for the command.
	// Later values override earlier ones with the same key.
	WithEnv(env map[string]string) Executor

	// WithDir sets the working directory for the command.
	WithDir(dir string) Executor

	// WithContext sets the context for the command.
	// The command is killed if the context is canceled.
	WithContext(ctx context.Context) Executor

	// WithTimeout bounds the command execution time.
	WithTimeout(timeout time.Duration) Executor

	// WithStdin sets the reader connected to the command's standard input.
	WithStdin(r io.Reader) Executor

	// Run executes the command with the given arguments.
	// It returns a Result containing the captured output and exit code.
	Run(args ...string) (*Result, error)
}

// Result represents the result of a command execution.
type Result struct {
	// Stdout is the captured standard output
	Stdout string

	// Stderr is the captured standard error
	Stderr string

	// Combined is the combined stdout and stderr output
	Combined string

	// ExitCode is the exit code returned by the command
	ExitCode int
}

// Option configures a Command at creation time.
type Option func(*Command)

// WithEnv returns an Option that sets base environment variables.
func WithEnv(env map[string]string) Option {
	return func(c *Command) {
		for k, v := range env {
			c.env[k] = v
		}
	}
}

// WithDir returns an Option that sets the base working directory.
func WithDir(dir string) Option {
	return func(c *Command) {
		c.dir = dir
	}
}

// WithInheritEnv returns an Option that starts every command from the
// parent process environment.
func WithInheritEnv() Option {
	return func(c *Command) {
		c.inheritEnv = true
	}
}

// WithDisableColors returns an Option that sets the common color-disabling
// variables (NO_COLOR, TERM=dumb, CLICOLOR=0, ...) on every command.
func WithDisableColors() Option {
	return func(c *Command) {
		c.disableColors = true
	}
}

// WithTimeout returns an Option that sets a default timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Command) {
		c.timeout = timeout
	}
}

// WithLogger returns an Option that logs each invocation at debug level.
// Environment values are never logged, only their keys.
func WithLogger(logger *logrus.Entry) Option {
	return func(c *Command) {
		c.logger = logger
	}
}
