package exec

import (
	"context"
	"io"
	"os"
	osexec "os/exec"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
)

var colorEnv = map[string]string{
	"NO_COLOR":       "1",
	"TERM":           "dumb",
	"CLICOLOR":       "0",
	"CLICOLOR_FORCE": "0",
	"FORCE_COLOR":    "0",
}

// Command is the concrete implementation of the Executor interface.
// A Command value is never mutated after construction.
type Command struct {
	ctx           context.Context
	env           map[string]string
	dir           string
	stdin         io.Reader
	timeout       time.Duration
	inheritEnv    bool
	disableColors bool
	logger        *logrus.Entry
}

// New creates a new Command with the given options.
func New(opts ...Option) *Command {
	cmd := &Command{
		ctx: context.Background(),
		env: make(map[string]string),
	}

	for _, opt := range opts {
		opt(cmd)
	}

	return cmd
}

func (c *Command) derive() *Command {
	next := *c
	next.env = make(map[string]string, len(c.env))
	for k, v := range c.env {
		next.env[k] = v
	}
	return &next
}

// WithEnv returns a copy with env merged over the existing environment.
func (c *Command) WithEnv(env map[string]string) Executor {
	next := c.derive()
	for k, v := range env {
		next.env[k] = v
	}
	return next
}

// WithDir returns a copy running in dir.
func (c *Command) WithDir(dir string) Executor {
	next := c.derive()
	next.dir = dir
	return next
}

// WithContext returns a copy bound to ctx.
func (c *Command) WithContext(ctx context.Context) Executor {
	next := c.derive()
	next.ctx = ctx
	return next
}

// WithTimeout returns a copy with the given timeout.
func (c *Command) WithTimeout(timeout time.Duration) Executor {
	next := c.derive()
	next.timeout = timeout
	return next
}

// WithStdin returns a copy reading standard input from r.
func (c *Command) WithStdin(r io.Reader) Executor {
	next := c.derive()
	next.stdin = r
	return next
}

// Run executes the command with the given arguments.
func (c *Command) Run(args ...string) (*Result, error) {
	if len(args) == 0 {
		return nil, &ExecError{
			Command:  args,
			ExitCode: -1,
			Err:      osexec.ErrNotFound,
		}
	}

	ctx := c.ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	cmd := osexec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = c.dir
	cmd.Env = c.environ()
	cmd.Stdin = c.stdin

	stdout := newOutputCapture()
	stderr := newOutputCapture()
	combined := newOutputCapture()
	cmd.Stdout = newMultiWriter(stdout, combined)
	cmd.Stderr = newMultiWriter(stderr, combined)

	if c.logger != nil {
		c.logger.WithFields(logrus.Fields{
			"args":    args,
			"dir":     c.dir,
			"env_set": c.envKeys(),
		}).Debug("running command")
	}

	err := cmd.Run()

	result := &Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Combined: combined.String(),
		ExitCode: -1,
	}
	if cmd.ProcessState != nil {
		result.ExitCode = cmd.ProcessState.ExitCode()
	}

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return result, &ExecError{
			Command:  args,
			ExitCode: result.ExitCode,
			Stdout:   result.Stdout,
			Stderr:   result.Stderr,
			Err:      err,
		}
	}

	return result, nil
}

// environ builds the child environment. A nil slice would make os/exec
// inherit the parent environment, so an empty one is returned instead when
// inheritance is off.
func (c *Command) environ() []string {
	env := []string{}
	if c.inheritEnv {
		env = append(env, os.Environ()...)
	}
	for k, v := range c.env {
		env = append(env, k+"="+v)
	}
	if c.disableColors {
		for k, v := range colorEnv {
			env = append(env, k+"="+v)
		}
	}
	return env
}

func (c *Command) envKeys() []string {
	keys := make([]string, 0, len(c.env))
	for k := range c.env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
