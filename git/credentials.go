package git

import (
	"os"
	"path/filepath"

	"github.com/codeforasia/git-jekyll-preview/errors"
)

// Environment variables understood by git and the askpass helper.
const (
	EnvAskPass        = "GIT_ASKPASS"
	EnvUsername       = "GIT_USERNAME"
	EnvPassword       = "GIT_PASSWORD"
	EnvTerminalPrompt = "GIT_TERMINAL_PROMPT"
)

// AskPassName is the file name of the helper written by WriteAskPass.
const AskPassName = "git-askpass.sh"

const askPassScript = `#!/bin/sh
case "$1" in
  Username*) echo "$GIT_USERNAME" ;;
  *) echo "$GIT_PASSWORD" ;;
esac
`

// Credentials authenticate a single git invocation against an HTTPS remote.
// The token is sent as the username with an empty password, which is what
// GitHub expects for OAuth and personal access tokens.
type Credentials struct {
	Token   string
	AskPass string
}

// NewCredentials returns credentials for token using the helper at askPass.
func NewCredentials(token, askPass string) Credentials {
	return Credentials{Token: token, AskPass: askPass}
}

// Anonymous reports whether no token is attached.
func (c Credentials) Anonymous() bool {
	return c.Token == ""
}

// Env returns the environment for the git child process. Without a token
// every credential variable is present but blank, so nothing inherited from
// a parent process can be used by accident. Interactive prompting is always
// disabled.
func (c Credentials) Env() map[string]string {
	env := map[string]string{
		EnvAskPass:        "",
		EnvUsername:       "",
		EnvPassword:       "",
		EnvTerminalPrompt: "0",
	}
	if c.Token != "" && c.AskPass != "" {
		env[EnvAskPass] = c.AskPass
		env[EnvUsername] = c.Token
	}
	return env
}

// String hides the token so credentials can be logged.
func (c Credentials) String() string {
	if c.Anonymous() {
		return "anonymous"
	}
	return "token(redacted)"
}

// WriteAskPass writes the askpass helper script into dir and returns its
// path. An existing helper with identical content is left alone.
func WriteAskPass(dir string) (string, error) {
	path := filepath.Join(dir, AskPassName)

	if data, err := os.ReadFile(path); err == nil && string(data) == askPassScript {
		return path, nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrapf(err, errors.CodeStorage, "failed to create askpass directory %s", dir)
	}

	tmp, err := os.CreateTemp(dir, ".askpass-*")
	if err != nil {
		return "", errors.Wrap(err, errors.CodeStorage, "failed to create askpass helper")
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := tmp.WriteString(askPassScript); err != nil {
		_ = tmp.Close()
		return "", errors.Wrap(err, errors.CodeStorage, "failed to write askpass helper")
	}
	if err := tmp.Close(); err != nil {
		return "", errors.Wrap(err, errors.CodeStorage, "failed to close askpass helper")
	}
	if err := os.Chmod(tmpPath, 0o700); err != nil {
		return "", errors.Wrap(err, errors.CodeStorage, "failed to make askpass helper executable")
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return "", errors.Wrap(err, errors.CodeStorage, "failed to install askpass helper")
	}

	return path, nil
}
