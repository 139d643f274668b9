package git

import (
	"os"
	osexec "os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialsEnv(t *testing.T) {
	tests := []struct {
		name  string
		creds Credentials
		want  map[string]string
	}{
		{
			name:  "anonymous blanks every variable",
			creds: NewCredentials("", "/cache/git-askpass.sh"),
			want: map[string]string{
				EnvAskPass:        "",
				EnvUsername:       "",
				EnvPassword:       "",
				EnvTerminalPrompt: "0",
			},
		},
		{
			name:  "token uses helper with empty password",
			creds: NewCredentials("tok", "/cache/git-askpass.sh"),
			want: map[string]string{
				EnvAskPass:        "/cache/git-askpass.sh",
				EnvUsername:       "tok",
				EnvPassword:       "",
				EnvTerminalPrompt: "0",
			},
		},
		{
			name:  "token without helper stays anonymous",
			creds: NewCredentials("tok", ""),
			want: map[string]string{
				EnvAskPass:        "",
				EnvUsername:       "",
				EnvPassword:       "",
				EnvTerminalPrompt: "0",
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.creds.Env())
		})
	}
}

func TestCredentialsString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "anonymous", Credentials{}.String())
	assert.NotContains(t, NewCredentials("s3cr3t", "/x").String(), "s3cr3t")
}

func TestWriteAskPass(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested")

	path, err := WriteAskPass(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, AskPassName), path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&0o100, "helper must be executable")

	again, err := WriteAskPass(dir)
	require.NoError(t, err)
	assert.Equal(t, path, again)
}

func TestAskPassAnswersPrompts(t *testing.T) {
	if _, err := osexec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	t.Parallel()

	path, err := WriteAskPass(t.TempDir())
	require.NoError(t, err)

	env := append(os.Environ(), EnvUsername+"=the-token", EnvPassword+"=")

	user := osexec.Command(path, "Username for 'https://github.com': ")
	user.Env = env
	out, err := user.Output()
	require.NoError(t, err)
	assert.Equal(t, "the-token", strings.TrimSpace(string(out)))

	pass := osexec.Command(path, "Password for 'https://the-token@github.com': ")
	pass.Env = env
	out, err = pass.Output()
	require.NoError(t, err)
	assert.Empty(t, strings.TrimSpace(string(out)))
}
