package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeforasia/git-jekyll-preview/errors"
)

func TestLayoutTarget(t *testing.T) {
	l := layout{base: "/srv/cache", cloneURL: "https://ghe.example.com/"}

	target, err := l.target("octo", "demo", "release/1.0")
	require.NoError(t, err)

	assert.Equal(t, "/srv/cache/repos/octo/demo", target.Mirror)
	assert.Equal(t, "/srv/cache/checkouts/octo/demo/release%2F1.0", target.Checkout)
	assert.Equal(t, "/srv/cache/checkouts/octo/demo/release%2F1.0.git-lock", target.LockPath())
	assert.Equal(t, "/srv/cache/checkouts/octo/demo/release%2F1.0.index", target.IndexPath())
	assert.Equal(t, "https://ghe.example.com/octo/demo.git", target.Remote)
	assert.Equal(t, "octo/demo@release/1.0", target.String())
}

func TestLayoutTargetKeepsRepositoriesApart(t *testing.T) {
	l := layout{base: "/cache", cloneURL: DefaultCloneURL}

	a, err := l.target("code-for", "asia", "main")
	require.NoError(t, err)
	b, err := l.target("code", "for-asia", "main")
	require.NoError(t, err)

	assert.NotEqual(t, a.Mirror, b.Mirror)
	assert.NotEqual(t, a.Checkout, b.Checkout)
	assert.NotEqual(t, a.LockPath(), b.LockPath())
	assert.Equal(t, "/cache/repos/code-for/asia", a.Mirror)
	assert.Equal(t, "/cache/repos/code/for-asia", b.Mirror)
}

func TestLayoutTargetValidation(t *testing.T) {
	l := layout{base: "/srv/cache", cloneURL: DefaultCloneURL}

	tests := []struct {
		name               string
		account, repo, ref string
		wantField          string
	}{
		{"empty account", "", "demo", "main", "account"},
		{"dot account", ".", "demo", "main", "account"},
		{"separator in repo", "octo", `de\mo`, "main", "repository"},
		{"dotdot repo", "octo", "..", "main", "repository"},
		{"dash repo", "octo", "-demo", "main", "repository"},
		{"empty ref", "octo", "demo", "", "ref"},
		{"option-like ref", "octo", "demo", "-h", "ref"},
		{"dotdot ref", "octo", "demo", "..", "ref"},
		{"repo named like a lock", "octo", "demo.git-lock", "main", "repository"},
		{"ref named like a record", "octo", "demo", "main.commit-hash", "ref"},
		{"ref named like an index", "octo", "demo", "main.index", "ref"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.target(tt.account, tt.repo, tt.ref)
			require.Error(t, err)
			assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

			var perr errors.PlatformError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, tt.wantField, perr.Context()["field"])
		})
	}
}
