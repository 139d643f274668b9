package checkout_test

import (
	"context"
	"os"
	osexec "os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeforasia/git-jekyll-preview/checkout"
	"github.com/codeforasia/git-jekyll-preview/exec"
	"github.com/codeforasia/git-jekyll-preview/git"
	"github.com/codeforasia/git-jekyll-preview/git/testutil"
	"github.com/codeforasia/git-jekyll-preview/github"
	"github.com/codeforasia/git-jekyll-preview/github/mocks"
)

func TestPrepareCheckoutWithRealGit(t *testing.T) {
	if _, err := osexec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}

	ctx := context.Background()
	root := t.TempDir()
	remotes := filepath.Join(root, "remote")

	upstream := testutil.NewRepo(t, filepath.Join(remotes, "octo", "demo.git"))
	first := upstream.Commit("Initial commit", map[string]string{
		"_config.yml":     "title: demo\n",
		"_posts/hello.md": "hello\n",
	})

	provider := &mocks.ProviderMock{
		ListBranchesFunc: func(context.Context, string, string) ([]*github.BranchData, error) {
			return []*github.BranchData{{Name: "main", SHA: upstream.Head()}}, nil
		},
	}

	coord, err := checkout.New(filepath.Join(root, "cache"),
		git.NewCLI(exec.New(exec.WithInheritEnv())),
		github.StaticFactory(provider),
		checkout.WithCloneURL(remotes),
		checkout.WithFreshness(checkout.Never()),
	)
	require.NoError(t, err)

	path, err := coord.PrepareCheckout(ctx, "octo", "demo", "main", "token")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(coord.BasePath(), "checkouts", "octo", "demo", "main"), path)
	assert.FileExists(t, filepath.Join(path, "_posts", "hello.md"))
	assert.DirExists(t, filepath.Join(coord.BasePath(), "repos", "octo", "demo"))
	assert.FileExists(t, filepath.Join(coord.BasePath(), git.AskPassName))

	record, err := os.ReadFile(path + ".commit-hash")
	require.NoError(t, err)
	assert.Equal(t, first+"\n", string(record))

	second := upstream.Commit("Retitle", map[string]string{"_config.yml": "title: renamed\n"})

	_, err = coord.PrepareCheckout(ctx, "octo", "demo", "main", "")
	require.NoError(t, err)

	config, err := os.ReadFile(filepath.Join(path, "_config.yml"))
	require.NoError(t, err)
	assert.Equal(t, "title: renamed\n", string(config))

	record, err = os.ReadFile(path + ".commit-hash")
	require.NoError(t, err)
	assert.Equal(t, second+"\n", string(record))

	removed, err := coord.Prune(ctx, checkout.PruneOlderThan(-1))
	require.NoError(t, err)
	assert.Equal(t, []string{path}, removed)
	assert.DirExists(t, filepath.Join(coord.BasePath(), "repos", "octo", "demo"))
}
