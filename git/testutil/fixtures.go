// Package testutil builds throwaway git repositories for tests.
//
// Repositories are created on disk with go-git so tests need no git binary
// to set them up, while the result is a regular repository that the git
// binary can clone from.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

// Test author information used for fixture commits.
const (
	TestAuthor = "Test User"
	TestEmail  = "test@example.com"
)

// Repo is an on-disk fixture repository.
type Repo struct {
	t    testing.TB
	Path string
	repo *gogit.Repository
}

// NewRepo initializes an empty non-bare repository at dir whose default
// branch is main.
func NewRepo(t testing.TB, dir string) *Repo {
	t.Helper()

	repo, err := gogit.PlainInitWithOptions(dir, &gogit.PlainInitOptions{
		InitOptions: gogit.InitOptions{DefaultBranch: plumbing.NewBranchReferenceName("main")},
	})
	require.NoError(t, err)

	return &Repo{t: t, Path: dir, repo: repo}
}

// Underlying returns the go-git repository.
func (r *Repo) Underlying() *gogit.Repository {
	return r.repo
}

// Commit writes files into the working tree, stages them and commits on the
// current branch. It returns the new commit hash.
func (r *Repo) Commit(message string, files map[string]string) string {
	r.t.Helper()

	wt, err := r.repo.Worktree()
	require.NoError(r.t, err)

	for name, content := range files {
		full := filepath.Join(r.Path, name)
		require.NoError(r.t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(r.t, os.WriteFile(full, []byte(content), 0o644))
		_, err := wt.Add(name)
		require.NoError(r.t, err)
	}

	hash, err := wt.Commit(message, &gogit.CommitOptions{
		AllowEmptyCommits: len(files) == 0,
		Author: &object.Signature{
			Name:  TestAuthor,
			Email: TestEmail,
			When:  time.Now(),
		},
	})
	require.NoError(r.t, err)

	return hash.String()
}

// Branch creates (or moves) branch name to point at hash.
func (r *Repo) Branch(name, hash string) {
	r.t.Helper()

	ref := plumbing.NewHashReference(plumbing.NewBranchReferenceName(name), plumbing.NewHash(hash))
	require.NoError(r.t, r.repo.Storer.SetReference(ref))
}

// Checkout switches the working tree to branch name, creating it from HEAD
// when it does not exist yet.
func (r *Repo) Checkout(name string) {
	r.t.Helper()

	wt, err := r.repo.Worktree()
	require.NoError(r.t, err)

	branch := plumbing.NewBranchReferenceName(name)
	_, err = r.repo.Reference(branch, false)
	require.NoError(r.t, wt.Checkout(&gogit.CheckoutOptions{
		Branch: branch,
		Create: err != nil,
		Keep:   true,
	}))
}

// Head returns the hash HEAD points at.
func (r *Repo) Head() string {
	r.t.Helper()

	head, err := r.repo.Head()
	require.NoError(r.t, err)
	return head.Hash().String()
}
