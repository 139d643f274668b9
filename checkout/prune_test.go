package checkout

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeforasia/git-jekyll-preview/errors"
	"github.com/codeforasia/git-jekyll-preview/github"
)

// newDiskCoordinator returns a coordinator on the real filesystem so
// modification times can be set.
func newDiskCoordinator(t *testing.T) *Coordinator {
	t.Helper()

	coord, err := New(t.TempDir(), newFakeBackend(memfs.New(), nil), github.StaticFactory(newProvider(nil)))
	require.NoError(t, err)
	return coord
}

// addCheckout creates the checkout at account/repo/ref with its side files,
// aged by age, holding size bytes.
func addCheckout(t *testing.T, coord *Coordinator, name string, age time.Duration, size int) string {
	t.Helper()

	path := filepath.Join(coord.layout.checkoutsRoot(), filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Join(path, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(path, "sub", "file"), []byte(strings.Repeat("x", size)), 0o644))
	require.NoError(t, os.WriteFile(path+recordSuffix, []byte(mainSHA+"\n"), 0o644))
	require.NoError(t, os.WriteFile(path+indexSuffix, []byte("DIRC"), 0o644))
	require.NoError(t, os.WriteFile(path+lockSuffix, nil, 0o644))

	when := time.Now().Add(-age)
	require.NoError(t, os.Chtimes(path, when, when))
	return path
}

func TestPruneOlderThan(t *testing.T) {
	coord := newDiskCoordinator(t)
	old := addCheckout(t, coord, "octo/demo/old", 10*24*time.Hour, 1)
	recent := addCheckout(t, coord, "octo/demo/recent", time.Hour, 1)

	mirror := filepath.Join(coord.layout.reposRoot(), "octo", "demo")
	require.NoError(t, os.MkdirAll(mirror, 0o755))
	ancient := time.Now().Add(-365 * 24 * time.Hour)
	require.NoError(t, os.Chtimes(mirror, ancient, ancient))

	removed, err := coord.Prune(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{old}, removed)

	assert.NoDirExists(t, old)
	assert.NoFileExists(t, old+recordSuffix)
	assert.NoFileExists(t, old+indexSuffix)
	assert.FileExists(t, old+lockSuffix, "lock files stay")

	assert.DirExists(t, recent)
	assert.FileExists(t, recent+recordSuffix)
	assert.DirExists(t, mirror, "mirrors are never pruned")
}

func TestPruneWalksEveryRepository(t *testing.T) {
	coord := newDiskCoordinator(t)
	first := addCheckout(t, coord, "code-for/asia/main", 48*time.Hour, 1)
	second := addCheckout(t, coord, "code/for-asia/main", 48*time.Hour, 1)
	kept := addCheckout(t, coord, "code/for-asia/dev", time.Hour, 1)

	removed, err := coord.Prune(context.Background(), PruneOlderThan(24*time.Hour))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{first, second}, removed)
	assert.DirExists(t, kept)
}

func TestPruneToSize(t *testing.T) {
	coord := newDiskCoordinator(t)
	oldest := addCheckout(t, coord, "octo/demo/a", 3*time.Hour, 100)
	middle := addCheckout(t, coord, "octo/demo/b", 2*time.Hour, 100)
	newest := addCheckout(t, coord, "octo/demo/c", time.Hour, 100)

	removed, err := coord.Prune(context.Background(), PruneToSize(150))
	require.NoError(t, err)
	assert.Equal(t, []string{oldest, middle}, removed)
	assert.DirExists(t, newest)
}

func TestPruneCombinedStrategies(t *testing.T) {
	coord := newDiskCoordinator(t)
	stale := addCheckout(t, coord, "octo/demo/a", 48*time.Hour, 10)
	big := addCheckout(t, coord, "octo/demo/b", 2*time.Hour, 500)
	small := addCheckout(t, coord, "octo/demo/c", time.Hour, 10)

	removed, err := coord.Prune(context.Background(), PruneOlderThan(24*time.Hour), PruneToSize(100))
	require.NoError(t, err)
	assert.Equal(t, []string{stale, big}, removed)
	assert.DirExists(t, small)
}

func TestPruneSkipsCheckoutsUsedMeanwhile(t *testing.T) {
	coord := newDiskCoordinator(t)
	path := addCheckout(t, coord, "octo/demo/a", 48*time.Hour, 1)

	entry := &Entry{Path: path, ModTime: time.Now().Add(-72 * time.Hour)}
	ok, err := coord.removeCheckout(context.Background(), entry)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.DirExists(t, path)
}

// failingDeletes is a RecordStore whose Delete always fails.
type failingDeletes struct {
	RecordStore
}

func (failingDeletes) Delete(string) error {
	return errors.New(errors.CodeStorage, "record store unavailable")
}

func TestPruneKeepsCheckoutWhenRecordRemains(t *testing.T) {
	dir := t.TempDir()
	fs := osfs.New("/")
	coord, err := New(dir, newFakeBackend(memfs.New(), nil), github.StaticFactory(newProvider(nil)),
		WithFilesystem(fs),
		WithRecords(failingDeletes{RecordStore: NewSidecarRecords(fs)}),
	)
	require.NoError(t, err)
	path := addCheckout(t, coord, "octo/demo/main", 48*time.Hour, 1)

	removed, err := coord.Prune(context.Background(), PruneOlderThan(time.Hour))
	require.Error(t, err)
	assert.Empty(t, removed)

	assert.DirExists(t, path, "the tree stays while its record does")
	assert.FileExists(t, path+recordSuffix)
}

func TestPruneEmpty(t *testing.T) {
	coord := newDiskCoordinator(t)

	removed, err := coord.Prune(context.Background(), PruneOlderThan(0))
	require.NoError(t, err)
	assert.Empty(t, removed)
}

func TestStartGC(t *testing.T) {
	coord := newDiskCoordinator(t)
	path := addCheckout(t, coord, "octo/demo/a", 48*time.Hour, 1)

	stop := coord.StartGC(5*time.Millisecond, PruneOlderThan(time.Hour))
	assert.Eventually(t, func() bool {
		_, err := os.Stat(path)
		return os.IsNotExist(err)
	}, time.Second, 5*time.Millisecond)

	stop()
	stop()
}

func TestStartGCWithoutInterval(t *testing.T) {
	coord := newDiskCoordinator(t)
	path := addCheckout(t, coord, "octo/demo/a", 48*time.Hour, 1)

	for _, interval := range []time.Duration{0, -time.Second} {
		stop := coord.StartGC(interval, PruneOlderThan(time.Hour))
		require.NotNil(t, stop)
		stop()
	}
	assert.DirExists(t, path)
}
