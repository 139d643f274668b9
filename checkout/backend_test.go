package checkout

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/codeforasia/git-jekyll-preview/errors"
	"github.com/codeforasia/git-jekyll-preview/git"
)

// fakeBackend simulates git against an in-memory remote. Mirrors are
// directories on fs holding a snapshot of the remote's refs.
type fakeBackend struct {
	mu sync.Mutex
	fs billy.Filesystem

	remote  map[string]string
	mirrors map[string]map[string]string

	calls []string
	creds []git.Credentials

	// checkoutErr, when set, fails CheckoutTree after writing part of the
	// tree.
	checkoutErr error
	// beforeFetch may change the remote before a fetch copies it.
	beforeFetch func(remote map[string]string)
}

func newFakeBackend(fs billy.Filesystem, remote map[string]string) *fakeBackend {
	return &fakeBackend{
		fs:      fs,
		remote:  remote,
		mirrors: make(map[string]map[string]string),
	}
}

func (f *fakeBackend) setRemote(ref, sha string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.remote[ref] = sha
}

func (f *fakeBackend) snapshot() map[string]string {
	refs := make(map[string]string, len(f.remote))
	for k, v := range f.remote {
		refs[k] = v
	}
	return refs
}

func (f *fakeBackend) CloneMirror(_ context.Context, _, mirror string, creds git.Credentials) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, "clone")
	f.creds = append(f.creds, creds)
	if err := f.fs.MkdirAll(mirror, 0o755); err != nil {
		return err
	}
	f.mirrors[mirror] = f.snapshot()
	return nil
}

func (f *fakeBackend) Fetch(_ context.Context, mirror string, creds git.Credentials) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, "fetch")
	f.creds = append(f.creds, creds)
	if f.beforeFetch != nil {
		f.beforeFetch(f.remote)
	}
	f.mirrors[mirror] = f.snapshot()
	return nil
}

func (f *fakeBackend) ResolveRef(_ context.Context, mirror, ref string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, "resolve")
	refs := f.mirrors[mirror]
	if sha, ok := refs[ref]; ok {
		return sha, nil
	}
	for _, sha := range refs {
		if sha == ref {
			return sha, nil
		}
	}
	return "", errors.Newf(errors.CodeReferenceNotFound, "ref %q not found in mirror", ref)
}

func (f *fakeBackend) CheckoutTree(_ context.Context, _, workTree, _, ref string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, "checkout")
	if f.checkoutErr != nil {
		_ = util.WriteFile(f.fs, filepath.Join(workTree, "PARTIAL"), nil, 0o644)
		return f.checkoutErr
	}
	return util.WriteFile(f.fs, filepath.Join(workTree, "COMMIT"), []byte(ref), 0o644)
}

func (f *fakeBackend) failCheckouts(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkoutErr = err
}

func (f *fakeBackend) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeBackend) Creds() []git.Credentials {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]git.Credentials(nil), f.creds...)
}

func (f *fakeBackend) count(call string) int {
	n := 0
	for _, c := range f.Calls() {
		if c == call {
			n++
		}
	}
	return n
}

func (f *fakeBackend) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
	f.creds = nil
}
