package checkout

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/codeforasia/git-jekyll-preview/errors"
)

// RecordStore remembers which commit each checkout last materialized.
type RecordStore interface {
	// Get returns the recorded commit for path. ok is false when nothing
	// has been recorded.
	Get(path string) (commit string, ok bool, err error)

	// Put records commit for path.
	Put(path, commit string) error

	// Delete forgets path. Deleting an unknown path is not an error.
	Delete(path string) error
}

// SidecarRecords keeps each record as plain text in <path>.commit-hash.
type SidecarRecords struct {
	fs billy.Filesystem
}

// NewSidecarRecords returns a sidecar store on fs.
func NewSidecarRecords(fs billy.Filesystem) *SidecarRecords {
	return &SidecarRecords{fs: fs}
}

func (s *SidecarRecords) file(path string) string {
	return path + recordSuffix
}

// Get reads the sidecar file for path.
func (s *SidecarRecords) Get(path string) (string, bool, error) {
	data, err := util.ReadFile(s.fs, s.file(path))
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, errors.Wrapf(err, errors.CodeStorage, "failed to read commit record for %s", path)
	}

	commit := strings.TrimSpace(string(data))
	return commit, commit != "", nil
}

// Put writes the commit followed by a newline.
func (s *SidecarRecords) Put(path, commit string) error {
	if err := s.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, errors.CodeStorage, "failed to create record directory for %s", path)
	}
	if err := util.WriteFile(s.fs, s.file(path), []byte(commit+"\n"), 0o644); err != nil {
		return errors.Wrapf(err, errors.CodeStorage, "failed to write commit record for %s", path)
	}
	return nil
}

// Delete removes the sidecar file.
func (s *SidecarRecords) Delete(path string) error {
	if err := s.fs.Remove(s.file(path)); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, errors.CodeStorage, "failed to remove commit record for %s", path)
	}
	return nil
}
