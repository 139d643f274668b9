package checkout

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/codeforasia/git-jekyll-preview/errors"
)

const indexVersion = "1"

// IndexFileName is the file name used for the shared record index.
const IndexFileName = "records.json"

// Record is one entry of the record index.
type Record struct {
	Commit    string    `json:"commit"`
	UpdatedAt time.Time `json:"updated_at"`
}

type recordIndex struct {
	Version string             `json:"version"`
	Records map[string]*Record `json:"records"`
}

// IndexRecords keeps every record in one versioned JSON file.
//
// Each write reloads the file, applies the change and replaces the file
// atomically, so writers holding the index lock never lose each other's
// entries.
type IndexRecords struct {
	fs     billy.Filesystem
	path   string
	locker Locker
	now    func() time.Time

	mu sync.Mutex
}

// NewIndexRecords returns an index store at path on fs. Writers are
// serialized through locker, which defaults to an in-process lock.
func NewIndexRecords(fs billy.Filesystem, path string, locker Locker) *IndexRecords {
	if locker == nil {
		locker = NewMutexLocker()
	}
	return &IndexRecords{
		fs:     fs,
		path:   path,
		locker: locker,
		now:    time.Now,
	}
}

// Get looks path up in the index.
func (r *IndexRecords) Get(path string) (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx, err := r.load()
	if err != nil {
		return "", false, err
	}

	rec, ok := idx.Records[path]
	if !ok || rec.Commit == "" {
		return "", false, nil
	}
	return rec.Commit, true, nil
}

// Put stores commit for path.
func (r *IndexRecords) Put(path, commit string) error {
	return r.update(func(idx *recordIndex) {
		idx.Records[path] = &Record{Commit: commit, UpdatedAt: r.now().UTC()}
	})
}

// Delete drops path from the index.
func (r *IndexRecords) Delete(path string) error {
	return r.update(func(idx *recordIndex) {
		delete(idx.Records, path)
	})
}

// List returns a copy of every record.
func (r *IndexRecords) List() (map[string]Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx, err := r.load()
	if err != nil {
		return nil, err
	}

	out := make(map[string]Record, len(idx.Records))
	for path, rec := range idx.Records {
		out[path] = *rec
	}
	return out, nil
}

func (r *IndexRecords) update(apply func(*recordIndex)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.locker.WithLock(context.Background(), r.path+".lock", func() error {
		idx, err := r.load()
		if err != nil {
			return err
		}
		apply(idx)
		return r.save(idx)
	})
}

// load reads the index, returning an empty one when the file is missing.
// A file of another version is refused rather than overwritten.
func (r *IndexRecords) load() (*recordIndex, error) {
	data, err := util.ReadFile(r.fs, r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &recordIndex{Version: indexVersion, Records: make(map[string]*Record)}, nil
		}
		return nil, errors.Wrapf(err, errors.CodeStorage, "failed to read record index %s", r.path)
	}

	var idx recordIndex
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, errors.Wrapf(err, errors.CodeStorage, "failed to parse record index %s", r.path)
	}

	if idx.Version != indexVersion {
		return nil, errors.WithContextMap(
			errors.Newf(errors.CodeStorage, "unsupported record index version: %s (expected %s)", idx.Version, indexVersion),
			map[string]interface{}{"path": r.path, "version": idx.Version},
		)
	}

	if idx.Records == nil {
		idx.Records = make(map[string]*Record)
	}
	return &idx, nil
}

// save writes to a temporary file and renames it over the index.
func (r *IndexRecords) save(idx *recordIndex) error {
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "failed to marshal record index")
	}

	if err := r.fs.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return errors.Wrapf(err, errors.CodeStorage, "failed to create directory for %s", r.path)
	}

	tmpPath := r.path + ".tmp"
	tmp, err := r.fs.Create(tmpPath)
	if err != nil {
		return errors.Wrap(err, errors.CodeStorage, "failed to create temporary record index")
	}

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = r.fs.Remove(tmpPath)
		return errors.Wrap(err, errors.CodeStorage, "failed to write temporary record index")
	}

	if err := tmp.Close(); err != nil {
		_ = r.fs.Remove(tmpPath)
		return errors.Wrap(err, errors.CodeStorage, "failed to close temporary record index")
	}

	if err := r.fs.Rename(tmpPath, r.path); err != nil {
		_ = r.fs.Remove(tmpPath)
		return errors.Wrap(err, errors.CodeStorage, "failed to replace record index")
	}

	return nil
}
