package checkout

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-git/go-billy/v5/util"
	logger "github.com/sirupsen/logrus"

	"github.com/codeforasia/git-jekyll-preview/errors"
)

// DefaultPruneAge is the age PruneOlderThan uses when Prune gets no
// strategies.
const DefaultPruneAge = 7 * 24 * time.Hour

// Entry describes one checkout directory considered for pruning.
type Entry struct {
	Path    string
	ModTime time.Time
	Size    int64
}

// PruneStrategy selects checkouts to remove.
type PruneStrategy interface {
	ShouldPrune(entry *Entry, now time.Time) bool
}

type pruneOlderThan struct {
	maxAge time.Duration
}

// PruneOlderThan selects checkouts not used for longer than maxAge.
func PruneOlderThan(maxAge time.Duration) PruneStrategy {
	return &pruneOlderThan{maxAge: maxAge}
}

func (p *pruneOlderThan) ShouldPrune(entry *Entry, now time.Time) bool {
	return now.Sub(entry.ModTime) > p.maxAge
}

type pruneToSize struct {
	maxBytes int64
}

// PruneToSize removes least recently used checkouts until the checkouts
// together take at most maxBytes.
func PruneToSize(maxBytes int64) PruneStrategy {
	return &pruneToSize{maxBytes: maxBytes}
}

// ShouldPrune is never true on its own; Prune applies the size budget
// across all entries.
func (p *pruneToSize) ShouldPrune(*Entry, time.Time) bool {
	return false
}

// Prune removes checkouts selected by any of the strategies and returns
// their paths. Without strategies, checkouts unused for DefaultPruneAge are
// removed.
//
// Each removal happens under the checkout's lock and is skipped when the
// checkout was touched after it was selected. The directory, its commit
// record and its index file go; lock files stay so waiting processes keep
// excluding each other. Mirrors are never removed.
func (c *Coordinator) Prune(ctx context.Context, strategies ...PruneStrategy) ([]string, error) {
	if len(strategies) == 0 {
		strategies = []PruneStrategy{PruneOlderThan(DefaultPruneAge)}
	}

	var sizeStrategy *pruneToSize
	var others []PruneStrategy
	for _, s := range strategies {
		if ps, ok := s.(*pruneToSize); ok {
			sizeStrategy = ps
		} else {
			others = append(others, s)
		}
	}

	entries, err := c.listCheckouts(sizeStrategy != nil)
	if err != nil {
		return nil, err
	}

	now := c.now()
	selected := make(map[string]*Entry)
	for _, entry := range entries {
		for _, s := range others {
			if s.ShouldPrune(entry, now) {
				selected[entry.Path] = entry
				break
			}
		}
	}

	if sizeStrategy != nil {
		for _, entry := range applySizeStrategy(sizeStrategy, entries, selected) {
			selected[entry.Path] = entry
		}
	}

	paths := make([]string, 0, len(selected))
	for path := range selected {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var removed []string
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return removed, errors.Wrap(err, errors.CodeTimeout, "prune interrupted")
		}

		ok, err := c.removeCheckout(ctx, selected[path])
		if err != nil {
			return removed, err
		}
		if ok {
			removed = append(removed, path)
		}
	}

	return removed, nil
}

// listCheckouts returns every checkout directory, with sizes if asked.
// Checkouts sit three levels down: account, repository, ref.
func (c *Coordinator) listCheckouts(withSize bool) ([]*Entry, error) {
	var entries []*Entry

	accounts, err := c.subdirs(c.layout.checkoutsRoot())
	if err != nil {
		return nil, err
	}
	for _, account := range accounts {
		repos, err := c.subdirs(account.Path)
		if err != nil {
			return nil, err
		}
		for _, repo := range repos {
			refs, err := c.subdirs(repo.Path)
			if err != nil {
				return nil, err
			}
			for _, entry := range refs {
				if withSize {
					size, err := c.dirSize(entry.Path)
					if err != nil {
						logger.Warnf("Skipping size of %s: %v", entry.Path, err)
					}
					entry.Size = size
				}
				entries = append(entries, entry)
			}
		}
	}

	return entries, nil
}

// subdirs lists the directories directly below dir. Lock, record and index
// files are skipped.
func (c *Coordinator) subdirs(dir string) ([]*Entry, error) {
	infos, err := c.fs.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, errors.CodeStorage, "failed to list %s", dir)
	}

	var out []*Entry
	for _, info := range infos {
		if !info.IsDir() || strings.HasSuffix(info.Name(), lockSuffix) {
			continue
		}
		out = append(out, &Entry{
			Path:    filepath.Join(dir, info.Name()),
			ModTime: info.ModTime(),
		})
	}
	return out, nil
}

// applySizeStrategy picks the least recently used entries not already
// selected until the remaining total fits the budget.
func applySizeStrategy(strategy *pruneToSize, entries []*Entry, selected map[string]*Entry) []*Entry {
	var total int64
	var candidates []*Entry
	for _, entry := range entries {
		if _, ok := selected[entry.Path]; ok {
			continue
		}
		total += entry.Size
		candidates = append(candidates, entry)
	}

	if total <= strategy.maxBytes {
		return nil
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].ModTime.Before(candidates[j].ModTime)
	})

	var out []*Entry
	for _, entry := range candidates {
		if total <= strategy.maxBytes {
			break
		}
		out = append(out, entry)
		total -= entry.Size
	}
	return out
}

// removeCheckout removes one checkout under its lock. It reports false when
// the checkout was used since it was listed.
func (c *Coordinator) removeCheckout(ctx context.Context, entry *Entry) (bool, error) {
	removed := false
	err := c.locker.WithLock(ctx, entry.Path+lockSuffix, func() error {
		info, err := c.fs.Stat(entry.Path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return errors.Wrapf(err, errors.CodeStorage, "failed to stat %s", entry.Path)
		}
		if info.ModTime().After(entry.ModTime) {
			logger.Debugf("Keeping %s, used while pruning", entry.Path)
			return nil
		}

		// The record goes first so a half removed checkout is never
		// mistaken for a complete one.
		logger.Infof("Pruning %s", entry.Path)
		if err := c.records.Delete(entry.Path); err != nil {
			return err
		}
		if err := c.fs.Remove(entry.Path + indexSuffix); err != nil && !os.IsNotExist(err) {
			return errors.Wrapf(err, errors.CodeStorage, "failed to remove index of %s", entry.Path)
		}
		if err := util.RemoveAll(c.fs, entry.Path); err != nil {
			return errors.Wrapf(err, errors.CodeStorage, "failed to remove %s", entry.Path)
		}

		removed = true
		return nil
	})
	return removed, err
}

// dirSize adds up the sizes of the regular files below path.
func (c *Coordinator) dirSize(path string) (int64, error) {
	var size int64
	err := util.Walk(c.fs, path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return size, err
}
