package engine

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/redactyl/piiscan/internal/ignore"
	"github.com/redactyl/piiscan/internal/types"
)

// item is one walk entry: either a file to scan or a failure recorded while
// walking.
type item struct {
	rel  string
	abs  string
	skip *types.FileError
}

// collect walks cfg.Root in lexical order and returns the files to scan. The
// order of the returned items is the order findings are reported in.
func collect(cfg Config, ign ignore.Matcher, log *slog.Logger) ([]item, error) {
	excl := newDirExcluder(cfg)
	var items []item
	err := filepath.WalkDir(cfg.Root, func(p string, d fs.DirEntry, err error) error {
		rel, _ := filepath.Rel(cfg.Root, p)
		rel = filepath.ToSlash(rel)
		if err != nil {
			if rel == "." {
				return fmt.Errorf("%w: %w", ErrInput, err)
			}
			items = append(items, item{rel: rel, skip: &types.FileError{Path: rel, Reason: types.SkipWalk, Err: err}})
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if rel == "." {
				return nil
			}
			if excl.excluded(d.Name()) || ign.MatchDir(rel) {
				log.Debug("directory pruned", "path", rel)
				return filepath.SkipDir
			}
			return nil
		}
		if !allowedByGlobs(rel, cfg) || ign.Match(rel) {
			return nil
		}
		if cfg.DefaultExcludes && isDefaultFileExcluded(strings.ToLower(rel)) {
			return nil
		}
		info, err := regularFile(p, d)
		if err != nil {
			items = append(items, item{rel: rel, skip: &types.FileError{Path: rel, Reason: types.SkipUnreadable, Err: err}})
			return nil
		}
		if info == nil {
			return nil
		}
		if cfg.MaxBytes > 0 && info.Size() > cfg.MaxBytes {
			items = append(items, item{rel: rel, skip: &types.FileError{
				Path: rel, Reason: types.SkipTooLarge,
				Err: fmt.Errorf("%d bytes exceeds limit of %d", info.Size(), cfg.MaxBytes),
			}})
			return nil
		}
		items = append(items, item{rel: rel, abs: p})
		return nil
	})
	return items, err
}

// regularFile resolves d to a regular file, following symlinks. It returns
// nil info for entries that are neither files nor links to files.
func regularFile(p string, d fs.DirEntry) (fs.FileInfo, error) {
	if d.Type()&fs.ModeSymlink != 0 {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.Mode().IsRegular() {
			return nil, nil
		}
		return info, nil
	}
	if !d.Type().IsRegular() {
		return nil, nil
	}
	return d.Info()
}

// CountTargets returns the number of files a scan of cfg would read. It
// applies the same selection as ScanWithStats without reading contents.
func CountTargets(cfg Config) (int, error) {
	info, err := os.Stat(cfg.Root)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInput, err)
	}
	if !info.IsDir() {
		return 1, nil
	}
	ign, _ := ignore.Load(filepath.Join(cfg.Root, ignore.FileName))
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	items, err := collect(cfg, ign, log)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, it := range items {
		if it.skip == nil {
			n++
		}
	}
	return n, nil
}
