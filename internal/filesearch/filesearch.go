// Package filesearch lists source files under a directory, honoring the
// root's .gitignore.
package filesearch

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// MaxFileSize is the default size above which files are not listed.
const MaxFileSize = 10 * 1024 * 1024

// Options configures List.
type Options struct {
	Root        string
	Extensions  []string // e.g. ".res"; empty lists every file
	MaxFileSize int64    // 0 means MaxFileSize
	Ignore      *Matcher // nil loads Root/.gitignore
}

// List walks opts.Root and returns the relative, slash-separated paths of the
// files that pass the extension filter, sorted. The .git directory and
// ignored paths are skipped. If Root is a regular file, List returns its base
// name when it passes the filter.
func List(ctx context.Context, opts Options) ([]string, error) {
	info, err := os.Stat(opts.Root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		if HasExtension(opts.Root, opts.Extensions) {
			return []string{filepath.Base(opts.Root)}, nil
		}
		return nil, nil
	}

	ignore := opts.Ignore
	if ignore == nil {
		if ignore, err = LoadMatcher(filepath.Join(opts.Root, ".gitignore")); err != nil {
			// Unreadable .gitignore: list everything rather than fail.
			ignore = &Matcher{}
		}
	}
	limit := opts.MaxFileSize
	if limit <= 0 {
		limit = MaxFileSize
	}

	var files []string
	err = filepath.WalkDir(opts.Root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(opts.Root, path)
		if err != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if d.Name() == ".git" || ignore.Excluded(rel, true) {
				return filepath.SkipDir
			}
			return nil
		}
		if ignore.Excluded(rel, false) || !HasExtension(rel, opts.Extensions) {
			return nil
		}
		if fi, err := d.Info(); err != nil || fi.Size() > limit {
			return nil
		}
		files = append(files, rel)
		return nil
	})
	if err != nil && !errors.Is(err, filepath.SkipAll) {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// HasExtension reports whether path ends in one of exts (case-insensitive).
// An empty exts accepts every path.
func HasExtension(path string, exts []string) bool {
	if len(exts) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}
