package revision

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/xonecas/decldiff/internal/filesearch"
)

// Dirs is a Source comparing two directory trees, or two single files. A
// missing root means every file is absent on that side.
type Dirs struct {
	Old, New   string
	Extensions []string
	// Ignore overrides each root's own .gitignore when set.
	Ignore *filesearch.Matcher

	single string // set when both roots are regular files
}

// NewDirs returns a Source over the trees (or files) oldRoot and newRoot. At least
// one of them must exist, and both existing roots must be of the same kind.
func NewDirs(oldRoot, newRoot string, exts []string) (*Dirs, error) {
	oldInfo, oldErr := os.Stat(oldRoot)
	newInfo, newErr := os.Stat(newRoot)
	if oldErr != nil && newErr != nil {
		return nil, errors.Join(oldErr, newErr)
	}
	d := &Dirs{Old: oldRoot, New: newRoot, Extensions: exts}
	oldFile := oldErr == nil && !oldInfo.IsDir()
	newFile := newErr == nil && !newInfo.IsDir()
	switch {
	case oldFile && (newFile || newErr != nil):
		d.single = filepath.Base(newRoot)
		if newErr != nil {
			d.single = filepath.Base(oldRoot)
		}
	case newFile && oldErr != nil:
		d.single = filepath.Base(newRoot)
	case oldFile != newFile:
		return nil, fmt.Errorf("cannot compare a file with a directory: %s, %s", oldRoot, newRoot)
	}
	return d, nil
}

// ChangedFiles implements Source.
func (d *Dirs) ChangedFiles(ctx context.Context) ([]string, error) {
	if d.single != "" {
		if !filesearch.HasExtension(d.single, d.Extensions) {
			return nil, nil
		}
		same, err := sameContent(d.Old, d.New)
		if err != nil || same {
			return nil, err
		}
		return []string{d.single}, nil
	}

	oldFiles, err := d.list(ctx, d.Old)
	if err != nil {
		return nil, err
	}
	newFiles, err := d.list(ctx, d.New)
	if err != nil {
		return nil, err
	}

	union := make(map[string]bool, len(oldFiles)+len(newFiles))
	for _, f := range oldFiles {
		union[f] = true
	}
	for _, f := range newFiles {
		union[f] = true
	}

	var changed []string
	for rel := range union {
		same, err := sameContent(filepath.Join(d.Old, rel), filepath.Join(d.New, rel))
		if err != nil {
			return nil, err
		}
		if !same {
			changed = append(changed, rel)
		}
	}
	sort.Strings(changed)
	return changed, nil
}

func (d *Dirs) list(ctx context.Context, root string) ([]string, error) {
	if _, err := os.Stat(root); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return filesearch.List(ctx, filesearch.Options{
		Root:       root,
		Extensions: d.Extensions,
		Ignore:     d.Ignore,
	})
}

// Text implements Source.
func (d *Dirs) Text(_ context.Context, path string, side Side) (string, bool, error) {
	root := d.Old
	if side == New {
		root = d.New
	}
	file := filepath.Join(root, filepath.FromSlash(path))
	if d.single != "" {
		file = root
	}
	data, err := os.ReadFile(file)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(data), true, nil
}

// sameContent reports whether a and b both exist with equal bytes.
func sameContent(a, b string) (bool, error) {
	da, errA := os.ReadFile(a)
	db, errB := os.ReadFile(b)
	switch {
	case errors.Is(errA, fs.ErrNotExist) || errors.Is(errB, fs.ErrNotExist):
		return false, nil
	case errA != nil:
		return false, errA
	case errB != nil:
		return false, errB
	}
	return bytes.Equal(da, db), nil
}
