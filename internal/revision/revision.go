// Package revision supplies the two texts of each changed source file: from a
// git repository at two revisions, or from two directory trees.
package revision

import (
	"context"
	"errors"
)

// Side selects one of the two revisions being compared.
type Side int

const (
	Old Side = iota
	New
)

func (s Side) String() string {
	if s == Old {
		return "old"
	}
	return "new"
}

// ErrNotRepository is returned by Open when the directory is not inside a git
// work tree.
var ErrNotRepository = errors.New("not a git repository")

// Source lists changed files and reads their text at either side.
type Source interface {
	// ChangedFiles returns the relative paths that differ between the sides,
	// sorted.
	ChangedFiles(ctx context.Context) ([]string, error)
	// Text returns the content of path at side. ok is false when the file does
	// not exist there; err is reserved for failures to find out.
	Text(ctx context.Context, path string, side Side) (text string, ok bool, err error)
}
