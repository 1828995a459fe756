package revision

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/go-diff/diff"

	"github.com/xonecas/decldiff/internal/filesearch"
)

// Git is a Source comparing two commits of a repository.
type Git struct {
	Dir        string // work tree top level
	From, To   string // resolved commit ids
	Extensions []string
}

// Open resolves from and to in the repository containing dir.
func Open(ctx context.Context, dir, from, to string, exts []string) (*Git, error) {
	out, err := runGit(ctx, dir, "rev-parse", "--is-inside-work-tree")
	if err != nil || strings.TrimSpace(out) != "true" {
		return nil, fmt.Errorf("%s: %w", dir, ErrNotRepository)
	}
	top, err := runGit(ctx, dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return nil, err
	}
	g := &Git{Dir: strings.TrimSpace(top), Extensions: exts}
	if g.From, err = resolve(ctx, g.Dir, from); err != nil {
		return nil, err
	}
	if g.To, err = resolve(ctx, g.Dir, to); err != nil {
		return nil, err
	}
	log.Debug().Str("from", g.From).Str("to", g.To).Str("dir", g.Dir).Msg("git source opened")
	return g, nil
}

func resolve(ctx context.Context, dir, ref string) (string, error) {
	out, err := runGit(ctx, dir, "rev-parse", "--verify", "--quiet", ref+"^{commit}")
	if err != nil {
		return "", fmt.Errorf("resolve %q: unknown revision", ref)
	}
	return strings.TrimSpace(out), nil
}

// MergeBase returns the best common ancestor of a and b, for comparing a
// branch against the point where it forked.
func MergeBase(ctx context.Context, dir, a, b string) (string, error) {
	out, err := runGit(ctx, dir, "merge-base", a, b)
	if err != nil {
		return "", fmt.Errorf("merge-base %s %s: %w", a, b, err)
	}
	return strings.TrimSpace(out), nil
}

// ChangedFiles implements Source.
func (g *Git) ChangedFiles(ctx context.Context) ([]string, error) {
	out, err := runGit(ctx, g.Dir, "diff", "--no-color", "--no-ext-diff", "--no-renames", "-U0", g.From, g.To)
	if err != nil {
		return nil, err
	}
	fileDiffs, err := diff.ParseMultiFileDiff([]byte(out))
	if err != nil {
		return nil, fmt.Errorf("parse git diff: %w", err)
	}

	seen := make(map[string]bool)
	var files []string
	for _, fd := range fileDiffs {
		for _, name := range []string{fd.OrigName, fd.NewName} {
			path, ok := diffPath(name)
			if !ok || seen[path] || !filesearch.HasExtension(path, g.Extensions) {
				continue
			}
			seen[path] = true
			files = append(files, path)
		}
	}
	sort.Strings(files)
	return files, nil
}

// diffPath strips the a/ or b/ prefix git puts on diff names.
func diffPath(name string) (string, bool) {
	if name == "" || name == "/dev/null" {
		return "", false
	}
	if strings.HasPrefix(name, "a/") || strings.HasPrefix(name, "b/") {
		name = name[2:]
	}
	return name, true
}

// Text implements Source.
func (g *Git) Text(ctx context.Context, path string, side Side) (string, bool, error) {
	rev := g.From
	if side == New {
		rev = g.To
	}
	out, err := runGit(ctx, g.Dir, "show", rev+":"+path)
	if err != nil {
		var gerr *gitError
		if errors.As(err, &gerr) && gerr.missingPath() {
			return "", false, nil
		}
		return "", false, err
	}
	return out, true, nil
}

type gitError struct {
	args     []string
	exitCode int
	stderr   string
}

func (e *gitError) Error() string {
	return fmt.Sprintf("git %s (exit %d): %s", e.args[0], e.exitCode, e.stderr)
}

func (e *gitError) missingPath() bool {
	return strings.Contains(e.stderr, "does not exist in") ||
		strings.Contains(e.stderr, "exists on disk, but not in")
}

func runGit(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		code := -1
		if cmd.ProcessState != nil {
			code = cmd.ProcessState.ExitCode()
		}
		return "", &gitError{args: args, exitCode: code, stderr: msg}
	}
	return stdout.String(), nil
}
