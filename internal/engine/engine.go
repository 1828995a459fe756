// Package engine runs a declaration diff over every changed file of a
// revision source.
package engine

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/xonecas/decldiff/internal/decl"
	"github.com/xonecas/decldiff/internal/diff"
	"github.com/xonecas/decldiff/internal/extract"
	"github.com/xonecas/decldiff/internal/modname"
	"github.com/xonecas/decldiff/internal/revision"
	"github.com/xonecas/decldiff/internal/store"
	"github.com/xonecas/decldiff/internal/validate"
)

// Options configures an Engine. Zero values pick the defaults.
type Options struct {
	Registry      *extract.Registry   // default: line scanner for everything
	Validator     validate.Validator  // default: validate.Noop
	Cache         *store.Cache        // nil disables caching
	Workers       int                 // default: GOMAXPROCS
	SkipUnchanged bool                // drop records without changes
	ModuleName    func(string) string // default: modname.FromPath
}

// Diagnostic reports a file that was left out of the diff.
type Diagnostic struct {
	Path string
	Side revision.Side
	Err  error
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s (%s): %v", d.Path, d.Side, d.Err)
}

// Result is the outcome of a Run.
type Result struct {
	Records     []decl.ChangeRecord
	Diagnostics []Diagnostic
	Files       int // changed files considered
}

// Engine diffs the changed files of a Source.
type Engine struct {
	src  revision.Source
	opts Options
}

// New returns an Engine reading from src.
func New(src revision.Source, opts Options) *Engine {
	if opts.Registry == nil {
		opts.Registry = extract.NewRegistry()
	}
	if opts.Validator == nil {
		opts.Validator = validate.Noop{}
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.ModuleName == nil {
		opts.ModuleName = modname.FromPath
	}
	return &Engine{src: src, opts: opts}
}

// fileResult holds both snapshots of one file. A nil snapshot means the file
// is absent on that side.
type fileResult struct {
	path             string
	module           string
	oldSnap, newSnap *decl.Snapshot
	diags            []Diagnostic
	skip             bool // a side was rejected; leave the module out
}

// readError marks a failure to retrieve text. The side is treated as absent.
type readError struct{ err error }

func (e *readError) Error() string { return "read: " + e.err.Error() }
func (e *readError) Unwrap() error { return e.err }

// Run lists the changed files, extracts both sides of each in parallel and
// aggregates the per-module records. Per-file failures become diagnostics;
// only listing failures and cancellation abort the run.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	files, err := e.src.ChangedFiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list changed files: %w", err)
	}
	log.Debug().Int("files", len(files)).Msg("changed files")

	results := make([]fileResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Workers)
	for i, path := range files {
		g.Go(func() error {
			results[i] = e.processFile(gctx, path)
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{Files: len(files)}
	oldSnaps := make(map[string]*decl.Snapshot)
	newSnaps := make(map[string]*decl.Snapshot)
	owner := make(map[string]string)
	for _, fr := range results {
		res.Diagnostics = append(res.Diagnostics, fr.diags...)
		if fr.skip || (fr.oldSnap == nil && fr.newSnap == nil) {
			continue
		}
		if prev, ok := owner[fr.module]; ok {
			log.Warn().Str("module", fr.module).Str("path", fr.path).Str("previous", prev).
				Msg("two files map to the same module, keeping the later one")
			delete(oldSnaps, fr.module)
			delete(newSnaps, fr.module)
		}
		owner[fr.module] = fr.path
		if fr.oldSnap != nil {
			oldSnaps[fr.module] = fr.oldSnap
		}
		if fr.newSnap != nil {
			newSnaps[fr.module] = fr.newSnap
		}
	}

	if e.opts.SkipUnchanged {
		res.Records = diff.AggregateNonEmpty(oldSnaps, newSnaps)
	} else {
		res.Records = diff.Aggregate(oldSnaps, newSnaps)
	}
	for _, d := range res.Diagnostics {
		log.Warn().Err(d.Err).Str("path", d.Path).Stringer("side", d.Side).Msg("file skipped")
	}
	return res, nil
}

// processFile reads, validates and extracts both sides of path. A side whose
// text cannot be read counts as absent; a rejected side leaves both snapshots
// nil.
func (e *Engine) processFile(ctx context.Context, path string) fileResult {
	fr := fileResult{path: path, module: e.opts.ModuleName(path)}
	for _, side := range []revision.Side{revision.Old, revision.New} {
		snap, err := e.snapshot(ctx, path, fr.module, side)
		if err != nil {
			if ctx.Err() != nil {
				return fr
			}
			fr.diags = append(fr.diags, Diagnostic{Path: path, Side: side, Err: err})
			var rerr *readError
			if !errors.As(err, &rerr) {
				fr.skip = true
			}
			continue
		}
		if side == revision.Old {
			fr.oldSnap = snap
		} else {
			fr.newSnap = snap
		}
	}
	if fr.skip {
		fr.oldSnap, fr.newSnap = nil, nil
	}
	return fr
}

func (e *Engine) snapshot(ctx context.Context, path, module string, side revision.Side) (*decl.Snapshot, error) {
	text, ok, err := e.src.Text(ctx, path, side)
	if err != nil {
		return nil, &readError{err: err}
	}
	if !ok {
		return nil, nil
	}
	if err := e.opts.Validator.Validate(ctx, path, text); err != nil {
		return nil, err
	}

	ext := e.opts.Registry.For(path)
	key := store.SnapshotKey(ext.Name(), module, text)
	if snap, hit := e.opts.Cache.GetSnapshot(key); hit {
		return snap, nil
	}
	snap := ext.Extract(module, text)
	e.opts.Cache.PutSnapshot(key, snap)
	log.Debug().Str("path", path).Stringer("side", side).Str("extractor", ext.Name()).
		Int("declarations", snap.Total()).Msg("extracted")
	return snap, nil
}
