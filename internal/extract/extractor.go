// Package extract turns module source text into declaration snapshots.
//
// The line-based scanner in this package is the baseline strategy and needs no
// grammar; grammar-backed strategies plug in through Extractor and are chosen
// per file extension by a Registry.
package extract

import (
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/xonecas/decldiff/internal/decl"
)

// Extractor builds the snapshot of one module from its full source text.
// Implementations never fail: unparseable input yields fewer (or zero)
// declarations.
type Extractor interface {
	// Name identifies the strategy; it is part of snapshot cache keys.
	Name() string
	Extract(module, text string) *decl.Snapshot
}

// Lines is the depth-tracking line scanner strategy.
type Lines struct{}

// Name implements Extractor.
func (Lines) Name() string { return "lines" }

// Extract implements Extractor. Later duplicates of a name overwrite earlier
// ones. A declaration left open at end of input is dropped and logged at
// debug level.
func (Lines) Extract(module, text string) *decl.Snapshot {
	res := ScanDetailed(text)
	if p := res.Dropped; p != nil {
		log.Debug().
			Str("module", module).
			Str("category", p.Category.String()).
			Str("name", p.Name).
			Int("line", p.Line).
			Msg("unclosed declaration dropped at end of input")
	}

	snap := decl.NewSnapshot(module)
	for _, d := range res.Declarations {
		snap.Put(d)
	}
	return snap
}

// Registry maps file extensions to extractors. Lookups for unregistered
// extensions return the fallback, which is Lines unless replaced.
type Registry struct {
	byExt    map[string]Extractor
	fallback Extractor
}

// NewRegistry returns a registry that uses Lines for every extension.
func NewRegistry() *Registry {
	return &Registry{
		byExt:    make(map[string]Extractor),
		fallback: Lines{},
	}
}

// Register binds ext (with or without the leading dot, case-insensitive) to e.
func (r *Registry) Register(ext string, e Extractor) {
	r.byExt[normalizeExt(ext)] = e
}

// For returns the extractor for path's extension.
func (r *Registry) For(path string) Extractor {
	if e, ok := r.byExt[normalizeExt(filepath.Ext(path))]; ok {
		return e
	}
	return r.fallback
}

// Extract runs the extractor registered for path.
func (r *Registry) Extract(path, module, text string) *decl.Snapshot {
	return r.For(path).Extract(module, text)
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
