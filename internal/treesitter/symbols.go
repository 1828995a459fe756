// Package treesitter extracts declarations with a real grammar instead of the
// depth-counting line scanner. Only files whose grammar is linked in are
// handled; callers register Grammar on an extract.Registry for those
// extensions and keep the line scanner for the rest.
package treesitter

import (
	"github.com/rs/zerolog/log"

	"github.com/xonecas/decldiff/internal/decl"
	"github.com/xonecas/decldiff/internal/extract"
)

// Grammar is an extract.Extractor backed by tree-sitter. Ext selects the
// grammar, e.g. ".ml"; an extension without a linked grammar extracts nothing.
type Grammar struct {
	Ext string
}

var _ extract.Extractor = Grammar{}

// Name implements extract.Extractor.
func (g Grammar) Name() string { return "treesitter" + g.Ext }

// Extract implements extract.Extractor. Parse failures yield an empty
// snapshot; nodes the grammar marks as errors are skipped.
func (g Grammar) Extract(module, text string) *decl.Snapshot {
	snap := decl.NewSnapshot(module)
	decls, err := ParseSource(g.Ext, []byte(text))
	if err != nil {
		log.Warn().Err(err).Str("module", module).Str("ext", g.Ext).Msg("treesitter: parse failed")
		return snap
	}
	for _, d := range decls {
		snap.Put(d)
	}
	return snap
}

// RegisterDefaults binds a Grammar to every extension with a linked grammar.
func RegisterDefaults(r *extract.Registry) {
	for _, ext := range Extensions() {
		r.Register(ext, Grammar{Ext: ext})
	}
}
