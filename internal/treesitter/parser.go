package treesitter

import (
	"context"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/ocaml"

	"github.com/xonecas/decldiff/internal/decl"
)

// langForExt returns the tree-sitter language for a file extension, or nil.
func langForExt(ext string) *sitter.Language {
	switch ext {
	case ".ml":
		return ocaml.GetLanguage()
	default:
		return nil
	}
}

// Extensions lists the file extensions with a linked grammar.
func Extensions() []string {
	return []string{".ml"}
}

// Supported returns true if the file extension has a tree-sitter grammar.
func Supported(path string) bool {
	return langForExt(strings.ToLower(filepath.Ext(path))) != nil
}

// ParseSource parses source bytes and returns its top-level declarations in
// source order. Unsupported extensions return nil.
func ParseSource(path string, src []byte) ([]decl.Declaration, error) {
	lang := langForExt(strings.ToLower(filepath.Ext(path)))
	if lang == nil {
		return nil, nil
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(lang)

	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	return extractOCaml(tree.RootNode(), src), nil
}

// extractOCaml walks the compilation unit's direct children. Nested modules
// are not descended into.
func extractOCaml(root *sitter.Node, src []byte) []decl.Declaration {
	var decls []decl.Declaration
	count := int(root.ChildCount())

	for i := 0; i < count; i++ {
		child := root.Child(i)
		if child.IsError() || child.HasError() {
			continue
		}
		switch child.Type() {
		case "value_definition":
			decls = append(decls, extractBindings(child, src, decl.Function, "let_binding", "pattern")...)

		case "type_definition":
			decls = append(decls, extractBindings(child, src, decl.Type, "type_binding", "name")...)

		case "external":
			if d, ok := extractExternal(child, src); ok {
				decls = append(decls, d)
			}
		}
	}
	return decls
}

// extractBindings handles "let a = .. and b = .." style definitions. Every
// binding gets the text of the whole definition, since that is the unit that
// changes together.
func extractBindings(node *sitter.Node, src []byte, c decl.Category, bindingType, field string) []decl.Declaration {
	var decls []decl.Declaration
	text := content(node, src)
	for i := 0; i < int(node.NamedChildCount()); i++ {
		b := node.NamedChild(i)
		if b.Type() != bindingType {
			continue
		}
		name := b.ChildByFieldName(field)
		// Destructuring and operator patterns have no single name.
		if name == nil || !decl.ValidName(content(name, src)) {
			continue
		}
		decls = append(decls, decl.Declaration{
			Category: c,
			Name:     content(name, src),
			Text:     text,
		})
	}
	return decls
}

func extractExternal(node *sitter.Node, src []byte) (decl.Declaration, bool) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		nc := node.NamedChild(i)
		if nc.Type() != "value_name" {
			continue
		}
		return decl.Declaration{
			Category: decl.External,
			Name:     content(nc, src),
			Text:     content(node, src),
		}, true
	}
	return decl.Declaration{}, false
}

// helpers

func content(node *sitter.Node, src []byte) string {
	return node.Content(src)
}
