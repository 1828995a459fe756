// Package modname derives module identifiers from file paths.
package modname

import (
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"
)

func isSeparator(r rune) bool {
	return r == '-' || r == '_' || r == '.' || unicode.IsSpace(r)
}

// FromPath returns the module identifier for path: the base name without its
// extension, split on separators, each segment's first letter upper-cased,
// concatenated. "src/foo_bar-baz.res" becomes "FooBarBaz".
func FromPath(path string) string {
	base := filepath.Base(filepath.ToSlash(path))
	base = strings.TrimSuffix(base, filepath.Ext(base))

	var b strings.Builder
	for _, seg := range strings.FieldsFunc(base, isSeparator) {
		r, size := utf8.DecodeRuneInString(seg)
		b.WriteRune(unicode.ToUpper(r))
		b.WriteString(seg[size:])
	}
	return b.String()
}
