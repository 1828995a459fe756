// Package decl defines the declaration-level data model shared by the
// extractors, the differ and the report writers: declarations, per-module
// snapshots and change records.
package decl

import "regexp"

// Category classifies a top-level declaration.
type Category int

const (
	Function Category = iota
	Type
	External

	numCategories = 3
)

// Categories lists every category in report order.
var Categories = [numCategories]Category{Function, Type, External}

// String returns a short lowercase label for the category.
func (c Category) String() string {
	switch c {
	case Function:
		return "function"
	case Type:
		return "type"
	case External:
		return "external"
	default:
		return "unknown"
	}
}

// Keyword returns the source keyword that opens a declaration of this category.
func (c Category) Keyword() string {
	switch c {
	case Function:
		return "let"
	case Type:
		return "type"
	case External:
		return "external"
	default:
		return ""
	}
}

// Plural returns the capitalized plural used in serialized field names
// (e.g. "Functions" in "addedFunctions").
func (c Category) Plural() string {
	switch c {
	case Function:
		return "Functions"
	case Type:
		return "Types"
	case External:
		return "Externals"
	default:
		return "Unknown"
	}
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	return c >= Function && c < numCategories
}

// Declaration is one named top-level construct and its exact source text.
type Declaration struct {
	Category Category
	Name     string
	Text     string // newline-joined span, not normalized
}

var identRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_']*$`)

// ValidName reports whether name is a legal declaration identifier.
func ValidName(name string) bool {
	return identRe.MatchString(name)
}
