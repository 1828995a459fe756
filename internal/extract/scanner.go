package extract

import (
	"regexp"
	"strings"

	"github.com/xonecas/decldiff/internal/decl"
)

// openers maps a keyword prefix to the category it starts. The capture group
// is the declaration name.
var openers = []struct {
	prefix   string
	category decl.Category
	re       *regexp.Regexp
}{
	{"let ", decl.Function, regexp.MustCompile(`^let\s+([a-zA-Z_][a-zA-Z0-9_']*)`)},
	{"type ", decl.Type, regexp.MustCompile(`^type\s+([a-zA-Z_][a-zA-Z0-9_']*)`)},
	{"external ", decl.External, regexp.MustCompile(`^external\s+([a-zA-Z_][a-zA-Z0-9_']*)`)},
}

// continuations keep a declaration open across a depth-balanced line.
var continuations = []string{",", "|", "->", "=>"}

// Pending describes a declaration that was still open when input ended.
type Pending struct {
	Category decl.Category
	Name     string
	Line     int // 1-indexed line the declaration started on
}

// ScanResult is the outcome of scanning one module's text.
type ScanResult struct {
	Declarations []decl.Declaration
	// Dropped is set when the input ended inside a declaration. That
	// declaration is not part of Declarations.
	Dropped *Pending
}

// Scan splits text into top-level declarations in order of appearance.
func Scan(text string) []decl.Declaration {
	return ScanDetailed(text).Declarations
}

// ScanDetailed is Scan, also reporting a declaration lost to end of input.
//
// Brace and paren depth are counted per line on raw characters; string and
// comment contents are not excluded.
func ScanDetailed(text string) ScanResult {
	var (
		res        ScanResult
		braceDepth int
		parenDepth int
		cur        *pending
	)

	for i, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if cur == nil && skippable(trimmed) {
			continue
		}

		braceDepth += strings.Count(line, "{") - strings.Count(line, "}")
		parenDepth += strings.Count(line, "(") - strings.Count(line, ")")

		if cur == nil {
			cat, name, ok := opens(trimmed)
			if !ok {
				continue
			}
			cur = &pending{Pending: Pending{Category: cat, Name: name, Line: i + 1}}
		}
		cur.lines = append(cur.lines, line)

		if braceDepth == 0 && parenDepth == 0 && !continues(trimmed) {
			res.Declarations = append(res.Declarations, decl.Declaration{
				Category: cur.Category,
				Name:     cur.Name,
				Text:     strings.Join(cur.lines, "\n"),
			})
			cur = nil
		}
	}

	if cur != nil {
		dropped := cur.Pending
		res.Dropped = &dropped
	}
	return res
}

type pending struct {
	Pending
	lines []string
}

func skippable(trimmed string) bool {
	return trimmed == "" || strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "/*")
}

func opens(trimmed string) (decl.Category, string, bool) {
	for _, o := range openers {
		if !strings.HasPrefix(trimmed, o.prefix) {
			continue
		}
		m := o.re.FindStringSubmatch(trimmed)
		if m == nil {
			return 0, "", false
		}
		return o.category, m[1], true
	}
	return 0, "", false
}

func continues(trimmed string) bool {
	for _, suffix := range continuations {
		if strings.HasSuffix(trimmed, suffix) {
			return true
		}
	}
	return false
}
