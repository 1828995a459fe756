// Package highlight colors declaration text via Chroma and derives report
// colors from Chroma themes.
package highlight

import (
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// Highlight returns an ANSI-highlighted version of text using the given
// Chroma language and theme. Unknown languages return text unchanged.
func Highlight(text, language, theme string) string {
	lex := lexers.Get(language)
	if lex == nil {
		return text
	}
	lex = chroma.Coalesce(lex)
	fmtr := formatters.Get("terminal16m")
	if fmtr == nil {
		fmtr = formatters.Fallback
	}
	it, err := lex.Tokenise(nil, text)
	if err != nil {
		return text
	}
	var buf strings.Builder
	if err := fmtr.Format(&buf, styles.Get(theme), it); err != nil {
		return text
	}
	// Lexers may append a newline, and the formatter wraps the empty remainder
	// after it in its own escape sequence, so cut back to the input's lines.
	lines := strings.Split(buf.String(), "\n")
	if n := strings.Count(text, "\n") + 1; len(lines) > n {
		lines = lines[:n]
	}
	return strings.Join(lines, "\n")
}

// SplitLines splits a highlighted block into per-line strings, carrying ANSI
// style state across lines so each can be prefixed and printed on its own.
func SplitLines(block string) []string {
	lines := strings.Split(block, "\n")
	var active []string
	for i, line := range lines {
		if i > 0 && len(active) > 0 {
			lines[i] = strings.Join(active, "") + line
		}
		active = scanSGR(line, active)
	}
	return lines
}

// scanSGR updates the active SGR sequences with those found in line. A reset
// clears the list.
func scanSGR(line string, active []string) []string {
	for j := 0; j < len(line); j++ {
		if line[j] != '\x1b' || j+1 >= len(line) || line[j+1] != '[' {
			continue
		}
		k := j + 2
		for k < len(line) && line[k] != 'm' && line[k] != '\x1b' {
			k++
		}
		if k >= len(line) || line[k] != 'm' {
			continue
		}
		if params := line[j+2 : k]; params == "" || params == "0" {
			active = active[:0]
		} else {
			active = append(active, line[j:k+1])
		}
		j = k
	}
	return active
}

// Palette holds the report colors for one theme as "#rrggbb" strings.
type Palette struct {
	Fg       string
	Accent   string // module headers
	Added    string
	Deleted  string
	Modified string
	Dim      string // counts, hunk headers
}

// ThemePalette derives a Palette from a Chroma theme. Same theme, same
// output. Missing entries fall back to fixed defaults.
func ThemePalette(theme string) Palette {
	p := Palette{
		Fg:       "#c8c8c8",
		Accent:   "#00dfff",
		Added:    "#3fb950",
		Deleted:  "#f85149",
		Modified: "#d29922",
		Dim:      "#5a5a5a",
	}
	sty := styles.Get(theme)
	if sty == nil {
		return p
	}
	bg := "#000000"
	if e := sty.Get(chroma.Background); e.Background.IsSet() {
		bg = e.Background.String()
	}
	if e := sty.Get(chroma.Background); e.Colour.IsSet() {
		p.Fg = e.Colour.String()
	}
	p.Dim = lerpHex(bg, p.Fg, 0.45)
	p.Accent = colourOr(sty, chroma.NameFunction, p.Accent)
	p.Added = colourOr(sty, chroma.GenericInserted, p.Added)
	p.Deleted = colourOr(sty, chroma.GenericDeleted, p.Deleted)
	p.Modified = colourOr(sty, chroma.KeywordType, p.Modified)
	return p
}

func colourOr(sty *chroma.Style, tt chroma.TokenType, fallback string) string {
	if e := sty.Get(tt); e.Colour.IsSet() {
		return e.Colour.String()
	}
	return fallback
}

// lerpHex linearly interpolates between two hex colors at fraction t.
func lerpHex(a, b string, t float64) string {
	ar, ag, ab := hexToRGB(a)
	br, bg, bb := hexToRGB(b)
	mix := func(x, y int) int {
		v := float64(x) + float64(y-x)*t
		return max(0, min(255, int(v+0.5)))
	}
	return fmt.Sprintf("#%02x%02x%02x", mix(ar, br), mix(ag, bg), mix(ab, bb))
}

func hexToRGB(hex string) (int, int, int) {
	if len(hex) != 7 || hex[0] != '#' {
		return 0, 0, 0
	}
	var r, g, b int
	if _, err := fmt.Sscanf(hex, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return 0, 0, 0
	}
	return r, g, b
}
