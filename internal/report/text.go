package report

import (
	"fmt"
	"io"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"

	"github.com/xonecas/decldiff/internal/decl"
	"github.com/xonecas/decldiff/internal/highlight"
)

const indent = "    "

// styles paints each part of the text report. Without color every field is
// the identity.
type styles struct {
	header, added, deleted, modified, dim func(string) string
	body                                  func(string) string
}

func newStyles(opts Options) styles {
	plain := func(s string) string { return s }
	if !opts.Color {
		return styles{plain, plain, plain, plain, plain, plain}
	}
	p := highlight.ThemePalette(opts.Theme)
	fg := func(hex string, bold bool) func(string) string {
		st := lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Bold(bold)
		return func(s string) string { return st.Render(s) }
	}
	lang := opts.Language
	if lang == "" {
		lang = "reasonml"
	}
	return styles{
		header:   fg(p.Accent, true),
		added:    fg(p.Added, true),
		deleted:  fg(p.Deleted, true),
		modified: fg(p.Modified, true),
		dim:      fg(p.Dim, false),
		body:     func(s string) string { return highlight.Highlight(s, lang, opts.Theme) },
	}
}

func writeText(w io.Writer, records []decl.ChangeRecord, opts Options) error {
	st := newStyles(opts)
	var b strings.Builder
	for i := range records {
		if i > 0 {
			b.WriteByte('\n')
		}
		writeRecord(&b, &records[i], st)
	}
	if len(records) == 0 {
		b.WriteString(st.dim("no declaration changes") + "\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeRecord(b *strings.Builder, r *decl.ChangeRecord, st styles) {
	t := r.Totals()
	fmt.Fprintf(b, "%s %s\n", st.header(r.Module), st.dim(fmt.Sprintf("(+%d ~%d -%d)", t.Added, t.Modified, t.Deleted)))
	if r.Empty() {
		fmt.Fprintf(b, "  %s\n", st.dim("no declaration changes"))
		return
	}
	for _, c := range decl.Categories {
		if r.Count(c).Total() == 0 {
			continue
		}
		fmt.Fprintf(b, "  %s\n", c.Plural())
		for _, e := range r.Added[c] {
			fmt.Fprintf(b, "  %s %s\n", st.added("+"), e.Name)
			writeBody(b, e.Text, st)
		}
		for _, m := range r.Modified[c] {
			fmt.Fprintf(b, "  %s %s\n", st.modified("~"), m.Name)
			writeHunks(b, m, st)
		}
		for _, e := range r.Deleted[c] {
			fmt.Fprintf(b, "  %s %s\n", st.deleted("-"), e.Name)
			writeBody(b, e.Text, st)
		}
	}
}

func writeBody(b *strings.Builder, text string, st styles) {
	for _, line := range highlight.SplitLines(st.body(text)) {
		b.WriteString(indent + line + "\n")
	}
}

// writeHunks prints the unified diff of a modification without its file
// header lines.
func writeHunks(b *strings.Builder, m decl.Modification, st styles) {
	// Both sides end in a newline so no "No newline" markers are emitted.
	oldText, newText := m.Old+"\n", m.New+"\n"
	edits := myers.ComputeEdits(span.URIFromPath(m.Name), oldText, newText)
	unified := fmt.Sprint(gotextdiff.ToUnified(m.Name, m.Name, oldText, edits))

	lines := strings.Split(strings.TrimSuffix(unified, "\n"), "\n")
	if len(lines) > 2 {
		lines = lines[2:]
	}
	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "@@"):
			line = st.dim(line)
		case strings.HasPrefix(line, "+"):
			line = st.added(line)
		case strings.HasPrefix(line, "-"):
			line = st.deleted(line)
		}
		b.WriteString(indent + line + "\n")
	}
}
