// Package report writes change records as JSON, YAML, styled text or a
// one-line-per-module summary.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/xonecas/decldiff/internal/decl"
)

// Format selects the output encoding.
type Format string

const (
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
	FormatText    Format = "text"
	FormatSummary Format = "summary"
)

// Formats lists every supported format.
var Formats = []Format{FormatJSON, FormatYAML, FormatText, FormatSummary}

// ParseFormat validates s as a Format.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if strings.EqualFold(s, string(f)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown format %q (want one of json, yaml, text, summary)", s)
}

// Options tunes the text format. JSON, YAML and summary ignore it.
type Options struct {
	Color    bool
	Theme    string // Chroma theme for colors and highlighting
	Language string // Chroma language of declaration bodies
}

// Write encodes records to w.
func Write(w io.Writer, format Format, records []decl.ChangeRecord, opts Options) error {
	if records == nil {
		records = []decl.ChangeRecord{}
	}
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "   ")
		if err := enc.Encode(records); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(records); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case FormatText:
		return writeText(w, records, opts)
	case FormatSummary:
		return writeSummary(w, records)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// WriteFile writes the report to path, creating parent directories.
func WriteFile(path string, format Format, records []decl.ChangeRecord, opts Options) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := Write(f, format, records, opts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeSummary(w io.Writer, records []decl.ChangeRecord) error {
	var total decl.Counts
	width := 0
	for _, r := range records {
		width = max(width, len(r.Module))
	}
	for i := range records {
		c := records[i].Totals()
		total.Added += c.Added
		total.Modified += c.Modified
		total.Deleted += c.Deleted
		if _, err := fmt.Fprintf(w, "%-*s  +%d ~%d -%d\n", width, records[i].Module, c.Added, c.Modified, c.Deleted); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%d modules, %d added, %d modified, %d deleted\n",
		len(records), total.Added, total.Modified, total.Deleted)
	return err
}
