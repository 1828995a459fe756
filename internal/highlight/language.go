package highlight

import (
	"path/filepath"
	"strings"
)

var languages = map[string]string{
	".res":  "reasonml",
	".resi": "reasonml",
	".re":   "reasonml",
	".rei":  "reasonml",
	".ml":   "ocaml",
	".mli":  "ocaml",
}

// DetectLanguage returns the Chroma language identifier for a source path.
func DetectLanguage(path string) string {
	if lang, ok := languages[strings.ToLower(filepath.Ext(path))]; ok {
		return lang
	}
	return "text"
}
