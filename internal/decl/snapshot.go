package decl

import (
	"encoding/json"
	"fmt"
)

// Snapshot holds the declarations of one module at one revision, keyed by
// name within each category.
//
// A name that occurs twice in the same category keeps its first position and
// the text of its last occurrence.
type Snapshot struct {
	Module string
	sets   [numCategories]nameSet
}

type nameSet struct {
	order []string
	text  map[string]string
}

// NewSnapshot returns an empty snapshot for module.
func NewSnapshot(module string) *Snapshot {
	return &Snapshot{Module: module}
}

// Put records d, overwriting an earlier declaration of the same category and
// name. Declarations with an unknown category are ignored.
func (s *Snapshot) Put(d Declaration) {
	if !d.Category.Valid() {
		return
	}
	set := &s.sets[d.Category]
	if set.text == nil {
		set.text = make(map[string]string)
	}
	if _, ok := set.text[d.Name]; !ok {
		set.order = append(set.order, d.Name)
	}
	set.text[d.Name] = d.Text
}

// Names returns the names in category c in first-seen source order.
func (s *Snapshot) Names(c Category) []string {
	if s == nil || !c.Valid() {
		return nil
	}
	out := make([]string, len(s.sets[c].order))
	copy(out, s.sets[c].order)
	return out
}

// Text returns the source text of the declaration c/name.
func (s *Snapshot) Text(c Category, name string) (string, bool) {
	if s == nil || !c.Valid() {
		return "", false
	}
	t, ok := s.sets[c].text[name]
	return t, ok
}

// Len returns the number of distinct names in category c.
func (s *Snapshot) Len(c Category) int {
	if s == nil || !c.Valid() {
		return 0
	}
	return len(s.sets[c].order)
}

// Total returns the number of declarations across all categories.
func (s *Snapshot) Total() int {
	n := 0
	for _, c := range Categories {
		n += s.Len(c)
	}
	return n
}

// Declarations returns every declaration grouped by category, each group in
// source order.
func (s *Snapshot) Declarations() []Declaration {
	var out []Declaration
	for _, c := range Categories {
		for _, name := range s.Names(c) {
			text, _ := s.Text(c, name)
			out = append(out, Declaration{Category: c, Name: name, Text: text})
		}
	}
	return out
}

type snapshotJSON struct {
	Module    string  `json:"moduleName"`
	Functions []Entry `json:"functions"`
	Types     []Entry `json:"types"`
	Externals []Entry `json:"externals"`
}

func (s *Snapshot) entries(c Category) []Entry {
	out := make([]Entry, 0, s.Len(c))
	for _, name := range s.Names(c) {
		text, _ := s.Text(c, name)
		out = append(out, Entry{Name: name, Text: text})
	}
	return out
}

// MarshalJSON encodes the snapshot as {moduleName, functions, types, externals}
// with each declaration as a [name, text] pair.
func (s *Snapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(snapshotJSON{
		Module:    s.Module,
		Functions: s.entries(Function),
		Types:     s.entries(Type),
		Externals: s.entries(External),
	})
}

// UnmarshalJSON decodes the MarshalJSON format.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var raw snapshotJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}
	*s = Snapshot{Module: raw.Module}
	for c, list := range map[Category][]Entry{Function: raw.Functions, Type: raw.Types, External: raw.Externals} {
		for _, e := range list {
			s.Put(Declaration{Category: c, Name: e.Name, Text: e.Text})
		}
	}
	return nil
}
