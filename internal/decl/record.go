package decl

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Entry is an added or deleted declaration. It serializes as [name, text].
type Entry struct {
	Name string
	Text string
}

// Modification is a declaration whose text changed. It serializes as
// [name, old, new].
type Modification struct {
	Name string
	Old  string
	New  string
}

// MarshalJSON encodes the entry as a two-element array.
func (e Entry) MarshalJSON() ([]byte, error) {
	return marshalLiteral([2]string{e.Name, e.Text})
}

// UnmarshalJSON decodes a two-element array.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var pair []string
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("entry: want 2 elements, got %d", len(pair))
	}
	e.Name, e.Text = pair[0], pair[1]
	return nil
}

// MarshalYAML encodes the entry as a two-element sequence.
func (e Entry) MarshalYAML() (any, error) {
	return []string{e.Name, e.Text}, nil
}

// MarshalJSON encodes the modification as a three-element array.
func (m Modification) MarshalJSON() ([]byte, error) {
	return marshalLiteral([3]string{m.Name, m.Old, m.New})
}

// UnmarshalJSON decodes a three-element array.
func (m *Modification) UnmarshalJSON(data []byte) error {
	var triple []string
	if err := json.Unmarshal(data, &triple); err != nil {
		return err
	}
	if len(triple) != 3 {
		return fmt.Errorf("modification: want 3 elements, got %d", len(triple))
	}
	m.Name, m.Old, m.New = triple[0], triple[1], triple[2]
	return nil
}

// MarshalYAML encodes the modification as a three-element sequence.
func (m Modification) MarshalYAML() (any, error) {
	return []string{m.Name, m.Old, m.New}, nil
}

// ChangeRecord is the categorized change report for one module between two
// revisions. The arrays are indexed by Category.
type ChangeRecord struct {
	Module   string
	Added    [numCategories][]Entry
	Modified [numCategories][]Modification
	Deleted  [numCategories][]Entry
}

// Counts holds the number of changes of each kind.
type Counts struct {
	Added    int
	Modified int
	Deleted  int
}

// Total returns Added+Modified+Deleted.
func (c Counts) Total() int {
	return c.Added + c.Modified + c.Deleted
}

// Count returns the change counts for category c.
func (r *ChangeRecord) Count(c Category) Counts {
	if !c.Valid() {
		return Counts{}
	}
	return Counts{
		Added:    len(r.Added[c]),
		Modified: len(r.Modified[c]),
		Deleted:  len(r.Deleted[c]),
	}
}

// Totals sums the counts over all categories.
func (r *ChangeRecord) Totals() Counts {
	var t Counts
	for _, c := range Categories {
		n := r.Count(c)
		t.Added += n.Added
		t.Modified += n.Modified
		t.Deleted += n.Deleted
	}
	return t
}

// Empty reports whether the record holds no changes at all.
func (r *ChangeRecord) Empty() bool {
	return r.Totals().Total() == 0
}

// recordDoc is the serialized layout: one field per (kind, category) pair,
// in detailed_changes.json order.
type recordDoc struct {
	ModuleName        string         `json:"moduleName" yaml:"moduleName"`
	AddedFunctions    []Entry        `json:"addedFunctions" yaml:"addedFunctions"`
	ModifiedFunctions []Modification `json:"modifiedFunctions" yaml:"modifiedFunctions"`
	DeletedFunctions  []Entry        `json:"deletedFunctions" yaml:"deletedFunctions"`
	AddedTypes        []Entry        `json:"addedTypes" yaml:"addedTypes"`
	ModifiedTypes     []Modification `json:"modifiedTypes" yaml:"modifiedTypes"`
	DeletedTypes      []Entry        `json:"deletedTypes" yaml:"deletedTypes"`
	AddedExternals    []Entry        `json:"addedExternals" yaml:"addedExternals"`
	ModifiedExternals []Modification `json:"modifiedExternals" yaml:"modifiedExternals"`
	DeletedExternals  []Entry        `json:"deletedExternals" yaml:"deletedExternals"`
}

func entriesOrEmpty(e []Entry) []Entry {
	if e == nil {
		return []Entry{}
	}
	return e
}

func modsOrEmpty(m []Modification) []Modification {
	if m == nil {
		return []Modification{}
	}
	return m
}

func (r *ChangeRecord) doc() recordDoc {
	return recordDoc{
		ModuleName:        r.Module,
		AddedFunctions:    entriesOrEmpty(r.Added[Function]),
		ModifiedFunctions: modsOrEmpty(r.Modified[Function]),
		DeletedFunctions:  entriesOrEmpty(r.Deleted[Function]),
		AddedTypes:        entriesOrEmpty(r.Added[Type]),
		ModifiedTypes:     modsOrEmpty(r.Modified[Type]),
		DeletedTypes:      entriesOrEmpty(r.Deleted[Type]),
		AddedExternals:    entriesOrEmpty(r.Added[External]),
		ModifiedExternals: modsOrEmpty(r.Modified[External]),
		DeletedExternals:  entriesOrEmpty(r.Deleted[External]),
	}
}

// MarshalJSON encodes the record in the detailed_changes layout. Empty lists
// are written as [] rather than null.
func (r ChangeRecord) MarshalJSON() ([]byte, error) {
	return marshalLiteral(r.doc())
}

// UnmarshalJSON decodes the detailed_changes layout.
func (r *ChangeRecord) UnmarshalJSON(data []byte) error {
	var d recordDoc
	if err := json.Unmarshal(data, &d); err != nil {
		return fmt.Errorf("decode change record: %w", err)
	}
	*r = ChangeRecord{Module: d.ModuleName}
	r.Added[Function], r.Modified[Function], r.Deleted[Function] = d.AddedFunctions, d.ModifiedFunctions, d.DeletedFunctions
	r.Added[Type], r.Modified[Type], r.Deleted[Type] = d.AddedTypes, d.ModifiedTypes, d.DeletedTypes
	r.Added[External], r.Modified[External], r.Deleted[External] = d.AddedExternals, d.ModifiedExternals, d.DeletedExternals
	return nil
}

// MarshalYAML encodes the record with the same field names as MarshalJSON.
func (r ChangeRecord) MarshalYAML() (any, error) {
	return r.doc(), nil
}

// marshalLiteral is json.Marshal without HTML escaping, so "=>" and "->" in
// declaration text stay readable. Callers that encode records must also
// disable escaping on their encoder; json.Marshal re-escapes marshaler output.
func marshalLiteral(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
