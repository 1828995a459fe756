package diff

import (
	"testing"

	"github.com/xonecas/decldiff/internal/decl"
	"github.com/xonecas/decldiff/internal/extract"
)

func snap(module, src string) *decl.Snapshot {
	return extract.Lines{}.Extract(module, src)
}

func TestCompare_PureAddition(t *testing.T) {
	oldSnap := snap("Math", "let add = (a, b) => a + b")
	newSnap := snap("Math", "let add = (a, b) => a + b\nlet sub = (a, b) => a - b")

	rec := Compare(oldSnap, newSnap)
	if rec.Module != "Math" {
		t.Errorf("Module = %q", rec.Module)
	}
	want := []decl.Entry{{Name: "sub", Text: "let sub = (a, b) => a - b"}}
	if got := rec.Added[decl.Function]; len(got) != 1 || got[0] != want[0] {
		t.Errorf("addedFunctions = %+v, want %+v", got, want)
	}
	if len(rec.Modified[decl.Function]) != 0 || len(rec.Deleted[decl.Function]) != 0 {
		t.Errorf("unexpected modified/deleted: %+v", rec)
	}
}

func TestCompare_Modification(t *testing.T) {
	oldText := "let add = (a, b) => a + b"
	newText := "let add = (a, b) => a + b + 0"

	rec := Compare(snap("Math", oldText), snap("Math", newText))
	mods := rec.Modified[decl.Function]
	if len(mods) != 1 {
		t.Fatalf("modifiedFunctions = %+v, want one entry", mods)
	}
	if mods[0] != (decl.Modification{Name: "add", Old: oldText, New: newText}) {
		t.Errorf("modification = %+v", mods[0])
	}
	if c := rec.Count(decl.Function); c.Added != 0 || c.Deleted != 0 {
		t.Errorf("counts = %+v", c)
	}
}

func TestCompare_WholeModuleDeletion(t *testing.T) {
	oldSnap := snap("Gone", "let f1 = 1\nlet f2 = 2\ntype t1 = int")

	rec := Compare(oldSnap, nil)
	if rec.Module != "Gone" {
		t.Errorf("Module = %q", rec.Module)
	}
	fns := rec.Deleted[decl.Function]
	if len(fns) != 2 || fns[0].Name != "f1" || fns[1].Name != "f2" {
		t.Errorf("deletedFunctions = %+v", fns)
	}
	if ts := rec.Deleted[decl.Type]; len(ts) != 1 || ts[0].Name != "t1" {
		t.Errorf("deletedTypes = %+v", ts)
	}
	for _, c := range decl.Categories {
		if len(rec.Added[c]) != 0 || len(rec.Modified[c]) != 0 {
			t.Errorf("%s: unexpected added/modified", c)
		}
	}
}

func TestCompare_WholeModuleAddition(t *testing.T) {
	newSnap := snap("Fresh", "let a = 1\nexternal b: int = \"b\"")

	rec := Compare(nil, newSnap)
	if rec.Module != "Fresh" {
		t.Errorf("Module = %q", rec.Module)
	}
	if len(rec.Added[decl.Function]) != 1 || len(rec.Added[decl.External]) != 1 {
		t.Errorf("added = %+v", rec.Added)
	}
	for _, c := range decl.Categories {
		if len(rec.Deleted[c]) != 0 || len(rec.Modified[c]) != 0 {
			t.Errorf("%s: unexpected deleted/modified", c)
		}
	}
}

func TestCompare_BothAbsent(t *testing.T) {
	if rec := Compare(nil, nil); !rec.Empty() {
		t.Errorf("got %+v, want empty record", rec)
	}
}

func TestCompare_IdenticalSnapshotsAreEmpty(t *testing.T) {
	src := "let a = 1\ntype t = {\n  x: int\n}\nexternal e: int = \"e\""
	s := snap("Same", src)

	if rec := Compare(s, s); !rec.Empty() {
		t.Errorf("Compare(s, s) = %+v, want no changes", rec)
	}
	if rec := Compare(s, snap("Same", src)); !rec.Empty() {
		t.Errorf("separately extracted copies differ: %+v", rec)
	}
}

func TestCompare_WhitespaceIsAModification(t *testing.T) {
	rec := Compare(snap("M", "let a = 1"), snap("M", "let a =  1"))
	if len(rec.Modified[decl.Function]) != 1 {
		t.Errorf("whitespace-only edit not reported: %+v", rec)
	}
}

func TestCompare_SameNameDifferentCategory(t *testing.T) {
	// A function renamed into a type is a deletion in one category and an
	// addition in the other.
	rec := Compare(snap("M", "let t = 1"), snap("M", "type t = int"))
	if len(rec.Deleted[decl.Function]) != 1 || len(rec.Added[decl.Type]) != 1 {
		t.Errorf("got %+v", rec)
	}
	if len(rec.Modified[decl.Function]) != 0 || len(rec.Modified[decl.Type]) != 0 {
		t.Errorf("categories leaked into modified: %+v", rec)
	}
}

func TestCompare_OrderFollowsSource(t *testing.T) {
	oldSnap := snap("M", "let z = 0\nlet y = 0\nlet x = 0\nlet keep = 1")
	newSnap := snap("M", "let c = 3\nlet keep = 2\nlet a = 1\nlet b = 2")

	rec := Compare(oldSnap, newSnap)
	names := func(es []decl.Entry) []string {
		var out []string
		for _, e := range es {
			out = append(out, e.Name)
		}
		return out
	}
	if got := names(rec.Added[decl.Function]); len(got) != 3 || got[0] != "c" || got[1] != "a" || got[2] != "b" {
		t.Errorf("added order = %v, want [c a b]", got)
	}
	if got := names(rec.Deleted[decl.Function]); len(got) != 3 || got[0] != "z" || got[1] != "y" || got[2] != "x" {
		t.Errorf("deleted order = %v, want [z y x]", got)
	}
}

func TestCompare_Disjoint(t *testing.T) {
	oldSnap := snap("M", "let a = 1\nlet b = 2\ntype t = int\nlet gone = 0")
	newSnap := snap("M", "let a = 1\nlet b = 3\ntype t = string\nlet fresh = 0")

	rec := Compare(oldSnap, newSnap)
	for _, c := range decl.Categories {
		seen := make(map[string]string)
		mark := func(name, where string) {
			if prev, ok := seen[name]; ok {
				t.Errorf("%s %q in both %s and %s", c, name, prev, where)
			}
			seen[name] = where
		}
		for _, e := range rec.Added[c] {
			mark(e.Name, "added")
		}
		for _, m := range rec.Modified[c] {
			mark(m.Name, "modified")
		}
		for _, e := range rec.Deleted[c] {
			mark(e.Name, "deleted")
		}
		if _, ok := seen["a"]; ok {
			t.Errorf("unchanged a reported as %s", seen["a"])
		}
	}
}

func TestAggregate_UnionOfModules(t *testing.T) {
	oldSnap := map[string]*decl.Snapshot{
		"Both":    snap("Both", "let a = 1"),
		"OldOnly": snap("OldOnly", "let gone = 1"),
	}
	newSnap := map[string]*decl.Snapshot{
		"Both":    snap("Both", "let a = 2"),
		"NewOnly": snap("NewOnly", "type fresh = int"),
	}

	recs := Aggregate(oldSnap, newSnap)
	if len(recs) != 3 {
		t.Fatalf("got %d records, want 3", len(recs))
	}
	wantOrder := []string{"Both", "NewOnly", "OldOnly"}
	for i, m := range wantOrder {
		if recs[i].Module != m {
			t.Errorf("record %d = %q, want %q", i, recs[i].Module, m)
		}
	}
	if len(recs[0].Modified[decl.Function]) != 1 {
		t.Errorf("Both: %+v", recs[0])
	}
	if len(recs[1].Added[decl.Type]) != 1 {
		t.Errorf("NewOnly: %+v", recs[1])
	}
	if len(recs[2].Deleted[decl.Function]) != 1 {
		t.Errorf("OldOnly: %+v", recs[2])
	}
}

func TestAggregate_KeepsUnchangedModules(t *testing.T) {
	s := map[string]*decl.Snapshot{"Stable": snap("Stable", "let a = 1")}

	recs := Aggregate(s, s)
	if len(recs) != 1 || !recs[0].Empty() || recs[0].Module != "Stable" {
		t.Errorf("got %+v, want one empty Stable record", recs)
	}
	if got := AggregateNonEmpty(s, s); len(got) != 0 {
		t.Errorf("AggregateNonEmpty = %+v, want none", got)
	}
}

func TestAggregate_NilSnapshotInMap(t *testing.T) {
	recs := Aggregate(map[string]*decl.Snapshot{"Ghost": nil}, nil)
	if len(recs) != 1 || recs[0].Module != "Ghost" || !recs[0].Empty() {
		t.Errorf("got %+v", recs)
	}
}
