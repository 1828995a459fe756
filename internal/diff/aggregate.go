package diff

import (
	"sort"

	"github.com/xonecas/decldiff/internal/decl"
)

// Aggregate compares oldSnaps[m] with newSnaps[m] for every module identifier m found in
// either map. A module missing from one side is compared against nil. Records
// are sorted by module identifier.
func Aggregate(oldSnaps, newSnaps map[string]*decl.Snapshot) []decl.ChangeRecord {
	modules := make([]string, 0, len(oldSnaps)+len(newSnaps))
	seen := make(map[string]struct{}, len(oldSnaps)+len(newSnaps))
	for _, side := range []map[string]*decl.Snapshot{oldSnaps, newSnaps} {
		for m := range side {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			modules = append(modules, m)
		}
	}
	sort.Strings(modules)

	records := make([]decl.ChangeRecord, 0, len(modules))
	for _, m := range modules {
		rec := Compare(oldSnaps[m], newSnaps[m])
		if rec.Module == "" {
			rec.Module = m
		}
		records = append(records, rec)
	}
	return records
}

// AggregateNonEmpty is Aggregate without the records that hold no changes.
func AggregateNonEmpty(oldSnaps, newSnaps map[string]*decl.Snapshot) []decl.ChangeRecord {
	all := Aggregate(oldSnaps, newSnaps)
	out := all[:0]
	for _, rec := range all {
		if !rec.Empty() {
			out = append(out, rec)
		}
	}
	return out
}
