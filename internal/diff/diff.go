// Package diff compares declaration snapshots of the same module taken at two
// revisions and aggregates the per-module results.
package diff

import "github.com/xonecas/decldiff/internal/decl"

// Compare classifies every declaration of oldSnap and newSnap as added,
// deleted or modified. Either snapshot may be nil, meaning the module does not
// exist at that revision.
//
// Added and modified entries follow newSnap's source order; deleted entries
// follow oldSnap's. Texts are compared byte for byte.
func Compare(oldSnap, newSnap *decl.Snapshot) decl.ChangeRecord {
	var rec decl.ChangeRecord
	switch {
	case oldSnap == nil && newSnap == nil:
		return rec
	case oldSnap == nil:
		rec.Module = newSnap.Module
	default:
		rec.Module = oldSnap.Module
		if newSnap != nil {
			rec.Module = newSnap.Module
		}
	}

	for _, c := range decl.Categories {
		for _, name := range newSnap.Names(c) {
			newText, _ := newSnap.Text(c, name)
			oldText, existed := oldSnap.Text(c, name)
			switch {
			case !existed:
				rec.Added[c] = append(rec.Added[c], decl.Entry{Name: name, Text: newText})
			case oldText != newText:
				rec.Modified[c] = append(rec.Modified[c], decl.Modification{Name: name, Old: oldText, New: newText})
			}
		}
		for _, name := range oldSnap.Names(c) {
			if _, kept := newSnap.Text(c, name); kept {
				continue
			}
			oldText, _ := oldSnap.Text(c, name)
			rec.Deleted[c] = append(rec.Deleted[c], decl.Entry{Name: name, Text: oldText})
		}
	}
	return rec
}
