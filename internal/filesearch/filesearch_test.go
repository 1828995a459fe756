package filesearch

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, body := range files {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestList_FiltersAndSorts(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"src/App.res":            "let a = 1",
		"src/components/Nav.res": "let n = 1",
		"src/App.bs.js":          "// compiled",
		"lib/parser.ml":          "let p = 1",
		"README.md":              "# readme",
		".git/objects/Fake.res":  "let x = 1",
		"node_modules/dep/D.res": "let d = 1",
		"generated/Gen.res":      "let g = 1",
		".gitignore":             "node_modules/\n/generated\n",
	})

	got, err := List(context.Background(), Options{Root: root, Extensions: []string{".res", "ml"}})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"lib/parser.ml", "src/App.res", "src/components/Nav.res"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("List = %v, want %v", got, want)
	}
}

func TestList_NoExtensionsListsEverything(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.txt": "a", "b/c.res": "c"})

	got, err := List(context.Background(), Options{Root: root})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"a.txt", "b/c.res"}) {
		t.Errorf("List = %v", got)
	}
}

func TestList_SizeLimit(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"Small.res": "x", "Big.res": "0123456789"})

	got, err := List(context.Background(), Options{Root: root, MaxFileSize: 5})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"Small.res"}) {
		t.Errorf("List = %v", got)
	}
}

func TestList_SingleFile(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"One.res": "let x = 1"})

	got, err := List(context.Background(), Options{Root: filepath.Join(root, "One.res"), Extensions: []string{".res"}})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"One.res"}) {
		t.Errorf("List = %v", got)
	}

	got, _ = List(context.Background(), Options{Root: filepath.Join(root, "One.res"), Extensions: []string{".ml"}})
	if len(got) != 0 {
		t.Errorf("filtered single file listed: %v", got)
	}
}

func TestList_MissingRoot(t *testing.T) {
	if _, err := List(context.Background(), Options{Root: filepath.Join(t.TempDir(), "nope")}); err == nil {
		t.Error("expected an error for a missing root")
	}
}

func TestList_Cancelled(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"A.res": "a"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := List(ctx, Options{Root: root}); err == nil {
		t.Error("expected context error")
	}
}

func TestHasExtension(t *testing.T) {
	exts := []string{".res", "ml"}
	for path, want := range map[string]bool{
		"A.res":    true,
		"A.RES":    true,
		"b/c.ml":   true,
		"c.resi":   false,
		"Makefile": false,
	} {
		if got := HasExtension(path, exts); got != want {
			t.Errorf("HasExtension(%q) = %v, want %v", path, got, want)
		}
	}
}
