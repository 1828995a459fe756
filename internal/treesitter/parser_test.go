package treesitter

import (
	"strings"
	"testing"

	"github.com/xonecas/decldiff/internal/decl"
	"github.com/xonecas/decldiff/internal/extract"
)

func TestParseSource_OCaml(t *testing.T) {
	src := []byte(`open Printf

type point = {
  x : int;
  y : int;
}

let origin = { x = 0; y = 0 }

let rec fact n =
  if n <= 1 then 1 else n * fact (n - 1)

external now : unit -> float = "caml_now"

module Inner = struct
  let hidden = 1
end
`)

	decls, err := ParseSource("geo.ml", src)
	if err != nil {
		t.Fatalf("ParseSource: %v", err)
	}

	type key struct {
		name string
		cat  decl.Category
	}
	want := []key{
		{"point", decl.Type},
		{"origin", decl.Function},
		{"fact", decl.Function},
		{"now", decl.External},
	}
	if len(decls) != len(want) {
		t.Fatalf("got %d declarations, want %d: %+v", len(decls), len(want), decls)
	}
	for i, w := range want {
		if decls[i].Name != w.name || decls[i].Category != w.cat {
			t.Errorf("decl %d = %s %q, want %s %q", i, decls[i].Category, decls[i].Name, w.cat, w.name)
		}
	}

	if !strings.Contains(decls[0].Text, "y : int;") || !strings.HasSuffix(decls[0].Text, "}") {
		t.Errorf("point text = %q, want the whole record", decls[0].Text)
	}
	if !strings.HasPrefix(decls[2].Text, "let rec fact n =") {
		t.Errorf("fact text = %q", decls[2].Text)
	}
}

func TestParseSource_AndBindingsShareText(t *testing.T) {
	src := []byte("let rec even n = n = 0 || odd (n - 1)\nand odd n = n <> 0 && even (n - 1)\n")

	decls, err := ParseSource("parity.ml", src)
	if err != nil {
		t.Fatalf("ParseSource: %v", err)
	}
	if len(decls) != 2 || decls[0].Name != "even" || decls[1].Name != "odd" {
		t.Fatalf("got %+v, want even and odd", decls)
	}
	if decls[0].Text != decls[1].Text {
		t.Errorf("bindings of one definition should carry the same text")
	}
}

func TestParseSource_SkipsUnnamedPatterns(t *testing.T) {
	src := []byte("let () = print_endline \"hi\"\nlet (a, b) = (1, 2)\nlet named = 3\n")

	decls, err := ParseSource("main.ml", src)
	if err != nil {
		t.Fatalf("ParseSource: %v", err)
	}
	if len(decls) != 1 || decls[0].Name != "named" {
		t.Errorf("got %+v, want only named", decls)
	}
}

func TestParseSource_UnsupportedExtension(t *testing.T) {
	decls, err := ParseSource("App.res", []byte("let x = 1"))
	if err != nil || decls != nil {
		t.Errorf("got %v, %v; want nil, nil", decls, err)
	}
	if Supported("App.res") {
		t.Error("Supported(App.res) = true")
	}
	if !Supported("lib/Util.ML") {
		t.Error("Supported(Util.ML) = false")
	}
}

func TestGrammar_BracketsInStringsDoNotConfuseIt(t *testing.T) {
	// The line scanner loses this declaration; the grammar does not.
	snap := Grammar{Ext: ".ml"}.Extract("Brace", "let brace = \"{\"\n")
	if text, ok := snap.Text(decl.Function, "brace"); !ok || text != `let brace = "{"` {
		t.Errorf("brace = %q, %v", text, ok)
	}
}

func TestRegisterDefaults(t *testing.T) {
	r := extract.NewRegistry()
	RegisterDefaults(r)

	if got := r.For("src/lexer.ml").Name(); got != "treesitter.ml" {
		t.Errorf("For(.ml) = %s, want treesitter.ml", got)
	}
	if got := r.For("src/App.res").Name(); got != "lines" {
		t.Errorf("For(.res) = %s, want lines", got)
	}
}

func TestGrammar_UsesItsOwnExtension(t *testing.T) {
	src := "let x = 1\n"
	if got := (Grammar{Ext: ".ml"}).Extract("M", src).Total(); got != 1 {
		t.Errorf(".ml grammar found %d declarations, want 1", got)
	}
	// No grammar is linked for .res, so it must not fall back to OCaml.
	if got := (Grammar{Ext: ".res"}).Extract("M", src).Total(); got != 0 {
		t.Errorf(".res grammar found %d declarations, want 0", got)
	}
	if (Grammar{Ext: ".ml"}).Name() == (Grammar{Ext: ".res"}).Name() {
		t.Error("grammars for different extensions share a cache name")
	}
}
