package tools

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Comcast/rulegraph/crew"
)

func TestReadGrammarSource(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "letters.txt"), []byte("1: \"a\"\n2: \"b\""), 0644); err != nil {
		t.Fatal(err)
	}
	src := `name: ab
url: file://` + filepath.Join(dir, "rules.txt") + `
messages: [ab, ba]
`
	if err := os.WriteFile(filepath.Join(dir, "ab.yaml"), []byte(src), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "rules.txt"), []byte("0: 1 2\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "inlined.txt"), []byte("0: 1 2\n%inline(\"letters.txt\")"), 0644); err != nil {
		t.Fatal(err)
	}

	f, err := crew.NewFetcher("")
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	gs, err := ReadGrammarSource(ctx, f, filepath.Join(dir, "inlined.txt"))
	if err != nil {
		t.Fatal(err)
	}
	g, err := crew.Compile(ctx, "ab", gs)
	if err != nil {
		t.Fatal(err)
	}
	if !g.Matches("ab") || g.Matches("ba") {
		t.Fatal("bad grammar")
	}

	gs, err = ReadGrammarSource(ctx, f, filepath.Join(dir, "ab.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if gs.Name != "ab" || gs.Rules != "0: 1 2\n" || len(gs.Messages) != 2 {
		t.Fatalf("%#v", gs)
	}
}

func TestIsURL(t *testing.T) {
	for loc, want := range map[string]bool{
		"https://example.com/rules.txt": true,
		"file:///tmp/rules.txt":         true,
		"rules.txt":                     false,
		"-":                             false,
	} {
		if got := IsURL(loc); got != want {
			t.Fatalf("%s: got %v", loc, got)
		}
	}
}
