package tools

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInline(t *testing.T) {
	input := `
0: 4 1 5
%inline("one")
%inline ("letters")
`
	want := `
0: 4 1 5
ONE
LETTERS
`

	find := func(name string) ([]byte, error) {
		return []byte(strings.ToUpper(name)), nil
	}

	got, err := Inline([]byte(input), find)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != want {
		t.Fatalf("got %s", got)
	}
}

func TestReadFileWithInlines(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		if err := os.MkdirAll(filepath.Dir(filepath.Join(dir, name)), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	write("rules.txt", "0: 1 2\n%inline(\"sub/letters.txt\")")
	write("sub/letters.txt", "1: \"a\"\n%inline(\"b.txt\")")
	write("sub/b.txt", "2: \"b\"")
	write("loop.txt", "%inline(\"loop.txt\")")

	got, err := ReadFileWithInlines(filepath.Join(dir, "rules.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if want := "0: 1 2\n1: \"a\"\n2: \"b\""; string(got) != want {
		t.Fatalf("got %q", got)
	}

	if _, err = ReadFileWithInlines(filepath.Join(dir, "loop.txt")); err == nil {
		t.Fatal("expected an error for a self-inlining file")
	}

	if _, err = ReadFileWithInlines(filepath.Join(dir, "missing.txt")); err == nil {
		t.Fatal("expected an error for a missing file")
	}

	got, err = ReadAllWithInlines(strings.NewReader(`%inline("sub/b.txt")`), dir)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != `2: "b"` {
		t.Fatalf("got %q", got)
	}
}
