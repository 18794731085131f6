package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Comcast/rulegraph/crew"
	"github.com/Comcast/rulegraph/util/testutil"
)

func TestLoadGrammars(t *testing.T) {
	dir := t.TempDir()
	monster := filepath.Join(dir, "monster.txt")
	if err := os.WriteFile(monster, []byte(testutil.MonsterRules), 0644); err != nil {
		t.Fatal(err)
	}
	ab := filepath.Join(dir, "ab.txt")
	if err := os.WriteFile(ab, []byte("0: 1 2\n1: \"a\"\n2: \"b\""), 0644); err != nil {
		t.Fatal(err)
	}

	f, err := crew.NewFetcher("")
	if err != nil {
		t.Fatal(err)
	}

	gs, err := loadGrammars(context.Background(), f, "m="+monster+", "+ab)
	if err != nil {
		t.Fatal(err)
	}
	if len(gs) != 2 || gs[0].Id != "m" || gs[1].Id != "g1" {
		t.Fatalf("%#v", gs)
	}
	if !gs[0].Matches("ababbb") || !gs[1].Matches("ab") {
		t.Fatal("bad grammars")
	}

	if _, err = loadGrammars(context.Background(), f, "x="+filepath.Join(dir, "missing.txt")); err == nil {
		t.Fatal("expected an error")
	}

	if gs, err = loadGrammars(context.Background(), f, ""); err != nil || len(gs) != 0 {
		t.Fatal(gs, err)
	}
}
