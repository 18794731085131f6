package crew

import (
	"context"
	"errors"
	"testing"

	"github.com/Comcast/rulegraph/util/testutil"
)

func TestCompile(t *testing.T) {
	ctx := context.Background()

	t.Run("rules", func(t *testing.T) {
		g, err := Compile(ctx, "monster", NewGrammarSource("", testutil.MonsterRules))
		if err != nil {
			t.Fatal(err)
		}
		if !g.Matches("ababbb") || g.Matches("bababa") {
			t.Fatal("wrong verdicts")
		}
		if len(g.Messages) != 0 {
			t.Fatalf("messages %v", g.Messages)
		}
	})

	t.Run("puzzle", func(t *testing.T) {
		src := NewGrammarSource("monster", testutil.MonsterInput)
		g, err := Compile(ctx, "", src)
		if err != nil {
			t.Fatal(err)
		}
		if g.Id != "monster" {
			t.Fatalf("id %q", g.Id)
		}
		if len(g.Messages) != 5 {
			t.Fatalf("messages %v", g.Messages)
		}
		if len(src.Messages) != 0 {
			t.Fatal("source modified")
		}
	})

	t.Run("strict", func(t *testing.T) {
		src := NewGrammarSource("x", "0: 1 q\n1: \"a\"")
		src.Strict = true
		if _, err := Compile(ctx, "x", src); err == nil {
			t.Fatal("expected an error")
		}
		src.Strict = false
		if _, err := Compile(ctx, "x", src); err != nil {
			t.Fatal(err)
		}
	})

	t.Run("inline", func(t *testing.T) {
		g, err := Compile(ctx, "monster", NewGrammarSource("", testutil.MonsterRules))
		if err != nil {
			t.Fatal(err)
		}
		src := &GrammarSource{
			Inline: g.Spec(),
		}
		h, err := Compile(ctx, "again", src)
		if err != nil {
			t.Fatal(err)
		}
		if h.Rules == nil || h.Rules.Len() != 6 {
			t.Fatal("rules not carried")
		}
		if h.Automaton.Count(testutil.MonsterMessages) != 2 {
			t.Fatal("wrong count")
		}
	})

	t.Run("empty", func(t *testing.T) {
		if _, err := Compile(ctx, "x", &GrammarSource{}); err == nil {
			t.Fatal("expected an error")
		}
	})
}

func TestCrew(t *testing.T) {
	ctx := context.Background()
	c := NewCrew("test")

	g, err := Compile(ctx, "monster", NewGrammarSource("", testutil.MonsterRules))
	if err != nil {
		t.Fatal(err)
	}
	c.Set(g)

	h, err := Compile(ctx, "ab", NewGrammarSource("", "0: 1 2\n1: \"a\"\n2: \"b\""))
	if err != nil {
		t.Fatal(err)
	}
	c.Set(h)

	if c.Default != "monster" {
		t.Fatalf("default %q", c.Default)
	}

	tests := []struct {
		description string
		grammar     string
		message     string
		want        bool
	}{
		{"default match", "", "abbbab", true},
		{"default nomatch", "", "ab", false},
		{"named", "ab", "ab", true},
	}
	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			got, err := c.Check(tc.grammar, tc.message)
			if err != nil {
				t.Fatal(err)
			}
			if got != tc.want {
				t.Fatalf("got %v", got)
			}
		})
	}

	if _, err = c.Check("nope", "ab"); !errors.Is(err, UnknownGrammar) {
		t.Fatalf("got %v", err)
	}

	cp := c.Copy()
	c.Remove("monster")
	if ids := c.Ids(); len(ids) != 1 || ids[0] != "ab" {
		t.Fatalf("ids %v", ids)
	}
	if c.Default != "" {
		t.Fatal("default should be cleared")
	}
	if len(cp.Ids()) != 2 {
		t.Fatal("copy shares the map")
	}
}
