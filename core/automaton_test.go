package core

import (
	"errors"
	"testing"
)

const exampleRules = `0: 4 1 5
1: 2 3 | 3 2
2: 4 4 | 5 5
3: 4 5 | 5 4
4: "a"
5: "b"`

var exampleLanguage = []string{
	"aaaabb", "aaabab", "aabaab", "aabbbb",
	"abaaab", "ababbb", "abbabb", "abbbab",
}

func mustBuild(t *testing.T, text string, root RuleId) *Automaton {
	t.Helper()
	rules, err := ParseRules(text)
	if err != nil {
		t.Fatal(err)
	}
	a, err := Build(rules, root)
	if err != nil {
		t.Fatal(err)
	}
	return a
}

func TestBuildShape(t *testing.T) {
	a := mustBuild(t, exampleRules, 0)
	if n := a.NodeCount(); n != 14 {
		t.Fatalf("nodes: %d", n)
	}
	if n := a.EdgeCount(); n != 18 {
		t.Fatalf("edges: %d", n)
	}
	if a.Start() != 0 {
		t.Fatalf("start: %d", a.Start())
	}

	terminals := 0
	for i := 0; i < a.NodeCount(); i++ {
		if a.Terminal(NodeId(i)) {
			terminals++
			if i != 1 {
				t.Fatalf("unexpected terminal %d", i)
			}
		}
	}
	if terminals != 1 {
		t.Fatalf("terminals: %d", terminals)
	}
}

func TestBuildLiteralRoot(t *testing.T) {
	a := mustBuild(t, `0: "x"`, 0)
	if a.NodeCount() != 2 || a.EdgeCount() != 1 {
		t.Fatalf("%d nodes %d edges", a.NodeCount(), a.EdgeCount())
	}
	es := a.Edges(a.Start())
	if len(es) != 1 || es[0].Symbol != 'x' || es[0].Target != 1 {
		t.Fatalf("edges %#v", es)
	}
}

func TestBuildErrors(t *testing.T) {
	t.Run("unknown", func(t *testing.T) {
		rules, err := ParseRules("0: 1 2\n1: \"a\"")
		if err != nil {
			t.Fatal(err)
		}
		a, err := Build(rules, 0)
		var unknown *UnknownRule
		if !errors.As(err, &unknown) {
			t.Fatalf("wanted UnknownRule, got %v", err)
		}
		if unknown.Id != 2 {
			t.Fatalf("id %d", unknown.Id)
		}
		if a != nil {
			t.Fatal("partial automaton")
		}
	})

	t.Run("unknown root", func(t *testing.T) {
		rules, err := ParseRules(`1: "a"`)
		if err != nil {
			t.Fatal(err)
		}
		_, err = Build(rules, 0)
		var unknown *UnknownRule
		if !errors.As(err, &unknown) || unknown.From != nil {
			t.Fatalf("got %v", err)
		}
	})

	t.Run("mixed literal", func(t *testing.T) {
		rules := NewRules()
		rules.Set(0, Literal{Symbol: 'a'}, Chain{1})
		rules.Set(1, Literal{Symbol: 'b'})
		_, err := Build(rules, 0)
		var invalid *InvalidGrammar
		if !errors.As(err, &invalid) {
			t.Fatalf("wanted InvalidGrammar, got %v", err)
		}
	})

	t.Run("no alternatives", func(t *testing.T) {
		rules := NewRules()
		rules.Set(0)
		_, err := Build(rules, 0)
		var invalid *InvalidGrammar
		if !errors.As(err, &invalid) {
			t.Fatalf("wanted InvalidGrammar, got %v", err)
		}
	})

	t.Run("cyclic", func(t *testing.T) {
		rules, err := ParseRules("0: 8 11\n8: 42 | 42 8\n11: 42 31\n42: \"a\"\n31: \"b\"")
		if err != nil {
			t.Fatal(err)
		}
		_, err = Build(rules, 0)
		var cyclic *CyclicRule
		if !errors.As(err, &cyclic) {
			t.Fatalf("wanted CyclicRule, got %v", err)
		}
	})
}
