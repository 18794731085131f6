package tools

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Comcast/rulegraph/core"
	"github.com/Comcast/rulegraph/util/testutil"
)

func TestMermaid(t *testing.T) {
	a := testutil.MustBuild(t, testutil.MonsterRules, core.DefaultRoot)

	var buf bytes.Buffer
	if err := Mermaid(a.Spec("monster"), nopCloser{&buf}, nil, FrontierNames(a, "a")); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "graph LR\n") {
		t.Fatal(out)
	}
	if got := strings.Count(out, "-->"); got != a.EdgeCount() {
		t.Fatalf("got %d edges", got)
	}
	if !strings.Contains(out, DefaultMermaidOpts.HighlightFill) {
		t.Fatal("no highlight")
	}
	if !strings.Contains(out, `-- "a"`) {
		t.Fatal("no symbols")
	}
}

func TestMermaidOpts(t *testing.T) {
	a := core.NewAutomaton()
	a.AddEdge(a.AddNode(), '"', a.AddNode())

	var buf bytes.Buffer
	opts := &MermaidOpts{
		ShowSymbols: true,
	}
	if err := Mermaid(a.Spec("quote"), nopCloser{&buf}, opts, nil); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "graph TB\n") {
		t.Fatal(out)
	}
	if !strings.Contains(out, "#quot;") {
		t.Fatal(out)
	}
	if strings.Contains(out, "style") {
		t.Fatal(out)
	}
}
