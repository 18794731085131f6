package tools

import (
	"strings"
	"testing"

	"github.com/Comcast/rulegraph/core"
	"github.com/Comcast/rulegraph/util/testutil"
)

func TestAnalysis(t *testing.T) {
	a := testutil.MustBuild(t, testutil.MonsterRules, core.DefaultRoot)

	sa, err := Analyze(a.Spec("monster"), 0)
	if err != nil {
		t.Fatal(err)
	}

	if len(sa.Errors) != 0 {
		t.Fatal(sa.Errors)
	}
	if sa.NodeCount != 14 {
		t.Fatal(sa.NodeCount)
	}
	if sa.Branches != 18 {
		t.Fatal(sa.Branches)
	}
	if strings.Join(sa.Alphabet, "") != "ab" {
		t.Fatal(sa.Alphabet)
	}
	if len(sa.TerminalNodes) != 1 || sa.TerminalNodes[0] != "n1" {
		t.Fatal(sa.TerminalNodes)
	}
	if len(sa.Orphans) != 0 || len(sa.MissingTargets) != 0 {
		t.Fatal(sa.Orphans, sa.MissingTargets)
	}
	if len(sa.Nondeterministic) == 0 {
		t.Fatal("expected some nondeterministic nodes")
	}
	if sa.Language != 8 {
		t.Fatal(sa.Language)
	}
	if len(sa.Lengths) != 1 || sa.Lengths[0] != 6 {
		t.Fatal(sa.Lengths)
	}
}

func TestAnalysisBrokenSpec(t *testing.T) {
	spec := &core.Spec{
		Nodes: map[string]*core.Node{
			core.StartNode: {
				Branches: []*core.Branch{
					{Symbol: "a", Target: "nowhere"},
				},
			},
			"lonely": {},
		},
	}

	sa, err := Analyze(spec, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(sa.Errors) != 1 {
		t.Fatal(sa.Errors)
	}
	if len(sa.MissingTargets) != 1 || sa.MissingTargets[0] != "nowhere" {
		t.Fatal(sa.MissingTargets)
	}
	if len(sa.Orphans) != 1 || sa.Orphans[0] != "lonely" {
		t.Fatal(sa.Orphans)
	}
}

func TestAnalyzeRules(t *testing.T) {
	rules, err := core.ParseRules(testutil.MonsterRules + "\n9: \"c\"")
	if err != nil {
		t.Fatal(err)
	}

	ga := AnalyzeRules(rules, core.DefaultRoot)
	if ga.Rules != 7 || ga.Literals != 3 || ga.Chains != 7 {
		t.Fatalf("%#v", ga)
	}
	if len(ga.Unreachable) != 1 || ga.Unreachable[0] != 9 {
		t.Fatal(ga.Unreachable)
	}
	if ga.Depth != 3 {
		t.Fatal(ga.Depth)
	}
	if ga.Error != "" {
		t.Fatal(ga.Error)
	}

	if ga = AnalyzeRules(rules, 42); ga.Error == "" {
		t.Fatal("expected an error for an unknown root")
	}
}

func TestAnalysisYAML(t *testing.T) {
	rules, err := core.ParseRules(testutil.MonsterRules)
	if err != nil {
		t.Fatal(err)
	}
	a := testutil.MustBuild(t, testutil.MonsterRules, core.DefaultRoot)
	sa, err := Analyze(a.Spec("monster"), 0)
	if err != nil {
		t.Fatal(err)
	}

	bs, err := (&Analysis{
		Name:      "monster",
		Grammar:   AnalyzeRules(rules, core.DefaultRoot),
		Automaton: sa,
	}).YAML()
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"name: monster", "nodes: 14", "language: 8", "depth: 3"} {
		if !strings.Contains(string(bs), want) {
			t.Fatalf("missing %q in\n%s", want, bs)
		}
	}
}
