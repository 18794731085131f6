package tools

import (
	"strings"
	"testing"

	"github.com/Comcast/rulegraph/core"
	"github.com/Comcast/rulegraph/util/testutil"
)

func TestEBNF(t *testing.T) {
	rules, err := core.ParseRules(testutil.MonsterRules)
	if err != nil {
		t.Fatal(err)
	}

	text := EBNF(rules, core.DefaultRoot)

	if !strings.HasPrefix(text, "R0 = R4 R1 R5 .\n") {
		t.Fatalf("unexpected start:\n%s", text)
	}
	if !strings.Contains(text, "R4 = \"a\" .\n") {
		t.Fatalf("missing literal:\n%s", text)
	}
	if !strings.Contains(text, "R2 = R4 R4 | R5 R5 .\n") {
		t.Fatalf("missing alternatives:\n%s", text)
	}
	if err = VerifyEBNF(text, core.DefaultRoot); err != nil {
		t.Fatal(err)
	}
}

func TestEBNFUnreachable(t *testing.T) {
	rules, err := core.ParseRules("0: 1\n1: \"a\"\n2: \"b\"")
	if err != nil {
		t.Fatal(err)
	}

	text := EBNF(rules, core.DefaultRoot)
	if strings.Contains(text, "R2") {
		t.Fatalf("unreachable rule rendered:\n%s", text)
	}
	if err = VerifyEBNF(text, core.DefaultRoot); err != nil {
		t.Fatal(err)
	}

	// Rule 1 is missing from the verified text.
	if err = VerifyEBNF("R0 = R1 .\n", core.DefaultRoot); err == nil {
		t.Fatal("expected an error for an undefined production")
	}
}
