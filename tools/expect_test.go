package tools

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/Comcast/rulegraph/crew"

	"github.com/jsccast/yaml"
)

var testSession = `
doc: A test session
grammars:
  ab:
    rules: |
      0: 1 2
      1: "a"
      2: "b"
defaultTimeout: 5s
ios:
- doc: Check two messages and verify the verdicts
  inputs:
  - '{"grammar":"ab","message":"ab"}'
  - '{"grammar":"ab","message":"ba"}'
  outputSet:
  - pattern: {"message":"ab","match":true}
  - pattern: {"message":"ba","match":false}
- doc: Plain text goes to the default grammar
  inputs:
  - ab
  outputSet:
  - pattern: {"grammar":"ab","match":true}
`

func TestExpectChecker(t *testing.T) {
	var s Session
	if err := yaml.Unmarshal([]byte(testSession), &s); err != nil {
		t.Fatal(err)
	}
	if s.DefaultTimeout != 5*time.Second {
		t.Fatal(s.DefaultTimeout)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.RunChecker(ctx, crew.NewCrew("test")); err != nil {
		t.Fatal(err)
	}

	for _, iop := range s.IOs {
		for _, output := range iop.OutputSet {
			if output.Seen == nil {
				t.Fatalf("%s: unseen %v", iop.Doc, output.Pattern)
			}
		}
	}
}

func TestExpectCheckerTimeout(t *testing.T) {
	s := &Session{
		Grammars: map[string]*crew.GrammarSource{
			"ab": crew.NewGrammarSource("ab", "0: 1 2\n1: \"a\"\n2: \"b\""),
		},
		IOs: []IO{
			{
				Doc:    "Expect a verdict that won't happen",
				Inputs: []interface{}{"ab"},
				OutputSet: []Output{
					{
						Pattern: `{"match":false}`,
					},
				},
				Timeout: 500 * time.Millisecond,
			},
		},
		ParsePatterns: true,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.RunChecker(ctx, crew.NewCrew("test")); err == nil {
		t.Fatal("expected a timeout")
	}
}

// TestExpectProcess runs a real "expect" test on a real rgio process.
//
// Requires rgio in the path.
func TestExpectProcess(t *testing.T) {
	if _, err := exec.LookPath("rgio"); err != nil {
		t.Skip(err)
	}

	var s Session
	if err := yaml.Unmarshal([]byte(testSession), &s); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.Run(ctx, "", "rgio", "-io", "std"); err != nil {
		t.Fatal(err)
	}
}

func TestSubsumes(t *testing.T) {
	verdict := map[string]interface{}{
		"grammar": "ab",
		"message": "ab",
		"match":   true,
	}

	tests := []struct {
		description string
		pattern     interface{}
		want        bool
	}{
		{
			description: "empty map",
			pattern:     map[string]interface{}{},
			want:        true,
		},
		{
			description: "subset",
			pattern: map[string]interface{}{
				"match": true,
			},
			want: true,
		},
		{
			description: "wrong value",
			pattern: map[string]interface{}{
				"match": false,
			},
		},
		{
			description: "missing key",
			pattern: map[string]interface{}{
				"error": "oops",
			},
		},
		{
			description: "not a map",
			pattern:     "ab",
		},
	}

	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			if got := Subsumes(tc.pattern, verdict); got != tc.want {
				t.Fatalf("got %v", got)
			}
		})
	}

	if !Subsumes(3, 3.0) {
		t.Fatal("int vs float64")
	}
}
