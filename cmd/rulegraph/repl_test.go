package main

import (
	"testing"

	"github.com/Comcast/rulegraph/util/testutil"
)

func TestReplReport(t *testing.T) {
	a := testutil.MustBuild(t, "0: 1 2\n1: \"a\"\n2: \"b\"", 0)

	tests := []struct {
		description string
		msg         string
		sizes       string
		matched     bool
	}{
		{"match", "ab", "1 1 1", true},
		{"dead end", "ba", "1 0", false},
		{"too short", "a", "1 1", false},
		{"empty", "", "1", false},
	}
	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			sizes, matched := replReport(a, tc.msg)
			if sizes != tc.sizes || matched != tc.matched {
				t.Fatalf("got %q %v", sizes, matched)
			}
		})
	}
}
