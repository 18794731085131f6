package noop

import (
	"context"
	"testing"

	"github.com/Comcast/rulegraph/util/testutil"
)

func TestExec(t *testing.T) {
	ctx := context.Background()
	i := NewInterpreter()

	tests := []struct {
		description string
		msg         interface{}
		grammar     string
		text        string
		err         bool
	}{
		{"string", "ababbb", "", "ababbb", false},
		{"bytes", []byte("ab"), "", "ab", false},
		{"map", testutil.Dwimjs(`{"grammar":"g","message":"ab"}`), "g", "ab", false},
		{"map without message", testutil.Dwimjs(`{"grammar":"g"}`), "", "", true},
		{"number", 42, "", "", true},
	}

	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			x, err := i.Exec(ctx, tc.msg, nil)
			if tc.err {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if x.Grammar != tc.grammar || x.Message != tc.text {
				t.Fatalf("got %#v", x)
			}
		})
	}
}
