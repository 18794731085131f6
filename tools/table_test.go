package tools

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Comcast/rulegraph/core"
	"github.com/Comcast/rulegraph/util/testutil"
)

func TestTable(t *testing.T) {
	a := testutil.MustBuild(t, "0: 1 2\n1: \"a\"\n2: \"b\"", core.DefaultRoot)

	var buf bytes.Buffer
	if err := Table(&buf, a.Spec("ab")); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	for _, want := range []string{"start", "n1", "n2", "yes"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in\n%s", want, out)
		}
	}

	// start comes before the other nodes.
	if strings.Index(out, "start") > strings.Index(out, "n2") {
		t.Fatalf("unexpected order\n%s", out)
	}
}
