package interpreters

import (
	"testing"
)

func TestFind(t *testing.T) {
	for _, name := range []string{"", "noop", "goja", "ecmascript"} {
		if _, err := Find(name); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := Find("cobol"); err == nil {
		t.Fatal("expected an error")
	}
}
