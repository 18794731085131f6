package tools

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Comcast/rulegraph/core"
	"github.com/Comcast/rulegraph/util/testutil"
)

func monsterSpec(t *testing.T) *core.Spec {
	a := testutil.MustBuild(t, testutil.MonsterRules, core.DefaultRoot)
	spec := a.Spec("monster")
	spec.Doc = "Messages from the *monster* satellite."
	spec.Rules = testutil.MonsterRules
	return spec
}

func TestRenderSpecHTML(t *testing.T) {

	t.Run("withoutGraph", func(t *testing.T) {
		out := bytes.NewBuffer(make([]byte, 0, 1024*128))

		if err := RenderSpecPage(monsterSpec(t), out, []string{"spec.css"}, false); err != nil {
			t.Fatal(err)
		}
		html := out.String()
		if strings.Contains(html, "mermaid") {
			t.Fatal("unexpected graph")
		}
		for _, want := range []string{"<em>monster</em>", `class="rule root"`, `class="node terminal"`, "spec.css"} {
			if !strings.Contains(html, want) {
				t.Fatalf("missing %q", want)
			}
		}
	})

	t.Run("withGraph", func(t *testing.T) {
		out := bytes.NewBuffer(make([]byte, 0, 1024*128))

		if err := RenderSpecPage(monsterSpec(t), out, nil, true); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(out.String(), `class="mermaid"`) {
			t.Fatal("no graph")
		}
	})

	t.Run("fromFile", func(t *testing.T) {
		js, err := json.Marshal(monsterSpec(t))
		if err != nil {
			t.Fatal(err)
		}
		filename := filepath.Join(t.TempDir(), "monster.json")
		if err = os.WriteFile(filename, js, 0644); err != nil {
			t.Fatal(err)
		}

		out := bytes.NewBuffer(make([]byte, 0, 1024*128))
		if err = ReadAndRenderSpecPage(filename, nil, out, false); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(out.String(), `id="start"`) {
			t.Fatal("no start node")
		}
	})
}
