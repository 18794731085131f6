package tools

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"io/ioutil"
	"strings"

	"github.com/Comcast/rulegraph/core"

	"github.com/jsccast/yaml"
	md "github.com/russross/blackfriday/v2"
)

// RenderSpecHTML writes an HTML fragment: the spec's documentation
// (Markdown), its rules (if any), and a table of its nodes.
func RenderSpecHTML(s *core.Spec, out io.Writer) error {
	f := func(format string, args ...interface{}) {
		fmt.Fprintf(out, format+"\n", args...)
	}

	f(`<div class="specDoc doc">%s</div>`, md.Run([]byte(s.Doc)))

	if s.Rules != "" {
		rules, err := core.ParseRules(s.Rules)
		if err != nil {
			return err
		}
		f(`<div class="rules"><table>`)
		for _, id := range rules.Ids() {
			alts, _ := rules.Get(id)
			ss := make([]string, len(alts))
			for i, alt := range alts {
				ss[i] = html.EscapeString(alt.String())
			}
			class := "rule"
			if id == s.Root {
				class += " root"
			}
			f(`<tr class="%s"><td><span id="rule-%d" class="ruleId">%d</span></td><td><code>%s</code></td></tr>`,
				class, id, id, strings.Join(ss, " | "))
		}
		f(`</table></div>`)
	}

	f(`<div class="nodes"><table>`)
	for _, name := range s.NodeNames() {
		node := s.Nodes[name]
		class := "node"
		if node.Terminal() {
			class += " terminal"
		}
		f(`<tr class="%s"><td><span id="%s" class="nodeName">%s</span></td><td>`, class, name, name)
		if node != nil && node.Doc != "" {
			f(`<div class="nodeDoc doc">%s</div>`, md.Run([]byte(node.Doc)))
		}
		if !node.Terminal() {
			f(`<div class="branches"><table>`)
			for _, b := range node.Branches {
				f(`<tr><td><code>%s</code></td><td><a href="#%s"><code>%s</code></a></td></tr>`,
					html.EscapeString(b.Symbol), b.Target, b.Target)
			}
			f(`</table></div>`)
		}
		f(`</td></tr>`)
	}
	f(`</table></div>`)

	return nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error {
	return nil
}

// RenderSpecPage writes a complete HTML page for the spec.
//
// With includeGraph, the page draws the automaton with Mermaid.
func RenderSpecPage(s *core.Spec, out io.Writer, cssFiles []string, includeGraph bool) error {
	if cssFiles == nil {
		cssFiles = []string{"/static/spec-html.css"}
	}

	js, err := json.Marshal(s)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, `<!DOCTYPE html>
<meta charset="utf-8">
<html>
  <head>
  <title>%s</title>
  <script>
  var thisSpec = %s;
  </script>
`, html.EscapeString(s.Name), js)

	if includeGraph {
		fmt.Fprintf(out, `  <script src="https://cdn.jsdelivr.net/npm/mermaid/dist/mermaid.min.js"></script>
  <script>mermaid.initialize({startOnLoad:true});</script>
`)
	}

	for _, cssFile := range cssFiles {
		fmt.Fprintf(out, "  <link href=\"%s\" rel=\"stylesheet\">\n", cssFile)
	}

	fmt.Fprintf(out, `
  </head>
  <body>
    <h1>%s</h1>
`, html.EscapeString(s.Name))

	if includeGraph {
		var buf bytes.Buffer
		if err = Mermaid(s, nopCloser{&buf}, nil, nil); err != nil {
			return err
		}
		fmt.Fprintf(out, "<div id=\"graph\" class=\"mermaid\">\n%s</div>\n", buf.String())
	}

	if err = RenderSpecHTML(s, out); err != nil {
		return err
	}

	fmt.Fprintf(out, `
  </body>
</html>
`)

	return nil
}

// ReadAndRenderSpecPage reads a YAML (or JSON) spec and renders it
// with RenderSpecPage.
func ReadAndRenderSpecPage(filename string, cssFiles []string, out io.Writer, includeGraph bool) error {
	specSrc, err := ioutil.ReadFile(filename)
	if err != nil {
		return err
	}
	var spec core.Spec
	if err = yaml.Unmarshal(specSrc, &spec); err != nil {
		return err
	}
	if _, err = spec.Automaton(); err != nil {
		return err
	}
	return RenderSpecPage(&spec, out, cssFiles, includeGraph)
}
