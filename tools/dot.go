package tools

// dot -Tpng g.dot > g.png

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	. "github.com/Comcast/rulegraph/core"
	"github.com/Comcast/rulegraph/util"
)

// Dot makes a Graphviz dot file for the given automaton spec.
//
// Nodes named in highlight (for example, the frontier after reading
// some message) are drawn in red.  The start node is bold, and
// terminal nodes are dashed.
func Dot(spec *Spec, w io.WriteCloser, highlight []string) error {
	lit := make(map[string]bool, len(highlight))
	for _, name := range highlight {
		lit[name] = true
	}

	util.Logf("tools.Dot processing %d nodes", len(spec.Nodes))

	fmt.Fprintf(w, "digraph G {\n")
	fmt.Fprintf(w, `  graph [ordering=out,rankdir=LR,nodesep=0.3,ranksep=0.6]
  node [shape="circle" style="filled"]
  edge [fontsize = "12"]
`)
	if spec.Name != "" {
		fmt.Fprintf(w, "  label=\"%s\"\n", escape(spec.Name))
	}

	names := spec.NodeNames()
	for _, name := range names {
		n := spec.Nodes[name]
		label := name
		if n != nil && n.Doc != "" {
			doc := n.Doc
			if 40 < len(doc) {
				if period := strings.Index(doc, ". "); 0 < period {
					doc = doc[0 : period+1]
				}
			}
			label += "<BR/><FONT POINT-SIZE='8'>" + htmlEscape(doc) + "</FONT>"
		}
		var (
			color     = "black"
			fillcolor = "#99ddc8"
			shape     = "circle"
			style     = "filled"
		)
		if name == StartNode {
			style += ",bold"
		}
		if n.Terminal() {
			shape = "doublecircle"
			fillcolor = "#52aa5e"
			style += ",dashed"
		}
		if lit[name] {
			color = "red"
			fillcolor = "#f98b8b"
		}
		fmt.Fprintf(w, "  %s [shape=\"%s\", style=\"%s\", color=\"%s\", fillcolor=\"%s\", label=<%s> ]\n",
			name, shape, style, color, fillcolor, label)
	}

	for _, name := range names {
		n := spec.Nodes[name]
		if n == nil {
			continue
		}
		for _, b := range n.Branches {
			if _, have := spec.Nodes[b.Target]; !have {
				return &UnknownNode{
					Spec:     spec,
					NodeName: b.Target,
				}
			}
			color := "black"
			if lit[b.Target] {
				color = "red"
			}
			fmt.Fprintf(w, "  %s -> %s [ color=\"%s\" label = \"%s\" ]\n",
				name, b.Target, color, escape(b.Symbol))
		}
	}

	fmt.Fprintf(w, "}\n")
	return w.Close()
}

// PNG generates a PNG image based on output from Dot.
//
// This function with write two files: basename.dot and basename.png,
// where the basename is the given string.
func PNG(spec *Spec, basename string, highlight []string) (string, error) {
	dotname := basename + ".dot"
	pngname := basename + ".png"

	dotfile, err := os.Create(dotname)
	if err != nil {
		return pngname, err
	}
	if err := Dot(spec, dotfile, highlight); err != nil {
		return pngname, err
	}
	cmd := "dot -Tpng -Gstart=1 " + dotname + " > " + pngname
	if err := exec.Command("bash", "-c", cmd).Run(); err != nil {
		return pngname, err
	}
	return pngname, nil
}

// FrontierNames gives the spec node names for the frontier after
// reading the entire message.
func FrontierNames(a *Automaton, message string) []string {
	trace := a.Trace(message)
	last := trace[len(trace)-1]
	acc := make([]string, len(last))
	for i, n := range last {
		acc[i] = a.NodeName(n)
	}
	return acc
}

func escape(s string) string {
	s = strings.Replace(s, `\`, `\\`, -1)
	return strings.Replace(s, `"`, `\"`, -1)
}

func htmlEscape(s string) string {
	s = strings.Replace(s, "&", `&amp;`, -1)
	s = strings.Replace(s, "<", `&lt;`, -1)
	return strings.Replace(s, ">", `&gt;`, -1)
}
