/* Copyright 2018 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package tools

import (
	"fmt"
	"io"

	. "github.com/Comcast/rulegraph/core"
	"github.com/Comcast/rulegraph/util"
)

type MermaidOpts struct {
	// ShowSymbols labels each edge with its symbol.
	ShowSymbols bool `json:"showSymbols"`

	// TerminalFill is the fill color for accepting nodes.
	TerminalFill string `json:"terminalFill,omitempty"`

	// HighlightFill is the fill color for highlighted nodes.
	HighlightFill string `json:"highlightFill,omitempty"`

	// Direction is the Mermaid graph direction ("TB", "LR").
	Direction string `json:"direction,omitempty"`
}

// DefaultMermaidOpts is used when Mermaid is given nil options.
var DefaultMermaidOpts = &MermaidOpts{
	ShowSymbols:   true,
	TerminalFill:  "#bcf2db",
	HighlightFill: "#f98b8b",
	Direction:     "LR",
}

// Mermaid makes a Mermaid (https://mermaidjs.github.io/) input file
// for the given automaton spec.
func Mermaid(spec *Spec, w io.WriteCloser, opts *MermaidOpts, highlight []string) error {
	if opts == nil {
		opts = DefaultMermaidOpts
	}
	dir := opts.Direction
	if dir == "" {
		dir = "TB"
	}

	lit := make(map[string]bool, len(highlight))
	for _, name := range highlight {
		lit[name] = true
	}

	util.Logf("tools.Mermaid processing %d nodes", len(spec.Nodes))

	fmt.Fprintf(w, "graph %s\n", dir)

	names := spec.NodeNames()
	nids := make(map[string]string, len(names))
	for i, name := range names {
		nid := fmt.Sprintf("m%d", i)
		nids[name] = nid
		n := spec.Nodes[name]
		if n.Terminal() {
			fmt.Fprintf(w, "  %s((\"%s\"))\n", nid, name)
			if opts.TerminalFill != "" {
				fmt.Fprintf(w, "  style %s fill:%s\n", nid, opts.TerminalFill)
			}
		} else {
			fmt.Fprintf(w, "  %s(\"%s\")\n", nid, name)
		}
		if lit[name] && opts.HighlightFill != "" {
			fmt.Fprintf(w, "  style %s fill:%s\n", nid, opts.HighlightFill)
		}
	}

	for _, name := range names {
		n := spec.Nodes[name]
		if n == nil {
			continue
		}
		for _, b := range n.Branches {
			to, have := nids[b.Target]
			if !have {
				return &UnknownNode{
					Spec:     spec,
					NodeName: b.Target,
				}
			}
			label := ""
			if opts.ShowSymbols {
				label = fmt.Sprintf(`-- "%s"`, mermaidEscape(b.Symbol))
			}
			fmt.Fprintf(w, "  %s %s --> %s\n", nids[name], label, to)
		}
	}

	fmt.Fprintf(w, "\n")

	return w.Close()
}

func mermaidEscape(s string) string {
	if s == `"` {
		return "#quot;"
	}
	return s
}
