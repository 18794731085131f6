package tools

import (
	"io"

	"github.com/Comcast/rulegraph/core"

	"github.com/olekukonko/tablewriter"
)

// Table writes the transition table for the spec: one row per
// branch, and one row for each terminal node.
func Table(w io.Writer, spec *core.Spec) error {
	table := tablewriter.NewWriter(w)
	table.Header("Node", "Symbol", "Target", "Accepts")

	for _, name := range spec.NodeNames() {
		n := spec.Nodes[name]
		if n.Terminal() {
			if err := table.Append([]string{name, "", "", "yes"}); err != nil {
				return err
			}
			continue
		}
		for _, b := range n.Branches {
			if b == nil {
				continue
			}
			if err := table.Append([]string{name, b.Symbol, b.Target, ""}); err != nil {
				return err
			}
		}
	}

	return table.Render()
}
