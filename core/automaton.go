/* Copyright 2024 Comcast Cable Communications Management, LLC
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

package core

import (
	"github.com/Comcast/rulegraph/util"
)

// NodeId is the index of a node in an Automaton.
type NodeId int

// Edge is a transition labeled by a single symbol.
type Edge struct {
	Symbol rune
	Target NodeId
}

// Automaton is a directed graph of nodes with symbol-labeled edges.
//
// Nodes live in an arena and are addressed by index.  A node with no
// outgoing edges accepts.  The graph only grows while it's being
// built and should be treated as read-only afterwards, at which point
// it's safe for concurrent use.
type Automaton struct {
	edges [][]Edge
	start NodeId
}

func NewAutomaton() *Automaton {
	return &Automaton{
		edges: make([][]Edge, 0, 16),
	}
}

// AddNode allocates a new node with no edges.
func (a *Automaton) AddNode() NodeId {
	a.edges = append(a.edges, nil)
	return NodeId(len(a.edges) - 1)
}

// AddEdge adds a transition.  Both nodes must already exist.
func (a *Automaton) AddEdge(from NodeId, symbol rune, to NodeId) {
	a.edges[from] = append(a.edges[from], Edge{
		Symbol: symbol,
		Target: to,
	})
}

// Edges returns the outgoing edges of the given node in the order
// they were added.
func (a *Automaton) Edges(n NodeId) []Edge {
	if n < 0 || int(n) >= len(a.edges) {
		return nil
	}
	return a.edges[n]
}

// Start is the node where matching begins.
func (a *Automaton) Start() NodeId {
	return a.start
}

// Terminal reports whether the node has no outgoing edges.  A node
// that doesn't exist is never terminal.
func (a *Automaton) Terminal(n NodeId) bool {
	if n < 0 || int(n) >= len(a.edges) {
		return false
	}
	return len(a.edges[n]) == 0
}

func (a *Automaton) NodeCount() int {
	return len(a.edges)
}

func (a *Automaton) EdgeCount() int {
	n := 0
	for _, es := range a.edges {
		n += len(es)
	}
	return n
}

// Build compiles the grammar rooted at the given rule into an
// Automaton.
//
// Each chain in a rule gets its own path of fresh intermediate
// nodes, and every alternative of a rule ends on the same node.  No
// automaton is returned if the grammar is bad.
func Build(rules *Rules, root RuleId) (*Automaton, error) {
	if err := rules.Check(root); err != nil {
		return nil, err
	}

	b := &builder{
		rules: rules,
		a:     NewAutomaton(),
	}
	begin := b.a.AddNode()
	end := b.a.AddNode()
	b.a.start = begin

	if err := b.expand(begin, end, root); err != nil {
		return nil, err
	}

	util.Logf("core.Build root %d nodes %d edges %d", root, b.a.NodeCount(), b.a.EdgeCount())

	return b.a, nil
}

type builder struct {
	rules *Rules
	a     *Automaton
}

// expand adds the paths from begin to end that spell the strings the
// given rule describes.
func (b *builder) expand(begin, end NodeId, id RuleId) error {
	alts, have := b.rules.Get(id)
	if !have {
		return &UnknownRule{Id: id}
	}
	if len(alts) == 0 {
		return &InvalidGrammar{
			Id:     id,
			Reason: "no alternatives",
		}
	}

	for _, alt := range alts {
		switch vv := alt.(type) {
		case Literal:
			if len(alts) != 1 {
				return &InvalidGrammar{
					Id:     id,
					Reason: "literal mixed with other alternatives",
				}
			}
			b.a.AddEdge(begin, vv.Symbol, end)

		case Chain:
			if len(vv) == 0 {
				return &InvalidGrammar{
					Id:     id,
					Reason: "empty chain",
				}
			}
			from := begin
			for i, ref := range vv {
				to := end
				if i < len(vv)-1 {
					to = b.a.AddNode()
				}
				if err := b.expand(from, to, ref); err != nil {
					return err
				}
				from = to
			}

		default:
			return &InvalidGrammar{
				Id:     id,
				Reason: "unknown alternative",
			}
		}
	}

	return nil
}
