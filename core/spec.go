package core

import (
	"sort"
	"strconv"
	"unicode/utf8"
)

// StartNode is the name of the node where matching begins.
const StartNode = "start"

// Spec is a serializable form of an Automaton.
//
// Node names are arbitrary except for StartNode.  An Automaton
// rendered by Automaton.Spec names its other nodes "n<index>".
type Spec struct {
	// Name is the name of the grammar.  Something like "monster".
	Name string `json:"name,omitempty" yaml:",omitempty"`

	// Doc is general documentation about the grammar.
	Doc string `json:"doc,omitempty" yaml:",omitempty"`

	// Root is the rule the automaton was built from.
	Root RuleId `json:"root" yaml:"root"`

	// Rules optionally carries the rule text the automaton was
	// built from.
	//
	// This package does not read this value.
	Rules string `json:"rules,omitempty" yaml:",omitempty"`

	Nodes map[string]*Node `json:"nodes,omitempty" yaml:",omitempty"`
}

// Copy makes a deep copy of the Spec.
func (spec *Spec) Copy() *Spec {
	ns := make(map[string]*Node, len(spec.Nodes))
	for name, n := range spec.Nodes {
		ns[name] = n.Copy()
	}

	return &Spec{
		Name:  spec.Name,
		Doc:   spec.Doc,
		Root:  spec.Root,
		Rules: spec.Rules,
		Nodes: ns,
	}
}

// NodeNames returns the node names with StartNode first.  Names of
// the form "n<index>" sort by index.
func (spec *Spec) NodeNames() []string {
	acc := make([]string, 0, len(spec.Nodes))
	for name := range spec.Nodes {
		if name != StartNode {
			acc = append(acc, name)
		}
	}
	sort.Slice(acc, func(i, j int) bool {
		if len(acc[i]) != len(acc[j]) {
			return len(acc[i]) < len(acc[j])
		}
		return acc[i] < acc[j]
	})
	if _, have := spec.Nodes[StartNode]; have {
		acc = append([]string{StartNode}, acc...)
	}
	return acc
}

// Automaton reconstructs the graph the Spec describes.
func (spec *Spec) Automaton() (*Automaton, error) {
	if _, have := spec.Nodes[StartNode]; !have {
		return nil, &UnknownNode{
			Spec:     spec,
			NodeName: StartNode,
		}
	}

	var (
		names = spec.NodeNames()
		ids   = make(map[string]NodeId, len(names))
		a     = NewAutomaton()
	)
	for _, name := range names {
		ids[name] = a.AddNode()
	}

	for _, name := range names {
		n := spec.Nodes[name]
		if n == nil {
			continue
		}
		for _, b := range n.Branches {
			if b == nil {
				continue
			}
			to, have := ids[b.Target]
			if !have {
				return nil, &UnknownNode{
					Spec:     spec,
					NodeName: b.Target,
				}
			}
			if utf8.RuneCountInString(b.Symbol) != 1 {
				return nil, &BadBranch{
					Spec:     spec,
					NodeName: name,
					Symbol:   b.Symbol,
				}
			}
			r, _ := utf8.DecodeRuneInString(b.Symbol)
			a.AddEdge(ids[name], r, to)
		}
	}

	a.start = ids[StartNode]

	return a, nil
}

// NodeName is the name Automaton.Spec gives to a node.
func (a *Automaton) NodeName(n NodeId) string {
	if n == a.Start() {
		return StartNode
	}
	return "n" + strconv.Itoa(int(n))
}

// Spec renders the automaton as a Spec with the given name.
func (a *Automaton) Spec(name string) *Spec {
	spec := &Spec{
		Name:  name,
		Nodes: make(map[string]*Node, a.NodeCount()),
	}
	for i := 0; i < a.NodeCount(); i++ {
		n := NodeId(i)
		edges := a.Edges(n)
		node := &Node{
			Branches: make([]*Branch, 0, len(edges)),
		}
		for _, e := range edges {
			node.Branches = append(node.Branches, &Branch{
				Symbol: string(e.Symbol),
				Target: a.NodeName(e.Target),
			})
		}
		spec.Nodes[a.NodeName(n)] = node
	}
	return spec
}

// Node represents a state of the automaton.
type Node struct {
	Doc      string    `json:"doc,omitempty" yaml:",omitempty"`
	Branches []*Branch `json:"branches,omitempty" yaml:",omitempty"`
}

// Copy makes a deep copy of the Node.
func (n *Node) Copy() *Node {
	if n == nil {
		return nil
	}
	bs := make([]*Branch, len(n.Branches))
	for i, b := range n.Branches {
		bs[i] = b.Copy()
	}
	return &Node{
		Doc:      n.Doc,
		Branches: bs,
	}
}

// Terminal determines if a node has no branches.
func (n *Node) Terminal() bool {
	return n == nil || len(n.Branches) == 0
}

// Branch is a transition that consumes one symbol.
type Branch struct {
	Symbol string `json:"symbol" yaml:"symbol"`
	Target string `json:"target" yaml:"target"`
}

func (b *Branch) Copy() *Branch {
	if b == nil {
		return nil
	}
	return &Branch{
		Symbol: b.Symbol,
		Target: b.Target,
	}
}
