package core

// These errors are user errors, not internal errors.

import (
	"fmt"
	"strings"
)

// MalformedRuleId occurs when a rule line's identifier isn't an
// unsigned integer.
type MalformedRuleId struct {
	Line int
	Text string
}

func (e *MalformedRuleId) Error() string {
	return fmt.Sprintf("line %d: malformed rule id %q", e.Line, e.Text)
}

// MalformedRuleBody occurs when a rule body can't be parsed.
type MalformedRuleBody struct {
	Line   int
	Id     RuleId
	Body   string
	Reason string
}

func (e *MalformedRuleBody) Error() string {
	return fmt.Sprintf("line %d: rule %d: malformed body %q: %s", e.Line, e.Id, e.Body, e.Reason)
}

// MalformedInput occurs when puzzle input doesn't have both a rules
// block and a messages block.
type MalformedInput struct {
	Reason string
}

func (e *MalformedInput) Error() string {
	return "malformed input: " + e.Reason
}

// UnknownRule occurs when a rule references an id that isn't
// defined.
//
// From is nil when the unknown id is the root.
type UnknownRule struct {
	Id   RuleId
	From *RuleId
}

func (e *UnknownRule) Error() string {
	if e.From == nil {
		return fmt.Sprintf("unknown rule %d", e.Id)
	}
	return fmt.Sprintf("unknown rule %d referenced by rule %d", e.Id, *e.From)
}

// InvalidGrammar occurs when a rule mixes a literal with other
// alternatives or has nothing to expand.
type InvalidGrammar struct {
	Id     RuleId
	Reason string
}

func (e *InvalidGrammar) Error() string {
	return fmt.Sprintf("invalid grammar at rule %d: %s", e.Id, e.Reason)
}

// CyclicRule occurs when a rule can reach itself.  Such grammars
// describe unbounded languages, and the builder doesn't support them.
type CyclicRule struct {
	Path []RuleId
}

func (e *CyclicRule) Error() string {
	ss := make([]string, len(e.Path))
	for i, id := range e.Path {
		ss[i] = id.String()
	}
	first := ""
	if 0 < len(ss) {
		first = ss[0]
	}
	return "rule " + first + " refers to itself via " + strings.Join(ss, " -> ")
}

// UnknownNode occurs when a branch's target node is not in the Spec.
type UnknownNode struct {
	Spec     *Spec
	NodeName string
}

func (e *UnknownNode) Error() string {
	return `node "` + e.NodeName + `" not found in spec "` + e.Spec.Name + `"`
}

// BadBranch occurs when a Spec branch's symbol isn't exactly one
// character.
type BadBranch struct {
	Spec     *Spec
	NodeName string
	Symbol   string
}

func (e *BadBranch) Error() string {
	return fmt.Sprintf(`branch symbol %q at node "%s" in spec "%s" isn't one character`,
		e.Symbol, e.NodeName, e.Spec.Name)
}
