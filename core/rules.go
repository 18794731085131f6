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
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// RuleId names a rule.  Only equality matters.
type RuleId uint32

// DefaultRoot is the rule that, by convention, describes a complete
// message.
const DefaultRoot RuleId = 0

// ParseRuleId parses the given text (after trimming whitespace) as a
// RuleId.
func ParseRuleId(s string) (RuleId, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, err
	}
	return RuleId(n), nil
}

func (id RuleId) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// Alternative is one way a rule can be satisfied.
//
// There are exactly two kinds: Literal and Chain.
type Alternative interface {
	isAlternative()
	String() string
}

// Literal matches exactly one symbol.
type Literal struct {
	Symbol rune
}

func (Literal) isAlternative() {}

func (l Literal) String() string {
	return `"` + string(l.Symbol) + `"`
}

// Chain matches the concatenation of the referenced rules, in order.
type Chain []RuleId

func (Chain) isAlternative() {}

func (c Chain) String() string {
	ss := make([]string, len(c))
	for i, id := range c {
		ss[i] = id.String()
	}
	return strings.Join(ss, " ")
}

// Rules maps each RuleId to its alternatives.
//
// Rules remembers the order in which ids were first defined so that
// rendering is stable.
type Rules struct {
	alts  map[RuleId][]Alternative
	order []RuleId
}

func NewRules() *Rules {
	return &Rules{
		alts: make(map[RuleId][]Alternative),
	}
}

// Set defines (or redefines) a rule.  The last definition wins.
func (r *Rules) Set(id RuleId, alts ...Alternative) {
	if _, have := r.alts[id]; !have {
		r.order = append(r.order, id)
	}
	r.alts[id] = alts
}

// Get returns the alternatives for the given rule.
func (r *Rules) Get(id RuleId) ([]Alternative, bool) {
	alts, have := r.alts[id]
	return alts, have
}

// Ids returns the defined ids in definition order.
func (r *Rules) Ids() []RuleId {
	acc := make([]RuleId, len(r.order))
	copy(acc, r.order)
	return acc
}

func (r *Rules) Len() int {
	return len(r.order)
}

// Refs returns the distinct ids referenced by the given rule's chains
// in order of first appearance.
func (r *Rules) Refs(id RuleId) []RuleId {
	var (
		seen = make(map[RuleId]bool)
		acc  = make([]RuleId, 0, 4)
	)
	for _, alt := range r.alts[id] {
		c, is := alt.(Chain)
		if !is {
			continue
		}
		for _, ref := range c {
			if !seen[ref] {
				seen[ref] = true
				acc = append(acc, ref)
			}
		}
	}
	return acc
}

// Reachable returns the set of defined rules reachable from root
// (including root if it's defined).
func (r *Rules) Reachable(root RuleId) map[RuleId]bool {
	acc := make(map[RuleId]bool)
	var walk func(id RuleId)
	walk = func(id RuleId) {
		if acc[id] {
			return
		}
		if _, have := r.alts[id]; !have {
			return
		}
		acc[id] = true
		for _, ref := range r.Refs(id) {
			walk(ref)
		}
	}
	walk(root)
	return acc
}

// Check verifies that every rule reachable from root is defined and
// that no rule can reach itself.
//
// The first problem found is returned as an *UnknownRule or a
// *CyclicRule.
func (r *Rules) Check(root RuleId) error {
	if _, have := r.alts[root]; !have {
		return &UnknownRule{Id: root}
	}

	const (
		white = iota
		grey
		black
	)

	var (
		color = make(map[RuleId]int, len(r.alts))
		path  = make([]RuleId, 0, 16)
		visit func(id RuleId) error
	)

	visit = func(id RuleId) error {
		color[id] = grey
		path = append(path, id)
		for _, ref := range r.Refs(id) {
			if _, have := r.alts[ref]; !have {
				from := id
				return &UnknownRule{Id: ref, From: &from}
			}
			switch color[ref] {
			case grey:
				cycle := []RuleId{}
				for i, x := range path {
					if x == ref {
						cycle = append(cycle, path[i:]...)
						break
					}
				}
				return &CyclicRule{Path: append(cycle, ref)}
			case white:
				if err := visit(ref); err != nil {
					return err
				}
			}
		}
		path = path[:len(path)-1]
		color[id] = black
		return nil
	}

	return visit(root)
}

// String renders the rules in the same text form that ParseRules
// reads.
func (r *Rules) String() string {
	var buf bytes.Buffer
	for _, id := range r.order {
		alts := r.alts[id]
		ss := make([]string, len(alts))
		for i, alt := range alts {
			ss[i] = alt.String()
		}
		fmt.Fprintf(&buf, "%d: %s\n", id, strings.Join(ss, " | "))
	}
	return buf.String()
}

// Parser reads rule text.
type Parser struct {
	// Strict makes the parser reject chain tokens that aren't rule
	// ids and literal bodies that aren't exactly one quoted
	// character.  Otherwise such things are dropped or ignored.
	Strict bool
}

// DefaultParser is the lenient parser used by ParseRules and
// ParseInput.
var DefaultParser = &Parser{}

// ParseRules parses rule text with the DefaultParser.
func ParseRules(text string) (*Rules, error) {
	return DefaultParser.ParseRules(text)
}

// ParseRules reads one rule per line.
//
// A line looks like "<id>: <body>".  A body that starts with a
// double quote is a literal.  Any other body is a list of chains
// separated by "|", and each chain is a whitespace-separated list of
// rule ids.  Blank lines are skipped.
func (p *Parser) ParseRules(text string) (*Rules, error) {
	rules := NewRules()
	for i, line := range strings.Split(normalizeNewlines(text), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		id, alts, err := p.parseRule(i+1, line)
		if err != nil {
			return nil, err
		}
		rules.Set(id, alts...)
	}
	return rules, nil
}

func (p *Parser) parseRule(lineNum int, line string) (RuleId, []Alternative, error) {
	idText, body, found := strings.Cut(line, ": ")
	if !found {
		trimmed := strings.TrimSpace(line)
		if !strings.HasSuffix(trimmed, ":") {
			return 0, nil, &MalformedRuleBody{
				Line:   lineNum,
				Body:   line,
				Reason: `no ": " separator`,
			}
		}
		idText, body = strings.TrimSuffix(trimmed, ":"), ""
	}

	id, err := ParseRuleId(idText)
	if err != nil {
		return 0, nil, &MalformedRuleId{
			Line: lineNum,
			Text: idText,
		}
	}

	body = strings.TrimSpace(body)
	if body == "" {
		return id, nil, &MalformedRuleBody{
			Line:   lineNum,
			Id:     id,
			Body:   body,
			Reason: "empty body",
		}
	}

	if strings.HasPrefix(body, `"`) {
		lit, err := p.parseLiteral(lineNum, id, body)
		if err != nil {
			return id, nil, err
		}
		return id, []Alternative{lit}, nil
	}

	segments := strings.Split(body, "|")
	alts := make([]Alternative, 0, len(segments))
	for _, seg := range segments {
		fields := strings.Fields(seg)
		chain := make(Chain, 0, len(fields))
		for _, tok := range fields {
			ref, err := ParseRuleId(tok)
			if err != nil {
				if p.Strict {
					return id, nil, &MalformedRuleBody{
						Line:   lineNum,
						Id:     id,
						Body:   body,
						Reason: fmt.Sprintf("%q is not a rule id", tok),
					}
				}
				continue
			}
			chain = append(chain, ref)
		}
		if len(chain) == 0 {
			return id, nil, &MalformedRuleBody{
				Line:   lineNum,
				Id:     id,
				Body:   body,
				Reason: "empty alternative",
			}
		}
		alts = append(alts, chain)
	}

	return id, alts, nil
}

func (p *Parser) parseLiteral(lineNum int, id RuleId, body string) (Literal, error) {
	if p.Strict {
		inner := strings.TrimPrefix(body, `"`)
		inner = strings.TrimSuffix(inner, `"`)
		if !strings.HasSuffix(body, `"`) || len(body) < 2 || utf8.RuneCountInString(inner) != 1 {
			return Literal{}, &MalformedRuleBody{
				Line:   lineNum,
				Id:     id,
				Body:   body,
				Reason: "literal must be exactly one quoted character",
			}
		}
	}

	inner := strings.Trim(body, `"`)
	if inner == "" {
		return Literal{}, &MalformedRuleBody{
			Line:   lineNum,
			Id:     id,
			Body:   body,
			Reason: "literal has no character",
		}
	}
	r, _ := utf8.DecodeRuneInString(inner)
	return Literal{Symbol: r}, nil
}

func normalizeNewlines(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}
