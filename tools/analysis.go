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
	"sort"

	"github.com/Comcast/rulegraph/core"

	"gopkg.in/yaml.v2"
)

// SpecAnalysis reports on the structure of an automaton spec.
type SpecAnalysis struct {
	spec *core.Spec

	Errors         []string `yaml:"errors,omitempty"`
	NodeCount      int      `yaml:"nodes"`
	Branches       int      `yaml:"branches"`
	Alphabet       []string `yaml:"alphabet"`
	TerminalNodes  []string `yaml:"terminal"`
	Orphans        []string `yaml:"orphans,omitempty"`
	MissingTargets []string `yaml:"missingTargets,omitempty"`

	// Nondeterministic lists nodes with more than one branch for
	// the same symbol.
	Nondeterministic []string `yaml:"nondeterministic,omitempty"`

	// Language is the number of distinct accepted strings, up to
	// the limit given to Analyze.
	Language int `yaml:"language"`

	// Lengths lists the distinct lengths of accepted strings.
	Lengths []int `yaml:"lengths,omitempty"`
}

// Analyze examines the spec.  At most limit accepted strings are
// enumerated (no limit if limit isn't positive).
func Analyze(s *core.Spec, limit int) (*SpecAnalysis, error) {
	a := SpecAnalysis{
		spec:      s,
		NodeCount: len(s.Nodes),
		Errors:    make([]string, 0, 2),
	}

	var (
		terminal = make(map[string]bool)
		targeted = make(map[string]bool)
		missing  = make(map[string]bool)
		alphabet = make(map[string]bool)
		nondet   = make(map[string]bool)
	)

	for name, n := range s.Nodes {
		if n.Terminal() {
			terminal[name] = true
			continue
		}
		seen := make(map[string]bool, len(n.Branches))
		for _, b := range n.Branches {
			a.Branches++
			targeted[b.Target] = true
			alphabet[b.Symbol] = true
			if seen[b.Symbol] {
				nondet[name] = true
			}
			seen[b.Symbol] = true
			if _, have := s.Nodes[b.Target]; !have {
				missing[b.Target] = true
			}
		}
	}
	targeted[core.StartNode] = true

	a.TerminalNodes = keysToStringSlice(terminal)
	a.Orphans = keysToStringSlice(diffKeys(s.Nodes, targeted))
	a.MissingTargets = keysToStringSlice(missing)
	a.Alphabet = keysToStringSlice(alphabet)
	a.Nondeterministic = keysToStringSlice(nondet)

	if auto, err := s.Automaton(); err != nil {
		a.Errors = append(a.Errors, err.Error())
	} else {
		lang := auto.Language(limit)
		a.Language = len(lang)
		lengths := make(map[int]bool)
		for _, str := range lang {
			lengths[len([]rune(str))] = true
		}
		for n := range lengths {
			a.Lengths = append(a.Lengths, n)
		}
		sort.Ints(a.Lengths)
	}

	return &a, nil
}

// GrammarAnalysis reports on rules.
type GrammarAnalysis struct {
	Root        core.RuleId   `yaml:"root"`
	Rules       int           `yaml:"rules"`
	Literals    int           `yaml:"literals"`
	Chains      int           `yaml:"chains"`
	Unreachable []core.RuleId `yaml:"unreachable,omitempty"`

	// Depth is the longest chain of references from the root to
	// a literal.
	Depth int `yaml:"depth"`

	Error string `yaml:"error,omitempty"`
}

// AnalyzeRules examines the rules reachable from the root.
func AnalyzeRules(rules *core.Rules, root core.RuleId) *GrammarAnalysis {
	a := &GrammarAnalysis{
		Root:  root,
		Rules: rules.Len(),
	}

	for _, id := range rules.Ids() {
		alts, _ := rules.Get(id)
		for _, alt := range alts {
			switch alt.(type) {
			case core.Literal:
				a.Literals++
			case core.Chain:
				a.Chains++
			}
		}
	}

	reachable := rules.Reachable(root)
	for _, id := range rules.Ids() {
		if !reachable[id] {
			a.Unreachable = append(a.Unreachable, id)
		}
	}

	if err := rules.Check(root); err != nil {
		a.Error = err.Error()
		return a
	}

	depths := make(map[core.RuleId]int)
	var depth func(id core.RuleId) int
	depth = func(id core.RuleId) int {
		if d, have := depths[id]; have {
			return d
		}
		d := 0
		for _, ref := range rules.Refs(id) {
			if k := depth(ref) + 1; d < k {
				d = k
			}
		}
		depths[id] = d
		return d
	}
	a.Depth = depth(root)

	return a
}

// Analysis combines a grammar report and an automaton report.
type Analysis struct {
	Name      string           `yaml:"name,omitempty"`
	Grammar   *GrammarAnalysis `yaml:"grammar,omitempty"`
	Automaton *SpecAnalysis    `yaml:"automaton,omitempty"`
}

// YAML renders the analysis.
func (a *Analysis) YAML() ([]byte, error) {
	bs, err := yaml.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("analysis: %w", err)
	}
	return bs, nil
}

func keysToStringSlice(m map[string]bool) []string {
	var list []string
	for key := range m {
		list = append(list, key)
	}
	sort.Strings(list)
	return list
}

func diffKeys(all map[string]*core.Node, used map[string]bool) map[string]bool {
	diff := make(map[string]bool)
	for key := range all {
		if _, found := used[key]; !found {
			diff[key] = true
		}
	}
	return diff
}
