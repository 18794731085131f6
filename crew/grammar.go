/* Copyright 2018-2019 Comcast Cable Communications Management, LLC
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

package crew

import (
	"context"
	"errors"

	"github.com/Comcast/rulegraph/core"
)

// GrammarSource aspires to hold the origin of a grammar.
//
// A grammar can be given as rule text (Rules), as a URL pointing at
// rule text or at another GrammarSource document, or as an already
// compiled core.Spec (Inline).
type GrammarSource struct {
	// Name is an optional label for the grammar.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Doc is optional documentation (Markdown).
	Doc string `json:"doc,omitempty" yaml:"doc,omitempty"`

	// Root is the rule that describes a complete message.
	Root core.RuleId `json:"root" yaml:"root"`

	// Strict asks for strict rule parsing.
	Strict bool `json:"strict,omitempty" yaml:"strict,omitempty"`

	// URL is an optional pointer to the grammar.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	// Rules is the rule text, possibly followed by a blank line
	// and some messages.
	Rules string `json:"rules,omitempty" yaml:"rules,omitempty"`

	// Messages are candidates to check against the grammar.
	Messages []string `json:"messages,omitempty" yaml:"messages,omitempty"`

	// Inline is an optional compiled automaton right here.
	Inline *core.Spec `json:"inline,omitempty" yaml:",omitempty"`
}

// NewGrammarSource creates a GrammarSource with the given name and
// rule text.
func NewGrammarSource(name, rules string) *GrammarSource {
	return &GrammarSource{
		Name:  name,
		Rules: rules,
	}
}

// Copy makes a copy of the given GrammarSource.  The Inline Spec is
// deep-copied.
func (s *GrammarSource) Copy() *GrammarSource {
	acc := &GrammarSource{
		Name:   s.Name,
		Doc:    s.Doc,
		Root:   s.Root,
		Strict: s.Strict,
		URL:    s.URL,
		Rules:  s.Rules,
	}
	if s.Messages != nil {
		acc.Messages = append([]string{}, s.Messages...)
	}
	if s.Inline != nil {
		acc.Inline = s.Inline.Copy()
	}
	return acc
}

// Grammar is a compiled grammar: an id, its source, its rules, and
// its automaton.
type Grammar struct {
	Id        string          `json:"id"`
	Source    *GrammarSource  `json:"source,omitempty"`
	Rules     *core.Rules     `json:"-" yaml:"-"`
	Automaton *core.Automaton `json:"-" yaml:"-"`
	Messages  []string        `json:"messages,omitempty"`
}

// Compile parses and builds the grammar described by the source.
//
// The source should already be resolved (see Fetcher.Resolve).  The
// grammar's Messages are the source's Messages followed by any
// messages that follow the rules (after a blank line).
func Compile(ctx context.Context, id string, src *GrammarSource) (*Grammar, error) {
	if src == nil {
		return nil, errors.New("no grammar source")
	}
	if id == "" {
		id = src.Name
	}

	if src.Inline != nil {
		a, err := src.Inline.Automaton()
		if err != nil {
			return nil, err
		}
		var rules *core.Rules
		if src.Inline.Rules != "" {
			if rules, err = core.ParseRules(src.Inline.Rules); err != nil {
				return nil, err
			}
		}
		return &Grammar{
			Id:        id,
			Source:    src,
			Rules:     rules,
			Automaton: a,
			Messages:  src.Messages,
		}, nil
	}

	if src.Rules == "" {
		return nil, errors.New("grammar source has no rules")
	}

	p := &core.Parser{
		Strict: src.Strict,
	}

	var (
		rules *core.Rules
		msgs  = append([]string{}, src.Messages...)
	)
	puzzle, err := p.ParseInput(src.Rules)
	if err == nil {
		rules = puzzle.Rules
		msgs = append(msgs, puzzle.Messages...)
	} else {
		var malformed *core.MalformedInput
		if !errors.As(err, &malformed) {
			return nil, err
		}
		if rules, err = p.ParseRules(src.Rules); err != nil {
			return nil, err
		}
	}

	a, err := core.Build(rules, src.Root)
	if err != nil {
		return nil, err
	}

	return &Grammar{
		Id:        id,
		Source:    src,
		Rules:     rules,
		Automaton: a,
		Messages:  msgs,
	}, nil
}

// Spec renders the grammar's automaton as a core.Spec that carries
// the grammar's documentation and rule text.
func (g *Grammar) Spec() *core.Spec {
	spec := g.Automaton.Spec(g.Id)
	if g.Source != nil {
		spec.Doc = g.Source.Doc
		spec.Root = g.Source.Root
	}
	if g.Rules != nil {
		spec.Rules = g.Rules.String()
	}
	return spec
}

// Matches reports whether the message completely matches the
// grammar.
func (g *Grammar) Matches(message string) bool {
	return g.Automaton.Matches(message)
}
