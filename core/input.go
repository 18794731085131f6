package core

import (
	"strings"
)

// Puzzle is a grammar together with the messages to check against
// it.
type Puzzle struct {
	Rules    *Rules
	Messages []string
}

// ParseInput parses puzzle input with the DefaultParser.
func ParseInput(text string) (*Puzzle, error) {
	return DefaultParser.ParseInput(text)
}

// ParseInput reads a rules block, a blank line, and then a messages
// block with one message per line.
//
// Leading blank lines are ignored, and so are blank lines among the
// messages.
func (p *Parser) ParseInput(text string) (*Puzzle, error) {
	lines := strings.Split(normalizeNewlines(text), "\n")

	i := 0
	for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
		i++
	}
	first := i
	for i < len(lines) && strings.TrimSpace(lines[i]) != "" {
		i++
	}
	if first == i {
		return nil, &MalformedInput{
			Reason: "missing rules block",
		}
	}
	rulesText := strings.Join(lines[first:i], "\n")

	var msgs []string
	for _, line := range lines[i:] {
		if line = strings.TrimSpace(line); line != "" {
			msgs = append(msgs, line)
		}
	}
	if len(msgs) == 0 {
		return nil, &MalformedInput{
			Reason: "missing messages block",
		}
	}

	rules, err := p.ParseRules(rulesText)
	if err != nil {
		return nil, err
	}

	return &Puzzle{
		Rules:    rules,
		Messages: msgs,
	}, nil
}

// Solve builds the automaton for the given root and counts the
// messages that match it completely.
func (p *Puzzle) Solve(root RuleId) (int, error) {
	a, err := Build(p.Rules, root)
	if err != nil {
		return 0, err
	}
	return a.Count(p.Messages), nil
}
