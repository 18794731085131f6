package core

import (
	"sort"
	"strings"
)

// Step returns the distinct nodes reachable from the frontier by one
// edge labeled with the given symbol.
//
// The result is ordered by first discovery.
func (a *Automaton) Step(frontier []NodeId, symbol rune) []NodeId {
	var (
		seen = make(map[NodeId]bool, len(frontier))
		next = make([]NodeId, 0, len(frontier))
	)
	for _, n := range frontier {
		for _, e := range a.Edges(n) {
			if e.Symbol != symbol || seen[e.Target] {
				continue
			}
			seen[e.Target] = true
			next = append(next, e.Target)
		}
	}
	return next
}

// MatchesFrom reports whether the entire message can be consumed
// starting at the given node and ending at an accepting node.
//
// All possible paths are followed at once.  An empty message matches
// only if the starting node itself accepts.
func (a *Automaton) MatchesFrom(start NodeId, message string) bool {
	frontier := []NodeId{start}
	for _, r := range message {
		if frontier = a.Step(frontier, r); len(frontier) == 0 {
			return false
		}
	}
	return a.anyTerminal(frontier)
}

// Matches is MatchesFrom(a.Start(), message).
func (a *Automaton) Matches(message string) bool {
	return a.MatchesFrom(a.Start(), message)
}

func (a *Automaton) anyTerminal(frontier []NodeId) bool {
	for _, n := range frontier {
		if a.Terminal(n) {
			return true
		}
	}
	return false
}

// Trace returns the frontier before any input followed by the
// frontier after each symbol.  The trace stops at the first empty
// frontier.
func (a *Automaton) Trace(message string) [][]NodeId {
	frontier := []NodeId{a.Start()}
	acc := [][]NodeId{frontier}
	for _, r := range message {
		frontier = a.Step(frontier, r)
		acc = append(acc, frontier)
		if len(frontier) == 0 {
			break
		}
	}
	return acc
}

// Accepted reports whether the last frontier in a trace of the full
// message contains an accepting node.
func (a *Automaton) Accepted(trace [][]NodeId, message string) bool {
	if len(trace) != len([]rune(message))+1 {
		return false
	}
	return a.anyTerminal(trace[len(trace)-1])
}

// Count returns the number of messages that match.
func (a *Automaton) Count(messages []string) int {
	n := 0
	for _, m := range messages {
		if a.Matches(m) {
			n++
		}
	}
	return n
}

// Language returns the sorted, distinct strings the automaton accepts.
//
// At most limit strings are collected (no limit when limit isn't
// positive).  Paths longer than the number of nodes are abandoned, so
// a graph with a cycle still terminates.
func (a *Automaton) Language(limit int) []string {
	var (
		found = make(map[string]bool)
		buf   = make([]rune, 0, 32)
		max   = a.NodeCount()
		walk  func(n NodeId) bool
	)

	walk = func(n NodeId) bool {
		if 0 < limit && limit <= len(found) {
			return false
		}
		if a.Terminal(n) {
			found[string(buf)] = true
			return true
		}
		if max <= len(buf) {
			return true
		}
		for _, e := range a.Edges(n) {
			buf = append(buf, e.Symbol)
			more := walk(e.Target)
			buf = buf[:len(buf)-1]
			if !more {
				return false
			}
		}
		return true
	}

	if 0 < a.NodeCount() {
		walk(a.Start())
	}

	acc := make([]string, 0, len(found))
	for s := range found {
		acc = append(acc, s)
	}
	sort.Strings(acc)
	return acc
}

// SameLanguage reports whether two automata accept the same strings,
// as far as Language(limit) can tell.
func SameLanguage(a, b *Automaton, limit int) bool {
	return strings.Join(a.Language(limit), "\n") == strings.Join(b.Language(limit), "\n")
}
