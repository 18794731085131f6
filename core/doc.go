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

// Package core compiles numbered rule grammars into automata and
// checks messages against them.
//
// A grammar is a set of rules like
//
//	0: 4 1 5
//	1: 2 3 | 3 2
//	2: 4 4 | 5 5
//	3: 4 5 | 5 4
//	4: "a"
//	5: "b"
//
// A rule is either a single literal character or a list of
// alternatives, where each alternative is a sequence of other rules.
// ParseRules reads this text into Rules.
//
// Build expands a root rule into an Automaton: a graph whose edges
// consume one character each.  A sequence becomes a path through
// fresh intermediate nodes, and all the alternatives of a rule meet
// at the same node.  Nodes without outgoing edges accept.
//
// Matches walks all the possible paths at once.  A message matches
// when, after every character is consumed, some current node
// accepts.  The result is always a complete match; prefixes don't
// count.
//
// Grammars that refer back to themselves aren't supported.  Build
// reports them as a CyclicRule error.
//
// An Automaton can be rendered as a Spec, which is plain data that
// serializes to JSON or YAML and can be turned back into an
// Automaton.
package core
