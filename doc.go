// Package rulegraph compiles message grammars into automata and checks
// messages against them.
//
// The core code is in package 'core': rule parsing, the automaton
// builder, and the matcher.  Package 'crew' manages sets of compiled
// grammars, 'sio' couples a checker to I/O, and 'tools' renders and
// analyzes automata.  Command-line tools are in `cmd`.
package rulegraph
