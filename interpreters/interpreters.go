package interpreters

import (
	"fmt"
	"sort"

	"github.com/Comcast/rulegraph/core"
	"github.com/Comcast/rulegraph/interpreters/goja"
	"github.com/Comcast/rulegraph/interpreters/noop"
)

// Standard returns the interpreters known by name.
//
// "noop" (also the empty name) takes messages as they are.  "goja"
// and "ecmascript" run a script.
func Standard() map[string]core.Interpreter {
	is := make(map[string]core.Interpreter)

	n := noop.NewInterpreter()
	is[""] = n
	is["noop"] = n

	g := goja.NewInterpreter()
	is["goja"] = g
	is["ecmascript"] = g

	return is
}

// Find returns the named interpreter from Standard().
func Find(name string) (core.Interpreter, error) {
	is := Standard()
	i, have := is[name]
	if !have {
		names := make([]string, 0, len(is))
		for n := range is {
			if n != "" {
				names = append(names, n)
			}
		}
		sort.Strings(names)
		return nil, fmt.Errorf("unknown interpreter %q (known: %v)", name, names)
	}
	return i, nil
}
