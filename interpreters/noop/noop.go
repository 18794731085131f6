package noop

import (
	"context"
	"fmt"
	"log"

	"github.com/Comcast/rulegraph/core"
)

// Interpreter is a core.Interpreter that takes the message as it is.
//
// A string is candidate text for the default grammar.  A map with a
// "message" string (and optionally a "grammar" string) names its own
// grammar.  Anything else is an error.
type Interpreter struct {
	// Silent, if false, will log a warning when given code to
	// compile, which this Interpreter ignores.
	Silent bool
}

func NewInterpreter() *Interpreter {
	return &Interpreter{
		Silent: true,
	}
}

func (i *Interpreter) Compile(ctx context.Context, code interface{}) (interface{}, error) {
	if !i.Silent && code != nil {
		log.Printf("warning: noop Interpreter ignoring code")
	}
	return nil, nil
}

func (i *Interpreter) Exec(ctx context.Context, msg interface{}, compiled interface{}) (*core.Extraction, error) {
	switch vv := msg.(type) {
	case string:
		return &core.Extraction{Message: vv}, nil
	case []byte:
		return &core.Extraction{Message: string(vv)}, nil
	case *core.Extraction:
		return vv, nil
	case map[string]interface{}:
		s, is := vv["message"].(string)
		if !is {
			return nil, fmt.Errorf("message %#v has no \"message\" string", vv)
		}
		x := &core.Extraction{Message: s}
		if g, is := vv["grammar"].(string); is {
			x.Grammar = g
		}
		return x, nil
	default:
		return nil, fmt.Errorf("can't get text from a %T", msg)
	}
}
