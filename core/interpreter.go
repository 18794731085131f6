package core

import (
	"context"
)

// Extraction is what an Interpreter finds in an inbound message.
type Extraction struct {
	// Grammar is the id of the grammar to check against.  Empty
	// means the caller's default.
	Grammar string `json:"grammar,omitempty"`

	// Message is the candidate text.
	Message string `json:"message"`

	// Skip means the inbound message should be ignored.
	Skip bool `json:"skip,omitempty"`
}

// Interpreter turns inbound messages into candidate text.
//
// An Interpreter first compiles its source (for example, a script)
// and then executes the compiled thing against each message.
type Interpreter interface {
	// Compile can make something that helps when Exec()ing the
	// code later.
	Compile(ctx context.Context, src interface{}) (interface{}, error)

	// Exec executes the code against the message.  The result of
	// a previous Compile() might be provided.
	Exec(ctx context.Context, msg interface{}, compiled interface{}) (*Extraction, error)
}
