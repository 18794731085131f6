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

package sio

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/Comcast/rulegraph/core"
	"github.com/Comcast/rulegraph/crew"
	"github.com/Comcast/rulegraph/interpreters"
	"github.com/Comcast/rulegraph/interpreters/goja"
	"github.com/Comcast/rulegraph/storage"
)

// CheckerConf provides some basic Checker parameters.
type CheckerConf struct {
	// Id is the crew id used with Storage.
	Id string `json:"id,omitempty" yaml:"id,omitempty"`

	// Interpreter names the interpreter (see
	// interpreters.Standard) that turns inbound messages into
	// candidate text.
	Interpreter string `json:"interpreter,omitempty" yaml:"interpreter,omitempty"`

	// Extractor is the interpreter's source, if any.
	Extractor interface{} `json:"extractor,omitempty" yaml:"extractor,omitempty"`

	// HaltOnInputEOF makes Loop return when the Couplings' input
	// is exhausted.
	HaltOnInputEOF bool `json:"haltOnInputEOF,omitempty" yaml:"haltOnInputEOF,omitempty"`
}

// Verdict is the outcome of checking one message.
type Verdict struct {
	Grammar string `json:"grammar"`
	Message string `json:"message"`
	Match   bool   `json:"match"`
	Error   string `json:"error,omitempty"`
}

// Result represents all visible output from processing an inbound
// message.
type Result struct {
	Verdicts []*Verdict `json:"verdicts,omitempty"`

	// Reply is the response to a captain operation.
	Reply interface{} `json:"reply,omitempty"`
}

// Checker checks inbound messages against a Crew of grammars, with
// I/O coupled via two channels (in and out).
type Checker struct {
	Crew *crew.Crew

	Conf *CheckerConf `json:"conf"`

	// Store records grammars and tallies.
	Store storage.Storage

	// Fetcher resolves grammar sources given to the captain.
	Fetcher *crew.Fetcher

	// Verbose turns on logging.
	Verbose bool

	interpreter core.Interpreter
	compiled    interface{}

	// tallies is a local copy of verdict counts.
	tallies map[string]*storage.Tally

	// in receives all in-bound messages.
	in chan interface{}

	// out receives all results.
	out chan *Result

	// done is closed by Couplings when its input is closed.
	done chan bool

	sync.Mutex
}

// NewChecker makes a Checker with the given configuration, grammars,
// and couplings.
//
// The couplings' IO() method is called to obtain the checker's in/out
// channels.  A nil store means a storage.NoopStorage.
func NewChecker(ctx context.Context, conf *CheckerConf, c *crew.Crew, store storage.Storage, couplings Couplings) (*Checker, error) {
	if conf == nil {
		conf = &CheckerConf{}
	}
	if c == nil {
		c = crew.NewCrew(conf.Id)
	}
	if store == nil {
		store = &storage.NoopStorage{}
	}

	in, out, done, err := couplings.IO(ctx)
	if err != nil {
		return nil, err
	}

	ch := &Checker{
		Crew:    c,
		Conf:    conf,
		Store:   store,
		tallies: make(map[string]*storage.Tally),
		in:      in,
		out:     out,
		done:    done,
	}

	return ch, ch.init(ctx)
}

func (c *Checker) init(ctx context.Context) error {
	i, err := interpreters.Find(c.Conf.Interpreter)
	if err != nil {
		return err
	}
	if g, is := i.(*goja.Interpreter); is {
		g.Matches = c.Crew.Check
	}
	c.interpreter = i

	if c.compiled, err = i.Compile(ctx, c.Conf.Extractor); err != nil {
		return err
	}

	if c.Fetcher == nil {
		if c.Fetcher, err = crew.NewFetcher(""); err != nil {
			return err
		}
	}

	return c.Store.MakeCrew(ctx, c.Conf.Id)
}

// Logf logs if c.Verbose.
func (c *Checker) Logf(format string, args ...interface{}) {
	if !c.Verbose {
		return
	}
	log.Printf(format, args...)
}

// Errorf emits an error verdict and writes a log line with "ERROR"
// prepended.
func (c *Checker) Errorf(ctx context.Context, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	log.Println("ERROR " + msg)
	select {
	case <-ctx.Done():
	case c.out <- &Result{
		Verdicts: []*Verdict{
			{
				Error: msg,
			},
		},
	}:
	}
}

// ProcessMsg checks the message (or each message in a JSON array)
// and returns the verdicts.
//
// A map with "to":"captain" is a captain operation (see CrewOp)
// instead.
func (c *Checker) ProcessMsg(ctx context.Context, msg interface{}) (*Result, error) {
	c.Lock()
	defer c.Unlock()

	if op, err := AsCrewOp(msg); err != nil {
		return nil, err
	} else if op != nil {
		reply, err := c.DoOp(ctx, op)
		if err != nil {
			return nil, err
		}
		return &Result{Reply: reply}, nil
	}

	var batch []interface{}
	if xs, is := msg.([]interface{}); is {
		batch = xs
	} else {
		batch = []interface{}{msg}
	}

	r := &Result{
		Verdicts: make([]*Verdict, 0, len(batch)),
	}
	for _, m := range batch {
		x, err := c.interpreter.Exec(ctx, m, c.compiled)
		if err != nil {
			r.Verdicts = append(r.Verdicts, c.record(ctx, &Verdict{
				Error: err.Error(),
			}))
			continue
		}
		if x.Skip {
			c.Logf("Checker.ProcessMsg skipping %s", JShort(m))
			continue
		}
		r.Verdicts = append(r.Verdicts, c.record(ctx, c.Check(x)))
	}

	return r, nil
}

// Check checks the extracted text against its grammar.
func (c *Checker) Check(x *core.Extraction) *Verdict {
	v := &Verdict{
		Grammar: x.Grammar,
		Message: x.Message,
	}
	g, err := c.Crew.Get(x.Grammar)
	if err != nil {
		v.Error = err.Error()
		return v
	}
	v.Grammar = g.Id
	v.Match = g.Matches(x.Message)
	return v
}

// record updates the tallies.  Storage errors are logged.
func (c *Checker) record(ctx context.Context, v *Verdict) *Verdict {
	delta := &storage.Tally{
		Checked: 1,
	}
	if v.Match {
		delta.Matched = 1
	}
	if v.Error != "" {
		delta.Checked = 0
		delta.Errors = 1
	}

	t, have := c.tallies[v.Grammar]
	if !have {
		t = &storage.Tally{}
		c.tallies[v.Grammar] = t
	}
	t.Add(delta)

	if _, err := c.Store.AddTally(ctx, c.Conf.Id, v.Grammar, delta); err != nil {
		log.Printf("ERROR Checker AddTally %s", err)
	}

	c.Logf("Checker verdict %s", JS(v))

	return v
}

// Tallies returns a copy of the verdict counts by grammar id.
func (c *Checker) Tallies() map[string]*storage.Tally {
	c.Lock()
	defer c.Unlock()
	acc := make(map[string]*storage.Tally, len(c.tallies))
	for id, t := range c.tallies {
		cp := *t
		acc[id] = &cp
	}
	return acc
}

// Loop starts the input processing loop in the current goroutine.
//
// This loop calls ProcessMsg on each message that arrives via the
// input coupling, and the loop halts when ctx.Done().
func (c *Checker) Loop(ctx context.Context) error {
	c.Logf("Checker.Loop starting")
LOOP:
	for {
		select {
		case <-c.done:
			if c.Conf.HaltOnInputEOF {
				c.Logf("Checker.Loop shutting down (c.done)")
				break LOOP
			}
			// Don't spin on the closed channel.
			c.done = nil
		case <-ctx.Done():
			c.Logf("Checker.Loop shutting down (ctx.Done)")
			break LOOP
		case msg := <-c.in:
			if msg == nil {
				break LOOP
			}
			if bad, is := msg.(*BadInput); is {
				c.Errorf(ctx, "%s", bad)
				continue
			}
			r, err := c.ProcessMsg(ctx, msg)
			if err != nil {
				c.Errorf(ctx, "Checker.Loop ProcessMsg %s", err)
				continue
			}
			select {
			case <-ctx.Done():
			case c.out <- r:
			}
		}
	}

	c.Logf("Checker.Loop done")
	return nil
}

// LoadCrew restores a crew's grammars from storage.
func LoadCrew(ctx context.Context, store storage.Storage, cid string) (*crew.Crew, error) {
	rs, err := store.GetCrew(ctx, cid)
	if err != nil {
		return nil, err
	}
	gs, err := storage.AsGrammars(ctx, rs)
	if err != nil {
		return nil, err
	}
	c := crew.NewCrew(cid)
	for _, g := range gs {
		c.Set(g)
	}
	return c, nil
}
