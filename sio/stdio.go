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

package sio

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/Comcast/rulegraph/util"
)

// Stdio is a fairly simple Couplings that uses stdin for input and
// stdout for output.
//
// An input line that looks like JSON (starts with '{', '[', or '"')
// is parsed as JSON.  Any other line is the message text itself.
type Stdio struct {
	// In is coupled to checker input.
	In io.Reader

	// Out is coupled to checker output.
	Out io.Writer

	// Plain writes "match" or "nomatch" and the message instead of
	// JSON verdicts.
	Plain bool

	// Timestamps prepends a timestamp to each output line.
	Timestamps bool

	// EchoInput writes input lines (prepended with "input") to
	// the output.
	EchoInput bool

	// Tags prefixes tags indicating type of output ("input",
	// "verdict", "reply").
	Tags bool

	// PadTags adds some padding to tags used in output.
	PadTags bool

	// InputEOF will be closed on EOF from stdin.
	InputEOF chan bool

	WG sync.WaitGroup
}

// NewStdio creates a new Stdio.
//
// In and Out are initialized with os.Stdin and os.Stdout
// respectively.
func NewStdio() *Stdio {
	return &Stdio{
		In:       os.Stdin,
		Out:      os.Stdout,
		InputEOF: make(chan bool),
	}
}

// Start does nothing.
func (s *Stdio) Start(ctx context.Context) error {
	return nil
}

// Stop waits until IO is complete or was terminated via its context.
func (s *Stdio) Stop(ctx context.Context) error {
	s.WG.Wait()
	return nil
}

// BadInput is an input line that couldn't be parsed.  Couplings send
// it to the Checker like any other message.
type BadInput struct {
	Line string
	Err  error
}

func (e *BadInput) Error() string {
	return fmt.Sprintf("bad input %q: %s", e.Line, e.Err)
}

// ParseLine turns an input line into a message.
func ParseLine(line string) (interface{}, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, nil
	}
	switch line[0] {
	case '{', '[', '"':
		var msg interface{}
		if err := json.Unmarshal([]byte(line), &msg); err != nil {
			return nil, err
		}
		return msg, nil
	default:
		return line, nil
	}
}

func (s *Stdio) printf(tag, format string, args ...interface{}) {
	if s.PadTags {
		tag = fmt.Sprintf("% 10s", tag)
	}
	if s.Tags {
		format = tag + " " + format
	}
	if s.Timestamps {
		format = fmt.Sprintf("%-31s", util.Timestamp()) + " " + format
	}
	fmt.Fprintf(s.Out, format, args...)
}

// IO returns channels for reading from stdin and writing to stdout.
func (s *Stdio) IO(ctx context.Context) (chan interface{}, chan *Result, chan bool, error) {
	in := make(chan interface{})
	done := make(chan bool)

	s.WG.Add(1)
	go func() {
		defer s.WG.Done()
		stdin := bufio.NewReader(s.In)
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}
			line, err := stdin.ReadString('\n')
			if (err == io.EOF && strings.TrimSpace(line) == "") || strings.TrimSpace(line) == "quit" {
				close(done)
				close(s.InputEOF)
				return
			}
			if err != nil && err != io.EOF {
				log.Printf("stdin error %s", err)
				return
			}
			if s.EchoInput {
				s.printf("input", "%s\n", strings.TrimRight(line, "\n"))
			}
			if strings.HasPrefix(line, "#") {
				continue
			}

			msg, perr := ParseLine(line)
			if perr != nil {
				// The Checker reports it as an error verdict.
				msg = &BadInput{
					Line: strings.TrimSpace(line),
					Err:  perr,
				}
			}
			if msg != nil {
				select {
				case <-ctx.Done():
					return
				case in <- msg:
				}
			}

			if err == io.EOF {
				close(done)
				close(s.InputEOF)
				return
			}
		}
	}()

	out := make(chan *Result)

	s.WG.Add(1)
	go func() {
		defer s.WG.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case r := <-out:
				if r == nil {
					return
				}
				s.write(r)
			}
		}
	}()

	return in, out, done, nil
}

func (s *Stdio) write(r *Result) {
	for _, v := range r.Verdicts {
		switch {
		case !s.Plain:
			s.printf("verdict", "%s\n", JS(v))
		case v.Error != "":
			s.printf("verdict", "error %s\n", v.Error)
		case v.Match:
			s.printf("verdict", "match %s\n", v.Message)
		default:
			s.printf("verdict", "nomatch %s\n", v.Message)
		}
	}
	if r.Reply != nil {
		if s.Plain {
			s.printf("reply", "reply %s\n", JS(r.Reply))
		} else {
			s.printf("reply", "%s\n", JS(r.Reply))
		}
	}
}
