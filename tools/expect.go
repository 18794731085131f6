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

package tools

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"reflect"
	"time"

	"github.com/Comcast/rulegraph/crew"
	"github.com/Comcast/rulegraph/sio"
)

// Output describes an output line that's expected.
type Output struct {
	// Doc is an opaque documentation string.
	Doc string `json:"doc,omitempty" yaml:"doc,omitempty"`

	// Pattern must be subsumed by an emitted line.  See Subsumes.
	Pattern interface{} `json:"pattern,omitempty" yaml:"pattern,omitempty"`

	// Seen, which is the line that satisfied the Pattern, is
	// written during processing.  Just for diagnostics.
	Seen interface{} `json:"-" yaml:"-"`
}

// IO is a package of input messages and required output
// specifications.
type IO struct {
	// Doc is an opaque documentation string.
	Doc string `json:"doc,omitempty" yaml:"doc,omitempty"`

	// WaitBefore is the time to wait before sending the first message.
	WaitBefore time.Duration `json:"waitBefore,omitempty" yaml:"waitBefore,omitempty"`

	// Waitbefore is the time to wait between sending messages.
	WaitBetween time.Duration `json:"waitBetween,omitempty" yaml:"waitBetween,omitempty"`

	// Inputs are the lines to send.  A string is sent as is.
	// Anything else is sent as JSON.
	Inputs []interface{} `json:"inputs,omitempty" yaml:"inputs,omitempty"`

	// WaitAfter is the time to wait after sending the last
	// message.
	WaitAfter time.Duration `json:"waitAfter,omitempty" yaml:"waitAfter,omitempty"`

	// OutputSet is the set (not a list) of outputs to verify.
	OutputSet []Output `json:"outputSet,omitempty" yaml:"outputSet,omitempty"`

	// Timeout is the optional timeout for this set.
	// Session.DefaultTimeout is the default value.
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// Session is mostly a sequence of IOs.
//
// A Session talks to a checker that reads lines and writes JSON
// verdicts (and captain replies), one per line.  That checker is
// either a subprocess (Run) or in-process (RunChecker).
type Session struct {
	// Doc is an opaque documentation string.
	Doc string `json:"doc,omitempty" yaml:"doc,omitempty"`

	// Grammars are installed via a captain operation before the
	// first IO.
	Grammars map[string]*crew.GrammarSource `json:"grammars,omitempty" yaml:"grammars,omitempty"`

	// IOs is sequence of IOs that this session will run.
	IOs []IO `json:"ios" yaml:"ios"`

	// ParsePatterns will parse IO.OutputSet.Patterns as JSON.
	ParsePatterns bool `json:"parsePatterns,omitempty" yaml:"parsePatterns,omitempty"`

	// DefaultTimeout is the default timeout for each IO.
	DefaultTimeout time.Duration `json:"defaultTimeout,omitempty" yaml:"defaultTimeout,omitempty"`

	// ShowStderr controls whether the subprocess's stderr is
	// logged.
	ShowStderr bool `json:"showStderr,omitempty" yaml:"showStderr,omitempty"`

	ShowStdin bool `json:"showStdin,omitempty" yaml:"showStdin,omitempty"`

	ShowStdout bool `json:"showStdout,omitempty" yaml:"showStdout,omitempty"`

	Verbose bool `json:"verbose,omitempty" yaml:"verbose,omitempty"`
}

// Subsumes reports whether the message has everything the pattern
// has.
//
// A map pattern requires each of its keys to be present with a value
// that the pattern's value subsumes.  Other patterns must equal the
// message.  Numbers are compared as float64s.
func Subsumes(pattern, message interface{}) bool {
	switch vv := pattern.(type) {
	case map[string]interface{}:
		m, is := message.(map[string]interface{})
		if !is {
			return false
		}
		for k, v := range vv {
			x, have := m[k]
			if !have || !Subsumes(v, x) {
				return false
			}
		}
		return true
	case int:
		return Subsumes(float64(vv), message)
	default:
		return reflect.DeepEqual(pattern, message)
	}
}

// Run processes all the IOs in the Sesson.
//
// The current directory is changed to 'dir'.
//
// The subprocess is given by the args. The first arg is the
// executable.
func (s *Session) Run(ctx context.Context, dir string, args ...string) error {

	if dir != "" {
		if err := os.Chdir(dir); err != nil {
			return err
		}
	}

	cmd := exec.Command(args[0], args[1:]...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return err
	}
	defer stdin.Close()

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	defer stdout.Close()

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return err
	}
	defer stderr.Close()

	if err := cmd.Start(); err != nil {
		return err
	}

	// Log subprocess's stderr.
	go func() {
		out := bufio.NewReader(stderr)
		for {
			line, err := out.ReadBytes('\n')
			if err == io.EOF {
				break
			}
			if err != nil {
				log.Printf("stderr error %s", err)
				break
			}
			if s.ShowStderr {
				log.Printf("stderr %s", line)
			}
		}
	}()

	if err := s.run(ctx, stdin, bufio.NewReader(stdout)); err != nil {
		return err
	}

	if err := stdin.Close(); err != nil {
		log.Printf("stdin.Close() error %s", err)
	}

	if err := cmd.Wait(); err != nil {
		return err
	}

	return nil
}

// RunChecker processes all the IOs in the Session with an in-process
// sio.Checker that checks against the given crew.
func (s *Session) RunChecker(ctx context.Context, c *crew.Crew) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		inR, inW   = io.Pipe()
		outR, outW = io.Pipe()
	)

	couplings := sio.NewStdio()
	couplings.In = inR
	couplings.Out = outW

	conf := &sio.CheckerConf{
		Id:             c.Id,
		HaltOnInputEOF: true,
	}
	checker, err := sio.NewChecker(ctx, conf, c, nil, couplings)
	if err != nil {
		return err
	}
	checker.Verbose = s.Verbose

	looped := make(chan error, 1)
	go func() {
		looped <- checker.Loop(ctx)
	}()

	err = s.run(ctx, inW, bufio.NewReader(outR))

	inW.Close()
	outR.Close()
	if err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err = <-looped:
		return err
	}
}

func (s *Session) run(ctx context.Context, stdin io.Writer, out *bufio.Reader) error {
	newline := []byte{'\n'}

	ios := s.IOs
	if 0 < len(s.Grammars) {
		op := &sio.CrewOp{
			To:     sio.CaptainId,
			Update: s.Grammars,
		}
		js, err := json.Marshal(op)
		if err != nil {
			return err
		}
		// Any line satisfies a nil pattern, and the first line
		// back is the captain's reply.
		ios = append([]IO{{
			Doc:       "install grammars",
			Inputs:    []interface{}{string(js)},
			OutputSet: []Output{{}},
		}}, ios...)
	}

	for _, iop := range ios {

		if iop.Timeout == 0 {
			iop.Timeout = s.DefaultTimeout
		}

		var (
			timer    *time.Timer
			happy    = errors.New("happy")
			timeout  = errors.New("timeout")
			canceled = errors.New("canceled")
			errs     = make(chan error, 3) // At least three
		)

		if 0 < iop.Timeout {
			timer = time.AfterFunc(iop.Timeout, func() {
				errs <- timeout
			})
		}

		patterns := make([]interface{}, len(iop.OutputSet))
		for i, output := range iop.OutputSet {
			pattern := output.Pattern
			if p, is := pattern.(string); is && s.ParsePatterns {
				if err := json.Unmarshal([]byte(p), &pattern); err != nil {
					return err
				}
			}
			patterns[i] = normalize(pattern)
		}

		// Process stdout.
		go func() {
			f := func() error {
				need := len(iop.OutputSet)
				if need == 0 {
					return nil
				}

				for {
					line, err := out.ReadBytes('\n')
					if err != nil {
						return err
					}

					if s.ShowStdout {
						log.Printf("out %s", line)
					}

					var message interface{}
					if err = json.Unmarshal(line, &message); err != nil {
						log.Printf("ignoring %s", line)
						continue
					}
					for i := range iop.OutputSet {
						output := &iop.OutputSet[i]
						if output.Seen != nil {
							continue
						}
						if patterns[i] == nil || Subsumes(patterns[i], message) {
							output.Seen = message
							need--
							break
						}
					}
					if need == 0 {
						return nil
					}
				}
			}

			err := f()
			if timer != nil {
				timer.Stop()
			}
			if err == nil {
				errs <- happy
			} else {
				errs <- err
			}
		}()

		// Send messages to stdin.
		go func() {

			f := func() error {
				s.pause("waitBefore", iop.WaitBefore)

				for i, input := range iop.Inputs {
					if 0 < i {
						s.pause("waitBetween", iop.WaitBetween)
					}
					var js []byte
					if str, is := input.(string); is {
						js = []byte(str)
					} else {
						var err error
						if js, err = json.Marshal(input); err != nil {
							return err
						}
					}

					if s.ShowStdin {
						log.Printf("in %s\n", js)
					}

					if _, err := stdin.Write(append(js, newline...)); err != nil {
						return err
					}
				}

				s.pause("waitAfter", iop.WaitAfter)
				return nil
			}

			if err := f(); err == nil {
				errs <- happy
			} else {
				errs <- err
			}

		}()

		happies := 0
		want := 2
		var err error

	LOOP:
		for {

			select {
			case <-ctx.Done():
				return canceled
			case err = <-errs:
				switch err {
				case happy:
					happies++
					if want <= happies {
						break LOOP
					}
				default:
					break LOOP
				}
			}
		}

		if happies < want {
			if iop.Doc != "" {
				return fmt.Errorf("%s: %w", iop.Doc, err)
			}
			return err
		}
	}

	return nil
}

// normalize makes the pattern look like something that came from
// json.Unmarshal.
func normalize(pattern interface{}) interface{} {
	switch vv := pattern.(type) {
	case nil:
		return nil
	case map[interface{}]interface{}:
		acc := make(map[string]interface{}, len(vv))
		for k, v := range vv {
			acc[fmt.Sprintf("%v", k)] = normalize(v)
		}
		return acc
	case map[string]interface{}:
		acc := make(map[string]interface{}, len(vv))
		for k, v := range vv {
			acc[k] = normalize(v)
		}
		return acc
	case []interface{}:
		acc := make([]interface{}, len(vv))
		for i, v := range vv {
			acc[i] = normalize(v)
		}
		return acc
	}
	js, err := json.Marshal(pattern)
	if err != nil {
		return pattern
	}
	var x interface{}
	if err = json.Unmarshal(js, &x); err != nil {
		return pattern
	}
	return x
}

func (s *Session) pause(why string, d time.Duration) {
	if 0 < d {
		if s.Verbose {
			log.Printf("pause %s %s", why, d)
		}
		time.Sleep(d)
	}
}
