/* Copyright 2019 Comcast Cable Communications Management, LLC
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

package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/Comcast/rulegraph/sio"

	"github.com/gorilla/websocket"
)

// HTTPDCouplings implements an sio.Couplings based on a HTTP service.
//
// The HTTP API supports synchronous checking of a message (POST
// /check), which returns the verdicts.  Messages POSTed to /in are
// checked asynchronously, and their verdicts are available via
// long-polling (GET /history) or a WebSocket (/ws).  GET /tally
// reports the counts of verdicts by grammar.
type HTTPDCouplings struct {
	Port string

	in   chan interface{}
	out  chan *sio.Result
	done chan bool

	hist    *History
	server  *http.Server
	checker *sio.Checker
}

// NewHTTPDCouplings parses the command-line flags to generate an HTTPDCouplings.
//
// To help with command-line usage reporting, this function also
// returns the flag.FlagSet used to process the command-line args.
func NewHTTPDCouplings(args []string) (*HTTPDCouplings, *flag.FlagSet) {
	var (
		fs   = flag.NewFlagSet("httpd", flag.ExitOnError)
		port = fs.String("port", "localhost:8080", "Port (host:port) for HTTP service")
		size = fs.Int("history", 1024, "Number of verdicts to remember for /history and /ws")
	)
	if args == nil {
		return nil, fs
	}
	fs.Parse(args)
	return newHTTPDCouplings(*port, *size), fs
}

func newHTTPDCouplings(port string, historySize int) *HTTPDCouplings {
	return &HTTPDCouplings{
		Port: port,
		in:   make(chan interface{}),
		out:  make(chan *sio.Result),
		done: make(chan bool),
		hist: NewHistory(historySize),
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

func puntf(w http.ResponseWriter, status int, format string, args ...interface{}) {
	s := fmt.Sprintf(format, args...)
	log.Println(s)

	msg := map[string]interface{}{
		"error": s,
	}
	js, err := json.Marshal(&msg)
	if err != nil {
		// Better than nothing?
		js = []byte(s)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprintf(w, "%s\n", js)
}

func writeJSON(w http.ResponseWriter, x interface{}) {
	js, err := json.Marshal(x)
	if err != nil {
		puntf(w, http.StatusInternalServerError, "Marshal error %v on %#v", err, x)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, "%s\n", js)
}

// readMessage reads a request body as a message (see sio.ParseLine).
func readMessage(r *http.Request) (interface{}, error) {
	bs, err := ioutil.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	msg, err := sio.ParseLine(string(bs))
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, errors.New("empty message")
	}
	return msg, nil
}

// Handler returns the HTTP API.
func (c *HTTPDCouplings) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "\"pong\"\n")
	})

	mux.HandleFunc("/check", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			puntf(w, http.StatusMethodNotAllowed, "POST a message")
			return
		}
		msg, err := readMessage(r)
		if err != nil {
			puntf(w, http.StatusBadRequest, "bad message: %v", err)
			return
		}
		res, err := c.checker.ProcessMsg(r.Context(), msg)
		if err != nil {
			puntf(w, http.StatusBadRequest, "ProcessMsg error %v", err)
			return
		}
		c.remember(res)
		writeJSON(w, res)
	})

	mux.HandleFunc("/in", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			puntf(w, http.StatusMethodNotAllowed, "POST a message")
			return
		}
		msg, err := readMessage(r)
		if err != nil {
			puntf(w, http.StatusBadRequest, "bad message: %v", err)
			return
		}
		select {
		case <-r.Context().Done():
			return
		case c.in <- msg:
		}
		fmt.Fprintf(w, "{}\n")
	})

	mux.HandleFunc("/history", func(w http.ResponseWriter, r *http.Request) {
		var since int64
		if n, err := strconv.ParseInt(r.FormValue("since"), 10, 64); err == nil {
			since = n
		}

		timeout, err := time.ParseDuration(r.FormValue("timeout"))
		if err != nil {
			timeout = 10 * time.Second
		}

		writeJSON(w, c.hist.Get(r.Context(), since, timeout))
	})

	mux.HandleFunc("/tally", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, c.checker.Tallies())
	})

	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		since := c.hist.Last()
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("Upgrade error %v", err)
			return
		}
		defer conn.Close()

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		// Inbound frames are checked asynchronously.
		go func() {
			readFrames(ctx, conn, c.in)
			cancel()
		}()

		for {
			msgs := c.hist.Get(ctx, since, time.Minute)
			select {
			case <-ctx.Done():
				return
			default:
			}
			for _, hm := range msgs {
				since = hm.N
				js, err := json.Marshal(hm.Msg)
				if err != nil {
					E(err, "Marshal")
					continue
				}
				if err = conn.WriteMessage(websocket.TextMessage, js); err != nil {
					E(err, "WriteMessage")
					return
				}
			}
		}
	})

	return mux
}

// remember adds the result's verdicts and reply to the history.
func (c *HTTPDCouplings) remember(r *sio.Result) {
	for _, v := range r.Verdicts {
		c.hist.Add(v)
	}
	if r.Reply != nil {
		c.hist.Add(map[string]interface{}{
			"reply": r.Reply,
		})
	}
}

// collect accumulates asynchronous results for clients who want to
// get them via /history or /ws.
func (c *HTTPDCouplings) collect(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case r := <-c.out:
			c.remember(r)
		}
	}
}

// Start creates the HTTP service and starts processing it.
func (c *HTTPDCouplings) Start(ctx context.Context) error {

	c.server = &http.Server{
		Addr:           c.Port,
		Handler:        c.Handler(ctx),
		ReadTimeout:    10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		log.Printf("Starting HTTP service on %s", c.Port)
		if err := c.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("ListenAndServe error %v", err)
			os.Exit(1)
		}
	}()

	go c.collect(ctx)

	return nil
}

// IO just returns the channels that newHTTPDCouplings initialized.
func (c *HTTPDCouplings) IO(ctx context.Context) (chan interface{}, chan *sio.Result, chan bool, error) {
	return c.in, c.out, c.done, nil
}

// Stop terminates the HTTP service.
func (c *HTTPDCouplings) Stop(ctx context.Context) error {
	log.Printf("Disconnecting")
	close(c.done)
	if c.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return c.server.Shutdown(ctx)
}

// Nothings is a channel of nothing.
//
// A Nothings can be used as a semaphore.
type Nothings chan struct{}

// Signals is sort of sequence of semaphors that can be used to report
// when a new message has arrived.
type Signals struct {
	sync.Mutex
	c Nothings
}

func NewSignals() *Signals {
	return &Signals{
		c: make(Nothings),
	}
}

// Signal tells the Signals that something has happened.
func (s *Signals) Signal() {
	s.Lock()
	close(s.c)
	s.c = make(Nothings)
	s.Unlock()
}

// C returns a channel that is closed upon a Signal().
func (s *Signals) C() Nothings {
	s.Lock()
	c := s.c
	s.Unlock()
	return c
}

// History is a message buffer.
//
// Each message is assigned a sequence number.
type History struct {
	sync.RWMutex
	sigs   *Signals
	last   int64
	limit  int
	buffer []HistoryMsg
}

func NewHistory(size int) *History {
	if size <= 0 {
		size = 1
	}
	return &History{
		limit:  size,
		sigs:   NewSignals(),
		buffer: make([]HistoryMsg, 0, size),
	}
}

// HistoryMsg associates a number with a message.
type HistoryMsg struct {
	N   int64       `json:"n"`
	Msg interface{} `json:"msg"`
}

// Wait returns a channel that's closed when the History receives a
// new message.
func (h *History) Wait() Nothings {
	return h.sigs.C()
}

// Last returns the sequence number of the latest message.
func (h *History) Last() int64 {
	h.RLock()
	defer h.RUnlock()
	return h.last
}

// Add does what you'd expect.
//
// This method also signals the arrival of a new message to the method
// Get().
func (h *History) Add(msg interface{}) {
	h.Lock()
	if h.limit <= len(h.buffer) {
		copy(h.buffer, h.buffer[1:])
		h.buffer = h.buffer[0 : h.limit-1]
	}
	h.last++
	hm := HistoryMsg{
		N:   h.last,
		Msg: msg,
	}
	h.buffer = append(h.buffer, hm)
	h.Unlock()
	h.sigs.Signal()
}

// get returns messages after the given sequence number.
func (h *History) get(since int64) []HistoryMsg {
	h.RLock()
	defer h.RUnlock()

	var (
		have        = int64(len(h.buffer))
		startSeqNum = h.last - have
	)

	if h.last <= since {
		return nil
	}
	if since < startSeqNum {
		since = startSeqNum
	}
	offset := since - startSeqNum

	msgs := make([]HistoryMsg, have-offset)
	copy(msgs, h.buffer[offset:])
	return msgs
}

// Get obtains messages from the history.
//
// When no messages are available, this method blocks, with the given
// timeout, until a new message arrives.
func (h *History) Get(ctx context.Context, since int64, timeout time.Duration) []HistoryMsg {
	wait := h.Wait()
	msgs := h.get(since)

	if len(msgs) == 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		select {
		case <-ctx.Done():
		case <-timer.C:
		case <-wait:
			msgs = h.get(since)
		}
	}

	return msgs
}
