/* Copyright 2018-2019 Comcast Cable Communications Management, LLC
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
	"flag"
	"log"
	"net/url"

	"github.com/Comcast/rulegraph/sio"

	"github.com/gorilla/websocket"
)

// WebSocketCouplings is an sio.Couplings for a WebSocket client.
// Each text frame is a message (see sio.ParseLine), and each verdict
// and captain reply goes back as its own JSON frame.
type WebSocketCouplings struct {
	URL string

	in   chan interface{}
	out  chan *sio.Result
	done chan bool
	conn *websocket.Conn
}

func NewWebSocketCouplings(args []string) (*WebSocketCouplings, *flag.FlagSet) {
	c := &WebSocketCouplings{}
	fs := flag.NewFlagSet("ws", flag.ExitOnError)
	fs.StringVar(&c.URL, "url", "ws://localhost:8080", "Target URL for WebSocket server")
	if args == nil {
		return nil, fs
	}
	fs.Parse(args)
	return c, fs
}

// Start creates the WebSocket session and starts processing it.
func (c *WebSocketCouplings) Start(ctx context.Context) error {

	u, err := url.Parse(c.URL)
	if err != nil {
		return err
	}

	c.in = make(chan interface{})
	c.out = make(chan *sio.Result)
	c.done = make(chan bool)

	log.Println("wsconnect", u.String())
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return err
	}
	c.conn = conn

	go readFrames(ctx, conn, c.in)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case r := <-c.out:
				if err := writeResult(conn, r); err != nil {
					E(err, "writeResult")
					return
				}
			}
		}
	}()

	return nil
}

// readFrames forwards messages from the connection until it fails.
func readFrames(ctx context.Context, conn *websocket.Conn, in chan interface{}) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		_, bs, err := conn.ReadMessage()
		if err != nil {
			E(err, "ReadMessage")
			return
		}
		if len(bs) == 0 {
			continue
		}
		log.Println("heard", string(bs))

		msg, err := sio.ParseLine(string(bs))
		if err != nil {
			E(err, "ParseLine", string(bs))
			msg = &sio.BadInput{
				Line: string(bs),
				Err:  err,
			}
		}
		if msg == nil {
			continue
		}

		select {
		case <-ctx.Done():
			return
		case in <- msg:
			log.Println("processing", string(bs))
		}
	}
}

// writeResult sends each verdict (and any reply) as a JSON frame.
func writeResult(conn *websocket.Conn, r *sio.Result) error {
	msgs := make([]interface{}, 0, len(r.Verdicts)+1)
	for _, v := range r.Verdicts {
		msgs = append(msgs, v)
	}
	if r.Reply != nil {
		msgs = append(msgs, map[string]interface{}{
			"reply": r.Reply,
		})
	}
	for _, msg := range msgs {
		js, err := json.Marshal(msg)
		if err != nil {
			E(err, "Marshal")
			continue
		}
		if err = conn.WriteMessage(websocket.TextMessage, js); err != nil {
			return err
		}
	}
	return nil
}

// IO just returns the channels that Start() initialized.
func (c *WebSocketCouplings) IO(ctx context.Context) (chan interface{}, chan *sio.Result, chan bool, error) {
	return c.in, c.out, c.done, nil
}

// Stop terminates the WebSocket connection.
func (c *WebSocketCouplings) Stop(ctx context.Context) error {
	log.Printf("Disconnecting")
	c.conn.Close()
	close(c.done)
	return nil
}

// E logs the error with some context and returns it.
func E(err error, args ...interface{}) error {
	log.Printf("error %s: %v", err, args)
	return err
}
