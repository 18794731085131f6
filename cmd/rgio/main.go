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

// Package main is a single-crew checking process that reads messages
// from a coupling (stdin, MQTT, a WebSocket, or an HTTP service) and
// writes verdicts.
package main

import (
	"context"
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"strings"
	"time"

	"github.com/Comcast/rulegraph/crew"
	"github.com/Comcast/rulegraph/sio"
	"github.com/Comcast/rulegraph/storage"
	"github.com/Comcast/rulegraph/storage/bolt"
	"github.com/Comcast/rulegraph/tools"
	"github.com/Comcast/rulegraph/util"
)

func main() {

	var (
		coupling = flag.String("io", "std", `IO protocol: "std", "mq", "ws", or "httpd"`)

		grammars    = flag.String("g", "", "Grammars as id=source,... (the first is the default)")
		crewId      = flag.String("crew", "rgio", "Crew id used with storage")
		dbFile      = flag.String("db", "", "Optional bbolt file for grammars and tallies")
		interpreter = flag.String("interpreter", "", `Extractor interpreter: "noop" or "goja" (default "goja" with -extract)`)
		extract     = flag.String("extract", "", "Extractor source (a filename or the code itself)")
		session     = flag.String("session", os.Getenv("RULEGRAPH_SESSION"), "Session cookie for http(s) grammar sources")

		wait      = flag.Duration("wait", time.Second, "Wait this long before shutting down couplings")
		haltOnEOF = flag.Bool("halt-on-eof", false, "Stop on input EOF")
		verbose   = flag.Bool("v", false, "Verbose")
		help      = flag.Bool("h", false, "Get usage")
	)

	flag.Parse()

	if *help {
		flag.PrintDefaults()

		{
			fmt.Fprintf(os.Stderr, "\n-io std (default):\n\n")
			_, fs := NewStdCouplings(nil)
			fs.PrintDefaults()
		}

		{
			fmt.Fprintf(os.Stderr, "\n-io mq:\n\n")
			_, fs := NewMQTTCouplings(nil)
			fs.PrintDefaults()
		}

		{
			fmt.Fprintf(os.Stderr, "\n-io ws:\n\n")
			_, fs := NewWebSocketCouplings(nil)
			fs.PrintDefaults()
		}

		{
			fmt.Fprintf(os.Stderr, "\n-io httpd:\n\n")
			_, fs := NewHTTPDCouplings(nil)
			fs.PrintDefaults()
		}

		os.Exit(0)
	}

	util.Logging = *verbose

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var cio sio.Couplings
	switch *coupling {
	case "std":
		c, _ := NewStdCouplings(flag.Args())
		cio = c
	case "mq", "mqtt":
		c, _ := NewMQTTCouplings(flag.Args())
		cio = c
	case "ws":
		c, _ := NewWebSocketCouplings(flag.Args())
		cio = c
	case "httpd", "http":
		c, _ := NewHTTPDCouplings(flag.Args())
		// But see hack below to set the checker.
		cio = c
	default:
		log.Fatalf("unknown io: '%s'", *coupling)
	}

	var store storage.Storage = &storage.NoopStorage{}
	if *dbFile != "" {
		s, err := bolt.NewStorage(*dbFile)
		if err != nil {
			log.Fatal(err)
		}
		s.Debug = *verbose
		store = s
	}
	if err := store.Open(ctx); err != nil {
		log.Fatal(err)
	}
	defer store.Close(context.Background())

	c, err := sio.LoadCrew(ctx, store, *crewId)
	if err != nil {
		log.Fatal(err)
	}

	f, err := crew.NewFetcher(*session)
	if err != nil {
		log.Fatal(err)
	}
	f.Debug = *verbose

	gs, err := loadGrammars(ctx, f, *grammars)
	if err != nil {
		log.Fatal(err)
	}
	if err = store.MakeCrew(ctx, *crewId); err != nil {
		log.Fatal(err)
	}
	if 0 < len(gs) {
		records := make([]*storage.GrammarRecord, 0, len(gs))
		for _, g := range gs {
			c.Set(g)
			records = append(records, &storage.GrammarRecord{
				Id:     g.Id,
				Source: g.Source,
				Spec:   g.Spec(),
			})
		}
		// The first -g grammar is the default even if storage
		// had one.
		c.Default = gs[0].Id
		if err = store.WriteGrammars(ctx, *crewId, records); err != nil {
			log.Fatal(err)
		}
	}
	log.Printf("grammars %s (default %q)", strings.Join(c.Ids(), ","), c.Default)

	conf := &sio.CheckerConf{
		Id:             *crewId,
		Interpreter:    *interpreter,
		HaltOnInputEOF: *haltOnEOF,
	}
	if *extract != "" {
		src := *extract
		if bs, err := ioutil.ReadFile(src); err == nil {
			src = string(bs)
		}
		conf.Extractor = src
		if conf.Interpreter == "" {
			conf.Interpreter = "goja"
		}
	}

	if err := cio.Start(ctx); err != nil {
		log.Fatal(err)
	}

	checker, err := sio.NewChecker(ctx, conf, c, store, cio)
	if err != nil {
		log.Fatal(err)
	}
	checker.Verbose = *verbose
	checker.Fetcher = f

	// Hack to set checker.
	if h, is := cio.(*HTTPDCouplings); is {
		h.checker = checker
	}

	go func() {
		if std, is := cio.(*sio.Stdio); is {
			<-std.InputEOF
			log.Printf("input EOF (waiting %v)", *wait)
			time.Sleep(*wait)
			cancel()
		}
	}()

	if err := checker.Loop(ctx); err != nil {
		log.Fatal(err)
	}

	if err = cio.Stop(context.Background()); err != nil {
		log.Printf("error from io.Stop: %v", err)
	}
}

// loadGrammars reads and compiles grammars given as
// "id=source,id=source".  A source without "id=" gets an id from its
// position.
func loadGrammars(ctx context.Context, f *crew.Fetcher, spec string) ([]*crew.Grammar, error) {
	var acc []*crew.Grammar
	for i, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, loc, found := strings.Cut(part, "=")
		if !found {
			id, loc = fmt.Sprintf("g%d", i), part
		}
		src, err := tools.ReadGrammarSource(ctx, f, loc)
		if err != nil {
			return nil, fmt.Errorf("grammar %s: %w", id, err)
		}
		g, err := crew.Compile(ctx, id, src)
		if err != nil {
			return nil, fmt.Errorf("grammar %s: %w", id, err)
		}
		acc = append(acc, g)
	}
	return acc, nil
}
