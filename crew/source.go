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

package crew

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"log"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/Comcast/rulegraph/core"

	"github.com/jsccast/yaml"
	"golang.org/x/net/publicsuffix"
)

// Fetcher gets grammar text from files and URLs.
type Fetcher struct {
	Client *http.Client

	// Session, if not empty, is sent as a cookie named
	// SessionCookie with every HTTP request.
	Session       string
	SessionCookie string

	Debug bool
}

// NewFetcher makes a Fetcher with a cookie jar.
func NewFetcher(session string) (*Fetcher, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}
	return &Fetcher{
		Client: &http.Client{
			Jar:     jar,
			Timeout: 30 * time.Second,
		},
		Session:       session,
		SessionCookie: "session",
	}, nil
}

func (f *Fetcher) logf(format string, args ...interface{}) {
	if f.Debug {
		log.Printf(format, args...)
	}
}

// Fetch returns the body at the given location, which can be a
// file:// URL, an http(s) URL, or a plain filename.
func (f *Fetcher) Fetch(ctx context.Context, loc string) ([]byte, error) {
	f.logf("Fetcher.Fetch %s", loc)

	switch {
	case strings.HasPrefix(loc, "file://"):
		return ioutil.ReadFile(loc[len("file://"):])
	case strings.HasPrefix(loc, "http://"), strings.HasPrefix(loc, "https://"):
	default:
		return ioutil.ReadFile(loc)
	}

	u, err := url.Parse(loc)
	if err != nil {
		return nil, err
	}
	if f.Session != "" && f.Client.Jar != nil {
		f.Client.Jar.SetCookies(u, []*http.Cookie{
			{
				Name:  f.SessionCookie,
				Value: f.Session,
			},
		})
	}

	req, err := http.NewRequestWithContext(ctx, "GET", loc, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: %s", loc, resp.Status)
	}
	return body, nil
}

// Resolve fills in the source's Rules (or Inline Spec) by following
// its URL when it doesn't already have them.
func (f *Fetcher) Resolve(ctx context.Context, src *GrammarSource) error {
	if src.Rules != "" || src.Inline != nil {
		return nil
	}
	if src.URL == "" {
		return fmt.Errorf("grammar source %q has no rules and no URL", src.Name)
	}

	body, err := f.Fetch(ctx, src.URL)
	if err != nil {
		return err
	}

	fetched, err := ParseSource(body)
	if err != nil {
		return err
	}
	if fetched.URL != "" && fetched.Rules == "" && fetched.Inline == nil {
		return fmt.Errorf("grammar source at %s is another reference", src.URL)
	}

	src.Rules = fetched.Rules
	src.Inline = fetched.Inline
	src.Messages = append(src.Messages, fetched.Messages...)
	if src.Doc == "" {
		src.Doc = fetched.Doc
	}
	if src.Name == "" {
		src.Name = fetched.Name
	}
	return nil
}

// Load fetches the body at the given location and parses it with
// ParseSource.  A source with only a URL is then resolved.
func (f *Fetcher) Load(ctx context.Context, loc string) (*GrammarSource, error) {
	body, err := f.Fetch(ctx, loc)
	if err != nil {
		return nil, err
	}
	src, err := ParseSource(body)
	if err != nil {
		return nil, err
	}
	if err = f.Resolve(ctx, src); err != nil {
		return nil, err
	}
	return src, nil
}

// ParseSource interprets the body as a GrammarSource.
//
// JSON and YAML documents are unmarshalled.  Anything that starts
// like a rule line ("<id>:") is plain rule text (or puzzle input) and
// becomes the source's Rules.
func ParseSource(body []byte) (*GrammarSource, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("grammar source is empty")
	}

	if looksLikeRules(string(trimmed)) {
		return &GrammarSource{
			Rules: string(body),
		}, nil
	}

	var (
		src GrammarSource
		err error
	)
	switch trimmed[0] {
	case '{':
		err = json.Unmarshal(trimmed, &src)
	default:
		err = yaml.Unmarshal(body, &src)
	}
	if err != nil {
		return nil, err
	}
	return &src, nil
}

func looksLikeRules(s string) bool {
	first, _, _ := strings.Cut(s, "\n")
	id, _, found := strings.Cut(first, ":")
	if !found {
		return false
	}
	_, err := core.ParseRuleId(id)
	return err == nil
}
