package crew

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/Comcast/rulegraph/util/testutil"
)

func TestParseSource(t *testing.T) {
	tests := []struct {
		description string
		body        string
		name        string
		root        uint32
		hasRules    bool
	}{
		{
			description: "rule text",
			body:        testutil.MonsterRules,
			hasRules:    true,
		},
		{
			description: "yaml",
			body:        "name: monster\nroot: 3\nrules: |\n  3: 4 5 | 5 4\n  4: \"a\"\n  5: \"b\"\n",
			name:        "monster",
			root:        3,
			hasRules:    true,
		},
		{
			description: "json",
			body:        `{"name":"ab","url":"file:///tmp/ab.txt","root":0}`,
			name:        "ab",
		},
	}

	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			src, err := ParseSource([]byte(tc.body))
			if err != nil {
				t.Fatal(err)
			}
			if src.Name != tc.name {
				t.Fatalf("name %q", src.Name)
			}
			if uint32(src.Root) != tc.root {
				t.Fatalf("root %d", src.Root)
			}
			if (src.Rules != "") != tc.hasRules {
				t.Fatalf("rules %q", src.Rules)
			}
		})
	}

	if _, err := ParseSource([]byte("  \n")); err == nil {
		t.Fatal("expected an error")
	}
}

func TestFetcherFile(t *testing.T) {
	filename := "monster_test.txt"
	if err := os.WriteFile(filename, []byte(testutil.MonsterInput), 0644); err != nil {
		t.Fatal(err)
	}
	defer os.Remove(filename)

	f, err := NewFetcher("")
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	for _, loc := range []string{filename, "file://" + filename} {
		src, err := f.Load(ctx, loc)
		if err != nil {
			t.Fatal(err)
		}
		g, err := Compile(ctx, "monster", src)
		if err != nil {
			t.Fatal(err)
		}
		if n := g.Automaton.Count(g.Messages); n != 2 {
			t.Fatalf("count %d", n)
		}
	}
}

func TestFetcherHTTP(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie("session")
		if err != nil || c.Value != "sekret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.URL.Path {
		case "/rules":
			fmt.Fprint(w, testutil.MonsterRules)
		case "/grammar.yaml":
			fmt.Fprintf(w, "name: remote\nurl: %s/rules\n", "http://"+r.Host)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer ts.Close()

	ctx := context.Background()

	f, err := NewFetcher("sekret")
	if err != nil {
		t.Fatal(err)
	}

	src, err := f.Load(ctx, ts.URL+"/grammar.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if src.Name != "remote" || src.Rules == "" {
		t.Fatalf("source %#v", src)
	}

	if _, err = f.Fetch(ctx, ts.URL+"/missing"); err == nil {
		t.Fatal("expected an error")
	}

	anon, err := NewFetcher("")
	if err != nil {
		t.Fatal(err)
	}
	if _, err = anon.Fetch(ctx, ts.URL+"/rules"); err == nil {
		t.Fatal("expected an unauthorized error")
	}
}
