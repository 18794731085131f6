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

package tools

import (
	"os"
	"strings"
	"testing"

	"github.com/Comcast/rulegraph/core"
	"github.com/Comcast/rulegraph/util/testutil"
)

func TestDot(t *testing.T) {
	filename := "g.dot"

	out, err := os.Create(filename)
	if err != nil {
		t.Fatal(err)
	}

	defer func() {
		if err := os.Remove(filename); err != nil {
			t.Fatal(err)
		}
	}()

	a := testutil.MustBuild(t, testutil.MonsterRules, core.DefaultRoot)
	highlight := FrontierNames(a, "ab")

	if err := Dot(a.Spec("monster"), out, highlight); err != nil {
		t.Fatal(err)
	}

	bs, err := os.ReadFile(filename)
	if err != nil {
		t.Fatal(err)
	}
	dot := string(bs)
	if !strings.HasPrefix(dot, "digraph G {") {
		t.Fatal(dot)
	}
	if !strings.Contains(dot, "doublecircle") {
		t.Fatal("no terminal node")
	}
	if !strings.Contains(dot, "red") {
		t.Fatal("no highlight")
	}
}

func TestDotMissingTarget(t *testing.T) {
	spec := &core.Spec{
		Nodes: map[string]*core.Node{
			core.StartNode: {
				Branches: []*core.Branch{
					{Symbol: "a", Target: "nowhere"},
				},
			},
		},
	}

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	err = Dot(spec, w, nil)
	if _, is := err.(*core.UnknownNode); !is {
		t.Fatalf("got %#v", err)
	}
	w.Close()
}

func TestFrontierNames(t *testing.T) {
	a := testutil.MustBuild(t, "0: 1 2\n1: \"a\"\n2: \"b\"", core.DefaultRoot)

	if got := FrontierNames(a, ""); len(got) != 1 || got[0] != core.StartNode {
		t.Fatal(got)
	}
	if got := FrontierNames(a, "ab"); len(got) != 1 || got[0] != "n1" {
		t.Fatal(got)
	}
	if got := FrontierNames(a, "b"); len(got) != 0 {
		t.Fatal(got)
	}
}
