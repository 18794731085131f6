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

package core

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestSpecRoundTrip(t *testing.T) {
	a := mustBuild(t, exampleRules, 0)
	spec := a.Spec("monster")

	if len(spec.Nodes) != a.NodeCount() {
		t.Fatalf("nodes %d", len(spec.Nodes))
	}
	if n := spec.Nodes["n1"]; !n.Terminal() {
		t.Fatal("n1 should be terminal")
	}
	if n := spec.Nodes[StartNode]; n.Terminal() {
		t.Fatal("start shouldn't be terminal")
	}

	js, err := json.Marshal(spec)
	if err != nil {
		t.Fatal(err)
	}
	var decoded Spec
	if err = json.Unmarshal(js, &decoded); err != nil {
		t.Fatal(err)
	}

	b, err := decoded.Automaton()
	if err != nil {
		t.Fatal(err)
	}
	if b.NodeCount() != a.NodeCount() || b.EdgeCount() != a.EdgeCount() {
		t.Fatalf("shape %d/%d", b.NodeCount(), b.EdgeCount())
	}
	if !SameLanguage(a, b, 0) {
		t.Fatal("languages differ")
	}
}

func TestSpecCopy(t *testing.T) {
	spec := mustBuild(t, exampleRules, 0).Spec("monster")
	c := spec.Copy()
	c.Nodes[StartNode].Branches[0].Symbol = "z"
	if spec.Nodes[StartNode].Branches[0].Symbol != "a" {
		t.Fatal("copy isn't deep")
	}
}

func TestSpecNodeNames(t *testing.T) {
	spec := &Spec{
		Nodes: map[string]*Node{
			"n10":     {},
			"n2":      {},
			StartNode: {},
			"n1":      {},
		},
	}
	got := spec.NodeNames()
	want := []string{StartNode, "n1", "n2", "n10"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v", got)
		}
	}
}

func TestSpecAutomatonErrors(t *testing.T) {
	t.Run("no start", func(t *testing.T) {
		spec := &Spec{
			Name:  "bad",
			Nodes: map[string]*Node{"n1": {}},
		}
		_, err := spec.Automaton()
		var unknown *UnknownNode
		if !errors.As(err, &unknown) || unknown.NodeName != StartNode {
			t.Fatalf("got %v", err)
		}
	})

	t.Run("missing target", func(t *testing.T) {
		spec := &Spec{
			Name: "bad",
			Nodes: map[string]*Node{
				StartNode: {
					Branches: []*Branch{{Symbol: "a", Target: "nowhere"}},
				},
			},
		}
		_, err := spec.Automaton()
		var unknown *UnknownNode
		if !errors.As(err, &unknown) || unknown.NodeName != "nowhere" {
			t.Fatalf("got %v", err)
		}
	})

	t.Run("long symbol", func(t *testing.T) {
		spec := &Spec{
			Name: "bad",
			Nodes: map[string]*Node{
				StartNode: {
					Branches: []*Branch{{Symbol: "ab", Target: "end"}},
				},
				"end": {},
			},
		}
		_, err := spec.Automaton()
		var bad *BadBranch
		if !errors.As(err, &bad) {
			t.Fatalf("got %v", err)
		}
	})
}
