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

package testutil

import (
	"encoding/json"
	"fmt"
	"log"
	"testing"

	"github.com/Comcast/rulegraph/core"
)

// MonsterRules is the small grammar used throughout the tests.
const MonsterRules = `0: 4 1 5
1: 2 3 | 3 2
2: 4 4 | 5 5
3: 4 5 | 5 4
4: "a"
5: "b"`

// MonsterMessages are checked against MonsterRules.  Two of them
// match: ababbb and abbbab.
var MonsterMessages = []string{"ababbb", "bababa", "abbbab", "aaabbb", "aaaabbb"}

// MonsterInput is puzzle input made from MonsterRules and
// MonsterMessages.
var MonsterInput = MonsterRules + "\n\nababbb\nbababa\nabbbab\naaabbb\naaaabbb\n"

// MustBuild parses the rules and builds the automaton for the root,
// failing the test on any error.
func MustBuild(t testing.TB, rules string, root core.RuleId) *core.Automaton {
	t.Helper()
	rs, err := core.ParseRules(rules)
	if err != nil {
		t.Fatal(err)
	}
	a, err := core.Build(rs, root)
	if err != nil {
		t.Fatal(err)
	}
	return a
}

// JS renders its argument as JSON or as a string indicating an error.
func JS(x interface{}) string {
	bs, err := json.Marshal(&x)
	if err != nil {
		log.Printf("warning: testutil.JS error %s for %#v", err, x)
		return fmt.Sprintf("%#v", x)
	}
	return string(bs)
}

// Dwimjs, when given a string or bytes, parses that data as JSON.
// When given anything else, just returns what's given.
func Dwimjs(x interface{}) interface{} {
	switch vv := x.(type) {
	case []byte:
		return Dwimjs(string(vv))
	case string:
		var v interface{}
		if err := json.Unmarshal([]byte(vv), &v); err != nil {
			panic(err)
		}
		return v
	default:
		return x
	}
}
