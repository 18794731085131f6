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
	"fmt"
)

// Example demonstrates building an automaton and checking messages.
func Example() {
	rules, err := ParseRules(`0: 4 1 5
1: 2 3 | 3 2
2: 4 4 | 5 5
3: 4 5 | 5 4
4: "a"
5: "b"`)
	if err != nil {
		panic(err)
	}

	a, err := Build(rules, DefaultRoot)
	if err != nil {
		panic(err)
	}

	for _, msg := range []string{"ababbb", "bababa", "abbbab", "aaabbb", "aaaabbb"} {
		fmt.Printf("%-8s %v\n", msg, a.Matches(msg))
	}
	// Output:
	// ababbb   true
	// bababa   false
	// abbbab   true
	// aaabbb   false
	// aaaabbb  false
}

// ExampleAutomaton_Trace shows the frontier after each symbol.
func ExampleAutomaton_Trace() {
	rules, err := ParseRules(`0: 1 2
1: "a"
2: 1 3 | 3 1
3: "b"`)
	if err != nil {
		panic(err)
	}

	a, err := Build(rules, 0)
	if err != nil {
		panic(err)
	}

	for i, frontier := range a.Trace("aab") {
		fmt.Println(i, frontier)
	}
	// Output:
	// 0 [0]
	// 1 [2]
	// 2 [3]
	// 3 [1]
}
