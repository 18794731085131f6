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

package crew

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// UnknownGrammar is wrapped by errors about grammar ids that aren't
// in a Crew.
var UnknownGrammar = errors.New("unknown grammar")

// Crew is a set of compiled grammars, one of which can be the
// default.
type Crew struct {
	sync.RWMutex

	Id       string              `json:"id"`
	Grammars map[string]*Grammar `json:"grammars"`

	// Default is the id of the grammar Get uses when given the
	// empty id.
	Default string `json:"default,omitempty"`
}

func NewCrew(id string) *Crew {
	return &Crew{
		Id:       id,
		Grammars: make(map[string]*Grammar),
	}
}

// Copy gets a read lock and returns a copy of the crew.
//
// The grammars themselves are shared.
func (c *Crew) Copy() *Crew {
	c.RLock()
	gs := make(map[string]*Grammar, len(c.Grammars))
	for id, g := range c.Grammars {
		gs[id] = g
	}
	acc := &Crew{
		Id:       c.Id,
		Grammars: gs,
		Default:  c.Default,
	}
	c.RUnlock()
	return acc
}

// Set adds or replaces a grammar.  The first grammar added becomes
// the default.
func (c *Crew) Set(g *Grammar) {
	c.Lock()
	if c.Grammars == nil {
		c.Grammars = make(map[string]*Grammar)
	}
	c.Grammars[g.Id] = g
	if c.Default == "" {
		c.Default = g.Id
	}
	c.Unlock()
}

// Get returns the grammar with the given id.  The empty id means the
// default grammar.
func (c *Crew) Get(id string) (*Grammar, error) {
	c.RLock()
	defer c.RUnlock()
	if id == "" {
		id = c.Default
	}
	g, have := c.Grammars[id]
	if !have {
		return nil, fmt.Errorf("%w %q", UnknownGrammar, id)
	}
	return g, nil
}

// Remove deletes the grammar.  If it was the default, there's no
// longer a default.
func (c *Crew) Remove(id string) {
	c.Lock()
	delete(c.Grammars, id)
	if c.Default == id {
		c.Default = ""
	}
	c.Unlock()
}

// Ids returns the sorted grammar ids.
func (c *Crew) Ids() []string {
	c.RLock()
	acc := make([]string, 0, len(c.Grammars))
	for id := range c.Grammars {
		acc = append(acc, id)
	}
	c.RUnlock()
	sort.Strings(acc)
	return acc
}

// Check finds the grammar and checks the message against it.
func (c *Crew) Check(id, message string) (bool, error) {
	g, err := c.Get(id)
	if err != nil {
		return false, err
	}
	return g.Matches(message), nil
}
