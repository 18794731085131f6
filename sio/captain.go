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

package sio

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/Comcast/rulegraph/crew"
	"github.com/Comcast/rulegraph/storage"
)

var (
	// CaptainId is the "to" value that marks a crew operation.
	CaptainId = "captain"
)

// CrewOp is a crude structure for crew-level operations (such as
// adding a grammar).
//
//	{"to":"captain","update":{"g":{"rules":"0: \"a\""}}}
//	{"to":"captain","delete":["g"]}
//	{"to":"captain","default":"g"}
//	{"to":"captain","tallies":true}
type CrewOp struct {
	To      string                         `json:"to"`
	Update  map[string]*crew.GrammarSource `json:"update,omitempty"`
	Delete  []string                       `json:"delete,omitempty"`
	Default string                         `json:"default,omitempty"`
	Tallies bool                           `json:"tallies,omitempty"`
}

// AsCrewOp attempts to interpret the given message (hopefully a map)
// as a CrewOp.  Returns nil if the message isn't addressed to the
// captain.
func AsCrewOp(msg interface{}) (*CrewOp, error) {
	m, is := msg.(map[string]interface{})
	if !is || m["to"] != CaptainId {
		return nil, nil
	}
	js, err := json.Marshal(&msg)
	if err != nil {
		return nil, err
	}
	var op CrewOp
	if err = json.Unmarshal(js, &op); err != nil {
		return nil, err
	}
	return &op, nil
}

// DoOp executes the given CrewOp.  Updated grammars are compiled and
// stored before any deletions.
//
// The reply lists the grammar ids and, if requested, the tallies.
func (c *Checker) DoOp(ctx context.Context, op *CrewOp) (interface{}, error) {
	var (
		ids     = make([]string, 0, len(op.Update))
		records = make([]*storage.GrammarRecord, 0, len(op.Update)+len(op.Delete))
	)
	for id := range op.Update {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	// Compile everything before installing anything so that a bad
	// grammar leaves the crew unchanged.
	gs := make([]*crew.Grammar, 0, len(ids))
	for _, id := range ids {
		src := op.Update[id]
		c.Logf("Checker.DoOp update %s", id)
		if err := c.Fetcher.Resolve(ctx, src); err != nil {
			return nil, fmt.Errorf("grammar %s: %w", id, err)
		}
		g, err := crew.Compile(ctx, id, src)
		if err != nil {
			return nil, fmt.Errorf("grammar %s: %w", id, err)
		}
		gs = append(gs, g)
	}
	if op.Default != "" && op.Update[op.Default] == nil {
		if _, err := c.Crew.Get(op.Default); err != nil {
			return nil, err
		}
	}
	for _, id := range op.Delete {
		if id == op.Default {
			return nil, fmt.Errorf("can't delete default grammar %s", id)
		}
	}

	for _, g := range gs {
		c.Crew.Set(g)
		records = append(records, &storage.GrammarRecord{
			Id:     g.Id,
			Source: g.Source,
			Spec:   g.Spec(),
		})
	}

	for _, id := range op.Delete {
		c.Logf("Checker.DoOp delete %s", id)
		c.Crew.Remove(id)
		records = append(records, &storage.GrammarRecord{
			Id:      id,
			Deleted: true,
		})
	}

	if op.Default != "" {
		c.Crew.Lock()
		c.Crew.Default = op.Default
		c.Crew.Unlock()
	}

	if err := c.Store.WriteGrammars(ctx, c.Conf.Id, records); err != nil {
		return nil, err
	}

	reply := map[string]interface{}{
		"grammars": c.Crew.Ids(),
	}
	if op.Tallies {
		ts, err := c.Store.GetTallies(ctx, c.Conf.Id)
		if err != nil {
			return nil, err
		}
		if ts == nil {
			// The caller holds the lock, and the reply outlives it.
			ts = make(map[string]*storage.Tally, len(c.tallies))
			for id, t := range c.tallies {
				cp := *t
				ts[id] = &cp
			}
		}
		reply["tallies"] = ts
	}
	return reply, nil
}
