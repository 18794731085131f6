package storage

import (
	"context"

	"github.com/Comcast/rulegraph/core"
	"github.com/Comcast/rulegraph/crew"
)

// GrammarRecord is a presentation of a compiled grammar as stored in
// a Storage system.
type GrammarRecord struct {
	// Id is the id for the grammar.
	Id string `json:"id,omitempty"`

	Source *crew.GrammarSource `json:"source,omitempty" yaml:"source,omitempty"`
	Spec   *core.Spec          `json:"spec,omitempty" yaml:"spec,omitempty"`

	// Deleted indicates that this grammar should be removed.
	Deleted bool `json:"-" yaml:"-"`
}

// Tally counts verdicts.
type Tally struct {
	Checked int `json:"checked"`
	Matched int `json:"matched"`
	Errors  int `json:"errors,omitempty"`
}

// Add adds the other tally's counts to this one.
func (t *Tally) Add(other *Tally) {
	if other == nil {
		return
	}
	t.Checked += other.Checked
	t.Matched += other.Matched
	t.Errors += other.Errors
}

// Storage is a persistence interface that's suitable for Crews of
// grammars.
type Storage interface {
	Open(ctx context.Context) error

	Close(ctx context.Context) error

	MakeCrew(ctx context.Context, cid string) error

	RemCrew(ctx context.Context, cid string) error

	// GetCrew returns the crew's stored grammars, or nil if the
	// crew isn't known.
	GetCrew(ctx context.Context, cid string) ([]*GrammarRecord, error)

	WriteGrammars(ctx context.Context, cid string, rs []*GrammarRecord) error

	// AddTally adds the delta to the grammar's tally and returns
	// the new total.
	AddTally(ctx context.Context, cid, gid string, delta *Tally) (*Tally, error)

	GetTallies(ctx context.Context, cid string) (map[string]*Tally, error)
}

// AsGrammarRecords renders the crew's grammars for storage.
func AsGrammarRecords(c *crew.Crew) []*GrammarRecord {
	c.RLock()
	defer c.RUnlock()
	acc := make([]*GrammarRecord, 0, len(c.Grammars))
	for id, g := range c.Grammars {
		r := &GrammarRecord{
			Id:   id,
			Spec: g.Spec(),
		}
		if g.Source != nil {
			src := g.Source.Copy()
			src.Inline = nil
			r.Source = src
		}
		acc = append(acc, r)
	}
	return acc
}

// AsGrammars compiles stored grammars from their Specs without
// reparsing or rebuilding.
func AsGrammars(ctx context.Context, rs []*GrammarRecord) (map[string]*crew.Grammar, error) {
	acc := make(map[string]*crew.Grammar, len(rs))
	for _, r := range rs {
		src := &crew.GrammarSource{}
		if r.Source != nil {
			src = r.Source.Copy()
		}
		src.Inline = r.Spec
		g, err := crew.Compile(ctx, r.Id, src)
		if err != nil {
			return nil, err
		}
		acc[r.Id] = g
	}
	return acc, nil
}
