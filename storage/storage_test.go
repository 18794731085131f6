package storage

import (
	"context"
	"testing"
)

func TestTallyAdd(t *testing.T) {
	tally := &Tally{Checked: 1}
	tally.Add(&Tally{Checked: 2, Matched: 1, Errors: 1})
	tally.Add(nil)
	if tally.Checked != 3 || tally.Matched != 1 || tally.Errors != 1 {
		t.Fatalf("got %#v", tally)
	}
}

func TestNoop(t *testing.T) {
	var s Storage = &NoopStorage{}
	ctx := context.Background()
	if err := s.Open(ctx); err != nil {
		t.Fatal(err)
	}
	tally, err := s.AddTally(ctx, "c", "g", &Tally{Checked: 4})
	if err != nil || tally.Checked != 4 {
		t.Fatalf("got %#v %v", tally, err)
	}
	rs, err := s.GetCrew(ctx, "c")
	if err != nil || rs != nil {
		t.Fatalf("got %v %v", rs, err)
	}
}
