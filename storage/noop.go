package storage

import "context"

// NoopStorage remembers nothing.
type NoopStorage struct {
}

func (s *NoopStorage) MakeCrew(ctx context.Context, cid string) error {
	return nil
}

func (s *NoopStorage) RemCrew(ctx context.Context, cid string) error {
	return nil
}

func (s *NoopStorage) GetCrew(ctx context.Context, cid string) ([]*GrammarRecord, error) {
	return nil, nil
}

func (s *NoopStorage) WriteGrammars(ctx context.Context, cid string, rs []*GrammarRecord) error {
	return nil
}

func (s *NoopStorage) AddTally(ctx context.Context, cid, gid string, delta *Tally) (*Tally, error) {
	t := &Tally{}
	t.Add(delta)
	return t, nil
}

func (s *NoopStorage) GetTallies(ctx context.Context, cid string) (map[string]*Tally, error) {
	return nil, nil
}

func (s *NoopStorage) Open(ctx context.Context) error {
	return nil
}

func (s *NoopStorage) Close(ctx context.Context) error {
	return nil
}
