package bolt

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/Comcast/rulegraph/storage"

	bolt "go.etcd.io/bbolt"
)

var (
	grammarsBucket = []byte("grammars")
	talliesBucket  = []byte("tallies")
)

// NoDB is returned when the Storage hasn't been opened.
var NoDB = errors.New("storage not open")

// Storage keeps each crew in a top-level bucket with nested
// "grammars" and "tallies" buckets.  Values are JSON.
type Storage struct {
	Debug    bool
	filename string
	db       *bolt.DB
}

func NewStorage(filename string) (*Storage, error) {
	return &Storage{
		filename: filename,
	}, nil
}

func (s *Storage) Open(ctx context.Context) error {
	opts := &bolt.Options{
		Timeout: time.Second,
	}

	db, err := bolt.Open(s.filename, 0644, opts)
	if err != nil {
		return err
	}
	s.db = db
	return nil
}

func (s *Storage) Close(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *Storage) logf(format string, args ...interface{}) {
	if s.Debug {
		log.Printf("BoltDB Storage."+format, args...)
	}
}

func (s *Storage) update(f func(tx *bolt.Tx) error) error {
	if s.db == nil {
		return NoDB
	}
	return s.db.Update(f)
}

func (s *Storage) view(f func(tx *bolt.Tx) error) error {
	if s.db == nil {
		return NoDB
	}
	return s.db.View(f)
}

func (s *Storage) MakeCrew(ctx context.Context, cid string) error {
	s.logf("MakeCrew %s", cid)
	return s.update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(cid))
		if err != nil {
			return err
		}
		if _, err = b.CreateBucketIfNotExists(grammarsBucket); err != nil {
			return err
		}
		_, err = b.CreateBucketIfNotExists(talliesBucket)
		return err
	})
}

func (s *Storage) RemCrew(ctx context.Context, cid string) error {
	s.logf("RemCrew %s", cid)
	return s.update(func(tx *bolt.Tx) error {
		return tx.DeleteBucket([]byte(cid))
	})
}

func (s *Storage) GetCrew(ctx context.Context, cid string) ([]*storage.GrammarRecord, error) {
	s.logf("GetCrew %s", cid)
	var rs []*storage.GrammarRecord
	err := s.view(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(cid))
		if b == nil {
			return nil
		}
		gb := b.Bucket(grammarsBucket)
		if gb == nil {
			return nil
		}
		c := gb.Cursor()
		for id, bs := c.First(); id != nil; id, bs = c.Next() {
			var r storage.GrammarRecord
			if err := json.Unmarshal(bs, &r); err != nil {
				return err
			}
			r.Id = string(id)
			rs = append(rs, &r)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logf("GetCrew %s found %d grammars", cid, len(rs))

	return rs, nil
}

func (s *Storage) WriteGrammars(ctx context.Context, cid string, rs []*storage.GrammarRecord) error {
	s.logf("WriteGrammars %s %d", cid, len(rs))

	if 0 == len(rs) {
		return nil
	}

	vals := make(map[string][]byte, len(rs))
	for _, r := range rs {
		if r.Deleted {
			vals[r.Id] = nil
			continue
		}
		// The id is the key.
		js, err := json.Marshal(&storage.GrammarRecord{
			Source: r.Source,
			Spec:   r.Spec,
		})
		if err != nil {
			return err
		}
		vals[r.Id] = js
	}

	return s.update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(cid))
		if err != nil {
			return err
		}
		gb, err := b.CreateBucketIfNotExists(grammarsBucket)
		if err != nil {
			return err
		}
		for id, bs := range vals {
			key := []byte(id)
			if bs == nil {
				err = gb.Delete(key)
			} else {
				err = gb.Put(key, bs)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Storage) AddTally(ctx context.Context, cid, gid string, delta *storage.Tally) (*storage.Tally, error) {
	total := &storage.Tally{}
	err := s.update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(cid))
		if err != nil {
			return err
		}
		tb, err := b.CreateBucketIfNotExists(talliesBucket)
		if err != nil {
			return err
		}
		key := []byte(gid)
		if bs := tb.Get(key); bs != nil {
			if err = json.Unmarshal(bs, total); err != nil {
				return err
			}
		}
		total.Add(delta)
		js, err := json.Marshal(total)
		if err != nil {
			return err
		}
		return tb.Put(key, js)
	})
	if err != nil {
		return nil, err
	}
	s.logf("AddTally %s %s %d/%d", cid, gid, total.Matched, total.Checked)
	return total, nil
}

func (s *Storage) GetTallies(ctx context.Context, cid string) (map[string]*storage.Tally, error) {
	acc := make(map[string]*storage.Tally)
	err := s.view(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(cid))
		if b == nil {
			return nil
		}
		tb := b.Bucket(talliesBucket)
		if tb == nil {
			return nil
		}
		return tb.ForEach(func(k, v []byte) error {
			var t storage.Tally
			if err := json.Unmarshal(v, &t); err != nil {
				return err
			}
			acc[string(k)] = &t
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return acc, nil
}
