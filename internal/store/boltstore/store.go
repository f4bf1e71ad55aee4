// Package boltstore persists plots in a bbolt file.
package boltstore

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"etherplot/plot"

	bolt "go.etcd.io/bbolt"
)

const bucketPlots = "plots"

const dbTimeout = time.Second

var initDB = map[string]func(*bolt.Tx) error{
	"initialize plot table": func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketPlots))
		return err
	},
}

// Store implements plot.Store. Keys are big-endian plot IDs, values JSON.
type Store struct {
	db *bolt.DB
}

var _ plot.Store = (*Store)(nil)

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o644, &bolt.Options{Timeout: dbTimeout})
	if err != nil {
		return nil, fmt.Errorf("open plot db %s: %w", path, err)
	}
	s, err := New(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an open database and creates missing buckets.
func New(db *bolt.DB) (*Store, error) {
	err := db.Update(func(tx *bolt.Tx) error {
		for name, fn := range initDB {
			if err := fn(tx); err != nil {
				return fmt.Errorf("failed to %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Load walks the bucket backwards from the highest ID.
func (s *Store) Load(ctx context.Context, limit int) ([]plot.Plot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []plot.Plot
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket([]byte(bucketPlots)).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(out) >= limit {
				break
			}
			var p plot.Plot
			if err := json.Unmarshal(v, &p); err != nil {
				return fmt.Errorf("decode plot %d: %w", unmarshalID(k), err)
			}
			out = append(out, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (s *Store) Save(ctx context.Context, plots ...plot.Plot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketPlots))
		for _, p := range plots {
			v, err := json.Marshal(p)
			if err != nil {
				return fmt.Errorf("encode plot %d: %w", p.ID, err)
			}
			if err := b.Put(marshalID(p.ID), v); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketPlots)).Delete(marshalID(id))
	})
}

func (s *Store) Close() error {
	return s.db.Close()
}

// IDs are positive, so the unsigned encoding keeps their order.
func marshalID(id int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(id))
	return b
}

func unmarshalID(key []byte) int64 {
	return int64(binary.BigEndian.Uint64(key))
}
