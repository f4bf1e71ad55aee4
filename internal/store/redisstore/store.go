// Package redisstore persists plots in Redis.
package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"etherplot/plot"

	backend "github.com/redis/go-redis/v9"
)

const defaultPrefix = "etherplot:"

// Store implements plot.Store. Each plot is a JSON string under prefix+"plot:<id>"; the sorted
// set prefix+"index" orders them by ID.
type Store struct {
	client *backend.Client
	prefix string
}

var _ plot.Store = (*Store)(nil)

type Option func(*Store)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New connects to the server at address.
func New(address string, db int, opts ...Option) *Store {
	client := backend.NewClient(&backend.Options{
		Addr: address,
		DB:   db,
	})
	return NewFromClient(client, opts...)
}

// NewFromClient creates a store on an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	s := &Store{
		client: client,
		prefix: defaultPrefix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) key(id int64) string {
	return s.prefix + "plot:" + strconv.FormatInt(id, 10)
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Load reads the newest limit members of the index in ascending order.
func (s *Store) Load(ctx context.Context, limit int) ([]plot.Plot, error) {
	start := int64(0)
	if limit > 0 {
		start = -int64(limit)
	}
	members, err := s.client.ZRange(ctx, s.indexKey(), start, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read plot index: %w", err)
	}
	if len(members) == 0 {
		return nil, nil
	}

	keys := make([]string, len(members))
	for i, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad index member %q: %w", m, err)
		}
		keys[i] = s.key(id)
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get plots: %w", err)
	}

	out := make([]plot.Plot, 0, len(vals))
	for i, v := range vals {
		str, ok := v.(string)
		if !ok {
			// index entry without a value
			continue
		}
		var p plot.Plot
		if err := json.Unmarshal([]byte(str), &p); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s: %w", keys[i], err)
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *Store) Save(ctx context.Context, plots ...plot.Plot) error {
	if len(plots) == 0 {
		return nil
	}
	pipe := s.client.TxPipeline()
	for _, p := range plots {
		data, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("failed to marshal plot %d: %w", p.ID, err)
		}
		pipe.Set(ctx, s.key(p.ID), data, 0)
		pipe.ZAdd(ctx, s.indexKey(), backend.Z{
			Score:  float64(p.ID),
			Member: strconv.FormatInt(p.ID, 10),
		})
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key(id))
	pipe.ZRem(ctx, s.indexKey(), strconv.FormatInt(id, 10))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete from redis: %w", err)
	}
	return nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
