package plot

import (
	"context"
	"sort"
	"sync"
)

// DefaultLoadLimit is how many plots a fresh session restores.
const DefaultLoadLimit = 10

// Store persists plots between sessions. Save upserts by ID.
type Store interface {
	// Load returns up to limit of the most recently created plots, oldest first.
	// A limit <= 0 returns every plot.
	Load(ctx context.Context, limit int) ([]Plot, error)
	Save(ctx context.Context, plots ...Plot) error
	Delete(ctx context.Context, id int64) error
	Close() error
}

// MemStore is an in-process Store.
type MemStore struct {
	mu sync.Mutex
	m  map[int64]Plot
}

func NewMemStore() *MemStore {
	return &MemStore{m: make(map[int64]Plot)}
}

func (s *MemStore) Load(ctx context.Context, limit int) ([]Plot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	out := make([]Plot, 0, len(s.m))
	for _, p := range s.m {
		out = append(out, p)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return Newest(out, limit), nil
}

func (s *MemStore) Save(ctx context.Context, plots ...Plot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range plots {
		s.m[p.ID] = p
	}
	return nil
}

func (s *MemStore) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, id)
	return nil
}

func (s *MemStore) Close() error { return nil }

// Newest keeps the last limit entries of plots sorted by ID.
func Newest(plots []Plot, limit int) []Plot {
	if limit <= 0 || len(plots) <= limit {
		return plots
	}
	return plots[len(plots)-limit:]
}

// Sync applies the difference between two lists to a store.
func Sync(ctx context.Context, s Store, c Changes) error {
	for _, p := range c.Removed {
		if err := s.Delete(ctx, p.ID); err != nil {
			return err
		}
	}
	up := make([]Plot, 0, len(c.Added)+len(c.Changed))
	up = append(up, c.Added...)
	up = append(up, c.Changed...)
	if len(up) == 0 {
		return nil
	}
	return s.Save(ctx, up...)
}
