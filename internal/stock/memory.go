package stock

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-process Store, used by tests and dry runs.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]int
	// SetErr, when non-nil, is consulted on every Set and its error returned.
	SetErr func(colour string) error
}

func NewMemoryStore(entries map[string]int) *MemoryStore {
	m := make(map[string]int, len(entries))
	for c, q := range entries {
		m[c] = q
	}
	return &MemoryStore{entries: m}
}

func (s *MemoryStore) Get(_ context.Context, colour string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.entries[colour]
	if !ok {
		return 0, ErrNotFound
	}
	return q, nil
}

func (s *MemoryStore) Set(_ context.Context, colour string, quantity int) error {
	if s.SetErr != nil {
		if err := s.SetErr(colour); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[colour]; !ok {
		return ErrNotFound
	}
	s.entries[colour] = quantity
	return nil
}

// Upsert creates or replaces an entry.
func (s *MemoryStore) Upsert(_ context.Context, colour string, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[colour] = quantity
	return nil
}

func (s *MemoryStore) List(_ context.Context) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, 0, len(s.entries))
	for c, q := range s.entries {
		out = append(out, Entry{Colour: c, Quantity: q})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Colour < out[j].Colour })
	return out, nil
}
