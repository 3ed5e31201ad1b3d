package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/vali/pkg/ports"
)

// Store implements ports.SchemeStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string][]byte
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string][]byte),
	}
}

// NewFromDefinitions creates a store preloaded with definitions by name.
func NewFromDefinitions(defs map[string][]byte) (*Store, error) {
	s := NewStore()
	for name, def := range defs {
		if err := s.Save(context.Background(), name, def); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Save keeps a copy of the definition.
func (s *Store) Save(ctx context.Context, name string, definition []byte) error {
	if err := ports.ValidateName(name); err != nil {
		return err
	}
	copied := append([]byte(nil), definition...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[name] = copied
	return nil
}

// Load returns a copy of the definition so callers cannot mutate the store.
func (s *Store) Load(ctx context.Context, name string) ([]byte, error) {
	if err := ports.ValidateName(name); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	def, ok := s.data[name]
	if !ok {
		return nil, ports.ErrSchemeNotFound
	}
	return append([]byte(nil), def...), nil
}

// Delete removes the definition.
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := ports.ValidateName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, name)
	return nil
}

// List returns the stored names, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.data))
	for name := range s.data {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
