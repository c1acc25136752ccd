package memory

import (
	"context"
	"fmt"
	"sync"

	"budgetplanner/internal/storage"
)

// Store keeps slots in process memory. Contents are lost on exit.
type Store struct {
	mu    sync.Mutex
	slots map[string][]byte
	fail  error
}

func New() *Store {
	return &Store{slots: map[string][]byte{}}
}

// Seed stores data under key without going through Save.
func (s *Store) Seed(key string, data []byte) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots[key] = append([]byte(nil), data...)
	return s
}

// FailWith makes every subsequent call return err; nil restores normal behaviour.
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = err
}

// Load returns a copy of the slot contents.
func (s *Store) Load(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return nil, s.fail
	}
	data, ok := s.slots[key]
	if !ok {
		return nil, fmt.Errorf("load %q: %w", key, storage.ErrSlotNotFound)
	}
	return append([]byte(nil), data...), nil
}

// Save replaces the slot contents.
func (s *Store) Save(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	s.slots[key] = append([]byte(nil), data...)
	return nil
}
