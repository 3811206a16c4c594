// Package memory is an in-process Store, optionally seeded from JSON files.
package memory

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"fintrack/internal/store"
)

type Store struct {
	mu    sync.Mutex
	items map[string][]byte
}

func New() *Store {
	return &Store{items: map[string][]byte{}}
}

// NewFromDir seeds each collection from <base>/<key>.json when the file
// exists. Missing or unreadable files leave the collection empty.
func NewFromDir(base string) *Store {
	s := New()
	for _, key := range store.Keys {
		data, err := os.ReadFile(filepath.Join(base, key+".json"))
		if err != nil || len(data) == 0 {
			continue
		}
		s.items[key] = data
	}
	return s
}

// Get returns a copy of the value stored under key.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.items[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

func (s *Store) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = append([]byte(nil), value...)
	return nil
}
