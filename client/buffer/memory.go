package buffer

import (
	"context"
	"sync"
)

// MemoryStorage keeps the buffer in process memory. It backs tests and
// short-lived tooling; devices use the SQLite store.
type MemoryStorage struct {
	mu      sync.Mutex
	entries []Entry
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (s *MemoryStorage) Load(ctx context.Context) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Entry(nil), s.entries...), nil
}

func (s *MemoryStorage) Save(ctx context.Context, entries []Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append([]Entry(nil), entries...)
	return nil
}
