package store

import (
	"context"
	"sync"

	"github.com/gzqwertyuiop1234-sudo/poker/internal/model"
)

// MemoryStore implements Store with an in-memory slice. Used for testing
// and development. Not suitable for production (no persistence).
type MemoryStore struct {
	mu      sync.RWMutex
	records []model.LedgerRecord
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(_ context.Context, records []model.LedgerRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, records...)
	return nil
}

func (s *MemoryStore) ReadAll(_ context.Context) ([]model.LedgerRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Return a copy to avoid external mutation.
	out := make([]model.LedgerRecord, len(s.records))
	copy(out, s.records)
	return out, nil
}

func (s *MemoryStore) Purge(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = nil
	return nil
}
