package ledger

import (
	"context"
	"sync"

	"stockrecon/internal/domain"
)

// MemoryStore is a LedgerStore held in memory.
type MemoryStore struct {
	mu      sync.RWMutex
	records []domain.InventoryRecord
	saves   int
}

// NewMemoryStore creates a MemoryStore seeded with records.
func NewMemoryStore(records ...domain.InventoryRecord) *MemoryStore {
	return &MemoryStore{records: append([]domain.InventoryRecord(nil), records...)}
}

func (s *MemoryStore) Load(_ context.Context) ([]domain.InventoryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.InventoryRecord(nil), s.records...), nil
}

func (s *MemoryStore) Save(_ context.Context, records []domain.InventoryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append([]domain.InventoryRecord(nil), records...)
	s.saves++
	return nil
}

// Saves reports how many times the ledger was written.
func (s *MemoryStore) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}
