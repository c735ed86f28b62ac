// Package memory holds process-local repositories.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"stockrecon/internal/domain"
	"stockrecon/internal/port"
)

type receiptRepo struct {
	mu       sync.RWMutex
	receipts map[uuid.UUID]domain.Receipt
}

// NewReceiptRepo creates an in-memory ReceiptRepository.
func NewReceiptRepo() port.ReceiptRepository {
	return &receiptRepo{receipts: make(map[uuid.UUID]domain.Receipt)}
}

func (r *receiptRepo) Save(_ context.Context, receipt *domain.Receipt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.receipts[receipt.ID] = *receipt
	return nil
}

func (r *receiptRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Receipt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rc, ok := r.receipts[id]
	if !ok {
		return nil, domain.ErrReceiptNotFound
	}
	return &rc, nil
}

// List returns receipts newest first.
func (r *receiptRepo) List(_ context.Context, offset, limit int) ([]domain.Receipt, int, error) {
	r.mu.RLock()
	all := make([]domain.Receipt, 0, len(r.receipts))
	for id := range r.receipts {
		all = append(all, r.receipts[id])
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID.String() < all[j].ID.String()
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	total := len(all)
	if offset >= total {
		return []domain.Receipt{}, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}
	return all[offset:end], total, nil
}
