package port

import (
	"context"

	"github.com/google/uuid"

	"stockrecon/internal/domain"
)

// ReceiptRepository stores reconciliation receipts between start and decision.
type ReceiptRepository interface {
	Save(ctx context.Context, receipt *domain.Receipt) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Receipt, error)
	List(ctx context.Context, offset, limit int) ([]domain.Receipt, int, error)
}
