package port

import (
	"context"

	"stockrecon/internal/domain"
)

// Notifier tells purchasing about receipts that did not fully match.
type Notifier interface {
	NotifyReceipt(ctx context.Context, receipt *domain.Receipt) error
}
