package port

import (
	"context"

	"stockrecon/internal/domain"
)

// LedgerStore persists the inventory ledger as a whole table.
type LedgerStore interface {
	// Load returns the current records. A missing ledger yields no records and no error;
	// a malformed one yields an error wrapping domain.ErrLedgerUnreadable.
	Load(ctx context.Context) ([]domain.InventoryRecord, error)
	// Save replaces the ledger atomically.
	Save(ctx context.Context, records []domain.InventoryRecord) error
}

// InventoryLedger applies receipts to the stock table.
type InventoryLedger interface {
	ApplyReceipt(ctx context.Context, lines []domain.ReceiptLine) ([]domain.InventoryRecord, error)
	Records(ctx context.Context) ([]domain.InventoryRecord, error)
}
