package port

import (
	"context"

	"stockrecon/internal/domain"
)

// OrderSource reads a purchase-order table from its backing file.
type OrderSource interface {
	ReadOrder(ctx context.Context, path string) (*domain.PurchaseOrder, error)
}

// OrderResolver finds the purchase order for an order identifier.
type OrderResolver interface {
	Resolve(ctx context.Context, orderID string) (*domain.PurchaseOrder, error)
}
