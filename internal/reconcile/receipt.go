package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"stockrecon/internal/domain"
	"stockrecon/internal/port"
)

// ReceiptLines converts order items into ledger lines with their ordered quantities.
func ReceiptLines(items []domain.PurchaseOrderItem) []domain.ReceiptLine {
	out := make([]domain.ReceiptLine, 0, len(items))
	for i := range items {
		out = append(out, domain.ReceiptLine{
			Code:          items[i].Code,
			Name:          items[i].Name,
			QuantityDelta: items[i].Quantity,
		})
	}
	return out
}

// AdjustedReceiptLines reduces each ordered quantity by its shortfall. Quantities never
// drop below zero.
func AdjustedReceiptLines(items []domain.PurchaseOrderItem, res *domain.ReconciliationResult) []domain.ReceiptLine {
	shortfalls := res.Shortfalls()
	out := ReceiptLines(items)
	for i := range out {
		units, ok := shortfalls[out[i].Code]
		if !ok {
			continue
		}
		q := out[i].QuantityDelta.Sub(decimal.NewFromInt(units))
		if q.IsNegative() {
			q = decimal.Zero
		}
		out[i].QuantityDelta = q
	}
	return out
}

// Resolve moves a pending receipt to accepted (applying the shortfall-adjusted quantities)
// or rejected (leaving the ledger untouched).
func (e *Engine) Resolve(ctx context.Context, receipt *domain.Receipt, decision domain.Decision) error {
	if receipt.State != domain.ReceiptStatePendingDecision {
		return fmt.Errorf("receipt %s is %s: %w", receipt.ID, receipt.State, domain.ErrInvalidTransition)
	}
	if receipt.Order == nil {
		return fmt.Errorf("receipt %s has no order attached", receipt.ID)
	}

	now := time.Now().UTC()
	log := e.log.WithField("receipt_id", receipt.ID).WithField("order_id", receipt.OrderID)

	switch decision {
	case domain.DecisionAccept:
		lines := AdjustedReceiptLines(receipt.Order.Items, receipt.Result)
		if _, err := e.ledger.ApplyReceipt(ctx, lines); err != nil {
			return fmt.Errorf("applying accepted receipt %s: %w", receipt.ID, err)
		}
		receipt.State = domain.ReceiptStateAccepted
		receipt.Applied = lines
		log.Info("partial receipt accepted, inventory updated")
	case domain.DecisionReject:
		receipt.State = domain.ReceiptStateRejected
		log.Info("partial receipt rejected")
	default:
		return fmt.Errorf("%q: %w", decision, domain.ErrInvalidDecision)
	}
	receipt.DecidedAt = &now
	return nil
}

// Await asks provider for a decision on a pending receipt and resolves it.
func (e *Engine) Await(ctx context.Context, receipt *domain.Receipt, provider port.DecisionProvider) error {
	if receipt.State != domain.ReceiptStatePendingDecision {
		return fmt.Errorf("receipt %s is %s: %w", receipt.ID, receipt.State, domain.ErrInvalidTransition)
	}
	decision, err := provider.Decide(ctx, receipt)
	if err != nil {
		return fmt.Errorf("waiting for decision on receipt %s: %w", receipt.ID, err)
	}
	return e.Resolve(ctx, receipt, decision)
}
