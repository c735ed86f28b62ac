// Package reconcile matches OCR invoice text against a purchase order, classifies the
// result and drives the resulting ledger update.
package reconcile

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"stockrecon/internal/domain"
	"stockrecon/internal/matcher"
	"stockrecon/internal/port"
)

// Engine reconciles invoices against purchase orders.
type Engine struct {
	settings Settings
	strategy matcher.Strategy
	ledger   port.InventoryLedger
	log      logrus.FieldLogger
}

// NewEngine creates an Engine. A nil strategy selects matcher.MaxNumeral.
func NewEngine(settings Settings, strategy matcher.Strategy, ledger port.InventoryLedger, log logrus.FieldLogger) *Engine {
	if strategy == nil {
		strategy = matcher.NewMaxNumeral()
	}
	return &Engine{
		settings: settings,
		strategy: strategy,
		ledger:   ledger,
		log:      log.WithField("component", "reconcile"),
	}
}

func within(a, b, tolerance decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThan(tolerance)
}

// Reconcile checks every item against the invoice lines, in item order. It has no side
// effects; identical inputs always yield identical results.
func (e *Engine) Reconcile(lines []string, items []domain.PurchaseOrderItem, summary domain.PurchaseOrderSummary) (*domain.ReconciliationResult, error) {
	expected, ok := summary.Total()
	if !ok {
		return nil, domain.ErrMissingSummaryTotal
	}

	res := &domain.ReconciliationResult{
		ExpectedTotal: expected,
		Items:         make([]domain.ItemOutcome, 0, len(items)),
	}
	subtotal := decimal.Zero
	shortfalls := 0

	for i := range items {
		item := &items[i]
		out := e.checkItem(item, lines)
		switch out.Status {
		case domain.ItemStatusMatched:
			subtotal = subtotal.Add(out.InvoiceTotal.Decimal)
		case domain.ItemStatusDiscrepant:
			subtotal = subtotal.Add(out.InvoiceTotal.Decimal)
			res.ErrorCount++
			if out.ShortfallUnits != nil {
				shortfalls++
			}
		default:
			res.ErrorCount++
		}
		res.Items = append(res.Items, out)
	}

	res.MatchedSubtotal = subtotal
	res.ComputedTax = subtotal.Mul(e.settings.TaxRate)
	res.ComputedTotal = subtotal.Add(res.ComputedTax)

	switch {
	case res.ErrorCount == 0 && within(res.ComputedTotal, expected, e.settings.TotalTolerance):
		res.OverallStatus = domain.OverallStatusFullMatch
	case shortfalls > 0:
		res.OverallStatus = domain.OverallStatusPendingDecision
	default:
		res.OverallStatus = domain.OverallStatusUnvalidatable
	}
	return res, nil
}

func (e *Engine) checkItem(item *domain.PurchaseOrderItem, lines []string) domain.ItemOutcome {
	code := strconv.Itoa(item.Code)
	out := domain.ItemOutcome{
		Code:          item.Code,
		Name:          item.Name,
		ExpectedTotal: item.LineTotal,
		UnitPrice:     item.UnitPrice,
	}
	log := e.log.WithField("code", code)

	m := e.strategy.FindProductLine(code, lines)
	if !m.Found {
		out.Status = domain.ItemStatusNotFound
		out.Reason = domain.NotFoundReasonAbsent
		log.Debug("product not found in invoice")
		return out
	}
	out.Line = m.Line
	if !m.HasTotal {
		out.Status = domain.ItemStatusNotFound
		out.Reason = domain.NotFoundReasonNoNumeral
		log.WithError(domain.ErrUnparseableInvoiceLine).WithField("line", m.Line).Debug("no total on product line")
		return out
	}

	out.InvoiceTotal = decimal.NullDecimal{Decimal: m.Total, Valid: true}
	if within(m.Total, item.LineTotal, e.settings.LineTolerance) {
		out.Status = domain.ItemStatusMatched
		return out
	}

	out.Status = domain.ItemStatusDiscrepant
	if item.UnitPrice.IsPositive() {
		units := item.LineTotal.Sub(m.Total).Div(item.UnitPrice).Round(0).IntPart()
		out.ShortfallUnits = &units
	}
	log.WithFields(logrus.Fields{
		"invoice_total":  m.Total.String(),
		"expected_total": item.LineTotal.String(),
	}).Debug("line total mismatch")
	return out
}

// Process reconciles an order and, on a full match, applies the ordered quantities to the
// ledger. Partial matches come back pending; they are applied only through Resolve.
func (e *Engine) Process(ctx context.Context, order *domain.PurchaseOrder, lines []string) (*domain.Receipt, error) {
	res, err := e.Reconcile(lines, order.Items, order.Summary)
	if err != nil {
		return nil, fmt.Errorf("reconciling order %s: %w", order.ID, err)
	}

	receipt := &domain.Receipt{
		ID:        uuid.New(),
		OrderID:   order.ID,
		Order:     order,
		Result:    res,
		CreatedAt: time.Now().UTC(),
	}
	log := e.log.WithFields(logrus.Fields{
		"order_id":   order.ID,
		"receipt_id": receipt.ID,
		"status":     res.OverallStatus,
		"errors":     res.ErrorCount,
	})

	switch res.OverallStatus {
	case domain.OverallStatusFullMatch:
		applied := ReceiptLines(order.Items)
		if _, err := e.ledger.ApplyReceipt(ctx, applied); err != nil {
			return nil, fmt.Errorf("applying receipt for order %s: %w", order.ID, err)
		}
		receipt.State = domain.ReceiptStateApplied
		receipt.Applied = applied
		log.Info("invoice matches order, inventory updated")
	case domain.OverallStatusPendingDecision:
		receipt.State = domain.ReceiptStatePendingDecision
		log.Info("invoice partially matches order, awaiting decision")
	default:
		receipt.State = domain.ReceiptStateUnvalidatable
		log.Warn("invoice could not be validated against order")
	}
	return receipt, nil
}
