package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SummaryTotalLabel is the purchase-order summary entry compared against the computed total.
const SummaryTotalLabel = "TOTAL"

// PurchaseOrderItem is one product row of a purchase order.
type PurchaseOrderItem struct {
	Code      int             `json:"code"`
	Name      string          `json:"name"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// PurchaseOrderSummary maps upper-cased summary labels (TOTAL, NETO, IVA, ...) to values.
type PurchaseOrderSummary map[string]decimal.Decimal

// Total returns the TOTAL entry, if present.
func (s PurchaseOrderSummary) Total() (decimal.Decimal, bool) {
	v, ok := s[SummaryTotalLabel]
	return v, ok
}

// PurchaseOrder is a resolved order table: its items and its summary rows.
type PurchaseOrder struct {
	ID      string               `json:"id"`
	Items   []PurchaseOrderItem  `json:"items"`
	Summary PurchaseOrderSummary `json:"summary"`
}

// SplitInvoiceLines splits OCR output into lines, dropping carriage returns.
func SplitInvoiceLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, "\r")
	}
	return lines
}

// ItemOutcome is the reconciliation verdict for one purchase-order item.
type ItemOutcome struct {
	Code           int                 `json:"code"`
	Name           string              `json:"name"`
	Status         ItemStatus          `json:"status"`
	Reason         NotFoundReason      `json:"reason,omitempty"`
	Line           string              `json:"line,omitempty"`
	InvoiceTotal   decimal.NullDecimal `json:"invoice_total"`
	ExpectedTotal  decimal.Decimal     `json:"expected_total"`
	UnitPrice      decimal.Decimal     `json:"unit_price"`
	ShortfallUnits *int64              `json:"shortfall_units"`
}

// ReconciliationResult is the outcome of matching invoice text against a purchase order.
type ReconciliationResult struct {
	MatchedSubtotal decimal.Decimal `json:"matched_subtotal"`
	ComputedTax     decimal.Decimal `json:"computed_tax"`
	ComputedTotal   decimal.Decimal `json:"computed_total"`
	ExpectedTotal   decimal.Decimal `json:"expected_total"`
	ErrorCount      int             `json:"error_count"`
	Items           []ItemOutcome   `json:"items"`
	OverallStatus   OverallStatus   `json:"overall_status"`
}

// Shortfalls returns code → shortfall units for every item that has one.
func (r *ReconciliationResult) Shortfalls() map[int]int64 {
	out := make(map[int]int64)
	for i := range r.Items {
		if r.Items[i].ShortfallUnits != nil {
			out[r.Items[i].Code] = *r.Items[i].ShortfallUnits
		}
	}
	return out
}

// ReceiptLine is a quantity delta applied to the inventory ledger.
type ReceiptLine struct {
	Code          int             `json:"code"`
	Name          string          `json:"name"`
	QuantityDelta decimal.Decimal `json:"quantity_delta"`
}

// InventoryRecord is one row of the inventory ledger.
type InventoryRecord struct {
	Code     int             `json:"code"`
	Name     string          `json:"name"`
	Quantity decimal.Decimal `json:"quantity"`
	Status   StockStatus     `json:"status"`
}

// Receipt is a single reconciliation run for an order and its ledger effect.
type Receipt struct {
	ID        uuid.UUID             `json:"id"`
	OrderID   string                `json:"order_id"`
	Order     *PurchaseOrder        `json:"-"`
	Result    *ReconciliationResult `json:"result"`
	State     ReceiptState          `json:"state"`
	Applied   []ReceiptLine         `json:"applied,omitempty"`
	CreatedAt time.Time             `json:"created_at"`
	DecidedAt *time.Time            `json:"decided_at,omitempty"`
}
