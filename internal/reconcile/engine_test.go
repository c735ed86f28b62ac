package reconcile_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"stockrecon/internal/domain"
	"stockrecon/internal/reconcile"
	"stockrecon/mocks"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newEngine(ledger *mocks.MockInventoryLedger) *reconcile.Engine {
	return reconcile.NewEngine(reconcile.DefaultSettings(), nil, ledger, quietLogger())
}

func item(code int, name, qty, price, total string) domain.PurchaseOrderItem {
	return domain.PurchaseOrderItem{
		Code:      code,
		Name:      name,
		Quantity:  d(qty),
		UnitPrice: d(price),
		LineTotal: d(total),
	}
}

func summary(total string) domain.PurchaseOrderSummary {
	return domain.PurchaseOrderSummary{"NETO": d("0"), domain.SummaryTotalLabel: d(total)}
}

func TestReconcile_FullMatchWithinTotalTolerance(t *testing.T) {
	e := newEngine(new(mocks.MockInventoryLedger))
	lines := []string{"FACTURA ELECTRONICA", "101 Tornillo 10 100 1.000", "TOTAL 1.190"}

	res, err := e.Reconcile(lines, []domain.PurchaseOrderItem{item(101, "Tornillo", "10", "100", "1000")}, summary("1190.4"))
	require.NoError(t, err)

	assert.True(t, res.MatchedSubtotal.Equal(d("1000")))
	assert.True(t, res.ComputedTax.Equal(d("190")))
	assert.True(t, res.ComputedTotal.Equal(d("1190")))
	assert.True(t, res.ExpectedTotal.Equal(d("1190.4")))
	assert.Equal(t, 0, res.ErrorCount)
	assert.Equal(t, domain.OverallStatusFullMatch, res.OverallStatus)
	require.Len(t, res.Items, 1)
	assert.Equal(t, domain.ItemStatusMatched, res.Items[0].Status)
	assert.Equal(t, "101 Tornillo 10 100 1.000", res.Items[0].Line)
}

func TestReconcile_ShortfallDerivedFromUnitPrice(t *testing.T) {
	e := newEngine(new(mocks.MockInventoryLedger))
	lines := []string{"101 Widget 7 5 35"}

	res, err := e.Reconcile(lines, []domain.PurchaseOrderItem{item(101, "Widget", "10", "5", "50")}, summary("59.5"))
	require.NoError(t, err)

	require.Len(t, res.Items, 1)
	out := res.Items[0]
	assert.Equal(t, domain.ItemStatusDiscrepant, out.Status)
	require.True(t, out.InvoiceTotal.Valid)
	assert.True(t, out.InvoiceTotal.Decimal.Equal(d("35")))
	require.NotNil(t, out.ShortfallUnits)
	assert.Equal(t, int64(3), *out.ShortfallUnits)
	assert.Equal(t, 1, res.ErrorCount)
	assert.True(t, res.MatchedSubtotal.Equal(d("35")))
	assert.Equal(t, domain.OverallStatusPendingDecision, res.OverallStatus)
}

func TestReconcile_ShortfallRoundsHalfAwayFromZero(t *testing.T) {
	e := newEngine(new(mocks.MockInventoryLedger))

	res, err := e.Reconcile([]string{"101 Widget 37,5"}, []domain.PurchaseOrderItem{item(101, "Widget", "10", "5", "50")}, summary("59.5"))
	require.NoError(t, err)
	require.NotNil(t, res.Items[0].ShortfallUnits)
	assert.Equal(t, int64(3), *res.Items[0].ShortfallUnits)
}

func TestReconcile_NotFoundReasons(t *testing.T) {
	e := newEngine(new(mocks.MockInventoryLedger))
	lines := []string{"102 Tuerca sin precio", "otra linea"}
	items := []domain.PurchaseOrderItem{
		item(101, "Tornillo", "1", "10", "10"),
		item(102, "Tuerca", "1", "10", "10"),
	}

	res, err := e.Reconcile(lines, items, summary("23.8"))
	require.NoError(t, err)

	require.Len(t, res.Items, 2)
	assert.Equal(t, domain.ItemStatusNotFound, res.Items[0].Status)
	assert.Equal(t, domain.NotFoundReasonAbsent, res.Items[0].Reason)
	assert.False(t, res.Items[0].InvoiceTotal.Valid)

	assert.Equal(t, domain.ItemStatusNotFound, res.Items[1].Status)
	assert.Equal(t, domain.NotFoundReasonNoNumeral, res.Items[1].Reason)
	assert.Equal(t, "102 Tuerca sin precio", res.Items[1].Line)

	assert.Equal(t, 2, res.ErrorCount)
	assert.True(t, res.MatchedSubtotal.IsZero())
	assert.Equal(t, domain.OverallStatusUnvalidatable, res.OverallStatus)
}

func TestReconcile_TotalMismatchWithoutLineErrorsIsUnvalidatable(t *testing.T) {
	e := newEngine(new(mocks.MockInventoryLedger))

	res, err := e.Reconcile([]string{"101 Tornillo 10 100 1.000"}, []domain.PurchaseOrderItem{item(101, "Tornillo", "10", "100", "1000")}, summary("5000"))
	require.NoError(t, err)
	assert.Equal(t, 0, res.ErrorCount)
	assert.Equal(t, domain.OverallStatusUnvalidatable, res.OverallStatus)
}

func TestReconcile_ZeroUnitPriceHasNoShortfall(t *testing.T) {
	e := newEngine(new(mocks.MockInventoryLedger))

	res, err := e.Reconcile([]string{"101 Regalo 40"}, []domain.PurchaseOrderItem{item(101, "Regalo", "1", "0", "50")}, summary("59.5"))
	require.NoError(t, err)
	assert.Equal(t, domain.ItemStatusDiscrepant, res.Items[0].Status)
	assert.Nil(t, res.Items[0].ShortfallUnits)
	assert.Equal(t, domain.OverallStatusUnvalidatable, res.OverallStatus)
}

func TestReconcile_MissingSummaryTotal(t *testing.T) {
	e := newEngine(new(mocks.MockInventoryLedger))

	res, err := e.Reconcile([]string{"101 x 10"}, []domain.PurchaseOrderItem{item(101, "x", "1", "10", "10")}, domain.PurchaseOrderSummary{"NETO": d("10")})
	assert.Nil(t, res)
	assert.ErrorIs(t, err, domain.ErrMissingSummaryTotal)
}

func TestReconcile_Idempotent(t *testing.T) {
	e := newEngine(new(mocks.MockInventoryLedger))
	lines := []string{"101 Widget 7 5 35", "102 Tuerca 2 3 6"}
	items := []domain.PurchaseOrderItem{
		item(101, "Widget", "10", "5", "50"),
		item(102, "Tuerca", "2", "3", "6"),
		item(103, "Arandela", "1", "1", "1"),
	}

	first, err := e.Reconcile(lines, items, summary("67.83"))
	require.NoError(t, err)
	second, err := e.Reconcile(lines, items, summary("67.83"))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestReconcile_CustomStrategy(t *testing.T) {
	called := 0
	strategy := matcherFunc(func(code string, lines []string) (bool, decimal.Decimal) {
		called++
		return true, d("10")
	})
	e := reconcile.NewEngine(reconcile.DefaultSettings(), strategy, new(mocks.MockInventoryLedger), quietLogger())

	res, err := e.Reconcile(nil, []domain.PurchaseOrderItem{item(1, "a", "1", "10", "10")}, summary("11.9"))
	require.NoError(t, err)
	assert.Equal(t, 1, called)
	assert.Equal(t, domain.OverallStatusFullMatch, res.OverallStatus)
}

func TestProcess_FullMatchAppliesOrderedQuantities(t *testing.T) {
	ledger := new(mocks.MockInventoryLedger)
	e := newEngine(ledger)
	order := &domain.PurchaseOrder{
		ID:      "43564893",
		Items:   []domain.PurchaseOrderItem{item(101, "Tornillo", "10", "100", "1000")},
		Summary: summary("1190"),
	}

	ledger.On("ApplyReceipt", mock.Anything, mock.MatchedBy(func(lines []domain.ReceiptLine) bool {
		return len(lines) == 1 && lines[0].Code == 101 && lines[0].QuantityDelta.Equal(d("10"))
	})).Return([]domain.InventoryRecord{}, nil)

	receipt, err := e.Process(context.Background(), order, []string{"101 Tornillo 10 100 1.000"})
	require.NoError(t, err)
	assert.Equal(t, domain.ReceiptStateApplied, receipt.State)
	assert.Equal(t, "43564893", receipt.OrderID)
	assert.Len(t, receipt.Applied, 1)
	assert.NotEmpty(t, receipt.ID)
	ledger.AssertExpectations(t)
}

func TestProcess_PendingDoesNotTouchLedger(t *testing.T) {
	ledger := new(mocks.MockInventoryLedger)
	e := newEngine(ledger)
	order := &domain.PurchaseOrder{
		ID:      "1",
		Items:   []domain.PurchaseOrderItem{item(101, "Widget", "10", "5", "50")},
		Summary: summary("59.5"),
	}

	receipt, err := e.Process(context.Background(), order, []string{"101 Widget 7 5 35"})
	require.NoError(t, err)
	assert.Equal(t, domain.ReceiptStatePendingDecision, receipt.State)
	assert.Empty(t, receipt.Applied)
	ledger.AssertNotCalled(t, "ApplyReceipt", mock.Anything, mock.Anything)
}

func TestProcess_LedgerFailure(t *testing.T) {
	ledger := new(mocks.MockInventoryLedger)
	e := newEngine(ledger)
	order := &domain.PurchaseOrder{
		ID:      "1",
		Items:   []domain.PurchaseOrderItem{item(101, "Tornillo", "10", "100", "1000")},
		Summary: summary("1190"),
	}
	ledger.On("ApplyReceipt", mock.Anything, mock.Anything).Return(nil, errors.New("disk full"))

	receipt, err := e.Process(context.Background(), order, []string{"101 Tornillo 10 100 1.000"})
	assert.Nil(t, receipt)
	assert.ErrorContains(t, err, "disk full")
}

func TestProcess_MissingSummaryTotalLeavesLedgerAlone(t *testing.T) {
	ledger := new(mocks.MockInventoryLedger)
	e := newEngine(ledger)
	order := &domain.PurchaseOrder{ID: "1", Items: []domain.PurchaseOrderItem{item(1, "a", "1", "1", "1")}}

	_, err := e.Process(context.Background(), order, []string{"1 a 1"})
	assert.ErrorIs(t, err, domain.ErrMissingSummaryTotal)
	ledger.AssertNotCalled(t, "ApplyReceipt", mock.Anything, mock.Anything)
}
