package reconcile_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"stockrecon/internal/domain"
	"stockrecon/internal/matcher"
	"stockrecon/internal/reconcile"
	"stockrecon/mocks"
)

func matcherFunc(fn func(code string, lines []string) (bool, decimal.Decimal)) matcher.Strategy {
	return matcher.StrategyFunc(func(code string, lines []string) matcher.Match {
		found, total := fn(code, lines)
		return matcher.Match{Found: found, HasTotal: found, Total: total}
	})
}

func int64p(v int64) *int64 { return &v }

func pendingReceipt(t *testing.T, e *reconcile.Engine) *domain.Receipt {
	t.Helper()
	order := &domain.PurchaseOrder{
		ID: "900",
		Items: []domain.PurchaseOrderItem{
			item(101, "Widget", "10", "5", "50"),
			item(102, "Tuerca", "4", "2", "8"),
		},
		Summary: summary("69.02"),
	}
	receipt, err := e.Process(context.Background(), order, []string{"101 Widget 7 5 35", "102 Tuerca 4 2 8"})
	require.NoError(t, err)
	require.Equal(t, domain.ReceiptStatePendingDecision, receipt.State)
	return receipt
}

func TestAdjustedReceiptLines(t *testing.T) {
	items := []domain.PurchaseOrderItem{
		item(1, "a", "10", "1", "10"),
		item(2, "b", "10", "1", "10"),
		item(3, "c", "5", "1", "5"),
		item(4, "d", "2", "1", "2"),
	}
	res := &domain.ReconciliationResult{Items: []domain.ItemOutcome{
		{Code: 1, ShortfallUnits: int64p(3)},
		{Code: 2, ShortfallUnits: int64p(12)},
		{Code: 3, ShortfallUnits: int64p(-2)},
		{Code: 4},
	}}

	lines := reconcile.AdjustedReceiptLines(items, res)
	require.Len(t, lines, 4)
	assert.True(t, lines[0].QuantityDelta.Equal(d("7")))
	assert.True(t, lines[1].QuantityDelta.IsZero(), "clamped at zero")
	assert.True(t, lines[2].QuantityDelta.Equal(d("7")), "excess on invoice adds units")
	assert.True(t, lines[3].QuantityDelta.Equal(d("2")))
}

func TestResolve_AcceptAppliesAdjustedQuantities(t *testing.T) {
	ledger := new(mocks.MockInventoryLedger)
	e := newEngine(ledger)
	receipt := pendingReceipt(t, e)

	ledger.On("ApplyReceipt", mock.Anything, mock.MatchedBy(func(lines []domain.ReceiptLine) bool {
		return len(lines) == 2 &&
			lines[0].Code == 101 && lines[0].QuantityDelta.Equal(d("7")) &&
			lines[1].Code == 102 && lines[1].QuantityDelta.Equal(d("4"))
	})).Return([]domain.InventoryRecord{}, nil)

	require.NoError(t, e.Resolve(context.Background(), receipt, domain.DecisionAccept))
	assert.Equal(t, domain.ReceiptStateAccepted, receipt.State)
	assert.NotNil(t, receipt.DecidedAt)
	assert.Len(t, receipt.Applied, 2)
	ledger.AssertExpectations(t)
}

func TestResolve_RejectLeavesLedgerAlone(t *testing.T) {
	ledger := new(mocks.MockInventoryLedger)
	e := newEngine(ledger)
	receipt := pendingReceipt(t, e)

	require.NoError(t, e.Resolve(context.Background(), receipt, domain.DecisionReject))
	assert.Equal(t, domain.ReceiptStateRejected, receipt.State)
	assert.Empty(t, receipt.Applied)
	ledger.AssertNotCalled(t, "ApplyReceipt", mock.Anything, mock.Anything)
}

func TestResolve_OnlyFromPending(t *testing.T) {
	ledger := new(mocks.MockInventoryLedger)
	e := newEngine(ledger)
	receipt := pendingReceipt(t, e)

	require.NoError(t, e.Resolve(context.Background(), receipt, domain.DecisionReject))
	err := e.Resolve(context.Background(), receipt, domain.DecisionAccept)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestResolve_LedgerFailureKeepsPending(t *testing.T) {
	ledger := new(mocks.MockInventoryLedger)
	e := newEngine(ledger)
	receipt := pendingReceipt(t, e)
	ledger.On("ApplyReceipt", mock.Anything, mock.Anything).Return(nil, domain.ErrLedgerLocked)

	err := e.Resolve(context.Background(), receipt, domain.DecisionAccept)
	assert.ErrorIs(t, err, domain.ErrLedgerLocked)
	assert.Equal(t, domain.ReceiptStatePendingDecision, receipt.State)
}

func TestAwait_UsesDecisionProvider(t *testing.T) {
	ledger := new(mocks.MockInventoryLedger)
	e := newEngine(ledger)
	receipt := pendingReceipt(t, e)

	provider := new(mocks.MockDecisionProvider)
	provider.On("Decide", mock.Anything, receipt).Return(domain.DecisionReject, nil)

	require.NoError(t, e.Await(context.Background(), receipt, provider))
	assert.Equal(t, domain.ReceiptStateRejected, receipt.State)
	provider.AssertExpectations(t)
}

func TestAwait_ProviderError(t *testing.T) {
	e := newEngine(new(mocks.MockInventoryLedger))
	receipt := pendingReceipt(t, e)

	provider := new(mocks.MockDecisionProvider)
	provider.On("Decide", mock.Anything, receipt).Return(domain.Decision(""), errors.New("stdin closed"))

	err := e.Await(context.Background(), receipt, provider)
	assert.ErrorContains(t, err, "stdin closed")
	assert.Equal(t, domain.ReceiptStatePendingDecision, receipt.State)
}

func TestAwait_NotPending(t *testing.T) {
	e := newEngine(new(mocks.MockInventoryLedger))
	provider := new(mocks.MockDecisionProvider)

	err := e.Await(context.Background(), &domain.Receipt{State: domain.ReceiptStateApplied}, provider)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	provider.AssertNotCalled(t, "Decide", mock.Anything, mock.Anything)
}
