package postgres

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockrecon/internal/domain"
)

func TestReceiptRow_KeepsOrderForLaterDecision(t *testing.T) {
	shortfall := int64(3)
	in := &domain.Receipt{
		ID:      uuid.New(),
		OrderID: "43564893",
		State:   domain.ReceiptStatePendingDecision,
		Order: &domain.PurchaseOrder{
			ID: "43564893",
			Items: []domain.PurchaseOrderItem{{
				Code: 101, Name: "Widget",
				Quantity:  decimal.RequireFromString("10"),
				UnitPrice: decimal.RequireFromString("5"),
				LineTotal: decimal.RequireFromString("50"),
			}},
			Summary: domain.PurchaseOrderSummary{"TOTAL": decimal.RequireFromString("59.5")},
		},
		Result: &domain.ReconciliationResult{
			OverallStatus: domain.OverallStatusPendingDecision,
			Items: []domain.ItemOutcome{{
				Code: 101, Status: domain.ItemStatusDiscrepant,
				InvoiceTotal:   decimal.NewNullDecimal(decimal.RequireFromString("35")),
				ShortfallUnits: &shortfall,
			}},
		},
		CreatedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}

	row, err := toRow(in)
	require.NoError(t, err)
	assert.Equal(t, "[]", row.Applied)
	assert.Equal(t, "pending_decision", row.State)

	out, err := row.toDomain()
	require.NoError(t, err)

	require.NotNil(t, out.Order)
	require.Len(t, out.Order.Items, 1)
	assert.True(t, out.Order.Items[0].Quantity.Equal(decimal.NewFromInt(10)))
	total, ok := out.Order.Summary.Total()
	assert.True(t, ok)
	assert.True(t, total.Equal(decimal.RequireFromString("59.5")))
	require.NotNil(t, out.Result)
	assert.Equal(t, map[int]int64{101: 3}, out.Result.Shortfalls())
	assert.Nil(t, out.Applied)
	assert.Nil(t, out.DecidedAt)
}

func TestReceiptRow_CorruptDocument(t *testing.T) {
	row := &receiptRow{ID: uuid.New(), OrderDoc: "{", ResultDoc: "null", Applied: "[]"}
	_, err := row.toDomain()
	assert.Error(t, err)
}
