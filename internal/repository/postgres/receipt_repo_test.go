package postgres_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockrecon/internal/config"
	"stockrecon/internal/domain"
	"stockrecon/internal/repository/postgres"
)

// Runs against a migrated database when STOCKRECON_TEST_POSTGRES is set, e.g.
// STOCKRECON_TEST_POSTGRES=1 STOCKRECON_DB_HOST=localhost go test ./internal/repository/postgres/
func TestReceiptRepo_Postgres(t *testing.T) {
	if os.Getenv("STOCKRECON_TEST_POSTGRES") == "" {
		t.Skip("STOCKRECON_TEST_POSTGRES not set")
	}
	cfg, err := config.Load()
	require.NoError(t, err)
	db, err := postgres.NewDB(&cfg.DB)
	require.NoError(t, err)
	defer db.Close()

	repo := postgres.NewReceiptRepo(db)
	ctx := context.Background()

	receipt := &domain.Receipt{
		ID:      uuid.New(),
		OrderID: "it-" + uuid.NewString()[:8],
		State:   domain.ReceiptStatePendingDecision,
		Order: &domain.PurchaseOrder{Items: []domain.PurchaseOrderItem{
			{Code: 7, Name: "Widget", Quantity: decimal.NewFromInt(4)},
		}},
		Result:    &domain.ReconciliationResult{OverallStatus: domain.OverallStatusPendingDecision},
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, repo.Save(ctx, receipt))

	decided := time.Now().UTC().Truncate(time.Microsecond)
	receipt.State = domain.ReceiptStateAccepted
	receipt.DecidedAt = &decided
	receipt.Applied = []domain.ReceiptLine{{Code: 7, Name: "Widget", QuantityDelta: decimal.NewFromInt(4)}}
	require.NoError(t, repo.Save(ctx, receipt))

	got, err := repo.GetByID(ctx, receipt.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReceiptStateAccepted, got.State)
	require.Len(t, got.Applied, 1)
	require.NotNil(t, got.DecidedAt)
	assert.True(t, decided.Equal(*got.DecidedAt))

	_, err = repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrReceiptNotFound)

	list, total, err := repo.List(ctx, 0, 100)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, total, 1)
	assert.NotEmpty(t, list)
}
