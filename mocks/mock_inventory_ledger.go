package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"stockrecon/internal/domain"
)

// MockInventoryLedger is a mock implementation of port.InventoryLedger.
type MockInventoryLedger struct {
	mock.Mock
}

func (m *MockInventoryLedger) ApplyReceipt(ctx context.Context, lines []domain.ReceiptLine) ([]domain.InventoryRecord, error) {
	args := m.Called(ctx, lines)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.InventoryRecord), args.Error(1)
}

func (m *MockInventoryLedger) Records(ctx context.Context) ([]domain.InventoryRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.InventoryRecord), args.Error(1)
}
