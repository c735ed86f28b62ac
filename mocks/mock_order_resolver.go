package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"stockrecon/internal/domain"
)

// MockOrderResolver is a mock implementation of port.OrderResolver.
type MockOrderResolver struct {
	mock.Mock
}

func (m *MockOrderResolver) Resolve(ctx context.Context, orderID string) (*domain.PurchaseOrder, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PurchaseOrder), args.Error(1)
}

// MockOrderSource is a mock implementation of port.OrderSource.
type MockOrderSource struct {
	mock.Mock
}

func (m *MockOrderSource) ReadOrder(ctx context.Context, path string) (*domain.PurchaseOrder, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PurchaseOrder), args.Error(1)
}
