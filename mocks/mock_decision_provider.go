package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"stockrecon/internal/domain"
)

// MockDecisionProvider is a mock implementation of port.DecisionProvider.
type MockDecisionProvider struct {
	mock.Mock
}

func (m *MockDecisionProvider) Decide(ctx context.Context, receipt *domain.Receipt) (domain.Decision, error) {
	args := m.Called(ctx, receipt)
	return args.Get(0).(domain.Decision), args.Error(1)
}
