package port

import (
	"context"

	"stockrecon/internal/domain"
)

// DecisionProvider asks an operator whether to accept a partially matched receipt.
// Implementations block until an accept or reject answer is available.
type DecisionProvider interface {
	Decide(ctx context.Context, receipt *domain.Receipt) (domain.Decision, error)
}
