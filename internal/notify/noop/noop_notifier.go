package noop

import (
	"context"

	"github.com/sirupsen/logrus"

	"stockrecon/internal/domain"
	"stockrecon/internal/port"
	"stockrecon/internal/report"
)

type noopNotifier struct {
	log logrus.FieldLogger
}

// NewNoopNotifier creates a Notifier that only logs the discrepancies.
func NewNoopNotifier(log logrus.FieldLogger) port.Notifier {
	return &noopNotifier{log: log.WithField("component", "notify")}
}

func (n *noopNotifier) NotifyReceipt(_ context.Context, receipt *domain.Receipt) error {
	entry := n.log.WithFields(logrus.Fields{
		"receipt_id": receipt.ID,
		"order_id":   receipt.OrderID,
		"state":      receipt.State,
	})
	for _, line := range report.Describe(receipt.Result) {
		entry.Info(line)
	}
	return nil
}
