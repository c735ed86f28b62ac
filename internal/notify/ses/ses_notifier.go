package ses

import (
	"context"
	"fmt"
	"html"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"stockrecon/internal/config"
	"stockrecon/internal/domain"
	"stockrecon/internal/port"
	"stockrecon/internal/report"
)

// SendEmailAPI is the part of the SES v2 client the notifier uses.
type SendEmailAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

type sesNotifier struct {
	client      SendEmailAPI
	fromAddress string
	fromName    string
	recipients  []string
}

// NewSESNotifier creates an SES-backed Notifier that mails receipts needing attention.
func NewSESNotifier(cfg *config.NotifyConfig) (port.Notifier, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	return NewSESNotifierWithClient(sesv2.NewFromConfig(awsCfg), cfg), nil
}

// NewSESNotifierWithClient creates a Notifier around an existing client.
func NewSESNotifierWithClient(client SendEmailAPI, cfg *config.NotifyConfig) port.Notifier {
	return &sesNotifier{
		client:      client,
		fromAddress: cfg.FromAddress,
		fromName:    cfg.FromName,
		recipients:  cfg.Recipients,
	}
}

func (s *sesNotifier) NotifyReceipt(ctx context.Context, receipt *domain.Receipt) error {
	if len(s.recipients) == 0 {
		return nil
	}

	subject := Subject(receipt)
	lines := append(report.Describe(receipt.Result), report.Summary(receipt.Result)...)
	textBody := strings.Join(lines, "\n")
	htmlBody := buildReceiptHTML(receipt, lines)

	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: s.recipients,
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body: &types.Body{
					Html: &types.Content{Data: &htmlBody},
					Text: &types.Content{Data: &textBody},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}

// Subject is the e-mail subject for a receipt.
func Subject(receipt *domain.Receipt) string {
	switch receipt.State {
	case domain.ReceiptStatePendingDecision:
		return fmt.Sprintf("Order %s: invoice differs, decision required", receipt.OrderID)
	case domain.ReceiptStateUnvalidatable:
		return fmt.Sprintf("Order %s: invoice could not be validated", receipt.OrderID)
	default:
		return fmt.Sprintf("Order %s: receipt %s", receipt.OrderID, receipt.State)
	}
}

func buildReceiptHTML(receipt *domain.Receipt, lines []string) string {
	var items strings.Builder
	for _, l := range lines {
		items.WriteString("    <li>")
		items.WriteString(html.EscapeString(l))
		items.WriteString("</li>\n")
	}
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">Purchase order %s</h2>
  <p>Receipt %s</p>
  <ul>
%s  </ul>
  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">Stock Receiving</p>
</body>
</html>`, html.EscapeString(receipt.OrderID), receipt.ID, items.String())
}
