package ses_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockrecon/internal/config"
	"stockrecon/internal/domain"
	"stockrecon/internal/notify/ses"
)

type fakeSES struct {
	inputs []*sesv2.SendEmailInput
	err    error
}

func (f *fakeSES) SendEmail(_ context.Context, in *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.inputs = append(f.inputs, in)
	return &sesv2.SendEmailOutput{}, f.err
}

func pendingReceipt() *domain.Receipt {
	short := int64(3)
	return &domain.Receipt{
		ID:      uuid.New(),
		OrderID: "43564893",
		State:   domain.ReceiptStatePendingDecision,
		Result: &domain.ReconciliationResult{
			OverallStatus: domain.OverallStatusPendingDecision,
			ErrorCount:    1,
			Items: []domain.ItemOutcome{
				{Code: 101, Name: "Widget <A>", Status: domain.ItemStatusDiscrepant, ShortfallUnits: &short},
			},
		},
	}
}

func TestNotifyReceipt_SendsToRecipients(t *testing.T) {
	client := &fakeSES{}
	n := ses.NewSESNotifierWithClient(client, &config.NotifyConfig{
		FromAddress: "noreply@example.com",
		FromName:    "Stock Receiving",
		Recipients:  []string{"compras@example.com"},
	})

	require.NoError(t, n.NotifyReceipt(context.Background(), pendingReceipt()))
	require.Len(t, client.inputs, 1)

	in := client.inputs[0]
	assert.Equal(t, "Stock Receiving <noreply@example.com>", *in.FromEmailAddress)
	assert.Equal(t, []string{"compras@example.com"}, in.Destination.ToAddresses)
	assert.Equal(t, "Order 43564893: invoice differs, decision required", *in.Content.Simple.Subject.Data)
	assert.Contains(t, *in.Content.Simple.Body.Text.Data, "product 101 - Widget <A>: 3 units missing")
	assert.Contains(t, *in.Content.Simple.Body.Html.Data, "Widget &lt;A&gt;")
}

func TestNotifyReceipt_NoRecipients(t *testing.T) {
	client := &fakeSES{}
	n := ses.NewSESNotifierWithClient(client, &config.NotifyConfig{})

	require.NoError(t, n.NotifyReceipt(context.Background(), pendingReceipt()))
	assert.Empty(t, client.inputs)
}

func TestNotifyReceipt_ClientError(t *testing.T) {
	client := &fakeSES{err: errors.New("throttled")}
	n := ses.NewSESNotifierWithClient(client, &config.NotifyConfig{Recipients: []string{"a@example.com"}})

	err := n.NotifyReceipt(context.Background(), pendingReceipt())
	assert.ErrorContains(t, err, "throttled")
}
