package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"stockrecon/internal/config"
	"stockrecon/internal/domain"
	"stockrecon/internal/order"
	"stockrecon/internal/port"
	"stockrecon/internal/reconcile"
	"stockrecon/internal/report"
)

// StartInput is the DTO for starting a receipt. Either Image or Text must be set; when
// OrderID is empty it is read from the invoice text.
type StartInput struct {
	OrderID string
	Text    string
	Image   []byte
}

// ReceivingService defines the stock receiving contract.
type ReceivingService interface {
	Start(ctx context.Context, input StartInput) (*domain.Receipt, error)
	Decide(ctx context.Context, id uuid.UUID, decision domain.Decision) (*domain.Receipt, error)
	Await(ctx context.Context, id uuid.UUID, provider port.DecisionProvider) (*domain.Receipt, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Receipt, error)
	List(ctx context.Context, offset, limit int) ([]domain.Receipt, int, error)
	Inventory(ctx context.Context) ([]domain.InventoryRecord, error)
}

// ReceivingDeps groups the collaborators of the receiving service.
type ReceivingDeps struct {
	Extractor port.TextExtractor
	Orders    port.OrderResolver
	Engine    *reconcile.Engine
	Ledger    port.InventoryLedger
	Receipts  port.ReceiptRepository
	Archive   port.ObjectStorage
	Notifier  port.Notifier
	Locker    port.Locker
}

type receivingService struct {
	ReceivingDeps
	cfg *config.ArchiveConfig
	log logrus.FieldLogger
}

// NewReceivingService creates a new ReceivingService implementation.
func NewReceivingService(deps ReceivingDeps, cfg *config.ArchiveConfig, log logrus.FieldLogger) ReceivingService {
	return &receivingService{
		ReceivingDeps: deps,
		cfg:           cfg,
		log:           log.WithField("component", "receiving"),
	}
}

func (s *receivingService) Start(ctx context.Context, input StartInput) (*domain.Receipt, error) {
	text := input.Text
	var contentType string
	if len(input.Image) > 0 {
		contentType = http.DetectContentType(input.Image)
		if _, ok := domain.AllowedContentTypes[contentType]; !ok {
			return nil, domain.ErrUnsupportedFileType
		}
		out, err := s.Extractor.ExtractText(ctx, port.ExtractInput{Image: input.Image, ContentType: contentType})
		if err != nil {
			if errors.Is(err, domain.ErrOCRUnavailable) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %w", domain.ErrOCRUnavailable, err)
		}
		s.log.WithField("provider", out.Provider).WithField("chars", len(out.Text)).Debug("invoice text extracted")
		text = out.Text
	}
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrInvoiceMissing
	}

	orderID := strings.TrimSpace(input.OrderID)
	if orderID == "" {
		n, ok := order.ExtractOrderNumber(text)
		if !ok {
			return nil, fmt.Errorf("no order number on invoice: %w", domain.ErrOrderNotFound)
		}
		orderID = n
	}

	po, err := s.Orders.Resolve(ctx, orderID)
	if err != nil {
		return nil, err
	}

	receipt, err := s.Engine.Process(ctx, po, domain.SplitInvoiceLines(text))
	if err != nil {
		return nil, err
	}

	if err := s.Receipts.Save(ctx, receipt); err != nil {
		return nil, fmt.Errorf("saving receipt: %w", err)
	}

	s.archive(ctx, receipt, input.Image, contentType)

	if receipt.State != domain.ReceiptStateApplied {
		if err := s.Notifier.NotifyReceipt(ctx, receipt); err != nil {
			s.log.WithError(err).WithField("receipt_id", receipt.ID).Warn("notification failed")
		}
	}
	return receipt, nil
}

// archive stores the CSV report and the invoice image. Failures are logged only.
func (s *receivingService) archive(ctx context.Context, receipt *domain.Receipt, image []byte, contentType string) {
	prefix := path.Join(s.cfg.Prefix, receipt.OrderID, receipt.ID.String())
	log := s.log.WithField("receipt_id", receipt.ID)

	csv, err := report.CSV(receipt.Result)
	if err != nil {
		log.WithError(err).Warn("rendering report failed")
	} else {
		s.upload(ctx, log, receipt, path.Join(prefix, "report.csv"), csv, "text/csv")
	}

	if len(image) > 0 {
		ext := string(domain.AllowedContentTypes[contentType])
		s.upload(ctx, log, receipt, path.Join(prefix, "invoice."+ext), image, contentType)
	}
}

func (s *receivingService) upload(ctx context.Context, log logrus.FieldLogger, receipt *domain.Receipt, key string, body []byte, contentType string) {
	_, err := s.Archive.Upload(ctx, port.UploadInput{
		Bucket:      s.cfg.Bucket,
		Key:         key,
		Body:        bytes.NewReader(body),
		ContentType: contentType,
		Size:        int64(len(body)),
		Metadata: map[string]string{
			"receipt-id": receipt.ID.String(),
			"order-id":   receipt.OrderID,
			"state":      string(receipt.State),
		},
	})
	if err != nil {
		log.WithError(err).WithField("key", key).Warn("archive upload failed")
	}
}

func receiptLockKey(id uuid.UUID) string {
	return "stockrecon:receipt:" + id.String()
}

func (s *receivingService) Decide(ctx context.Context, id uuid.UUID, decision domain.Decision) (*domain.Receipt, error) {
	return s.transition(ctx, id, func(receipt *domain.Receipt) error {
		return s.Engine.Resolve(ctx, receipt, decision)
	})
}

// Await asks provider for the decision while the receipt is locked, so a concurrent
// Decide cannot slip in between the question and the answer.
func (s *receivingService) Await(ctx context.Context, id uuid.UUID, provider port.DecisionProvider) (*domain.Receipt, error) {
	return s.transition(ctx, id, func(receipt *domain.Receipt) error {
		return s.Engine.Await(ctx, receipt, provider)
	})
}

// transition runs step on the stored receipt under its lock and saves the result.
func (s *receivingService) transition(ctx context.Context, id uuid.UUID, step func(*domain.Receipt) error) (*domain.Receipt, error) {
	lock, err := s.Locker.Obtain(ctx, receiptLockKey(id))
	if err != nil {
		return nil, fmt.Errorf("locking receipt %s: %w", id, err)
	}
	defer func() {
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
			s.log.WithError(err).WithField("receipt_id", id).Warn("releasing receipt lock")
		}
	}()

	receipt, err := s.Receipts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := step(receipt); err != nil {
		return nil, err
	}
	if err := s.Receipts.Save(ctx, receipt); err != nil {
		return nil, fmt.Errorf("saving receipt: %w", err)
	}
	return receipt, nil
}

func (s *receivingService) Get(ctx context.Context, id uuid.UUID) (*domain.Receipt, error) {
	return s.Receipts.GetByID(ctx, id)
}

func (s *receivingService) List(ctx context.Context, offset, limit int) ([]domain.Receipt, int, error) {
	return s.Receipts.List(ctx, offset, limit)
}

func (s *receivingService) Inventory(ctx context.Context) ([]domain.InventoryRecord, error) {
	return s.Ledger.Records(ctx)
}
