// Package ledger keeps the inventory stock table: additive receipts and availability labels.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"stockrecon/internal/domain"
	"stockrecon/internal/port"
)

// LockKey is the lock held while a receipt is read-modify-written.
const LockKey = "stockrecon:ledger"

var (
	thresholdAvailable = decimal.NewFromInt(15)
	thresholdMedium    = decimal.NewFromInt(7)
	thresholdLow       = decimal.NewFromInt(3)
	thresholdCritical  = decimal.NewFromInt(1)
)

// StatusFor maps a quantity to its availability label.
func StatusFor(q decimal.Decimal) domain.StockStatus {
	switch {
	case q.GreaterThan(thresholdAvailable):
		return domain.StockStatusAvailable
	case q.GreaterThan(thresholdMedium):
		return domain.StockStatusMedium
	case q.GreaterThan(thresholdLow):
		return domain.StockStatusLow
	case q.GreaterThanOrEqual(thresholdCritical):
		return domain.StockStatusCritical
	default:
		return domain.StockStatusUnavailable
	}
}

// Ledger implements port.InventoryLedger on top of a LedgerStore.
type Ledger struct {
	store  port.LedgerStore
	locker port.Locker
	log    logrus.FieldLogger
}

// New creates a Ledger. locker serialises writers; pass lock.NewLocal() for a single process.
func New(store port.LedgerStore, locker port.Locker, log logrus.FieldLogger) *Ledger {
	return &Ledger{
		store:  store,
		locker: locker,
		log:    log.WithField("component", "ledger"),
	}
}

// ApplyReceipt adds each line's quantity to the matching record (inserting new codes),
// recomputes every status and saves the whole ledger.
func (l *Ledger) ApplyReceipt(ctx context.Context, lines []domain.ReceiptLine) ([]domain.InventoryRecord, error) {
	lk, err := l.locker.Obtain(ctx, LockKey)
	if err != nil {
		return nil, fmt.Errorf("locking ledger: %w", err)
	}
	defer func() {
		if rerr := lk.Release(ctx); rerr != nil {
			l.log.WithError(rerr).Warn("releasing ledger lock")
		}
	}()

	records, err := l.load(ctx)
	if err != nil {
		return nil, err
	}

	index := make(map[int]int, len(records))
	for i := range records {
		index[records[i].Code] = i
	}

	for _, line := range lines {
		if i, ok := index[line.Code]; ok {
			records[i].Quantity = records[i].Quantity.Add(line.QuantityDelta)
			continue
		}
		records = append(records, domain.InventoryRecord{
			Code:     line.Code,
			Name:     line.Name,
			Quantity: line.QuantityDelta,
		})
		index[line.Code] = len(records) - 1
	}

	for i := range records {
		records[i].Status = StatusFor(records[i].Quantity)
	}

	if err := l.store.Save(ctx, records); err != nil {
		return nil, fmt.Errorf("saving ledger: %w", err)
	}

	l.log.WithFields(logrus.Fields{"lines": len(lines), "records": len(records)}).Info("receipt applied")
	return records, nil
}

// Records returns the ledger sorted by code.
func (l *Ledger) Records(ctx context.Context) ([]domain.InventoryRecord, error) {
	records, err := l.load(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Code < records[j].Code })
	return records, nil
}

// load treats an unreadable ledger as empty and folds duplicated codes into one record.
func (l *Ledger) load(ctx context.Context) ([]domain.InventoryRecord, error) {
	records, err := l.store.Load(ctx)
	if errors.Is(err, domain.ErrLedgerUnreadable) {
		l.log.WithError(err).Warn("ledger unreadable, starting from an empty ledger")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading ledger: %w", err)
	}
	return l.merge(records), nil
}

// merge sums the quantities of records sharing a code into the first of them.
func (l *Ledger) merge(records []domain.InventoryRecord) []domain.InventoryRecord {
	first := make(map[int]int, len(records))
	out := records[:0:0]
	for _, r := range records {
		i, dup := first[r.Code]
		if !dup {
			first[r.Code] = len(out)
			out = append(out, r)
			continue
		}
		l.log.WithFields(logrus.Fields{"code": r.Code, "product": r.Name}).
			Warn("duplicate ledger code merged into its first row")
		out[i].Quantity = out[i].Quantity.Add(r.Quantity)
		out[i].Status = StatusFor(out[i].Quantity)
	}
	return out
}
