// Package order locates purchase orders by their number.
package order

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"github.com/sirupsen/logrus"

	"stockrecon/internal/config"
	"stockrecon/internal/domain"
	"stockrecon/internal/port"
)

var validOrderID = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Resolver maps an order id to <dir>/<id><ext> and reads it through an OrderSource.
type Resolver struct {
	dir    string
	ext    string
	source port.OrderSource
	log    logrus.FieldLogger
}

// NewResolver creates a Resolver from the orders configuration.
func NewResolver(cfg config.OrdersConfig, source port.OrderSource, log logrus.FieldLogger) *Resolver {
	ext := cfg.Extension
	if ext == "" {
		ext = ".xlsx"
	}
	return &Resolver{
		dir:    cfg.Dir,
		ext:    ext,
		source: source,
		log:    log.WithField("component", "order_resolver"),
	}
}

// Path returns the file an order id resolves to.
func (r *Resolver) Path(orderID string) string {
	return filepath.Join(r.dir, orderID+r.ext)
}

// Resolve loads the purchase order for orderID.
func (r *Resolver) Resolve(ctx context.Context, orderID string) (*domain.PurchaseOrder, error) {
	if !validOrderID.MatchString(orderID) {
		return nil, fmt.Errorf("order %q: %w", orderID, domain.ErrOrderNotFound)
	}

	path := r.Path(orderID)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("order %s (%s): %w", orderID, path, domain.ErrOrderNotFound)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	po, err := r.source.ReadOrder(ctx, path)
	if err != nil {
		return nil, err
	}
	po.ID = orderID
	r.log.WithFields(logrus.Fields{
		"order_id": orderID,
		"items":    len(po.Items),
	}).Debug("purchase order loaded")
	return po, nil
}
