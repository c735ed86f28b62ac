// Package app assembles the receiving service from configuration. Both the HTTP server and
// the one-shot CLI are built on it.
package app

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"stockrecon/internal/config"
	"stockrecon/internal/ledger"
	"stockrecon/internal/lock"
	noopnotify "stockrecon/internal/notify/noop"
	sesnotify "stockrecon/internal/notify/ses"
	"stockrecon/internal/ocr"
	"stockrecon/internal/ocr/httpocr"
	"stockrecon/internal/ocr/tesseract"
	"stockrecon/internal/order"
	"stockrecon/internal/port"
	"stockrecon/internal/reconcile"
	"stockrecon/internal/repository/memory"
	"stockrecon/internal/repository/postgres"
	"stockrecon/internal/service"
	"stockrecon/internal/spreadsheet"
	noopstorage "stockrecon/internal/storage/noop"
	s3storage "stockrecon/internal/storage/s3"
)

func init() {
	ocr.RegisterProvider(tesseract.ProviderName, tesseract.Factory)
	ocr.RegisterProvider(httpocr.ProviderName, httpocr.Factory)
}

// App holds the assembled components.
type App struct {
	Service service.ReceivingService
	Ledger  *ledger.Ledger
	Engine  *reconcile.Engine

	closers []func() error
}

// New builds every collaborator named in cfg. Connections opened before a failure are
// closed again.
func New(cfg *config.Config, log logrus.FieldLogger) (_ *App, err error) {
	a := &App{}
	defer func() {
		if err != nil {
			if cerr := a.Close(); cerr != nil {
				log.WithError(cerr).Warn("closing partially built app")
			}
		}
	}()

	locker, err := a.newLocker(&cfg.Lock, log)
	if err != nil {
		return nil, err
	}

	receipts, err := a.newReceipts(cfg, log)
	if err != nil {
		return nil, err
	}

	extractor, err := ocr.NewFromConfig(&cfg.OCR, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OCR: %w", err)
	}

	archive, err := newArchive(&cfg.Archive, log)
	if err != nil {
		return nil, err
	}

	notifier, err := newNotifier(&cfg.Notify, log)
	if err != nil {
		return nil, err
	}

	a.Ledger = ledger.New(spreadsheet.NewLedgerFile(cfg.Ledger.Path, cfg.Ledger.Sheet, log), locker, log)
	a.Engine = reconcile.NewEngine(reconcile.SettingsFromConfig(cfg.Reconcile), nil, a.Ledger, log)

	a.Service = service.NewReceivingService(service.ReceivingDeps{
		Extractor: extractor,
		Orders:    order.NewResolver(cfg.Orders, spreadsheet.NewOrderReader(), log),
		Engine:    a.Engine,
		Ledger:    a.Ledger,
		Receipts:  receipts,
		Archive:   archive,
		Notifier:  notifier,
		Locker:    locker,
	}, &cfg.Archive, log)

	return a, nil
}

// Close releases external connections.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// newRedisLocker is swapped in tests.
var newRedisLocker = func(cfg *config.LockConfig) (port.Locker, func() error) {
	locker, rdb := lock.NewRedis(cfg)
	return locker, rdb.Close
}

func (a *App) newLocker(cfg *config.LockConfig, log logrus.FieldLogger) (port.Locker, error) {
	switch cfg.Provider {
	case "", "local":
		return lock.NewLocal(), nil
	case "redis":
		locker, closeFn := newRedisLocker(cfg)
		a.closers = append(a.closers, closeFn)
		log.WithField("addr", cfg.RedisAddr).Info("using redis ledger lock")
		return locker, nil
	default:
		return nil, fmt.Errorf("unknown lock provider: %s", cfg.Provider)
	}
}

func (a *App) newReceipts(cfg *config.Config, log logrus.FieldLogger) (port.ReceiptRepository, error) {
	switch cfg.Receipts.Provider {
	case "", "memory":
		return memory.NewReceiptRepo(), nil
	case "postgres":
		db, err := postgres.NewDB(&cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		log.WithFields(logrus.Fields{"host": cfg.DB.Host, "db": cfg.DB.Name}).Info("storing receipts in postgres")
		return postgres.NewReceiptRepo(db), nil
	default:
		return nil, fmt.Errorf("unknown receipts provider: %s", cfg.Receipts.Provider)
	}
}

func newArchive(cfg *config.ArchiveConfig, log logrus.FieldLogger) (port.ObjectStorage, error) {
	switch cfg.Provider {
	case "", "noop":
		return noopstorage.NewNoopStorage(log), nil
	case "s3":
		s, err := s3storage.NewS3Client(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize S3 client: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown archive provider: %s", cfg.Provider)
	}
}

func newNotifier(cfg *config.NotifyConfig, log logrus.FieldLogger) (port.Notifier, error) {
	switch cfg.Provider {
	case "", "noop":
		return noopnotify.NewNoopNotifier(log), nil
	case "ses":
		n, err := sesnotify.NewSESNotifier(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SES notifier: %w", err)
		}
		return n, nil
	default:
		return nil, fmt.Errorf("unknown notify provider: %s", cfg.Provider)
	}
}
