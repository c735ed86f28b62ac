package reconcile

import (
	"github.com/shopspring/decimal"

	"stockrecon/internal/config"
)

// Settings are the jurisdiction-dependent constants of a reconciliation pass.
type Settings struct {
	// TaxRate is applied to the matched subtotal (0.19 = 19% VAT).
	TaxRate decimal.Decimal
	// LineTolerance is the largest per-line difference still counted as a match (exclusive).
	LineTolerance decimal.Decimal
	// TotalTolerance is the largest grand-total difference still counted as a match (exclusive).
	TotalTolerance decimal.Decimal
}

// DefaultSettings returns 19% VAT, 0.01 per line and 0.5 on the grand total.
func DefaultSettings() Settings {
	return Settings{
		TaxRate:        decimal.RequireFromString("0.19"),
		LineTolerance:  decimal.RequireFromString("0.01"),
		TotalTolerance: decimal.RequireFromString("0.5"),
	}
}

// SettingsFromConfig converts loaded configuration into Settings.
func SettingsFromConfig(cfg config.ReconcileConfig) Settings {
	return Settings{
		TaxRate:        cfg.TaxRate,
		LineTolerance:  cfg.LineTolerance,
		TotalTolerance: cfg.TotalTolerance,
	}
}
