package report_test

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockrecon/internal/domain"
	"stockrecon/internal/report"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func int64p(v int64) *int64 { return &v }

func sampleResult() *domain.ReconciliationResult {
	return &domain.ReconciliationResult{
		MatchedSubtotal: d("1035"),
		ComputedTax:     d("196.65"),
		ComputedTotal:   d("1231.65"),
		ExpectedTotal:   d("1249.5"),
		ErrorCount:      4,
		OverallStatus:   domain.OverallStatusPendingDecision,
		Items: []domain.ItemOutcome{
			{Code: 100, Name: "Perno", Status: domain.ItemStatusMatched, InvoiceTotal: decimal.NewNullDecimal(d("1000")), ExpectedTotal: d("1000"), UnitPrice: d("100")},
			{Code: 101, Name: "Widget", Status: domain.ItemStatusDiscrepant, InvoiceTotal: decimal.NewNullDecimal(d("35")), ExpectedTotal: d("50"), UnitPrice: d("5"), ShortfallUnits: int64p(3), Line: "101 Widget 7 5 35"},
			{Code: 102, Name: "Tuerca", Status: domain.ItemStatusNotFound, Reason: domain.NotFoundReasonAbsent, ExpectedTotal: d("10"), UnitPrice: d("1")},
			{Code: 103, Name: "Clavo", Status: domain.ItemStatusNotFound, Reason: domain.NotFoundReasonNoNumeral, Line: "103 Clavo", ExpectedTotal: d("5"), UnitPrice: d("1")},
			{Code: 104, Name: "Arandela", Status: domain.ItemStatusDiscrepant, InvoiceTotal: decimal.NewNullDecimal(d("12")), ExpectedTotal: d("10"), UnitPrice: d("1"), ShortfallUnits: int64p(-2)},
		},
	}
}

func TestDescribe(t *testing.T) {
	lines := report.Describe(sampleResult())

	assert.Equal(t, []string{
		"product 101 - Widget: 3 units missing (invoice 35.00, order 50.00)",
		"product 102 not found in invoice",
		`product 103 - Clavo: no amount found on invoice line "103 Clavo"`,
		"product 104 - Arandela: 2 units in excess (invoice 12.00, order 10.00)",
	}, lines)
}

func TestDescribe_NoShortfall(t *testing.T) {
	res := &domain.ReconciliationResult{Items: []domain.ItemOutcome{
		{Code: 9, Name: "Regalo", Status: domain.ItemStatusDiscrepant, InvoiceTotal: decimal.NewNullDecimal(d("40")), ExpectedTotal: d("50")},
	}}
	assert.Equal(t, []string{"product 9 - Regalo: totals differ (invoice 40.00, order 50.00)"}, report.Describe(res))
}

func TestSummary(t *testing.T) {
	lines := report.Summary(sampleResult())
	require.Len(t, lines, 5)
	assert.Equal(t, "matched subtotal: 1035.00", lines[0])
	assert.Equal(t, "computed total: 1231.65", lines[2])
	assert.Equal(t, "4 products with discrepancies, decision required", lines[4])
}

func TestCSV(t *testing.T) {
	out, err := report.CSV(sampleResult())
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(out, report.BOM))

	records, err := csv.NewReader(bytes.NewReader(out[len(report.BOM):])).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 6)
	assert.Equal(t, "Code", records[0][0])
	assert.Equal(t, []string{"101", "Widget", "discrepant", "", "35.00", "50.00", "5.00", "3", "101 Widget 7 5 35"}, records[2])
	assert.Equal(t, []string{"102", "Tuerca", "not_found", "absent", "", "10.00", "1.00", "", ""}, records[3])
}
