// Package report renders reconciliation results for people: message lines for the
// terminal and e-mail, and a CSV for the archive.
package report

import (
	"fmt"

	"github.com/shopspring/decimal"

	"stockrecon/internal/domain"
)

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// Describe returns one message per item that did not match.
func Describe(res *domain.ReconciliationResult) []string {
	var out []string
	for i := range res.Items {
		it := &res.Items[i]
		switch it.Status {
		case domain.ItemStatusDiscrepant:
			out = append(out, describeDiscrepancy(it))
		case domain.ItemStatusNotFound:
			if it.Reason == domain.NotFoundReasonNoNumeral {
				out = append(out, fmt.Sprintf("product %d - %s: no amount found on invoice line %q", it.Code, it.Name, it.Line))
			} else {
				out = append(out, fmt.Sprintf("product %d not found in invoice", it.Code))
			}
		}
	}
	return out
}

func describeDiscrepancy(it *domain.ItemOutcome) string {
	totals := fmt.Sprintf("(invoice %s, order %s)", money(it.InvoiceTotal.Decimal), money(it.ExpectedTotal))
	switch {
	case it.ShortfallUnits == nil:
		return fmt.Sprintf("product %d - %s: totals differ %s", it.Code, it.Name, totals)
	case *it.ShortfallUnits < 0:
		return fmt.Sprintf("product %d - %s: %d units in excess %s", it.Code, it.Name, -*it.ShortfallUnits, totals)
	default:
		return fmt.Sprintf("product %d - %s: %d units missing %s", it.Code, it.Name, *it.ShortfallUnits, totals)
	}
}

// Summary returns the totals block and the verdict.
func Summary(res *domain.ReconciliationResult) []string {
	lines := []string{
		"matched subtotal: " + money(res.MatchedSubtotal),
		"tax: " + money(res.ComputedTax),
		"computed total: " + money(res.ComputedTotal),
		"order total: " + money(res.ExpectedTotal),
	}
	switch res.OverallStatus {
	case domain.OverallStatusFullMatch:
		lines = append(lines, "invoice matches the purchase order")
	case domain.OverallStatusPendingDecision:
		lines = append(lines, fmt.Sprintf("%d products with discrepancies, decision required", res.ErrorCount))
	default:
		lines = append(lines, fmt.Sprintf("%d products with discrepancies, invoice cannot be validated", res.ErrorCount))
	}
	return lines
}
