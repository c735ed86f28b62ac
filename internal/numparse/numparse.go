// Package numparse extracts numerals from noisy OCR text lines.
//
// Invoices are read with dot as the thousands separator and comma as the decimal
// point, so "1.234,56" is 1234.56 and "1.500" is 1500.
package numparse

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// numeral matches a digit group optionally followed by further groups joined by '.' or ','.
var numeral = regexp.MustCompile(`\d+(?:[.,]\d+)*`)

// Number is a numeral found in a line: its text as written and its normalised value.
type Number struct {
	Raw   string
	Value decimal.Decimal
}

// ExtractNumbers returns every numeral in line, in the order found.
// A line without numerals yields an empty slice.
func ExtractNumbers(line string) []Number {
	matches := numeral.FindAllString(line, -1)
	out := make([]Number, 0, len(matches))
	for _, raw := range matches {
		v, err := decimal.NewFromString(Normalize(raw))
		if err != nil {
			continue
		}
		out = append(out, Number{Raw: raw, Value: v})
	}
	return out
}

// Normalize rewrites a numeral into plain decimal notation: every '.' is dropped,
// the last ',' becomes the decimal point and earlier commas are dropped.
func Normalize(raw string) string {
	s := strings.ReplaceAll(raw, ".", "")
	idx := strings.LastIndex(s, ",")
	if idx < 0 {
		return s
	}
	return strings.ReplaceAll(s[:idx], ",", "") + "." + s[idx+1:]
}

// ParseAmount parses a spreadsheet cell. Plain machine notation ("1190.4") is taken
// as is; anything else goes through the invoice normalisation.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}
	if v, err := decimal.NewFromString(s); err == nil {
		return v, nil
	}
	raw := numeral.FindString(s)
	if raw == "" {
		return decimal.Zero, fmt.Errorf("no numeral in %q", s)
	}
	v, err := decimal.NewFromString(Normalize(raw))
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing %q: %w", s, err)
	}
	if strings.HasPrefix(s, "-") {
		v = v.Neg()
	}
	return v, nil
}
