// Package matcher locates the invoice line for a product code and isolates its total.
package matcher

import (
	"strings"

	"github.com/shopspring/decimal"

	"stockrecon/internal/numparse"
)

// Match is the result of looking up a product code in invoice text.
type Match struct {
	Found     bool
	LineIndex int
	Line      string
	// HasTotal is false when the line was found but held no numeral besides the code.
	HasTotal bool
	Total    decimal.Decimal
}

// Strategy finds the invoice line for a product code.
type Strategy interface {
	FindProductLine(code string, lines []string) Match
}

// StrategyFunc adapts a plain function to Strategy.
type StrategyFunc func(code string, lines []string) Match

// FindProductLine calls f.
func (f StrategyFunc) FindProductLine(code string, lines []string) Match {
	return f(code, lines)
}

// MaxNumeral is the default strategy: the first line containing the code wins and the
// largest numeral on it, other than the code itself, is the line total.
type MaxNumeral struct{}

// NewMaxNumeral returns the default line matching strategy.
func NewMaxNumeral() MaxNumeral {
	return MaxNumeral{}
}

// FindProductLine implements Strategy.
func (MaxNumeral) FindProductLine(code string, lines []string) Match {
	for i, line := range lines {
		if !strings.Contains(line, code) {
			continue
		}
		m := Match{Found: true, LineIndex: i, Line: line}
		for _, n := range numparse.ExtractNumbers(line) {
			if n.Raw == code {
				continue
			}
			if !m.HasTotal || n.Value.GreaterThan(m.Total) {
				m.Total = n.Value
				m.HasTotal = true
			}
		}
		return m
	}
	return Match{LineIndex: -1}
}
