package matcher_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"stockrecon/internal/matcher"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var invoice = []string{
	"DISTRIBUIDORA SUR LTDA  RUT 76.123.456-7",
	"Factura N° 43564893",
	"101 Tornillo hex 3/8 20 250 5.000",
	"202 Tuerca 3/8 10 90 900",
	"303 Arandela sin precio",
	"TOTAL 7.021",
}

func TestMaxNumeral_FindProductLine(t *testing.T) {
	m := matcher.NewMaxNumeral()

	t.Run("picks largest numeral as total", func(t *testing.T) {
		got := m.FindProductLine("101", invoice)
		assert.True(t, got.Found)
		assert.True(t, got.HasTotal)
		assert.Equal(t, 2, got.LineIndex)
		assert.True(t, got.Total.Equal(dec("5000")), got.Total.String())
	})

	t.Run("not found", func(t *testing.T) {
		got := m.FindProductLine("999", invoice)
		assert.False(t, got.Found)
		assert.False(t, got.HasTotal)
		assert.Equal(t, -1, got.LineIndex)
	})

	t.Run("found without candidate total", func(t *testing.T) {
		got := m.FindProductLine("303", invoice)
		assert.True(t, got.Found)
		assert.False(t, got.HasTotal)
		assert.Equal(t, "303 Arandela sin precio", got.Line)
	})

	t.Run("first matching line wins", func(t *testing.T) {
		lines := []string{"ref 4410 100", "4410 Perno 2 50 999"}
		got := m.FindProductLine("4410", lines)
		assert.Equal(t, 0, got.LineIndex)
		assert.True(t, got.Total.Equal(dec("100")))
	})

	t.Run("code-only line has no total", func(t *testing.T) {
		got := m.FindProductLine("55", []string{"item 55"})
		assert.True(t, got.Found)
		assert.False(t, got.HasTotal)
	})
}

func TestMaxNumeral_DiscardsOnlyExactCodeNumeral(t *testing.T) {
	m := matcher.NewMaxNumeral()

	// "1234" contains the code "123" but is a different numeral and must survive.
	got := m.FindProductLine("123", []string{"123 Cable 1234 2 50"})
	assert.True(t, got.HasTotal)
	assert.True(t, got.Total.Equal(dec("1234")))

	// The code itself is the largest numeral and must not be read as the price.
	got = m.FindProductLine("9000", []string{"9000 Filtro 2 15,50 31"})
	assert.True(t, got.Total.Equal(dec("31")), got.Total.String())
}

func TestStrategyFunc(t *testing.T) {
	var s matcher.Strategy = matcher.StrategyFunc(func(code string, _ []string) matcher.Match {
		return matcher.Match{Found: true, HasTotal: true, Total: dec("7"), Line: code}
	})
	got := s.FindProductLine("x", nil)
	assert.Equal(t, "x", got.Line)
	assert.True(t, got.Total.Equal(dec("7")))
}
