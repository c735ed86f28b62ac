package order_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"stockrecon/internal/order"
)

func TestExtractOrderNumber(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
		ok   bool
	}{
		{"degree sign", "FACTURA ELECTRONICA\nOrden de compra N° 43564893\n", "43564893", true},
		{"letter o", "Ref no 12345", "12345", true},
		{"asterisk", "N*98765 fecha 01/02", "98765", true},
		{"bare N", "N 4321", "4321", true},
		{"ocr digit for degree", "N2 43564893", "43564893", true},
		{"too short", "N° 123", "", false},
		{"no marker", "TOTAL 43564893", "", false},
		{"inside word", "ORDEN 12345", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := order.ExtractOrderNumber(tt.text)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
