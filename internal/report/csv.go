package report

import (
	"bytes"
	"encoding/csv"
	"io"
	"strconv"

	"stockrecon/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

var columns = []string{
	"Code",
	"Product",
	"Status",
	"Reason",
	"Invoice Total",
	"Order Total",
	"Unit Price",
	"Shortfall Units",
	"Invoice Line",
}

// Writer wraps csv.Writer for exporting item outcomes.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteResult writes one row per item outcome.
func (w *Writer) WriteResult(res *domain.ReconciliationResult) error {
	for i := range res.Items {
		if err := w.csv.Write(outcomeToRow(&res.Items[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

func outcomeToRow(it *domain.ItemOutcome) []string {
	row := []string{
		strconv.Itoa(it.Code),
		it.Name,
		string(it.Status),
		string(it.Reason),
		"",
		money(it.ExpectedTotal),
		money(it.UnitPrice),
		"",
		it.Line,
	}
	if it.InvoiceTotal.Valid {
		row[4] = money(it.InvoiceTotal.Decimal)
	}
	if it.ShortfallUnits != nil {
		row[7] = strconv.FormatInt(*it.ShortfallUnits, 10)
	}
	return row
}

// CSV renders res as a BOM-prefixed CSV document.
func CSV(res *domain.ReconciliationResult) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(BOM)
	w := NewWriter(&buf)
	if err := w.WriteHeader(); err != nil {
		return nil, err
	}
	if err := w.WriteResult(res); err != nil {
		return nil, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
