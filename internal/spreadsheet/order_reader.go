package spreadsheet

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"stockrecon/internal/domain"
	"stockrecon/internal/numparse"
)

// Purchase-order column headers.
const (
	ColCode      = "CODIGO"
	ColProduct   = "PRODUCTO"
	ColQuantity  = "CANTIDAD"
	ColUnitPrice = "PRECIO UNIDAD"
	ColTotal     = "TOTAL"
)

// OrderReader reads purchase orders from the first sheet of an .xlsx workbook.
//
// The header row is the first row with a CODIGO cell. Rows below it whose CODIGO is all
// digits are items; every other non-blank row is a summary entry whose label is its first
// non-empty cell and whose value is the first parseable amount after it.
type OrderReader struct{}

// NewOrderReader creates an OrderReader.
func NewOrderReader() *OrderReader {
	return &OrderReader{}
}

// ReadOrder opens path and parses it. The order ID is the file name without extension.
func (r *OrderReader) ReadOrder(_ context.Context, path string) (*domain.PurchaseOrder, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w: %v", path, domain.ErrOrderTableUnreadable, err)
	}
	defer f.Close()

	order, err := parseOrder(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	order.ID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return order, nil
}

func parseOrder(f *excelize.File) (*domain.PurchaseOrder, error) {
	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrOrderTableUnreadable, err)
	}

	start := -1
	var h header
	for i, row := range rows {
		h = newHeader(row)
		if _, ok := h[ColCode]; ok {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return nil, fmt.Errorf("%w: no %s header", domain.ErrOrderTableUnreadable, ColCode)
	}

	cols := make(map[string]int, 5)
	for _, name := range []string{ColCode, ColProduct, ColQuantity, ColUnitPrice, ColTotal} {
		i, ok := h.index(name)
		if !ok {
			return nil, fmt.Errorf("%w: missing column %s", domain.ErrOrderTableUnreadable, name)
		}
		cols[name] = i
	}

	order := &domain.PurchaseOrder{Summary: domain.PurchaseOrderSummary{}}
	for i := start; i < len(rows); i++ {
		row := rows[i]
		if isBlank(row) {
			continue
		}

		code := cellVal(row, cols[ColCode])
		if !isNumeric(code) {
			if label, value, ok := summaryEntry(row); ok {
				order.Summary[label] = value
			}
			continue
		}

		item, err := parseItem(row, code, cols)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		order.Items = append(order.Items, item)
	}
	return order, nil
}

func parseItem(row []string, code string, cols map[string]int) (domain.PurchaseOrderItem, error) {
	n, err := strconv.Atoi(code)
	if err != nil {
		return domain.PurchaseOrderItem{}, fmt.Errorf("%w: code %q: %v", domain.ErrOrderTableUnreadable, code, err)
	}
	item := domain.PurchaseOrderItem{Code: n, Name: cellVal(row, cols[ColProduct])}

	amounts := []struct {
		col string
		dst *decimal.Decimal
	}{
		{ColQuantity, &item.Quantity},
		{ColUnitPrice, &item.UnitPrice},
		{ColTotal, &item.LineTotal},
	}
	for _, a := range amounts {
		v, err := numparse.ParseAmount(cellVal(row, cols[a.col]))
		if err != nil {
			return domain.PurchaseOrderItem{}, fmt.Errorf("%w: %s of product %d: %v", domain.ErrOrderTableUnreadable, a.col, n, err)
		}
		*a.dst = v
	}
	return item, nil
}

func summaryEntry(row []string) (string, decimal.Decimal, bool) {
	label := -1
	for i := range row {
		if cellVal(row, i) != "" {
			label = i
			break
		}
	}
	if label < 0 {
		return "", decimal.Zero, false
	}
	for i := label + 1; i < len(row); i++ {
		if v, err := numparse.ParseAmount(cellVal(row, i)); err == nil {
			return normalise(cellVal(row, label)), v, true
		}
	}
	return "", decimal.Zero, false
}
