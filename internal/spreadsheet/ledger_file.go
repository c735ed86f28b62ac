package spreadsheet

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"stockrecon/internal/domain"
	"stockrecon/internal/numparse"
)

// Ledger column headers, as written.
var ledgerHeader = []any{"CODE", "PRODUCT", "QUANTITY", "STATUS"}

// LedgerFile stores the inventory ledger in an .xlsx workbook. Rows whose code is not an
// integer are not inventory records, but they are carried over unchanged on every Save.
type LedgerFile struct {
	path  string
	sheet string
	log   logrus.FieldLogger
}

// NewLedgerFile creates a LedgerFile for path. Writes go to sheet; reads fall back to the
// first sheet when sheet does not exist.
func NewLedgerFile(path, sheet string, log logrus.FieldLogger) *LedgerFile {
	if sheet == "" {
		sheet = "Sheet1"
	}
	return &LedgerFile{path: path, sheet: sheet, log: log.WithField("component", "ledger_file")}
}

// ledgerSheet is a parsed workbook: records plus the rows kept verbatim, already projected
// onto the CODE/PRODUCT/QUANTITY/STATUS layout.
type ledgerSheet struct {
	records []domain.InventoryRecord
	kept    [][]string
}

func (l *LedgerFile) read() (*ledgerSheet, error) {
	if _, err := os.Stat(l.path); errors.Is(err, fs.ErrNotExist) {
		return &ledgerSheet{}, nil
	}

	f, err := excelize.OpenFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrLedgerUnreadable, err)
	}
	defer f.Close()

	sheet := l.sheet
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrLedgerUnreadable, err)
	}
	if len(rows) == 0 {
		return &ledgerSheet{}, nil
	}

	h := newHeader(rows[0])
	codeCol, okCode := h.index("CODE", "CODIGO")
	qtyCol, okQty := h.index("QUANTITY", "CANTIDAD")
	if !okCode || !okQty {
		return nil, fmt.Errorf("%w: header %v lacks code or quantity column", domain.ErrLedgerUnreadable, rows[0])
	}
	nameCol, _ := h.index("PRODUCT", "PRODUCTO")
	statusCol, _ := h.index("STATUS", "ESTADO")

	out := &ledgerSheet{}
	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		code, err := strconv.Atoi(cellVal(row, codeCol))
		if err != nil {
			out.kept = append(out.kept, []string{
				cellVal(row, codeCol), cellVal(row, nameCol), cellVal(row, qtyCol), cellVal(row, statusCol),
			})
			continue
		}
		rec := domain.InventoryRecord{
			Code:   code,
			Name:   cellVal(row, nameCol),
			Status: domain.StockStatus(cellVal(row, statusCol)),
		}
		if q, err := numparse.ParseAmount(cellVal(row, qtyCol)); err == nil {
			rec.Quantity = q
		}
		out.records = append(out.records, rec)
	}
	return out, nil
}

// Load reads every record. A missing workbook is an empty ledger.
func (l *LedgerFile) Load(_ context.Context) ([]domain.InventoryRecord, error) {
	ls, err := l.read()
	if err != nil {
		return nil, err
	}
	for _, row := range ls.kept {
		l.log.WithField("code", row[0]).WithField("product", row[1]).
			Warn("ledger row has no numeric code; kept as is")
	}
	return ls.records, nil
}

// Save rewrites the whole workbook with records followed by the rows Load could not parse.
// The new file is written next to the target and renamed over it.
func (l *LedgerFile) Save(_ context.Context, records []domain.InventoryRecord) error {
	var kept [][]string
	if ls, err := l.read(); err == nil {
		kept = ls.kept
	}

	f := excelize.NewFile()
	defer f.Close()

	if l.sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", l.sheet); err != nil {
			return fmt.Errorf("naming sheet: %w", err)
		}
	}
	if err := f.SetSheetRow(l.sheet, "A1", &ledgerHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, r := range records {
		cells := []string{strconv.Itoa(r.Code), r.Name, r.Quantity.String(), string(r.Status)}
		if err := l.writeRow(f, i+2, cells); err != nil {
			return fmt.Errorf("writing product %d: %w", r.Code, err)
		}
	}
	for i, cells := range kept {
		if err := l.writeRow(f, len(records)+i+2, cells); err != nil {
			return fmt.Errorf("writing kept row %q: %w", cells[0], err)
		}
	}

	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating ledger dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".ledger-*.xlsx")
	if err != nil {
		return fmt.Errorf("creating temp ledger: %w", err)
	}
	tmpName := tmp.Name()
	_ = tmp.Close()

	if err := f.SaveAs(tmpName); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("writing temp ledger: %w", err)
	}
	if err := os.Rename(tmpName, l.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replacing ledger: %w", err)
	}
	return nil
}

// writeRow stores each cell as written: numeric text becomes an exact numeric cell, so
// quantities never pass through float64.
func (l *LedgerFile) writeRow(f *excelize.File, row int, cells []string) error {
	for col, v := range cells {
		if v == "" {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellDefault(l.sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}
