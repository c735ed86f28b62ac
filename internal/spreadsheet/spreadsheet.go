// Package spreadsheet reads purchase-order workbooks and reads/writes the inventory ledger
// workbook.
package spreadsheet

import (
	"strings"
)

// header maps normalised header names to column indexes.
type header map[string]int

func newHeader(row []string) header {
	h := make(header, len(row))
	for i, c := range row {
		name := normalise(c)
		if name == "" {
			continue
		}
		if _, dup := h[name]; !dup {
			h[name] = i
		}
	}
	return h
}

// index returns the column of the first alias present.
func (h header) index(aliases ...string) (int, bool) {
	for _, a := range aliases {
		if i, ok := h[a]; ok {
			return i, true
		}
	}
	return -1, false
}

func normalise(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), " "))
}

func cellVal(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
