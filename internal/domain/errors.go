package domain

import "errors"

var (
	ErrOCRUnavailable         = errors.New("invoice text extraction failed")
	ErrOrderNotFound          = errors.New("purchase order not found")
	ErrOrderTableUnreadable   = errors.New("purchase order table is unreadable")
	ErrMissingSummaryTotal    = errors.New("purchase order summary has no TOTAL entry")
	ErrLedgerUnreadable       = errors.New("inventory ledger is unreadable")
	ErrUnparseableInvoiceLine = errors.New("invoice line has no parseable total")
	ErrReceiptNotFound        = errors.New("receipt not found")
	ErrInvalidDecision        = errors.New("invalid decision; allowed: 1 (accept), 2 (reject)")
	ErrInvalidTransition      = errors.New("receipt is not awaiting a decision")
	ErrLedgerLocked           = errors.New("inventory ledger is locked by another writer")
	ErrUnsupportedFileType    = errors.New("unsupported file type")
	ErrFileTooLarge           = errors.New("file exceeds maximum allowed size")
	ErrInvoiceMissing         = errors.New("invoice image or text is required")
)
