package domain

import (
	"fmt"
	"strings"
)

// FileType represents the invoice image types accepted for OCR.
type FileType string

const (
	FileTypeJPG FileType = "jpg"
	FileTypePNG FileType = "png"
)

// AllowedContentTypes maps MIME content types to FileType.
var AllowedContentTypes = map[string]FileType{
	"image/jpeg": FileTypeJPG,
	"image/png":  FileTypePNG,
}

// AllowedExtensions maps file extensions (without dot) to FileType.
var AllowedExtensions = map[string]FileType{
	"jpg":  FileTypeJPG,
	"jpeg": FileTypeJPG,
	"png":  FileTypePNG,
}

// ItemStatus is the per-line outcome of a reconciliation pass.
type ItemStatus string

const (
	ItemStatusMatched    ItemStatus = "matched"
	ItemStatusDiscrepant ItemStatus = "discrepant"
	ItemStatusNotFound   ItemStatus = "not_found"
)

// NotFoundReason distinguishes an absent product row from one without a usable numeral.
type NotFoundReason string

const (
	NotFoundReasonNone      NotFoundReason = ""
	NotFoundReasonAbsent    NotFoundReason = "absent"
	NotFoundReasonNoNumeral NotFoundReason = "no_numeral"
)

// OverallStatus classifies a whole reconciliation pass.
type OverallStatus string

const (
	OverallStatusFullMatch       OverallStatus = "full_match"
	OverallStatusPendingDecision OverallStatus = "partial_match_pending_decision"
	OverallStatusUnvalidatable   OverallStatus = "unvalidatable"
)

// ReceiptState tracks a receipt through the decision state machine.
type ReceiptState string

const (
	ReceiptStateApplied         ReceiptState = "applied"
	ReceiptStatePendingDecision ReceiptState = "pending_decision"
	ReceiptStateAccepted        ReceiptState = "accepted"
	ReceiptStateRejected        ReceiptState = "rejected"
	ReceiptStateUnvalidatable   ReceiptState = "unvalidatable"
)

// Decision is the operator's answer to a pending receipt.
type Decision string

const (
	DecisionAccept Decision = "accept"
	DecisionReject Decision = "reject"
)

// ParseDecision accepts the operator codes "1"/"2" as well as "accept"/"reject".
func ParseDecision(s string) (Decision, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "accept":
		return DecisionAccept, nil
	case "2", "reject":
		return DecisionReject, nil
	default:
		return "", fmt.Errorf("%q: %w", s, ErrInvalidDecision)
	}
}

// StockStatus is the availability label derived from a ledger quantity.
type StockStatus string

const (
	StockStatusAvailable   StockStatus = "Available"
	StockStatusMedium      StockStatus = "Medium"
	StockStatusLow         StockStatus = "Low"
	StockStatusCritical    StockStatus = "Critical"
	StockStatusUnavailable StockStatus = "Unavailable"
)
