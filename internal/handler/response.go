package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"stockrecon/internal/domain"
	"stockrecon/internal/ocr"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PagMeta holds pagination metadata.
type PagMeta struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondCreated sends a 201 success response.
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

// RespondPaginated sends a 200 success response with pagination metadata.
func RespondPaginated(c *gin.Context, data interface{}, meta PagMeta) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data, Meta: &meta})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code, msg string) {
	retryAfter, rateLimited := ocr.RetryAfter(err)
	switch {
	case rateLimited:
		return http.StatusServiceUnavailable, "OCR_RATE_LIMITED", "text extraction is rate limited; retry after " + strconv.Itoa(int(retryAfter.Seconds())) + "s"
	case errors.Is(err, domain.ErrOCRUnavailable):
		return http.StatusBadGateway, "OCR_UNAVAILABLE", "invoice text extraction failed"
	case errors.Is(err, domain.ErrOrderNotFound):
		return http.StatusNotFound, "ORDER_NOT_FOUND", "purchase order not found"
	case errors.Is(err, domain.ErrOrderTableUnreadable):
		return http.StatusUnprocessableEntity, "ORDER_UNREADABLE", "purchase order table is unreadable"
	case errors.Is(err, domain.ErrMissingSummaryTotal):
		return http.StatusUnprocessableEntity, "MISSING_SUMMARY_TOTAL", "purchase order summary has no TOTAL entry"
	case errors.Is(err, domain.ErrReceiptNotFound):
		return http.StatusNotFound, "RECEIPT_NOT_FOUND", "receipt not found"
	case errors.Is(err, domain.ErrInvalidDecision):
		return http.StatusBadRequest, "INVALID_DECISION", "invalid decision; allowed: 1 (accept), 2 (reject)"
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict, "INVALID_TRANSITION", "receipt is not awaiting a decision"
	case errors.Is(err, domain.ErrLedgerLocked):
		return http.StatusServiceUnavailable, "LEDGER_LOCKED", "inventory ledger is busy; retry shortly"
	case errors.Is(err, domain.ErrInvoiceMissing):
		return http.StatusBadRequest, "MISSING_INVOICE", "invoice image or text is required"
	case errors.Is(err, domain.ErrUnsupportedFileType):
		return http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE", "unsupported file type; allowed: jpg, png"
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds maximum allowed size"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// parsePagination reads offset/limit query params, defaulting to 0/20 and capping limit at 100.
func parsePagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return offset, limit
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, log logrus.FieldLogger, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		requestID, _ := c.Get("request_id")
		log.WithField("request_id", requestID).WithError(err).Error("request failed")
	}
	RespondError(c, status, code, msg)
}
