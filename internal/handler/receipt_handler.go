package handler

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"stockrecon/internal/domain"
	"stockrecon/internal/report"
	"stockrecon/internal/service"
)

// ReceiptHandler handles invoice receiving endpoints.
type ReceiptHandler struct {
	svc      service.ReceivingService
	maxBytes int64
	log      logrus.FieldLogger
}

// NewReceiptHandler creates a new ReceiptHandler. maxUploadMB caps invoice image size.
func NewReceiptHandler(svc service.ReceivingService, maxUploadMB int64, log logrus.FieldLogger) *ReceiptHandler {
	if maxUploadMB <= 0 {
		maxUploadMB = 20
	}
	return &ReceiptHandler{svc: svc, maxBytes: maxUploadMB * 1024 * 1024, log: log}
}

// receiptResponse adds human readable discrepancy messages to a receipt.
type receiptResponse struct {
	*domain.Receipt
	Messages []string `json:"messages"`
}

func newReceiptResponse(r *domain.Receipt) receiptResponse {
	msgs := []string{}
	if r.Result != nil {
		msgs = append(msgs, report.Describe(r.Result)...)
	}
	return receiptResponse{Receipt: r, Messages: msgs}
}

// Start handles POST /api/v1/receipts
//
// Accepts multipart/form-data with an "invoice" image and optional "order_id", or JSON
// {"order_id": "...", "text": "..."} with already extracted invoice text.
// @Summary Receive an invoice
// @Description Reads the invoice, reconciles it against its purchase order and applies it to the inventory when it fully matches. Partial matches wait for a decision.
// @Tags receipts
// @Accept multipart/form-data
// @Accept json
// @Produce json
// @Param invoice formData file false "Invoice image (JPG or PNG)"
// @Param order_id formData string false "Purchase order number; read from the invoice when empty"
// @Param text formData string false "Invoice text, used instead of an image"
// @Param body body StartReceiptRequest false "Invoice text as JSON"
// @Success 201 {object} Response{data=receiptResponse} "Receipt reconciled"
// @Failure 400 {object} ErrorResponseBody "Missing invoice or unsupported type"
// @Failure 404 {object} ErrorResponseBody "Purchase order not found"
// @Failure 413 {object} ErrorResponseBody "File too large"
// @Failure 422 {object} ErrorResponseBody "Purchase order unreadable"
// @Failure 502 {object} ErrorResponseBody "Text extraction failed"
// @Failure 503 {object} ErrorResponseBody "OCR rate limited or ledger busy"
// @Router /receipts [post]
func (h *ReceiptHandler) Start(c *gin.Context) {
	var input service.StartInput

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		input.OrderID = c.PostForm("order_id")
		input.Text = c.PostForm("text")
		file, header, err := c.Request.FormFile("invoice")
		if err == nil {
			defer func() { _ = file.Close() }()
			if header.Size > h.maxBytes {
				HandleError(c, h.log, domain.ErrFileTooLarge)
				return
			}
			data, err := io.ReadAll(io.LimitReader(file, h.maxBytes+1))
			if err != nil {
				RespondError(c, http.StatusBadRequest, "INVALID_FILE", "could not read invoice file")
				return
			}
			if int64(len(data)) > h.maxBytes {
				HandleError(c, h.log, domain.ErrFileTooLarge)
				return
			}
			input.Image = data
		}
	} else {
		var req StartReceiptRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
			return
		}
		input.OrderID = req.OrderID
		input.Text = req.Text
	}

	receipt, err := h.svc.Start(c.Request.Context(), input)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}
	RespondCreated(c, newReceiptResponse(receipt))
}

// List handles GET /api/v1/receipts
// @Summary List receipts
// @Description Lists receipts, newest first
// @Tags receipts
// @Produce json
// @Param offset query int false "Pagination offset" default(0)
// @Param limit query int false "Pagination limit (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.Receipt,meta=PagMeta} "Receipts"
// @Failure 500 {object} ErrorResponseBody "Internal error"
// @Router /receipts [get]
func (h *ReceiptHandler) List(c *gin.Context) {
	offset, limit := parsePagination(c)
	receipts, total, err := h.svc.List(c.Request.Context(), offset, limit)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}
	RespondPaginated(c, receipts, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/receipts/:id
// @Summary Get a receipt
// @Description Returns a receipt with its reconciliation result and discrepancy messages
// @Tags receipts
// @Produce json
// @Param id path string true "Receipt ID (UUID)"
// @Success 200 {object} Response{data=receiptResponse} "Receipt"
// @Failure 400 {object} ErrorResponseBody "Invalid receipt ID"
// @Failure 404 {object} ErrorResponseBody "Receipt not found"
// @Router /receipts/{id} [get]
func (h *ReceiptHandler) GetByID(c *gin.Context) {
	id, ok := receiptID(c)
	if !ok {
		return
	}
	receipt, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}
	RespondOK(c, newReceiptResponse(receipt))
}

// Decide handles POST /api/v1/receipts/:id/decision with {"decision": "1"|"2"}.
// @Summary Decide a partial receipt
// @Description Accepts (1) or rejects (2) a receipt awaiting a decision. Accepting applies the received quantities to the inventory.
// @Tags receipts
// @Accept json
// @Produce json
// @Param id path string true "Receipt ID (UUID)"
// @Param body body DecisionRequest true "Decision"
// @Success 200 {object} Response{data=receiptResponse} "Receipt decided"
// @Failure 400 {object} ErrorResponseBody "Invalid decision or receipt ID"
// @Failure 404 {object} ErrorResponseBody "Receipt not found"
// @Failure 409 {object} ErrorResponseBody "Receipt is not awaiting a decision"
// @Failure 503 {object} ErrorResponseBody "Ledger busy"
// @Router /receipts/{id}/decision [post]
func (h *ReceiptHandler) Decide(c *gin.Context) {
	id, ok := receiptID(c)
	if !ok {
		return
	}

	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	decision, err := domain.ParseDecision(req.Decision)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	receipt, err := h.svc.Decide(c.Request.Context(), id, decision)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}
	RespondOK(c, newReceiptResponse(receipt))
}

func receiptID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid receipt ID")
		return uuid.Nil, false
	}
	return id, true
}
