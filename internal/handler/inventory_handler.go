package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"stockrecon/internal/service"
)

// InventoryHandler exposes the inventory ledger.
type InventoryHandler struct {
	svc service.ReceivingService
	log logrus.FieldLogger
}

// NewInventoryHandler creates a new InventoryHandler.
func NewInventoryHandler(svc service.ReceivingService, log logrus.FieldLogger) *InventoryHandler {
	return &InventoryHandler{svc: svc, log: log}
}

// List handles GET /api/v1/inventory
// @Summary List inventory
// @Description Returns every ledger record with its stock status
// @Tags inventory
// @Produce json
// @Success 200 {object} Response{data=[]domain.InventoryRecord} "Inventory records"
// @Failure 500 {object} ErrorResponseBody "Ledger unreadable"
// @Router /inventory [get]
func (h *InventoryHandler) List(c *gin.Context) {
	records, err := h.svc.Inventory(c.Request.Context())
	if err != nil {
		HandleError(c, h.log, err)
		return
	}
	RespondOK(c, records)
}
