package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stockrecon/internal/port"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	ledger port.InventoryLedger
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(ledger port.InventoryLedger) *HealthHandler {
	return &HealthHandler{ledger: ledger}
}

// Liveness handles GET /healthz
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles GET /readyz
func (h *HealthHandler) Readiness(c *gin.Context) {
	if _, err := h.ledger.Records(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "inventory ledger not readable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
