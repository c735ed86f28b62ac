package router

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"stockrecon/internal/handler"
	"stockrecon/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	log logrus.FieldLogger,
	allowedOrigins []string,
	receiptH *handler.ReceiptHandler,
	inventoryH *handler.InventoryHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.CORS(allowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	receipts := v1.Group("/receipts")
	receipts.POST("", receiptH.Start)
	receipts.GET("", receiptH.List)
	receipts.GET("/:id", receiptH.GetByID)
	receipts.POST("/:id/decision", receiptH.Decide)

	v1.GET("/inventory", inventoryH.List)

	return r
}
