package handler

// Swagger type definitions for API documentation.
// These types are used by swag to generate OpenAPI documentation.

// Response wraps a successful response.
type Response struct {
	Success bool        `json:"success" example:"true"`
	Data    interface{} `json:"data,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// ErrorResponseBody wraps an error response.
type ErrorResponseBody struct {
	Success bool      `json:"success" example:"false"`
	Error   *APIError `json:"error"`
}

// StartReceiptRequest is the JSON form of POST /receipts for invoices already in text.
type StartReceiptRequest struct {
	OrderID string `json:"order_id" example:"43564893"`
	Text    string `json:"text" example:"FACTURA\nOrden N° 43564893\n101 Widget 10 5 50"`
}

// DecisionRequest is the body of POST /receipts/{id}/decision.
type DecisionRequest struct {
	Decision string `json:"decision" binding:"required" example:"1" enums:"1,2"`
}
