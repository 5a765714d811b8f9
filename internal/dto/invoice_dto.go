package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type InvoiceItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int64  `json:"quantity"   validate:"required,min=1"`
}

type CreateInvoiceRequest struct {
	UserID string               `json:"user_id" validate:"required,uuid"`
	Items  []InvoiceItemRequest `json:"items"   validate:"required,min=1,dive"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// InvoiceItemResponse exposes the live-priced subtotal: unit price comes
// from the product row at read time, not from a captured historical price.
type InvoiceItemResponse struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int64           `json:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type InvoiceResponse struct {
	ID        string                `json:"id"`
	UserID    string                `json:"user_id"`
	Username  string                `json:"username"`
	Active    bool                  `json:"active"`
	CreatedAt string                `json:"created_at"`
	Items     []InvoiceItemResponse `json:"items"`
	Total     decimal.Decimal       `json:"total"`
}
