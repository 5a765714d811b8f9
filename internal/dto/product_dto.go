package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateProductRequest struct {
	Name  string          `json:"name"  validate:"required,min=1,max=200"`
	Price decimal.Decimal `json:"price" validate:"min=0"`
	Stock int64           `json:"stock" validate:"min=0"`
}

type UpdateProductRequest struct {
	Name  *string          `json:"name"  validate:"omitempty,min=1,max=200"`
	Price *decimal.Decimal `json:"price" validate:"omitempty,min=0"`
	Stock *int64           `json:"stock" validate:"omitempty,min=0"`
}

type ProductSearchFilter struct {
	Name     string `form:"name"`
	MinPrice string `form:"min_price"`
	MaxPrice string `form:"max_price"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductResponse struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Price  decimal.Decimal `json:"price"`
	Stock  int64           `json:"stock"`
	Active bool            `json:"active"`
}
