package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is the sellable catalog entry. Stock never goes below zero:
// a deduction larger than the available count is rejected, not clamped.
type Product struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string          `gorm:"index;not null"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Stock     int64           `gorm:"not null;default:0"`
	Active    bool            `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasStock reports whether amount units can be deducted.
func (p *Product) HasStock(amount int64) bool {
	return p.Stock >= amount
}
