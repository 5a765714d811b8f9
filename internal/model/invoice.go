package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Invoice owns its line items: they are created and deleted with it and
// never outlive it. The owning user is referenced, not owned.
type Invoice struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null"`
	Active    bool      `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time

	User  *User         `gorm:"foreignKey:UserID"`
	Items []InvoiceItem `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
}

// Total is recomputed from the CURRENT product price on every read —
// line items store quantity only, prices are read live from the product
// relation. Items whose product is not loaded contribute zero.
func (inv *Invoice) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range inv.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// InvoiceItem links an invoice to a product with a quantity.
// Composite primary key: one row per (invoice, product) pair.
type InvoiceItem struct {
	InvoiceID uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductID uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	Quantity  int64     `gorm:"not null"`

	Product *Product `gorm:"foreignKey:ProductID"`
}

// Subtotal is quantity times the product's live price.
func (it *InvoiceItem) Subtotal() decimal.Decimal {
	if it.Product == nil {
		return decimal.Zero
	}
	return it.Product.Price.Mul(decimal.NewFromInt(it.Quantity))
}
