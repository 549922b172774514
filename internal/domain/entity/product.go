package entity

import (
	"time"
)

// Product is a catalog item with an on-hand stock counter.
// Stock is only changed through the ledger's debit and credit operations.
type Product struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	UnitPrice   int64     `gorm:"not null;check:unit_price >= 0" json:"unit_price"` // minor currency units
	Stock       int       `gorm:"not null;default:0;check:stock >= 0" json:"stock"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName returns the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// HasStock reports whether qty units can be debited
func (p *Product) HasStock(qty int) bool {
	return p.Stock >= qty
}
