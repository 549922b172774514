package entity

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Juanitagalindoe/TiendaPoli/internal/domain/enum"
)

// Invoice is the header aggregating all lines of a sale.
// The ID comes from the store's sequence and grows monotonically.
type Invoice struct {
	ID          uint               `gorm:"primaryKey" json:"id"`
	CustomerID  *string            `gorm:"size:12;index" json:"customer_id"`
	IssuedAt    time.Time          `gorm:"not null;index" json:"-"`
	Status      enum.InvoiceStatus `gorm:"not null;default:0;index" json:"status"`
	Subtotal    int64              `gorm:"not null;default:0" json:"subtotal"`
	Discount    int64              `gorm:"not null;default:0" json:"discount"`
	Total       int64              `gorm:"not null;default:0" json:"total"`
	FinalizedAt *time.Time         `json:"finalized_at,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`

	// Relationships
	Customer *Customer     `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Lines    []InvoiceLine `gorm:"foreignKey:InvoiceID" json:"lines,omitempty"`
}

// MarshalJSON splits IssuedAt into the date and time fields clients expect
func (i Invoice) MarshalJSON() ([]byte, error) {
	type Alias Invoice
	return json.Marshal(&struct {
		Alias
		Date string `json:"date"`
		Time string `json:"time"`
	}{
		Alias: Alias(i),
		Date:  i.IssuedAt.Format("2006-01-02"),
		Time:  i.IssuedAt.Format("15:04:05"),
	})
}

// TableName returns the table name for the Invoice model
func (Invoice) TableName() string {
	return "invoices"
}

// IsEditable reports whether lines and customer may still change
func (i *Invoice) IsEditable() bool {
	return i.Status.Editable()
}

// ApplyTotals copies recomputed totals onto the header
func (i *Invoice) ApplyTotals(t Totals) {
	i.Subtotal = t.Subtotal
	i.Discount = t.Discount
	i.Total = t.Total
}

// LineKey identifies a line inside an invoice. It is comparable and can be
// used directly as a map key.
type LineKey struct {
	InvoiceID  uint `json:"invoice_id"`
	LineNumber int  `json:"line_number"`
}

func (k LineKey) String() string {
	return fmt.Sprintf("%d/%d", k.InvoiceID, k.LineNumber)
}

// InvoiceLine is one product entry on an invoice
type InvoiceLine struct {
	InvoiceID      uint      `gorm:"primaryKey;autoIncrement:false" json:"invoice_id"`
	LineNumber     int       `gorm:"primaryKey;autoIncrement:false" json:"line_number"`
	ProductID      uint      `gorm:"not null;index" json:"product_id"`
	Quantity       int       `gorm:"not null;check:quantity > 0" json:"quantity"`
	UnitPrice      int64     `gorm:"not null" json:"unit_price"`
	Subtotal       int64     `gorm:"not null" json:"subtotal"`
	DiscountAmount int64     `gorm:"not null;default:0" json:"discount_amount"`
	Total          int64     `gorm:"not null" json:"total"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Relationships
	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// TableName returns the table name for the InvoiceLine model
func (InvoiceLine) TableName() string {
	return "invoice_lines"
}

// Key returns the composite identity of the line
func (l *InvoiceLine) Key() LineKey {
	return LineKey{InvoiceID: l.InvoiceID, LineNumber: l.LineNumber}
}
