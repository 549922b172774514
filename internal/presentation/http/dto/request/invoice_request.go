package request

import "github.com/shopspring/decimal"

// CreateInvoiceRequest opens a draft, optionally for a known customer
type CreateInvoiceRequest struct {
	CustomerID *string `json:"customer_id" binding:"omitempty,numeric,min=6,max=12"`
}

// AssignCustomerRequest sets the customer of a draft
type AssignCustomerRequest struct {
	CustomerID string `json:"customer_id" binding:"required,numeric,min=6,max=12"`
}

// LineRequest is the desired state of an invoice line. DiscountPercent
// accepts a JSON number or string and defaults to zero.
type LineRequest struct {
	ProductID       uint             `json:"product_id" binding:"required"`
	Quantity        int              `json:"quantity"`
	DiscountPercent *decimal.Decimal `json:"discount_percent"`
}

// InvoiceFilterRequest represents invoice filter parameters
type InvoiceFilterRequest struct {
	Status        string `form:"status"`
	CustomerID    string `form:"customer_id"`
	IncludeDrafts bool   `form:"include_drafts"`
	Page          int    `form:"page"`
	PerPage       int    `form:"per_page"`
}
