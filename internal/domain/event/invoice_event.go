package event

import (
	"context"
	"time"
)

// Type names an invoice lifecycle event
type Type string

const (
	InvoiceFinalized Type = "invoice.finalized"
	InvoiceCancelled Type = "invoice.cancelled"
)

// InvoiceEvent is published after an invoice lifecycle change has been committed
type InvoiceEvent struct {
	Type       Type      `json:"type"`
	InvoiceID  uint      `json:"invoice_id"`
	CustomerID *string   `json:"customer_id,omitempty"`
	Subtotal   int64     `json:"subtotal"`
	Discount   int64     `json:"discount"`
	Total      int64     `json:"total"`
	LineCount  int       `json:"line_count"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher delivers invoice events to downstream consumers
type Publisher interface {
	Publish(ctx context.Context, evt InvoiceEvent) error
}
