package repository

import (
	"context"
	"time"

	"github.com/Juanitagalindoe/TiendaPoli/internal/domain/entity"
	"github.com/Juanitagalindoe/TiendaPoli/internal/domain/enum"
	"github.com/Juanitagalindoe/TiendaPoli/pkg/pagination"
)

// InvoiceRepository defines the interface for invoice header operations.
// Lookups return (nil, nil) when the invoice does not exist.
type InvoiceRepository interface {
	// Create inserts the header and fills in the store-generated ID
	Create(ctx context.Context, invoice *entity.Invoice) error
	GetByID(ctx context.Context, id uint) (*entity.Invoice, error)
	GetByIDForUpdate(ctx context.Context, id uint) (*entity.Invoice, error)
	// GetWithLines loads the header with its customer and lines ordered by line number
	GetWithLines(ctx context.Context, id uint) (*entity.Invoice, error)
	// Update writes the header columns only, never its associations
	Update(ctx context.Context, invoice *entity.Invoice) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, params *InvoiceFilterParams) ([]entity.Invoice, int64, error)
	// IDsByCustomer returns the invoices issued to the customer, ascending
	IDsByCustomer(ctx context.Context, customerID string) ([]uint, error)
	// ListStaleDrafts returns the IDs of drafts issued before the cutoff, oldest first
	ListStaleDrafts(ctx context.Context, before time.Time) ([]uint, error)
}

// InvoiceFilterParams contains filtering parameters for invoice queries
type InvoiceFilterParams struct {
	Pagination    *pagination.PaginationParams
	Status        *enum.InvoiceStatus
	CustomerID    *string
	IncludeDrafts bool
}

// InvoiceLineRepository defines the interface for invoice line operations
type InvoiceLineRepository interface {
	Get(ctx context.Context, key entity.LineKey) (*entity.InvoiceLine, error)
	Create(ctx context.Context, line *entity.InvoiceLine) error
	Update(ctx context.Context, line *entity.InvoiceLine) error
	// Delete removes one line and reports whether a row was actually deleted
	Delete(ctx context.Context, key entity.LineKey) (bool, error)
	DeleteByInvoice(ctx context.Context, invoiceID uint) error
	ListByInvoice(ctx context.Context, invoiceID uint) ([]entity.InvoiceLine, error)
	// InvoiceIDsByProduct returns the distinct invoices with a line on the product, ascending
	InvoiceIDsByProduct(ctx context.Context, productID uint) ([]uint, error)
}
