package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Juanitagalindoe/TiendaPoli/internal/domain/entity"
	"github.com/Juanitagalindoe/TiendaPoli/internal/domain/enum"
	"github.com/Juanitagalindoe/TiendaPoli/internal/domain/repository"
	"github.com/Juanitagalindoe/TiendaPoli/pkg/apperror"
	"github.com/Juanitagalindoe/TiendaPoli/pkg/clock"
	"github.com/Juanitagalindoe/TiendaPoli/pkg/pagination"
	"go.uber.org/zap"
)

// InvoiceAggregate manages invoice headers: their lifecycle and their totals
type InvoiceAggregate struct {
	invoiceRepo  repository.InvoiceRepository
	lineRepo     repository.InvoiceLineRepository
	customerRepo repository.CustomerRepository
	ledger       *ProductLedger
	tx           repository.Transactor
	clock        clock.Clock
	logger       *zap.Logger
}

// NewInvoiceAggregate creates a new invoice aggregate
func NewInvoiceAggregate(
	invoiceRepo repository.InvoiceRepository,
	lineRepo repository.InvoiceLineRepository,
	customerRepo repository.CustomerRepository,
	ledger *ProductLedger,
	tx repository.Transactor,
	clk clock.Clock,
	logger *zap.Logger,
) *InvoiceAggregate {
	return &InvoiceAggregate{
		invoiceRepo:  invoiceRepo,
		lineRepo:     lineRepo,
		customerRepo: customerRepo,
		ledger:       ledger,
		tx:           tx,
		clock:        clk,
		logger:       logger.Named("invoices"),
	}
}

// StartInvoice opens an empty DRAFT invoice stamped with the current time.
// The customer is optional here but required to finalize.
func (a *InvoiceAggregate) StartInvoice(ctx context.Context, customerID *string) (*entity.Invoice, error) {
	invoice := &entity.Invoice{
		IssuedAt: a.clock.Now(),
		Status:   enum.InvoiceStatusDraft,
	}

	err := a.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		// a retried attempt must not reuse the ID of a rolled back insert
		invoice.ID = 0
		if customerID != nil {
			if err := a.requireCustomer(ctx, *customerID); err != nil {
				return err
			}
			invoice.CustomerID = customerID
		}
		return apperror.Internal(a.invoiceRepo.Create(ctx, invoice))
	})
	if err != nil {
		return nil, err
	}

	a.logger.Info("invoice started", zap.Uint("invoice_id", invoice.ID))
	return invoice, nil
}

// AssignCustomer sets the customer of a draft invoice
func (a *InvoiceAggregate) AssignCustomer(ctx context.Context, invoiceID uint, customerID string) (*entity.Invoice, error) {
	var invoice *entity.Invoice
	err := a.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		if invoice, err = lockEditableInvoice(ctx, a.invoiceRepo, invoiceID); err != nil {
			return err
		}
		if err := a.requireCustomer(ctx, customerID); err != nil {
			return err
		}

		invoice.CustomerID = &customerID
		return apperror.Internal(a.invoiceRepo.Update(ctx, invoice))
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

// RecomputeTotals sets the header totals to the sum of the current lines.
// Running it twice without line changes yields the same header.
func (a *InvoiceAggregate) RecomputeTotals(ctx context.Context, invoiceID uint) (*entity.Invoice, error) {
	var invoice *entity.Invoice
	err := a.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		if invoice, err = lockInvoice(ctx, a.invoiceRepo, invoiceID); err != nil {
			return err
		}
		return a.recompute(ctx, invoice)
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

// Finalize freezes a draft. It needs a customer and at least one line, and
// recomputes totals before the status changes.
func (a *InvoiceAggregate) Finalize(ctx context.Context, invoiceID uint) (*entity.Invoice, error) {
	var invoice *entity.Invoice
	err := a.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		if invoice, err = lockEditableInvoice(ctx, a.invoiceRepo, invoiceID); err != nil {
			return err
		}
		if invoice.CustomerID == nil {
			return apperror.NewMissingCustomerError(invoiceID)
		}

		lines, err := a.lineRepo.ListByInvoice(ctx, invoiceID)
		if err != nil {
			return apperror.Internal(err)
		}
		if len(lines) == 0 {
			return apperror.NewEmptyInvoiceError(invoiceID)
		}

		invoice.ApplyTotals(entity.SumLines(lines))
		now := a.clock.Now()
		invoice.Status = enum.InvoiceStatusFinalized
		invoice.FinalizedAt = &now
		invoice.Lines = lines
		return apperror.Internal(a.invoiceRepo.Update(ctx, invoice))
	})
	if err != nil {
		return nil, err
	}

	a.logger.Info("invoice finalized", zap.Uint("invoice_id", invoiceID), zap.Int64("total", invoice.Total))
	return invoice, nil
}

// Cancel returns the stock of every line and removes the invoice with its
// lines. It returns the header as it was just before removal.
func (a *InvoiceAggregate) Cancel(ctx context.Context, invoiceID uint) (*entity.Invoice, error) {
	var invoice *entity.Invoice
	err := a.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		if invoice, err = lockInvoice(ctx, a.invoiceRepo, invoiceID); err != nil {
			return err
		}
		return a.cancel(ctx, invoice)
	})
	if err != nil {
		return nil, err
	}

	a.logCancelled(invoice)
	return invoice, nil
}

// CancelStaleDraft cancels the invoice only if it is still a draft issued
// before cutoff. It reports whether the invoice was cancelled.
func (a *InvoiceAggregate) CancelStaleDraft(ctx context.Context, invoiceID uint, cutoff time.Time) (*entity.Invoice, bool, error) {
	var invoice *entity.Invoice
	cancelled := false
	err := a.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		invoice, err = a.invoiceRepo.GetByIDForUpdate(ctx, invoiceID)
		if err != nil {
			return apperror.Internal(err)
		}
		// finalized, cancelled or touched since it was listed
		if invoice == nil || invoice.Status != enum.InvoiceStatusDraft || !invoice.IssuedAt.Before(cutoff) {
			return nil
		}
		if err := a.cancel(ctx, invoice); err != nil {
			return err
		}
		cancelled = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if cancelled {
		a.logCancelled(invoice)
	}
	return invoice, cancelled, nil
}

// GetInvoice retrieves an invoice with its customer and lines
func (a *InvoiceAggregate) GetInvoice(ctx context.Context, invoiceID uint) (*entity.Invoice, error) {
	invoice, err := a.invoiceRepo.GetWithLines(ctx, invoiceID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if invoice == nil {
		return nil, apperror.NewNotFoundError(fmt.Sprintf("Invoice %d", invoiceID))
	}
	return invoice, nil
}

// ListInvoices lists invoices, newest first
func (a *InvoiceAggregate) ListInvoices(ctx context.Context, params *repository.InvoiceFilterParams) (*pagination.PaginatedResult[entity.Invoice], error) {
	invoices, total, err := a.invoiceRepo.List(ctx, params)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return pagination.NewPaginatedResult(invoices, params.Pagination, total), nil
}

// StaleDrafts returns the drafts issued more than maxAge ago
func (a *InvoiceAggregate) StaleDrafts(ctx context.Context, maxAge time.Duration) ([]uint, time.Time, error) {
	cutoff := a.clock.Now().Add(-maxAge)
	ids, err := a.invoiceRepo.ListStaleDrafts(ctx, cutoff)
	if err != nil {
		return nil, cutoff, apperror.Internal(err)
	}
	return ids, cutoff, nil
}

func (a *InvoiceAggregate) recompute(ctx context.Context, invoice *entity.Invoice) error {
	lines, err := a.lineRepo.ListByInvoice(ctx, invoice.ID)
	if err != nil {
		return apperror.Internal(err)
	}

	invoice.ApplyTotals(entity.SumLines(lines))
	invoice.Lines = lines
	return apperror.Internal(a.invoiceRepo.Update(ctx, invoice))
}

func (a *InvoiceAggregate) cancel(ctx context.Context, invoice *entity.Invoice) error {
	lines, err := a.lineRepo.ListByInvoice(ctx, invoice.ID)
	if err != nil {
		return apperror.Internal(err)
	}

	for _, line := range lines {
		if _, err := a.ledger.Credit(ctx, line.ProductID, line.Quantity); err != nil {
			return err
		}
	}

	if err := a.lineRepo.DeleteByInvoice(ctx, invoice.ID); err != nil {
		return apperror.Internal(err)
	}
	if err := a.invoiceRepo.Delete(ctx, invoice.ID); err != nil {
		return apperror.Internal(err)
	}

	invoice.Lines = lines
	return nil
}

func (a *InvoiceAggregate) logCancelled(invoice *entity.Invoice) {
	a.logger.Info("invoice cancelled",
		zap.Uint("invoice_id", invoice.ID),
		zap.String("status", invoice.Status.String()),
		zap.Int("lines", len(invoice.Lines)),
	)
}

func (a *InvoiceAggregate) requireCustomer(ctx context.Context, customerID string) error {
	customer, err := a.customerRepo.GetByID(ctx, customerID)
	if err != nil {
		return apperror.Internal(err)
	}
	if customer == nil {
		return apperror.NewNotFoundError("Customer")
	}
	return nil
}
