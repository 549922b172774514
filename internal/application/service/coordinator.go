package service

import (
	"context"
	"time"

	"github.com/Juanitagalindoe/TiendaPoli/internal/domain/entity"
	"github.com/Juanitagalindoe/TiendaPoli/internal/domain/event"
	"github.com/Juanitagalindoe/TiendaPoli/internal/domain/repository"
	infraRepo "github.com/Juanitagalindoe/TiendaPoli/internal/infrastructure/repository"
	"github.com/Juanitagalindoe/TiendaPoli/pkg/apperror"
	"github.com/Juanitagalindoe/TiendaPoli/pkg/clock"
	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/Juanitagalindoe/TiendaPoli/internal/application/service"

// RetryPolicy bounds how often a transaction that lost a lock or
// serialization race is run again
type RetryPolicy struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetryPolicy is used when no policy is configured
var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts:     3,
	InitialInterval: 50 * time.Millisecond,
	MaxInterval:     time.Second,
}

// Coordinator is the entry point for every invoice mutation. Each operation
// runs as one transaction: line and stock changes and the header totals
// commit together or not at all.
type Coordinator struct {
	tx        repository.Transactor
	lines     *LineEngine
	invoices  *InvoiceAggregate
	publisher event.Publisher
	retry     RetryPolicy
	clock     clock.Clock
	tracer    trace.Tracer
	logger    *zap.Logger
}

// NewCoordinator creates a new coordinator
func NewCoordinator(
	tx repository.Transactor,
	lines *LineEngine,
	invoices *InvoiceAggregate,
	publisher event.Publisher,
	retry RetryPolicy,
	clk clock.Clock,
	logger *zap.Logger,
) *Coordinator {
	if retry.MaxAttempts < 1 {
		retry = DefaultRetryPolicy
	}
	return &Coordinator{
		tx:        tx,
		lines:     lines,
		invoices:  invoices,
		publisher: publisher,
		retry:     retry,
		clock:     clk,
		tracer:    otel.Tracer(tracerName),
		logger:    logger.Named("coordinator"),
	}
}

// StartInvoice opens a new draft invoice
func (c *Coordinator) StartInvoice(ctx context.Context, customerID *string) (*entity.Invoice, error) {
	var invoice *entity.Invoice
	err := c.run(ctx, "StartInvoice", nil, func(ctx context.Context) error {
		var err error
		invoice, err = c.invoices.StartInvoice(ctx, customerID)
		return err
	})
	return invoice, err
}

// AssignCustomer sets the customer of a draft invoice
func (c *Coordinator) AssignCustomer(ctx context.Context, invoiceID uint, customerID string) (*entity.Invoice, error) {
	var invoice *entity.Invoice
	attrs := []attribute.KeyValue{attribute.Int64("invoice.id", int64(invoiceID))}
	err := c.run(ctx, "AssignCustomer", attrs, func(ctx context.Context) error {
		var err error
		invoice, err = c.invoices.AssignCustomer(ctx, invoiceID, customerID)
		return err
	})
	return invoice, err
}

// AddOrUpdateLine writes a line and refreshes the invoice totals
func (c *Coordinator) AddOrUpdateLine(ctx context.Context, input *LineInput) (*entity.InvoiceLine, *entity.Invoice, error) {
	var line *entity.InvoiceLine
	var invoice *entity.Invoice
	attrs := []attribute.KeyValue{
		attribute.Int64("invoice.id", int64(input.InvoiceID)),
		attribute.Int("invoice.line_number", input.LineNumber),
		attribute.Int64("product.id", int64(input.ProductID)),
		attribute.Int("line.quantity", input.Quantity),
	}
	err := c.run(ctx, "AddOrUpdateLine", attrs, func(ctx context.Context) error {
		var err error
		if line, err = c.lines.CreateOrReplaceLine(ctx, input); err != nil {
			return err
		}
		invoice, err = c.invoices.RecomputeTotals(ctx, input.InvoiceID)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return line, invoice, nil
}

// RemoveLine deletes a line and refreshes the invoice totals
func (c *Coordinator) RemoveLine(ctx context.Context, key entity.LineKey) (*entity.Invoice, error) {
	var invoice *entity.Invoice
	attrs := []attribute.KeyValue{
		attribute.Int64("invoice.id", int64(key.InvoiceID)),
		attribute.Int("invoice.line_number", key.LineNumber),
	}
	err := c.run(ctx, "RemoveLine", attrs, func(ctx context.Context) error {
		if err := c.lines.DeleteLine(ctx, key); err != nil {
			return err
		}
		var err error
		invoice, err = c.invoices.RecomputeTotals(ctx, key.InvoiceID)
		return err
	})
	return invoice, err
}

// RecomputeTotals refreshes the header totals from the current lines
func (c *Coordinator) RecomputeTotals(ctx context.Context, invoiceID uint) (*entity.Invoice, error) {
	var invoice *entity.Invoice
	attrs := []attribute.KeyValue{attribute.Int64("invoice.id", int64(invoiceID))}
	err := c.run(ctx, "RecomputeTotals", attrs, func(ctx context.Context) error {
		var err error
		invoice, err = c.invoices.RecomputeTotals(ctx, invoiceID)
		return err
	})
	return invoice, err
}

// FinalizeInvoice freezes a draft and announces it once committed
func (c *Coordinator) FinalizeInvoice(ctx context.Context, invoiceID uint) (*entity.Invoice, error) {
	var invoice *entity.Invoice
	attrs := []attribute.KeyValue{attribute.Int64("invoice.id", int64(invoiceID))}
	err := c.run(ctx, "FinalizeInvoice", attrs, func(ctx context.Context) error {
		var err error
		invoice, err = c.invoices.Finalize(ctx, invoiceID)
		return err
	})
	if err != nil {
		return nil, err
	}

	c.publish(ctx, event.InvoiceFinalized, invoice)
	return invoice, nil
}

// CancelInvoice returns all stock held by the invoice and deletes it
func (c *Coordinator) CancelInvoice(ctx context.Context, invoiceID uint) error {
	var invoice *entity.Invoice
	attrs := []attribute.KeyValue{attribute.Int64("invoice.id", int64(invoiceID))}
	err := c.run(ctx, "CancelInvoice", attrs, func(ctx context.Context) error {
		var err error
		invoice, err = c.invoices.Cancel(ctx, invoiceID)
		return err
	})
	if err != nil {
		return err
	}

	c.publish(ctx, event.InvoiceCancelled, invoice)
	return nil
}

// CancelStaleDraft cancels a draft issued before cutoff through the same
// path as CancelInvoice. Invoices finalized in the meantime are left alone.
func (c *Coordinator) CancelStaleDraft(ctx context.Context, invoiceID uint, cutoff time.Time) (bool, error) {
	var invoice *entity.Invoice
	var cancelled bool
	attrs := []attribute.KeyValue{attribute.Int64("invoice.id", int64(invoiceID))}
	err := c.run(ctx, "CancelStaleDraft", attrs, func(ctx context.Context) error {
		var err error
		invoice, cancelled, err = c.invoices.CancelStaleDraft(ctx, invoiceID, cutoff)
		return err
	})
	if err != nil || !cancelled {
		return false, err
	}

	c.publish(ctx, event.InvoiceCancelled, invoice)
	return true, nil
}

// run executes fn in a transaction inside a span, retrying transient store
// conflicts with exponential backoff. Domain errors are returned at once.
func (c *Coordinator) run(ctx context.Context, op string, attrs []attribute.KeyValue, fn func(ctx context.Context) error) error {
	ctx, span := c.tracer.Start(ctx, "Coordinator."+op, trace.WithAttributes(attrs...))
	defer span.End()

	attempt := 0
	operation := func() error {
		attempt++
		err := c.tx.WithinTransaction(ctx, fn)
		if err == nil {
			return nil
		}
		if infraRepo.IsTransient(err) {
			c.logger.Warn("transient store conflict",
				zap.String("op", op),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			return err
		}
		return backoff.Permanent(err)
	}

	err := backoff.Retry(operation, backoff.WithContext(c.newBackOff(), ctx))
	span.SetAttributes(attribute.Int("attempts", attempt))
	if err != nil {
		err = apperror.Internal(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if apperror.GetAppError(err).Kind == apperror.KindInternal {
			c.logger.Error("operation failed", zap.String("op", op), zap.Error(err))
		}
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

func (c *Coordinator) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retry.InitialInterval
	b.MaxInterval = c.retry.MaxInterval
	b.MaxElapsedTime = 0
	return backoff.WithMaxRetries(b, uint64(c.retry.MaxAttempts-1))
}

// publish is best effort: the change is already committed
func (c *Coordinator) publish(ctx context.Context, typ event.Type, invoice *entity.Invoice) {
	evt := event.InvoiceEvent{
		Type:       typ,
		InvoiceID:  invoice.ID,
		CustomerID: invoice.CustomerID,
		Subtotal:   invoice.Subtotal,
		Discount:   invoice.Discount,
		Total:      invoice.Total,
		LineCount:  len(invoice.Lines),
		OccurredAt: c.clock.Now(),
	}
	if err := c.publisher.Publish(ctx, evt); err != nil {
		c.logger.Warn("failed to publish invoice event",
			zap.String("type", string(typ)),
			zap.Uint("invoice_id", invoice.ID),
			zap.Error(err),
		)
	}
}
