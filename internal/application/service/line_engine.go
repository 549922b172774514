package service

import (
	"context"
	"fmt"

	"github.com/Juanitagalindoe/TiendaPoli/internal/domain/entity"
	"github.com/Juanitagalindoe/TiendaPoli/internal/domain/repository"
	"github.com/Juanitagalindoe/TiendaPoli/pkg/apperror"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// LineEngine creates, replaces and removes invoice lines, keeping the stock
// of the products involved in step with the lines.
type LineEngine struct {
	invoiceRepo repository.InvoiceRepository
	lineRepo    repository.InvoiceLineRepository
	productRepo repository.ProductRepository
	ledger      *ProductLedger
	tx          repository.Transactor
	logger      *zap.Logger
}

// NewLineEngine creates a new line engine
func NewLineEngine(
	invoiceRepo repository.InvoiceRepository,
	lineRepo repository.InvoiceLineRepository,
	productRepo repository.ProductRepository,
	ledger *ProductLedger,
	tx repository.Transactor,
	logger *zap.Logger,
) *LineEngine {
	return &LineEngine{
		invoiceRepo: invoiceRepo,
		lineRepo:    lineRepo,
		productRepo: productRepo,
		ledger:      ledger,
		tx:          tx,
		logger:      logger.Named("lines"),
	}
}

// LineInput describes the desired state of one line.
// A zero LineNumber appends the line after the current last one.
type LineInput struct {
	InvoiceID       uint
	LineNumber      int
	ProductID       uint
	Quantity        int
	DiscountPercent decimal.Decimal
}

// CreateOrReplaceLine writes the line at (InvoiceID, LineNumber). When a line
// already exists there its quantity goes back to stock before the new
// quantity is debited, so a failed debit leaves the old line in place once
// the transaction rolls back.
func (e *LineEngine) CreateOrReplaceLine(ctx context.Context, input *LineInput) (*entity.InvoiceLine, error) {
	if input.LineNumber < 0 {
		return nil, apperror.NewBadRequestError("Line number must be positive")
	}
	if input.Quantity <= 0 {
		return nil, apperror.NewInvalidQuantityError("Quantity must be greater than zero")
	}
	if !entity.ValidDiscountPercent(input.DiscountPercent) {
		return nil, apperror.NewInvalidQuantityError("Discount percent must be between 0 and 100")
	}

	var line *entity.InvoiceLine
	err := e.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := lockEditableInvoice(ctx, e.invoiceRepo, input.InvoiceID); err != nil {
			return err
		}

		product, err := e.productRepo.GetByID(ctx, input.ProductID)
		if err != nil {
			return apperror.Internal(err)
		}
		if product == nil {
			return apperror.NewNotFoundError(fmt.Sprintf("Product %d", input.ProductID))
		}
		if entity.SubtotalOverflows(product.UnitPrice, input.Quantity) {
			return apperror.NewInvalidQuantityError("Quantity is too large for the product's unit price")
		}

		lineNumber := input.LineNumber
		if lineNumber == 0 {
			if lineNumber, err = e.nextLineNumber(ctx, input.InvoiceID); err != nil {
				return err
			}
		}
		key := entity.LineKey{InvoiceID: input.InvoiceID, LineNumber: lineNumber}

		existing, err := e.lineRepo.Get(ctx, key)
		if err != nil {
			return apperror.Internal(err)
		}
		if existing != nil {
			if _, err := e.ledger.Credit(ctx, existing.ProductID, existing.Quantity); err != nil {
				return err
			}
		}

		amounts := entity.ComputeLineAmounts(product.UnitPrice, input.Quantity, input.DiscountPercent)

		if _, err := e.ledger.Debit(ctx, input.ProductID, input.Quantity); err != nil {
			return err
		}

		line = &entity.InvoiceLine{
			InvoiceID:      key.InvoiceID,
			LineNumber:     key.LineNumber,
			ProductID:      product.ID,
			Quantity:       input.Quantity,
			UnitPrice:      product.UnitPrice,
			Subtotal:       amounts.Subtotal,
			DiscountAmount: amounts.DiscountAmount,
			Total:          amounts.Total,
		}
		if existing != nil {
			line.CreatedAt = existing.CreatedAt
			return apperror.Internal(e.lineRepo.Update(ctx, line))
		}
		return apperror.Internal(e.lineRepo.Create(ctx, line))
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("line written",
		zap.Stringer("line", line.Key()),
		zap.Uint("product_id", line.ProductID),
		zap.Int("quantity", line.Quantity),
		zap.Int64("total", line.Total),
	)
	return line, nil
}

// DeleteLine removes a line and returns its quantity to stock
func (e *LineEngine) DeleteLine(ctx context.Context, key entity.LineKey) error {
	err := e.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := lockEditableInvoice(ctx, e.invoiceRepo, key.InvoiceID); err != nil {
			return err
		}

		line, err := e.lineRepo.Get(ctx, key)
		if err != nil {
			return apperror.Internal(err)
		}
		if line == nil {
			return apperror.NewNotFoundError(fmt.Sprintf("Invoice line %s", key))
		}

		if _, err := e.ledger.Credit(ctx, line.ProductID, line.Quantity); err != nil {
			return err
		}

		deleted, err := e.lineRepo.Delete(ctx, key)
		if err != nil {
			return apperror.Internal(err)
		}
		if !deleted {
			return apperror.NewNotFoundError(fmt.Sprintf("Invoice line %s", key))
		}
		return nil
	})
	if err != nil {
		return err
	}

	e.logger.Info("line deleted", zap.Stringer("line", key))
	return nil
}

// ListLines returns the lines of an invoice ordered by line number
func (e *LineEngine) ListLines(ctx context.Context, invoiceID uint) ([]entity.InvoiceLine, error) {
	invoice, err := e.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if invoice == nil {
		return nil, apperror.NewNotFoundError(fmt.Sprintf("Invoice %d", invoiceID))
	}

	lines, err := e.lineRepo.ListByInvoice(ctx, invoiceID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if lines == nil {
		lines = []entity.InvoiceLine{}
	}
	return lines, nil
}

func (e *LineEngine) nextLineNumber(ctx context.Context, invoiceID uint) (int, error) {
	lines, err := e.lineRepo.ListByInvoice(ctx, invoiceID)
	if err != nil {
		return 0, apperror.Internal(err)
	}
	if len(lines) == 0 {
		return 1, nil
	}
	return lines[len(lines)-1].LineNumber + 1, nil
}

// lockInvoice locks the invoice header for the rest of the transaction
func lockInvoice(ctx context.Context, repo repository.InvoiceRepository, id uint) (*entity.Invoice, error) {
	invoice, err := repo.GetByIDForUpdate(ctx, id)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if invoice == nil {
		return nil, apperror.NewNotFoundError(fmt.Sprintf("Invoice %d", id))
	}
	return invoice, nil
}

func lockEditableInvoice(ctx context.Context, repo repository.InvoiceRepository, id uint) (*entity.Invoice, error) {
	invoice, err := lockInvoice(ctx, repo, id)
	if err != nil {
		return nil, err
	}
	if !invoice.IsEditable() {
		return nil, apperror.NewInvoiceNotEditableError(id)
	}
	return invoice, nil
}
