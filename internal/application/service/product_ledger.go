package service

import (
	"context"
	"fmt"

	"github.com/Juanitagalindoe/TiendaPoli/internal/domain/entity"
	"github.com/Juanitagalindoe/TiendaPoli/internal/domain/repository"
	"github.com/Juanitagalindoe/TiendaPoli/pkg/apperror"
	"github.com/Juanitagalindoe/TiendaPoli/pkg/pagination"
	"github.com/Juanitagalindoe/TiendaPoli/pkg/validation"
	"go.uber.org/zap"
)

// ProductLedger owns product stock. Every stock change goes through Debit or
// Credit, which lock the product row for the rest of the transaction.
type ProductLedger struct {
	productRepo repository.ProductRepository
	lineRepo    repository.InvoiceLineRepository
	tx          repository.Transactor
	logger      *zap.Logger
}

// NewProductLedger creates a new product ledger
func NewProductLedger(
	productRepo repository.ProductRepository,
	lineRepo repository.InvoiceLineRepository,
	tx repository.Transactor,
	logger *zap.Logger,
) *ProductLedger {
	return &ProductLedger{
		productRepo: productRepo,
		lineRepo:    lineRepo,
		tx:          tx,
		logger:      logger.Named("ledger"),
	}
}

// CreateProductInput represents the create product input
type CreateProductInput struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description" validate:"required,max=2000"`
	UnitPrice   int64  `json:"unit_price" validate:"gt=0"`
	Stock       int    `json:"stock" validate:"gte=0"`
}

// CreateProduct creates a new product
func (l *ProductLedger) CreateProduct(ctx context.Context, input *CreateProductInput) (*entity.Product, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	product := &entity.Product{
		Name:        input.Name,
		Description: input.Description,
		UnitPrice:   input.UnitPrice,
		Stock:       input.Stock,
	}
	if err := l.productRepo.Create(ctx, product); err != nil {
		return nil, apperror.Internal(err)
	}

	l.logger.Info("product created", zap.Uint("product_id", product.ID), zap.Int("stock", product.Stock))
	return product, nil
}

// GetProduct retrieves a product by ID
func (l *ProductLedger) GetProduct(ctx context.Context, id uint) (*entity.Product, error) {
	product, err := l.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}
	return product, nil
}

// ListProducts lists products with filtering
func (l *ProductLedger) ListProducts(ctx context.Context, params *repository.ProductFilterParams) (*pagination.PaginatedResult[entity.Product], error) {
	products, total, err := l.productRepo.List(ctx, params)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return pagination.NewPaginatedResult(products, params.Pagination, total), nil
}

// Debit takes qty units out of stock and returns the new stock level.
// It fails without side effects when the product is missing or short.
func (l *ProductLedger) Debit(ctx context.Context, productID uint, qty int) (int, error) {
	if qty <= 0 {
		return 0, apperror.NewInvalidQuantityError("Quantity must be greater than zero")
	}

	var stock int
	err := l.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		product, err := l.lockProduct(ctx, productID)
		if err != nil {
			return err
		}
		if !product.HasStock(qty) {
			return apperror.NewInsufficientStockError(productID, product.Stock, qty)
		}

		stock = product.Stock - qty
		return apperror.Internal(l.productRepo.UpdateStock(ctx, productID, stock))
	})
	if err != nil {
		return 0, err
	}

	l.logger.Debug("stock debited", zap.Uint("product_id", productID), zap.Int("qty", qty), zap.Int("stock", stock))
	return stock, nil
}

// Credit returns qty units to stock and returns the new stock level
func (l *ProductLedger) Credit(ctx context.Context, productID uint, qty int) (int, error) {
	if qty <= 0 {
		return 0, apperror.NewInvalidQuantityError("Quantity must be greater than zero")
	}

	var stock int
	err := l.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		product, err := l.lockProduct(ctx, productID)
		if err != nil {
			return err
		}

		stock = product.Stock + qty
		return apperror.Internal(l.productRepo.UpdateStock(ctx, productID, stock))
	})
	if err != nil {
		return 0, err
	}

	l.logger.Debug("stock credited", zap.Uint("product_id", productID), zap.Int("qty", qty), zap.Int("stock", stock))
	return stock, nil
}

// CheckAvailable reports whether qty units could be debited right now.
// The answer is advisory; only Debit is authoritative. An unknown product
// is reported as unavailable rather than as an error.
func (l *ProductLedger) CheckAvailable(ctx context.Context, productID uint, qty int) (bool, error) {
	if qty <= 0 {
		return false, apperror.NewInvalidQuantityError("Quantity must be greater than zero")
	}
	product, err := l.productRepo.GetByID(ctx, productID)
	if err != nil {
		return false, apperror.Internal(err)
	}
	if product == nil {
		return false, nil
	}
	return product.HasStock(qty), nil
}

// IsReferenced reports whether any invoice line points at the product
func (l *ProductLedger) IsReferenced(ctx context.Context, productID uint) (bool, error) {
	ids, err := l.ReferencingInvoices(ctx, productID)
	if err != nil {
		return false, err
	}
	return len(ids) > 0, nil
}

// ReferencingInvoices lists the invoices holding a line on the product
func (l *ProductLedger) ReferencingInvoices(ctx context.Context, productID uint) ([]uint, error) {
	ids, err := l.lineRepo.InvoiceIDsByProduct(ctx, productID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if ids == nil {
		ids = []uint{}
	}
	return ids, nil
}

// DeleteProduct removes a product that no invoice line references
func (l *ProductLedger) DeleteProduct(ctx context.Context, productID uint) error {
	err := l.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		// the lock keeps a concurrent line from picking up the product mid-delete
		if _, err := l.lockProduct(ctx, productID); err != nil {
			return err
		}

		ids, err := l.ReferencingInvoices(ctx, productID)
		if err != nil {
			return err
		}
		if len(ids) > 0 {
			return apperror.NewInUseError(productID, ids)
		}

		return apperror.Internal(l.productRepo.Delete(ctx, productID))
	})
	if err != nil {
		return err
	}

	l.logger.Info("product deleted", zap.Uint("product_id", productID))
	return nil
}

func (l *ProductLedger) lockProduct(ctx context.Context, productID uint) (*entity.Product, error) {
	product, err := l.productRepo.GetByIDForUpdate(ctx, productID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if product == nil {
		return nil, apperror.NewNotFoundError(fmt.Sprintf("Product %d", productID))
	}
	return product, nil
}
