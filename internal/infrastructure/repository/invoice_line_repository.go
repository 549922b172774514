package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Juanitagalindoe/TiendaPoli/internal/domain/entity"
	domainRepo "github.com/Juanitagalindoe/TiendaPoli/internal/domain/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type invoiceLineRepository struct {
	db *gorm.DB
}

// NewInvoiceLineRepository creates a new invoice line repository
func NewInvoiceLineRepository(db *gorm.DB) domainRepo.InvoiceLineRepository {
	return &invoiceLineRepository{db: db}
}

func (r *invoiceLineRepository) Get(ctx context.Context, key entity.LineKey) (*entity.InvoiceLine, error) {
	var line entity.InvoiceLine
	err := conn(ctx, r.db).
		Where("invoice_id = ? AND line_number = ?", key.InvoiceID, key.LineNumber).
		First(&line).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &line, err
}

func (r *invoiceLineRepository) Create(ctx context.Context, line *entity.InvoiceLine) error {
	return conn(ctx, r.db).Omit(clause.Associations).Create(line).Error
}

func (r *invoiceLineRepository) Update(ctx context.Context, line *entity.InvoiceLine) error {
	line.UpdatedAt = time.Now()
	return conn(ctx, r.db).Model(&entity.InvoiceLine{}).
		Where("invoice_id = ? AND line_number = ?", line.InvoiceID, line.LineNumber).
		Updates(map[string]interface{}{
			"product_id":      line.ProductID,
			"quantity":        line.Quantity,
			"unit_price":      line.UnitPrice,
			"subtotal":        line.Subtotal,
			"discount_amount": line.DiscountAmount,
			"total":           line.Total,
			"updated_at":      line.UpdatedAt,
		}).Error
}

func (r *invoiceLineRepository) Delete(ctx context.Context, key entity.LineKey) (bool, error) {
	result := conn(ctx, r.db).
		Where("invoice_id = ? AND line_number = ?", key.InvoiceID, key.LineNumber).
		Delete(&entity.InvoiceLine{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *invoiceLineRepository) DeleteByInvoice(ctx context.Context, invoiceID uint) error {
	return conn(ctx, r.db).
		Where("invoice_id = ?", invoiceID).
		Delete(&entity.InvoiceLine{}).Error
}

func (r *invoiceLineRepository) ListByInvoice(ctx context.Context, invoiceID uint) ([]entity.InvoiceLine, error) {
	var lines []entity.InvoiceLine
	err := conn(ctx, r.db).
		Where("invoice_id = ?", invoiceID).
		Order("line_number ASC").
		Find(&lines).Error
	return lines, err
}

func (r *invoiceLineRepository) InvoiceIDsByProduct(ctx context.Context, productID uint) ([]uint, error) {
	var ids []uint
	err := conn(ctx, r.db).Model(&entity.InvoiceLine{}).
		Where("product_id = ?", productID).
		Distinct().
		Order("invoice_id ASC").
		Pluck("invoice_id", &ids).Error
	return ids, err
}
