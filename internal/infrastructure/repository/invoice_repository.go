package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Juanitagalindoe/TiendaPoli/internal/domain/entity"
	"github.com/Juanitagalindoe/TiendaPoli/internal/domain/enum"
	domainRepo "github.com/Juanitagalindoe/TiendaPoli/internal/domain/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type invoiceRepository struct {
	db *gorm.DB
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(db *gorm.DB) domainRepo.InvoiceRepository {
	return &invoiceRepository{db: db}
}

func (r *invoiceRepository) Create(ctx context.Context, invoice *entity.Invoice) error {
	return conn(ctx, r.db).Omit(clause.Associations).Create(invoice).Error
}

func (r *invoiceRepository) GetByID(ctx context.Context, id uint) (*entity.Invoice, error) {
	var invoice entity.Invoice
	err := conn(ctx, r.db).First(&invoice, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &invoice, err
}

func (r *invoiceRepository) GetByIDForUpdate(ctx context.Context, id uint) (*entity.Invoice, error) {
	var invoice entity.Invoice
	err := conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&invoice, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &invoice, err
}

func (r *invoiceRepository) GetWithLines(ctx context.Context, id uint) (*entity.Invoice, error) {
	var invoice entity.Invoice
	err := conn(ctx, r.db).
		Preload("Customer").
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("line_number ASC")
		}).
		Preload("Lines.Product").
		First(&invoice, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &invoice, err
}

func (r *invoiceRepository) Update(ctx context.Context, invoice *entity.Invoice) error {
	return conn(ctx, r.db).Model(invoice).
		Omit(clause.Associations).
		Select("customer_id", "status", "subtotal", "discount", "total", "finalized_at", "updated_at").
		Updates(invoice).Error
}

func (r *invoiceRepository) Delete(ctx context.Context, id uint) error {
	return conn(ctx, r.db).Delete(&entity.Invoice{}, id).Error
}

func (r *invoiceRepository) List(ctx context.Context, params *domainRepo.InvoiceFilterParams) ([]entity.Invoice, int64, error) {
	var invoices []entity.Invoice
	var total int64

	query := conn(ctx, r.db).Model(&entity.Invoice{})

	switch {
	case params.Status != nil:
		query = query.Where("status = ?", *params.Status)
	case !params.IncludeDrafts:
		query = query.Where("status <> ?", enum.InvoiceStatusDraft)
	}

	if params.CustomerID != nil {
		query = query.Where("customer_id = ?", *params.CustomerID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Preload("Customer").
		Order("id DESC").
		Find(&invoices).Error

	return invoices, total, err
}

func (r *invoiceRepository) IDsByCustomer(ctx context.Context, customerID string) ([]uint, error) {
	ids := []uint{}
	err := conn(ctx, r.db).Model(&entity.Invoice{}).
		Where("customer_id = ?", customerID).
		Order("id ASC").
		Pluck("id", &ids).Error
	return ids, err
}

func (r *invoiceRepository) ListStaleDrafts(ctx context.Context, before time.Time) ([]uint, error) {
	var ids []uint
	err := conn(ctx, r.db).Model(&entity.Invoice{}).
		Where("status = ? AND issued_at < ?", enum.InvoiceStatusDraft, before).
		Order("id ASC").
		Pluck("id", &ids).Error
	return ids, err
}
