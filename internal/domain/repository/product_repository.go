package repository

import (
	"context"

	"github.com/Juanitagalindoe/TiendaPoli/internal/domain/entity"
	"github.com/Juanitagalindoe/TiendaPoli/pkg/pagination"
)

// ProductRepository defines the interface for product data operations.
// Lookups return (nil, nil) when the product does not exist.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id uint) (*entity.Product, error)
	// GetByIDForUpdate reads the row and holds an exclusive lock on it until
	// the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id uint) (*entity.Product, error)
	UpdateStock(ctx context.Context, id uint, stock int) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, params *ProductFilterParams) ([]entity.Product, int64, error)
}

// ProductFilterParams contains filtering parameters for product queries
type ProductFilterParams struct {
	Pagination *pagination.PaginationParams
	Search     string
	InStock    bool
}
