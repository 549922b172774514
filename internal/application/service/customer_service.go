package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Juanitagalindoe/TiendaPoli/internal/domain/entity"
	"github.com/Juanitagalindoe/TiendaPoli/internal/domain/repository"
	"github.com/Juanitagalindoe/TiendaPoli/pkg/apperror"
	"github.com/Juanitagalindoe/TiendaPoli/pkg/clock"
	"github.com/Juanitagalindoe/TiendaPoli/pkg/pagination"
	"github.com/Juanitagalindoe/TiendaPoli/pkg/validation"
	"gorm.io/gorm"
)

// maxRegistrationAge is how far back a registration date may go
const maxRegistrationAge = 80

// CustomerService handles customer-related operations
type CustomerService struct {
	customerRepo repository.CustomerRepository
	invoiceRepo  repository.InvoiceRepository
	tx           repository.Transactor
	clock        clock.Clock
}

// NewCustomerService creates a new customer service
func NewCustomerService(
	customerRepo repository.CustomerRepository,
	invoiceRepo repository.InvoiceRepository,
	tx repository.Transactor,
	clk clock.Clock,
) *CustomerService {
	return &CustomerService{customerRepo: customerRepo, invoiceRepo: invoiceRepo, tx: tx, clock: clk}
}

// CreateCustomerInput represents the create customer input
type CreateCustomerInput struct {
	ID           string    `json:"id" validate:"required,nationalid"`
	FirstName    string    `json:"first_name" validate:"required,max=100,personname"`
	LastName     string    `json:"last_name" validate:"required,max=100,personname"`
	Email        string    `json:"email" validate:"required,max=255,email"`
	RegisteredAt time.Time `json:"registered_at" validate:"required"`
}

// CreateCustomer creates a new customer
func (s *CustomerService) CreateCustomer(ctx context.Context, input *CreateCustomerInput) (*entity.Customer, error) {
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	input.Email = strings.TrimSpace(input.Email)

	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if input.RegisteredAt.After(now) {
		return nil, apperror.NewValidationError([]apperror.FieldError{
			{Field: "registered_at", Message: "cannot be in the future"},
		})
	}
	if input.RegisteredAt.Before(now.AddDate(-maxRegistrationAge, 0, 0)) {
		return nil, apperror.NewValidationError([]apperror.FieldError{
			{Field: "registered_at", Message: "cannot be more than 80 years ago"},
		})
	}

	customer := &entity.Customer{
		ID:           input.ID,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        input.Email,
		RegisteredAt: input.RegisteredAt,
	}

	if err := s.customerRepo.Create(ctx, customer); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.NewConflictError("Customer already exists")
		}
		return nil, apperror.Internal(err)
	}

	return customer, nil
}

// GetCustomer retrieves a customer by ID
func (s *CustomerService) GetCustomer(ctx context.Context, id string) (*entity.Customer, error) {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if customer == nil {
		return nil, apperror.NewNotFoundError("Customer")
	}
	return customer, nil
}

// ListCustomers lists customers ordered by name
func (s *CustomerService) ListCustomers(ctx context.Context, params *pagination.PaginationParams, search string) (*pagination.PaginatedResult[entity.Customer], error) {
	customers, total, err := s.customerRepo.List(ctx, params, search)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return pagination.NewPaginatedResult(customers, params, total), nil
}

// DeleteCustomer removes a customer that no invoice refers to
func (s *CustomerService) DeleteCustomer(ctx context.Context, id string) error {
	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		customer, err := s.customerRepo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return apperror.Internal(err)
		}
		if customer == nil {
			return apperror.NewNotFoundError("Customer")
		}

		invoiceIDs, err := s.invoiceRepo.IDsByCustomer(ctx, id)
		if err != nil {
			return apperror.Internal(err)
		}
		if len(invoiceIDs) > 0 {
			return apperror.NewCustomerInUseError(id, invoiceIDs)
		}

		if err := s.customerRepo.Delete(ctx, id); err != nil {
			// an invoice assigned concurrently still holds the foreign key
			if errors.Is(err, gorm.ErrForeignKeyViolated) {
				return apperror.NewCustomerInUseError(id, nil)
			}
			return apperror.Internal(err)
		}
		return nil
	})
}
