package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Juanitagalindoe/TiendaPoli/internal/domain/entity"
	"github.com/Juanitagalindoe/TiendaPoli/internal/domain/event"
	"github.com/Juanitagalindoe/TiendaPoli/internal/domain/repository"
	"github.com/Juanitagalindoe/TiendaPoli/internal/infrastructure/database"
	infraRepo "github.com/Juanitagalindoe/TiendaPoli/internal/infrastructure/repository"
	"github.com/Juanitagalindoe/TiendaPoli/pkg/clock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var testStart = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	mu     sync.Mutex
	events []event.InvoiceEvent
}

func (p *recordingPublisher) Publish(_ context.Context, evt event.InvoiceEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return nil
}

func (p *recordingPublisher) Events() []event.InvoiceEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]event.InvoiceEvent(nil), p.events...)
}

type fixture struct {
	db           *gorm.DB
	clock        *clock.Manual
	publisher    *recordingPublisher
	tx           repository.Transactor
	productRepo  repository.ProductRepository
	lineRepo     repository.InvoiceLineRepository
	invoiceRepo  repository.InvoiceRepository
	customerRepo repository.CustomerRepository
	idemRepo     repository.IdempotencyRepository
	ledger       *ProductLedger
	lines        *LineEngine
	invoices     *InvoiceAggregate
	coordinator  *Coordinator
	customers    *CustomerService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := database.NewSQLiteDB(filepath.Join(t.TempDir(), "service.db"), false)
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	f := &fixture{
		db:          db,
		clock:       clock.NewManual(testStart),
		publisher:   &recordingPublisher{},
		tx:          infraRepo.NewTransactor(db),
		productRepo: infraRepo.NewProductRepository(db),
		lineRepo:    infraRepo.NewInvoiceLineRepository(db),
		invoiceRepo: infraRepo.NewInvoiceRepository(db),
		idemRepo:    infraRepo.NewIdempotencyRepository(db),
	}
	customerRepo := infraRepo.NewCustomerRepository(db)
	f.customerRepo = customerRepo
	logger := zap.NewNop()

	f.ledger = NewProductLedger(f.productRepo, f.lineRepo, f.tx, logger)
	f.lines = NewLineEngine(f.invoiceRepo, f.lineRepo, f.productRepo, f.ledger, f.tx, logger)
	f.invoices = NewInvoiceAggregate(f.invoiceRepo, f.lineRepo, customerRepo, f.ledger, f.tx, f.clock, logger)
	f.coordinator = NewCoordinator(f.tx, f.lines, f.invoices, f.publisher,
		RetryPolicy{MaxAttempts: 3, InitialInterval: time.Millisecond, MaxInterval: 5 * time.Millisecond},
		f.clock, logger)
	f.customers = NewCustomerService(customerRepo, f.invoiceRepo, f.tx, f.clock)
	return f
}

func (f *fixture) product(t *testing.T, price int64, stock int) *entity.Product {
	t.Helper()
	p, err := f.ledger.CreateProduct(context.Background(), &CreateProductInput{
		Name:        "Ground Coffee",
		Description: "500g bag",
		UnitPrice:   price,
		Stock:       stock,
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) customer(t *testing.T, id string) *entity.Customer {
	t.Helper()
	c, err := f.customers.CreateCustomer(context.Background(), &CreateCustomerInput{
		ID:           id,
		FirstName:    "Lucia",
		LastName:     "Gomez",
		Email:        "lucia@example.com",
		RegisteredAt: testStart.AddDate(-1, 0, 0),
	})
	require.NoError(t, err)
	return c
}

func (f *fixture) draft(t *testing.T, customerID *string) *entity.Invoice {
	t.Helper()
	inv, err := f.coordinator.StartInvoice(context.Background(), customerID)
	require.NoError(t, err)
	return inv
}

func (f *fixture) stock(t *testing.T, productID uint) int {
	t.Helper()
	p, err := f.ledger.GetProduct(context.Background(), productID)
	require.NoError(t, err)
	return p.Stock
}

func line(invoiceID uint, number int, productID uint, qty int) *LineInput {
	return &LineInput{
		InvoiceID:       invoiceID,
		LineNumber:      number,
		ProductID:       productID,
		Quantity:        qty,
		DiscountPercent: decimal.Zero,
	}
}
