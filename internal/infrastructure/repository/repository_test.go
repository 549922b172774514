package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/Juanitagalindoe/TiendaPoli/internal/domain/entity"
	"github.com/Juanitagalindoe/TiendaPoli/internal/domain/enum"
	domainRepo "github.com/Juanitagalindoe/TiendaPoli/internal/domain/repository"
	"github.com/Juanitagalindoe/TiendaPoli/internal/infrastructure/database"
	"github.com/Juanitagalindoe/TiendaPoli/pkg/pagination"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewSQLiteDB(filepath.Join(t.TempDir(), "test.db"), false)
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func seedInvoice(t *testing.T, db *gorm.DB, issuedAt time.Time, status enum.InvoiceStatus) *entity.Invoice {
	t.Helper()
	inv := &entity.Invoice{IssuedAt: issuedAt, Status: status}
	require.NoError(t, NewInvoiceRepository(db).Create(context.Background(), inv))
	return inv
}

func TestProductRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository(setupTestDB(t))

	p := &entity.Product{Name: "Coffee Beans", UnitPrice: 1200, Stock: 4}
	require.NoError(t, repo.Create(ctx, p))
	require.NotZero(t, p.ID)

	require.NoError(t, repo.UpdateStock(ctx, p.ID, 9))
	got, err := repo.GetByIDForUpdate(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 9, got.Stock)

	missing, err := repo.GetByID(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, repo.Create(ctx, &entity.Product{Name: "Tea", UnitPrice: 300}))
	items, total, err := repo.List(ctx, &domainRepo.ProductFilterParams{
		Pagination: pagination.DefaultParams(),
		Search:     "COFFEE",
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "Coffee Beans", items[0].Name)

	_, total, err = repo.List(ctx, &domainRepo.ProductFilterParams{
		Pagination: pagination.DefaultParams(),
		InStock:    true,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	require.NoError(t, repo.Delete(ctx, p.ID))
	got, err = repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestInvoiceLineRepository(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	products := NewProductRepository(db)
	lines := NewInvoiceLineRepository(db)

	p := &entity.Product{Name: "Widget", UnitPrice: 100, Stock: 10}
	require.NoError(t, products.Create(ctx, p))
	inv1 := seedInvoice(t, db, time.Now(), enum.InvoiceStatusDraft)
	inv2 := seedInvoice(t, db, time.Now(), enum.InvoiceStatusDraft)
	assert.Greater(t, inv2.ID, inv1.ID)

	for _, l := range []entity.InvoiceLine{
		{InvoiceID: inv1.ID, LineNumber: 2, ProductID: p.ID, Quantity: 1, UnitPrice: 100, Subtotal: 100, Total: 100},
		{InvoiceID: inv1.ID, LineNumber: 1, ProductID: p.ID, Quantity: 2, UnitPrice: 100, Subtotal: 200, Total: 200},
		{InvoiceID: inv2.ID, LineNumber: 1, ProductID: p.ID, Quantity: 3, UnitPrice: 100, Subtotal: 300, Total: 300},
	} {
		l := l
		require.NoError(t, lines.Create(ctx, &l))
	}

	listed, err := lines.ListByInvoice(ctx, inv1.ID)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, 1, listed[0].LineNumber)
	assert.Equal(t, 2, listed[1].LineNumber)

	ids, err := lines.InvoiceIDsByProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{inv1.ID, inv2.ID}, ids)

	key := entity.LineKey{InvoiceID: inv1.ID, LineNumber: 1}
	line, err := lines.Get(ctx, key)
	require.NoError(t, err)
	line.Quantity = 5
	line.Subtotal, line.Total = 500, 450
	line.DiscountAmount = 50
	require.NoError(t, lines.Update(ctx, line))

	line, err = lines.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 5, line.Quantity)
	assert.EqualValues(t, 50, line.DiscountAmount)

	deleted, err := lines.Delete(ctx, key)
	require.NoError(t, err)
	assert.True(t, deleted)
	deleted, err = lines.Delete(ctx, key)
	require.NoError(t, err)
	assert.False(t, deleted)

	require.NoError(t, lines.DeleteByInvoice(ctx, inv2.ID))
	ids, err = lines.InvoiceIDsByProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{inv1.ID}, ids)
}

func TestInvoiceRepositoryListAndStaleDrafts(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewInvoiceRepository(db)

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	old := seedInvoice(t, db, now.Add(-48*time.Hour), enum.InvoiceStatusDraft)
	seedInvoice(t, db, now.Add(-time.Hour), enum.InvoiceStatusDraft)
	final := seedInvoice(t, db, now.Add(-72*time.Hour), enum.InvoiceStatusFinalized)

	ids, err := repo.ListStaleDrafts(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, []uint{old.ID}, ids)

	items, total, err := repo.List(ctx, &domainRepo.InvoiceFilterParams{Pagination: pagination.DefaultParams()})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, final.ID, items[0].ID)

	_, total, err = repo.List(ctx, &domainRepo.InvoiceFilterParams{Pagination: pagination.DefaultParams(), IncludeDrafts: true})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)

	old.Subtotal, old.Discount, old.Total = 1000, 100, 900
	require.NoError(t, repo.Update(ctx, old))
	got, err := repo.GetWithLines(ctx, old.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 900, got.Total)
	assert.Empty(t, got.Lines)

	require.NoError(t, repo.Delete(ctx, old.ID))
	got, err = repo.GetByIDForUpdate(ctx, old.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestTransactorRollsBackAndJoins(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	tx := NewTransactor(db)
	products := NewProductRepository(db)

	p := &entity.Product{Name: "Lamp", UnitPrice: 500, Stock: 3}
	require.NoError(t, products.Create(ctx, p))

	boom := errors.New("boom")
	err := tx.WithinTransaction(ctx, func(ctx context.Context) error {
		assert.True(t, InTransaction(ctx))
		if err := products.UpdateStock(ctx, p.ID, 0); err != nil {
			return err
		}
		// nested call joins the outer transaction
		return tx.WithinTransaction(ctx, func(ctx context.Context) error {
			return boom
		})
	})
	require.ErrorIs(t, err, boom)

	got, err := products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Stock)
	assert.False(t, InTransaction(ctx))
}

func TestIdempotencyRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewIdempotencyRepository(setupTestDB(t))
	now := time.Now()

	require.NoError(t, repo.Create(ctx, &entity.IdempotencyKey{Key: "k1", Endpoint: "POST /a", ResponseCode: 201, ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, repo.Create(ctx, &entity.IdempotencyKey{Key: "k1", Endpoint: "POST /b", ResponseCode: 201, ExpiresAt: now.Add(-time.Hour)}))

	got, err := repo.GetByKey(ctx, "k1", "POST /a")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 201, got.ResponseCode)

	n, err := repo.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	got, err = repo.GetByKey(ctx, "k1", "POST /b")
	require.NoError(t, err)
	assert.Nil(t, got)

	// an expired key that was not swept yet is replaced
	require.NoError(t, repo.Create(ctx, &entity.IdempotencyKey{Key: "k2", Endpoint: "POST /a", ResponseCode: 201, ExpiresAt: now.Add(-time.Hour)}))
	require.NoError(t, repo.Create(ctx, &entity.IdempotencyKey{Key: "k2", Endpoint: "POST /a", ResponseCode: 200, ExpiresAt: now.Add(time.Hour)}))
	got, err = repo.GetByKey(ctx, "k2", "POST /a")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 200, got.ResponseCode)
	assert.False(t, got.IsExpiredAt(now))
}

func TestCustomerRepository(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewCustomerRepository(db)

	c := &entity.Customer{ID: "1032456789", FirstName: "Ana", LastName: "Rojas", Email: "ana@example.com", RegisteredAt: time.Now()}
	require.NoError(t, repo.Create(ctx, c))
	assert.ErrorIs(t, repo.Create(ctx, c), gorm.ErrDuplicatedKey)

	items, total, err := repo.List(ctx, pagination.DefaultParams(), "rojas")
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "Ana Rojas", items[0].FullName())

	invoices := NewInvoiceRepository(db)
	ids, err := invoices.IDsByCustomer(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)

	inv := &entity.Invoice{IssuedAt: time.Now(), Status: enum.InvoiceStatusDraft, CustomerID: &c.ID}
	require.NoError(t, invoices.Create(ctx, inv))
	ids, err = invoices.IDsByCustomer(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{inv.ID}, ids)
	require.NoError(t, invoices.Delete(ctx, inv.ID))

	locked, err := repo.GetByIDForUpdate(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, locked)

	require.NoError(t, repo.Delete(ctx, c.ID))
	gone, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(&pgconn.PgError{Code: "40001"}))
	assert.True(t, IsTransient(&pgconn.PgError{Code: "40P01"}))
	assert.False(t, IsTransient(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsTransient(errors.New("other")))
}
