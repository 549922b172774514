package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Juanitagalindoe/TiendaPoli/internal/domain/repository"
	"github.com/Juanitagalindoe/TiendaPoli/pkg/apperror"
	"github.com/Juanitagalindoe/TiendaPoli/pkg/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerDebitAndCredit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.product(t, 1000, 5)

	stock, err := f.ledger.Debit(ctx, p.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, stock)

	_, err = f.ledger.Debit(ctx, p.ID, 3)
	require.True(t, errors.Is(err, apperror.ErrInsufficientStock))
	shortage, ok := apperror.AsStockShortage(err)
	require.True(t, ok)
	assert.Equal(t, 2, shortage.Available)
	assert.Equal(t, 3, shortage.Requested)
	assert.Equal(t, 2, f.stock(t, p.ID), "failed debit leaves stock untouched")

	stock, err = f.ledger.Credit(ctx, p.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, stock)

	_, err = f.ledger.Debit(ctx, 999, 1)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))

	_, err = f.ledger.Credit(ctx, 999, 1)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))

	_, err = f.ledger.Debit(ctx, p.ID, 0)
	assert.True(t, errors.Is(err, apperror.ErrInvalidQuantity))
}

func TestLedgerCheckAvailable(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.product(t, 1000, 2)

	ok, err := f.ledger.CheckAvailable(ctx, p.ID, 2)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.ledger.CheckAvailable(ctx, p.ID, 3)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = f.ledger.CheckAvailable(ctx, 4242, 1)
	require.NoError(t, err, "unknown product is unavailable, not an error")
	assert.False(t, ok)
}

func TestCreateProductValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.ledger.CreateProduct(context.Background(), &CreateProductInput{Name: "", UnitPrice: 0, Stock: -1})
	require.Error(t, err)

	appErr := apperror.GetAppError(err)
	assert.Equal(t, apperror.KindValidation, appErr.Kind)
	fields := make([]string, 0, len(appErr.Errors))
	for _, fe := range appErr.Errors {
		fields = append(fields, fe.Field)
	}
	assert.ElementsMatch(t, []string{"name", "description", "unit_price", "stock"}, fields)
}

func TestListProducts(t *testing.T) {
	f := newFixture(t)
	f.product(t, 100, 0)
	f.product(t, 200, 4)

	result, err := f.ledger.ListProducts(context.Background(), &repository.ProductFilterParams{
		Pagination: pagination.DefaultParams(),
		InStock:    true,
	})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.EqualValues(t, 200, result.Items[0].UnitPrice)
	assert.EqualValues(t, 1, result.Pagination.Total)
}

func TestDeleteProductInUse(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.product(t, 1000, 5)
	inv := f.draft(t, nil)

	_, _, err := f.coordinator.AddOrUpdateLine(ctx, line(inv.ID, 1, p.ID, 1))
	require.NoError(t, err)

	referenced, err := f.ledger.IsReferenced(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, referenced)

	err = f.ledger.DeleteProduct(ctx, p.ID)
	require.True(t, errors.Is(err, apperror.ErrInUse))
	inUse, ok := apperror.AsProductInUse(err)
	require.True(t, ok)
	assert.Equal(t, []uint{inv.ID}, inUse.InvoiceIDs)

	require.NoError(t, f.coordinator.CancelInvoice(ctx, inv.ID))

	ids, err := f.ledger.ReferencingInvoices(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)

	require.NoError(t, f.ledger.DeleteProduct(ctx, p.ID))
	_, err = f.ledger.GetProduct(ctx, p.ID)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))

	err = f.ledger.DeleteProduct(ctx, p.ID)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}
