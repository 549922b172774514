package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Juanitagalindoe/TiendaPoli/pkg/apperror"
	"github.com/Juanitagalindoe/TiendaPoli/pkg/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCustomer() *CreateCustomerInput {
	return &CreateCustomerInput{
		ID:           "1012345678",
		FirstName:    "Ana María",
		LastName:     "Pérez",
		Email:        "ana@example.com",
		RegisteredAt: testStart.AddDate(0, -2, 0),
	}
}

func TestCreateCustomer(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	c, err := f.customers.CreateCustomer(ctx, validCustomer())
	require.NoError(t, err)
	assert.Equal(t, "Ana María Pérez", c.FullName())

	got, err := f.customers.GetCustomer(ctx, "1012345678")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", got.Email)

	_, err = f.customers.CreateCustomer(ctx, validCustomer())
	assert.True(t, errors.Is(err, apperror.NewConflictError("")))

	_, err = f.customers.GetCustomer(ctx, "000000")
	assert.True(t, errors.Is(err, apperror.ErrNotFound))

	list, err := f.customers.ListCustomers(ctx, pagination.DefaultParams(), "pérez")
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)
}

func TestCreateCustomerValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(in *CreateCustomerInput)
		field  string
	}{
		{"short id", func(in *CreateCustomerInput) { in.ID = "12345" }, "id"},
		{"letters in id", func(in *CreateCustomerInput) { in.ID = "12345A7" }, "id"},
		{"digits in name", func(in *CreateCustomerInput) { in.FirstName = "Ana2" }, "first_name"},
		{"bad email", func(in *CreateCustomerInput) { in.Email = "ana.example.com" }, "email"},
		{"future registration", func(in *CreateCustomerInput) { in.RegisteredAt = testStart.Add(24 * time.Hour) }, "registered_at"},
		{"ancient registration", func(in *CreateCustomerInput) { in.RegisteredAt = testStart.AddDate(-81, 0, 0) }, "registered_at"},
		{"missing registration", func(in *CreateCustomerInput) { in.RegisteredAt = time.Time{} }, "registered_at"},
	}

	f := newFixture(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validCustomer()
			tt.mutate(in)

			_, err := f.customers.CreateCustomer(context.Background(), in)
			require.Error(t, err)
			appErr := apperror.GetAppError(err)
			assert.Equal(t, apperror.KindValidation, appErr.Kind)
			require.NotEmpty(t, appErr.Errors)
			assert.Equal(t, tt.field, appErr.Errors[0].Field)
		})
	}
}

func TestDeleteCustomer(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.customer(t, "1023456789")
	inv := f.draft(t, &c.ID)

	err := f.customers.DeleteCustomer(ctx, c.ID)
	require.True(t, errors.Is(err, apperror.ErrInUse))
	assert.Equal(t, apperror.CustomerInUse{CustomerID: c.ID, InvoiceIDs: []uint{inv.ID}}, apperror.GetAppError(err).Details)

	_, err = f.customers.GetCustomer(ctx, c.ID)
	require.NoError(t, err, "a rejected delete keeps the customer")

	require.NoError(t, f.coordinator.CancelInvoice(ctx, inv.ID))
	require.NoError(t, f.customers.DeleteCustomer(ctx, c.ID))

	_, err = f.customers.GetCustomer(ctx, c.ID)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))

	err = f.customers.DeleteCustomer(ctx, c.ID)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}
