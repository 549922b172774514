package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsMatchesByKind(t *testing.T) {
	err := fmt.Errorf("add line: %w", NewInsufficientStockError(7, 0, 1))

	assert.True(t, errors.Is(err, ErrInsufficientStock))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(NewNotFoundError("Product"), ErrNotFound))
}

func TestAsStockShortage(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NewInsufficientStockError(7, 2, 5))

	s, ok := AsStockShortage(err)
	require.True(t, ok)
	assert.Equal(t, StockShortage{ProductID: 7, Available: 2, Requested: 5}, s)
	assert.Equal(t, "Insufficient stock. Available: 2, Requested: 5", GetAppError(err).Message)

	_, ok = AsStockShortage(NewNotFoundError("Product"))
	assert.False(t, ok)
}

func TestAsProductInUse(t *testing.T) {
	p, ok := AsProductInUse(NewInUseError(3, []uint{1, 4}))
	require.True(t, ok)
	assert.Equal(t, []uint{1, 4}, p.InvoiceIDs)
}

func TestCustomerInUse(t *testing.T) {
	err := NewCustomerInUseError("1023456789", []uint{2})
	assert.True(t, errors.Is(err, ErrInUse))
	assert.Equal(t, http.StatusConflict, err.Code)
	assert.Equal(t, CustomerInUse{CustomerID: "1023456789", InvoiceIDs: []uint{2}}, err.Details)

	_, ok := AsProductInUse(err)
	assert.False(t, ok)
}

func TestInternalWrapsPlainErrors(t *testing.T) {
	cause := errors.New("connection reset")
	err := Internal(cause)

	assert.True(t, errors.Is(err, ErrInternal))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, http.StatusInternalServerError, GetAppError(err).Code)

	notFound := NewNotFoundError("Invoice")
	assert.Same(t, notFound, Internal(notFound))
	assert.Nil(t, Internal(nil))
}

func TestGetAppErrorFallback(t *testing.T) {
	appErr := GetAppError(errors.New("boom"))
	assert.Equal(t, KindInternal, appErr.Kind)
	assert.Equal(t, "boom", appErr.Message)
}
