package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an AppError independently of its message
type Kind string

const (
	KindNotFound           Kind = "not_found"
	KindInvalidQuantity    Kind = "invalid_quantity"
	KindInsufficientStock  Kind = "insufficient_stock"
	KindInUse              Kind = "in_use"
	KindMissingCustomer    Kind = "missing_customer"
	KindEmptyInvoice       Kind = "empty_invoice"
	KindInvoiceNotEditable Kind = "invoice_not_editable"
	KindInternal           Kind = "internal_store_failure"
	KindValidation         Kind = "validation"
	KindBadRequest         Kind = "bad_request"
	KindConflict           Kind = "conflict"
)

// AppError represents an application error with HTTP status code
type AppError struct {
	Code    int          `json:"code"`
	Kind    Kind         `json:"kind"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
	Details interface{}  `json:"details,omitempty"`
	Err     error        `json:"-"`
}

// FieldError represents a validation error for a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// StockShortage is attached to insufficient stock errors
type StockShortage struct {
	ProductID uint `json:"product_id"`
	Available int  `json:"available"`
	Requested int  `json:"requested"`
}

// ProductInUse is attached to errors raised when a referenced product is deleted
type ProductInUse struct {
	ProductID  uint   `json:"product_id"`
	InvoiceIDs []uint `json:"invoice_ids"`
}

// CustomerInUse is attached to errors raised when a customer with invoices is deleted
type CustomerInUse struct {
	CustomerID string `json:"customer_id"`
	InvoiceIDs []uint `json:"invoice_ids"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches any AppError of the same kind, so callers can compare against the sentinels below.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok || t.Kind == "" {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinels for errors.Is comparisons
var (
	ErrNotFound           = &AppError{Code: http.StatusNotFound, Kind: KindNotFound, Message: "Resource not found"}
	ErrInvalidQuantity    = &AppError{Code: http.StatusUnprocessableEntity, Kind: KindInvalidQuantity, Message: "Invalid quantity"}
	ErrInsufficientStock  = &AppError{Code: http.StatusConflict, Kind: KindInsufficientStock, Message: "Insufficient stock"}
	ErrInUse              = &AppError{Code: http.StatusConflict, Kind: KindInUse, Message: "Resource is in use"}
	ErrMissingCustomer    = &AppError{Code: http.StatusUnprocessableEntity, Kind: KindMissingCustomer, Message: "Invoice has no customer"}
	ErrEmptyInvoice       = &AppError{Code: http.StatusUnprocessableEntity, Kind: KindEmptyInvoice, Message: "Invoice has no lines"}
	ErrInvoiceNotEditable = &AppError{Code: http.StatusConflict, Kind: KindInvoiceNotEditable, Message: "Invoice is not editable"}
	ErrInternal           = &AppError{Code: http.StatusInternalServerError, Kind: KindInternal, Message: "Internal store failure"}
	ErrBadRequest         = &AppError{Code: http.StatusBadRequest, Kind: KindBadRequest, Message: "Bad request"}
)

// NewAppError creates a new application error
func NewAppError(code int, kind Kind, message string) *AppError {
	return &AppError{
		Code:    code,
		Kind:    kind,
		Message: message,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(fieldErrors []FieldError) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Kind:    KindValidation,
		Message: "Validation failed",
		Errors:  fieldErrors,
	}
}

// NewNotFoundError creates a not found error with a custom message
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Kind:    KindNotFound,
		Message: resource + " not found",
	}
}

// NewBadRequestError creates a bad request error with a custom message
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Kind:    KindBadRequest,
		Message: message,
	}
}

// NewConflictError creates a conflict error with a custom message
func NewConflictError(message string) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Kind:    KindConflict,
		Message: message,
	}
}

// NewInvalidQuantityError reports a non-positive quantity or an out of range percentage
func NewInvalidQuantityError(message string) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Kind:    KindInvalidQuantity,
		Message: message,
	}
}

// NewInsufficientStockError reports a debit larger than the product's stock
func NewInsufficientStockError(productID uint, available, requested int) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Kind:    KindInsufficientStock,
		Message: fmt.Sprintf("Insufficient stock. Available: %d, Requested: %d", available, requested),
		Details: StockShortage{ProductID: productID, Available: available, Requested: requested},
	}
}

// NewInUseError reports a product still referenced by invoice lines
func NewInUseError(productID uint, invoiceIDs []uint) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Kind:    KindInUse,
		Message: fmt.Sprintf("Product %d is referenced by %d invoice(s)", productID, len(invoiceIDs)),
		Details: ProductInUse{ProductID: productID, InvoiceIDs: invoiceIDs},
	}
}

// NewCustomerInUseError reports a customer still referenced by invoices
func NewCustomerInUseError(customerID string, invoiceIDs []uint) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Kind:    KindInUse,
		Message: fmt.Sprintf("Customer %s is referenced by %d invoice(s)", customerID, len(invoiceIDs)),
		Details: CustomerInUse{CustomerID: customerID, InvoiceIDs: invoiceIDs},
	}
}

// NewInvoiceNotEditableError reports a mutation attempted on a finalized invoice
func NewInvoiceNotEditableError(invoiceID uint) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Kind:    KindInvoiceNotEditable,
		Message: fmt.Sprintf("Invoice %d is finalized and can no longer be edited", invoiceID),
	}
}

// NewMissingCustomerError reports a finalize attempt on an invoice without customer
func NewMissingCustomerError(invoiceID uint) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Kind:    KindMissingCustomer,
		Message: fmt.Sprintf("Invoice %d has no customer", invoiceID),
	}
}

// NewEmptyInvoiceError reports a finalize attempt on an invoice without lines
func NewEmptyInvoiceError(invoiceID uint) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Kind:    KindEmptyInvoice,
		Message: fmt.Sprintf("Invoice %d has no lines", invoiceID),
	}
}

// Internal wraps a store failure. AppErrors pass through untouched.
func Internal(err error) error {
	if err == nil {
		return nil
	}
	if IsAppError(err) {
		return err
	}
	return &AppError{
		Code:    http.StatusInternalServerError,
		Kind:    KindInternal,
		Message: "Internal store failure",
		Err:     err,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError converts an error to AppError if possible
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return &AppError{
		Code:    http.StatusInternalServerError,
		Kind:    KindInternal,
		Message: err.Error(),
		Err:     err,
	}
}

// AsStockShortage extracts the shortage details of an insufficient stock error
func AsStockShortage(err error) (StockShortage, bool) {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return StockShortage{}, false
	}
	s, ok := appErr.Details.(StockShortage)
	return s, ok
}

// AsProductInUse extracts the referencing invoices of an in-use error
func AsProductInUse(err error) (ProductInUse, bool) {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return ProductInUse{}, false
	}
	p, ok := appErr.Details.(ProductInUse)
	return p, ok
}
