package handler

import (
	"net/http"

	"github.com/Juanitagalindoe/TiendaPoli/internal/application/service"
	"github.com/Juanitagalindoe/TiendaPoli/internal/domain/entity"
	"github.com/Juanitagalindoe/TiendaPoli/internal/domain/enum"
	"github.com/Juanitagalindoe/TiendaPoli/internal/domain/repository"
	"github.com/Juanitagalindoe/TiendaPoli/internal/presentation/http/dto/request"
	"github.com/Juanitagalindoe/TiendaPoli/internal/presentation/http/dto/response"
	"github.com/Juanitagalindoe/TiendaPoli/pkg/apperror"
	"github.com/Juanitagalindoe/TiendaPoli/pkg/pagination"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// InvoiceHandler handles invoice and invoice line HTTP requests.
// Every mutation goes through the coordinator.
type InvoiceHandler struct {
	coordinator *service.Coordinator
	invoices    *service.InvoiceAggregate
	lines       *service.LineEngine
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(coordinator *service.Coordinator, invoices *service.InvoiceAggregate, lines *service.LineEngine) *InvoiceHandler {
	return &InvoiceHandler{coordinator: coordinator, invoices: invoices, lines: lines}
}

// List handles listing invoices. Drafts are only included on request.
func (h *InvoiceHandler) List(c *gin.Context) {
	var filter request.InvoiceFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		bindError(c, err)
		return
	}

	params := &repository.InvoiceFilterParams{
		Pagination: &pagination.PaginationParams{
			Page:    filter.Page,
			PerPage: filter.PerPage,
		},
		IncludeDrafts: filter.IncludeDrafts,
	}
	if filter.Status != "" {
		status, err := enum.ParseInvoiceStatus(filter.Status)
		if err != nil {
			response.Error(c, apperror.NewBadRequestError(err.Error()))
			return
		}
		params.Status = &status
	}
	if filter.CustomerID != "" {
		params.CustomerID = &filter.CustomerID
	}

	result, err := h.invoices.ListInvoices(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, "Invoices retrieved successfully", result)
}

// Create handles opening a draft invoice
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req request.CreateInvoiceRequest
	// an empty body opens a draft without customer
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
	}

	invoice, err := h.coordinator.StartInvoice(c.Request.Context(), req.CustomerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Invoice created successfully", invoice)
}

// Get handles getting an invoice with its lines
func (h *InvoiceHandler) Get(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	invoice, err := h.invoices.GetInvoice(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invoice retrieved successfully", invoice)
}

// AssignCustomer handles setting the customer of a draft
func (h *InvoiceHandler) AssignCustomer(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var req request.AssignCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	invoice, err := h.coordinator.AssignCustomer(c.Request.Context(), id, req.CustomerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Customer assigned successfully", invoice)
}

// Finalize handles freezing a draft
func (h *InvoiceHandler) Finalize(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	invoice, err := h.coordinator.FinalizeInvoice(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invoice finalized successfully", invoice)
}

// Recompute handles refreshing the header totals from the lines
func (h *InvoiceHandler) Recompute(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	invoice, err := h.coordinator.RecomputeTotals(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invoice totals recomputed", invoice)
}

// Cancel handles cancelling an invoice, returning its stock
func (h *InvoiceHandler) Cancel(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	if err := h.coordinator.CancelInvoice(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invoice cancelled successfully", nil)
}

// ListLines handles listing the lines of an invoice
func (h *InvoiceHandler) ListLines(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	lines, err := h.lines.ListLines(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invoice lines retrieved successfully", lines)
}

// PutLine handles creating or replacing the line at a given number
func (h *InvoiceHandler) PutLine(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	number, ok := intParam(c, "line")
	if !ok {
		return
	}

	var req request.LineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	pct := decimal.Zero
	if req.DiscountPercent != nil {
		pct = *req.DiscountPercent
	}

	line, invoice, err := h.coordinator.AddOrUpdateLine(c.Request.Context(), &service.LineInput{
		InvoiceID:       id,
		LineNumber:      number,
		ProductID:       req.ProductID,
		Quantity:        req.Quantity,
		DiscountPercent: pct,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Invoice line saved successfully", gin.H{
		"line":    line,
		"invoice": invoice,
	})
}

// DeleteLine handles removing a line, returning its stock
func (h *InvoiceHandler) DeleteLine(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	number, ok := intParam(c, "line")
	if !ok {
		return
	}

	invoice, err := h.coordinator.RemoveLine(c.Request.Context(), entity.LineKey{InvoiceID: id, LineNumber: number})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invoice line removed successfully", invoice)
}
