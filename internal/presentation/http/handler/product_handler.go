package handler

import (
	"strconv"

	"github.com/Juanitagalindoe/TiendaPoli/internal/application/service"
	"github.com/Juanitagalindoe/TiendaPoli/internal/domain/repository"
	"github.com/Juanitagalindoe/TiendaPoli/internal/presentation/http/dto/request"
	"github.com/Juanitagalindoe/TiendaPoli/internal/presentation/http/dto/response"
	"github.com/Juanitagalindoe/TiendaPoli/pkg/apperror"
	"github.com/Juanitagalindoe/TiendaPoli/pkg/pagination"
	"github.com/gin-gonic/gin"
)

// ProductHandler handles product-related HTTP requests
type ProductHandler struct {
	ledger *service.ProductLedger
}

// NewProductHandler creates a new product handler
func NewProductHandler(ledger *service.ProductLedger) *ProductHandler {
	return &ProductHandler{ledger: ledger}
}

// List handles listing products
func (h *ProductHandler) List(c *gin.Context) {
	var filter request.ProductFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		bindError(c, err)
		return
	}

	params := &repository.ProductFilterParams{
		Pagination: &pagination.PaginationParams{
			Page:    filter.Page,
			PerPage: filter.PerPage,
		},
		Search:  filter.Search,
		InStock: filter.InStock,
	}

	result, err := h.ledger.ListProducts(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, "Products retrieved successfully", result)
}

// Create handles creating a product
func (h *ProductHandler) Create(c *gin.Context) {
	var req request.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	product, err := h.ledger.CreateProduct(c.Request.Context(), &service.CreateProductInput{
		Name:        req.Name,
		Description: req.Description,
		UnitPrice:   req.UnitPrice,
		Stock:       req.Stock,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Product created successfully", product)
}

// Get handles getting a single product
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	product, err := h.ledger.GetProduct(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Product retrieved successfully", product)
}

// Delete handles deleting a product that no invoice references
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	if err := h.ledger.DeleteProduct(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Product deleted successfully", nil)
}

// Restock handles returning units to a product's stock
func (h *ProductHandler) Restock(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var req request.RestockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	stock, err := h.ledger.Credit(c.Request.Context(), id, req.Quantity)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Product restocked successfully", gin.H{"product_id": id, "stock": stock})
}

// Availability reports whether a quantity could be sold right now
func (h *ProductHandler) Availability(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	qty, err := strconv.Atoi(c.DefaultQuery("quantity", "1"))
	if err != nil {
		response.Error(c, apperror.NewInvalidQuantityError("Quantity must be a number"))
		return
	}

	available, err := h.ledger.CheckAvailable(c.Request.Context(), id, qty)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Availability checked", gin.H{"product_id": id, "quantity": qty, "available": available})
}

// Invoices lists the invoices that hold a line on the product
func (h *ProductHandler) Invoices(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	if _, err := h.ledger.GetProduct(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	ids, err := h.ledger.ReferencingInvoices(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Referencing invoices retrieved successfully", gin.H{
		"product_id":  id,
		"referenced":  len(ids) > 0,
		"invoice_ids": ids,
	})
}
