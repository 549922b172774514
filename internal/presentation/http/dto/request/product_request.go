package request

// CreateProductRequest represents a product creation request
type CreateProductRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=255"`
	Description string `json:"description" binding:"required,max=2000"`
	UnitPrice   int64  `json:"unit_price" binding:"gt=0"`
	Stock       int    `json:"stock" binding:"gte=0"`
}

// RestockRequest adds units to a product's stock
type RestockRequest struct {
	Quantity int `json:"quantity" binding:"required,gt=0"`
}

// ProductFilterRequest represents product filter parameters
type ProductFilterRequest struct {
	Search  string `form:"search"`
	InStock bool   `form:"in_stock"`
	Page    int    `form:"page"`
	PerPage int    `form:"per_page"`
}
