package request

// CreateCustomerRequest represents a customer creation request.
// RegisteredAt is a calendar date, YYYY-MM-DD.
type CreateCustomerRequest struct {
	ID           string `json:"id" binding:"required"`
	FirstName    string `json:"first_name" binding:"required"`
	LastName     string `json:"last_name" binding:"required"`
	Email        string `json:"email" binding:"required"`
	RegisteredAt string `json:"registered_at" binding:"required,datetime=2006-01-02"`
}
