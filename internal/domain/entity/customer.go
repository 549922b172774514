package entity

import (
	"time"
)

// Customer is the party an invoice is issued to. The ID is the customer's
// national identification number (6 to 12 digits).
type Customer struct {
	ID           string    `gorm:"primaryKey;size:12" json:"id"`
	FirstName    string    `gorm:"size:100;not null" json:"first_name"`
	LastName     string    `gorm:"size:100;not null" json:"last_name"`
	Email        string    `gorm:"size:255;not null" json:"email"`
	RegisteredAt time.Time `gorm:"type:date;not null" json:"registered_at"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName returns the table name for the Customer model
func (Customer) TableName() string {
	return "customers"
}

// FullName joins first and last name
func (c *Customer) FullName() string {
	return c.FirstName + " " + c.LastName
}
