package customer

import (
	"time"

	"backend/internal/tenant"
)

// Customer is a billable client of a tenant.
type Customer struct {
	ID string `json:"id" gorm:"primaryKey;type:uuid"`
	tenant.Scoped

	Name  string `json:"name" gorm:"size:255;not null"`
	Email string `json:"email" gorm:"size:255"`
	Phone string `json:"phone" gorm:"size:50"`
	Notes string `json:"notes" gorm:"type:text"`

	CreatedAt time.Time `json:"createdAt" gorm:"not null;autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"not null;autoUpdateTime"`
}

// ServiceAddress is a location where work is performed for a customer.
type ServiceAddress struct {
	ID string `json:"id" gorm:"primaryKey;type:uuid"`
	tenant.Scoped

	CustomerID string `json:"customerId" gorm:"type:uuid;not null;index"`
	Label      string `json:"label" gorm:"size:100"`
	Street     string `json:"street" gorm:"size:255;not null"`
	City       string `json:"city" gorm:"size:100"`
	State      string `json:"state" gorm:"size:100"`
	PostalCode string `json:"postalCode" gorm:"size:20"`

	CreatedAt time.Time `json:"createdAt" gorm:"not null;autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"not null;autoUpdateTime"`
}
