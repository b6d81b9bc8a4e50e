package user

import (
	"time"

	"backend/internal/tenant"
)

// Roles a user may hold within a tenant.
const (
	RoleAdmin      = "admin"
	RoleDispatcher = "dispatcher"
	RoleTechnician = "technician"
)

// User is a staff account within a tenant. Email is unique per tenant, not
// globally (enforced in the service), so login happens behind the tenant
// guard.
type User struct {
	ID string `json:"id" gorm:"primaryKey;type:uuid"`
	tenant.Scoped

	Email        string `json:"email" gorm:"size:255;not null;index"`
	Name         string `json:"name" gorm:"size:255;not null"`
	PasswordHash string `json:"-" gorm:"size:255;not null"`
	Role         string `json:"role" gorm:"size:50;not null;default:technician"`
	Active       bool   `json:"active" gorm:"not null;default:true"`

	CreatedAt time.Time `json:"createdAt" gorm:"not null;autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"not null;autoUpdateTime"`
}
