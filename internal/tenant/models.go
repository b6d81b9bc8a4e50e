package tenant

import "time"

// Tenant is the directory entry for a customer organization. All business data
// references Tenant.ID; the human-readable Slug may be used interchangeably
// with the id at the HTTP boundary and is normalized away by the guard.
//
// The directory itself is deliberately not tenant-scoped: the scope plugin
// would otherwise need a tenant to look up a tenant.
type Tenant struct {
	ID     string `json:"id" gorm:"primaryKey;type:uuid"`
	Name   string `json:"name" gorm:"size:255;not null"`
	Slug   string `json:"slug" gorm:"size:100;uniqueIndex;not null"`
	Status string `json:"status" gorm:"size:50;not null;default:active"`

	Tier string `json:"tier" gorm:"size:50;not null;default:free"`

	ContactEmail  string `json:"contactEmail" gorm:"size:255"`
	ContactPhone  string `json:"contactPhone" gorm:"size:50"`
	ContactPerson string `json:"contactPerson" gorm:"size:100"`

	CreatedAt time.Time  `json:"createdAt" gorm:"not null;autoCreateTime"`
	UpdatedAt time.Time  `json:"updatedAt" gorm:"not null;autoUpdateTime"`
	DeletedAt *time.Time `json:"deletedAt,omitempty" gorm:"index"`
}

const (
	StatusActive    = "active"
	StatusSuspended = "suspended"
)

// Scoped is embedded by every tenant-owned model. Embedding it contributes the
// tenant_id column and marks the type for the scope plugin, so a tenant-owned
// table cannot be added to the schema without also being isolation-enforced.
type Scoped struct {
	TenantID string `json:"tenantId" gorm:"type:uuid;not null;index"`
}

func (Scoped) tenantScoped() {}

// Owned is satisfied exactly by models that embed Scoped.
type Owned interface {
	tenantScoped()
}
