package material

import (
	"time"

	"backend/internal/tenant"
)

// Material is a catalog item a tenant stocks or resells.
type Material struct {
	ID string `json:"id" gorm:"primaryKey;type:uuid"`
	tenant.Scoped

	Name          string `json:"name" gorm:"size:255;not null"`
	SKU           string `json:"sku" gorm:"size:100;index"`
	Unit          string `json:"unit" gorm:"size:50;default:each"` // each, ft, lb, ...
	UnitCostCents int64  `json:"unitCostCents" gorm:"not null;default:0"`
	Active        bool   `json:"active" gorm:"not null;default:true"`

	CreatedAt time.Time `json:"createdAt" gorm:"not null;autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"not null;autoUpdateTime"`
}

// JobMaterial records materials used on a job. UnitCostCents is snapshotted
// from the catalog at usage time so later price changes never rewrite
// history.
type JobMaterial struct {
	ID string `json:"id" gorm:"primaryKey;type:uuid"`
	tenant.Scoped

	JobID      string `json:"jobId" gorm:"type:uuid;not null;index"`
	MaterialID string `json:"materialId" gorm:"type:uuid;not null;index"`

	Name          string `json:"name" gorm:"size:255;not null"`
	Quantity      int64  `json:"quantity" gorm:"not null"`
	UnitCostCents int64  `json:"unitCostCents" gorm:"not null"`

	CreatedAt time.Time `json:"createdAt" gorm:"not null;autoCreateTime"`
}
