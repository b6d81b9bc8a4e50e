package billing

import (
	"time"

	"backend/internal/tenant"
)

// Invoice statuses. paid/void are terminal.
const (
	StatusDraft  = "draft"
	StatusIssued = "issued"
	StatusPaid   = "paid"
	StatusVoid   = "void"
)

// Invoice bills a completed job. All amounts are integer cents; the labor
// and material subtotals are frozen at generation time.
type Invoice struct {
	ID string `json:"id" gorm:"primaryKey;type:uuid"`
	tenant.Scoped

	JobID      string `json:"jobId" gorm:"type:uuid;not null;uniqueIndex"`
	CustomerID string `json:"customerId" gorm:"type:uuid;not null;index"`

	Number string `json:"number" gorm:"size:50;not null;index"`
	Status string `json:"status" gorm:"size:50;not null;default:draft;index"`

	LaborMinutes   int64 `json:"laborMinutes" gorm:"not null;default:0"`
	LaborCents     int64 `json:"laborCents" gorm:"not null;default:0"`
	MaterialsCents int64 `json:"materialsCents" gorm:"not null;default:0"`
	SubtotalCents  int64 `json:"subtotalCents" gorm:"not null;default:0"`
	TaxCents       int64 `json:"taxCents" gorm:"not null;default:0"`
	TotalCents     int64 `json:"totalCents" gorm:"not null;default:0"`

	// TaxRatePercent records the rate applied, so later config changes do
	// not alter issued invoices.
	TaxRatePercent float64 `json:"taxRatePercent" gorm:"not null;default:0"`

	IssuedAt *time.Time `json:"issuedAt"`
	DueAt    *time.Time `json:"dueAt"`
	PaidAt   *time.Time `json:"paidAt"`

	CreatedAt time.Time `json:"createdAt" gorm:"not null;autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"not null;autoUpdateTime"`
}
