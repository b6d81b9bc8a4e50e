package estimate

import (
	"time"

	"gorm.io/datatypes"

	"backend/internal/tenant"
)

// Estimate statuses. approved/declined are terminal for the send loop;
// an approved estimate may still be converted into a job.
const (
	StatusDraft    = "draft"
	StatusSent     = "sent"
	StatusApproved = "approved"
	StatusDeclined = "declined"
)

// LineItem is one priced row of an estimate. Amounts are integer cents.
type LineItem struct {
	Description    string `json:"description"`
	Quantity       int64  `json:"quantity"`
	UnitPriceCents int64  `json:"unitPriceCents"`
}

// Estimate is a priced quote for prospective work. Line items are stored
// as a JSON column; TotalCents is recomputed on every write so list views
// never have to unmarshal the items.
type Estimate struct {
	ID string `json:"id" gorm:"primaryKey;type:uuid"`
	tenant.Scoped

	CustomerID string `json:"customerId" gorm:"type:uuid;not null;index"`
	LeadID     string `json:"leadId" gorm:"type:uuid;index"`

	Title  string         `json:"title" gorm:"size:255;not null"`
	Status string         `json:"status" gorm:"size:50;not null;default:draft;index"`
	Items  datatypes.JSON `json:"items" gorm:"type:json"`

	TotalCents int64  `json:"totalCents" gorm:"not null;default:0"`
	Notes      string `json:"notes" gorm:"type:text"`

	// JobID is set once the approved estimate has been converted.
	JobID string `json:"jobId" gorm:"type:uuid;index"`

	SentAt    *time.Time `json:"sentAt"`
	DecidedAt *time.Time `json:"decidedAt"`

	CreatedAt time.Time `json:"createdAt" gorm:"not null;autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"not null;autoUpdateTime"`
}

var validTransitions = map[string][]string{
	StatusDraft: {StatusSent},
	StatusSent:  {StatusApproved, StatusDeclined},
}

func canTransition(from, to string) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func totalOf(items []LineItem) int64 {
	var total int64
	for _, it := range items {
		total += it.Quantity * it.UnitPriceCents
	}
	return total
}
