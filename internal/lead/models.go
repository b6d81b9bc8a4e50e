package lead

import (
	"time"

	"backend/internal/tenant"
)

// Lead statuses. won/lost are terminal.
const (
	StatusNew       = "new"
	StatusContacted = "contacted"
	StatusQualified = "qualified"
	StatusWon       = "won"
	StatusLost      = "lost"
)

// Lead is a prospective customer in the sales pipeline.
type Lead struct {
	ID string `json:"id" gorm:"primaryKey;type:uuid"`
	tenant.Scoped

	Name   string `json:"name" gorm:"size:255;not null"`
	Email  string `json:"email" gorm:"size:255"`
	Phone  string `json:"phone" gorm:"size:50"`
	Source string `json:"source" gorm:"size:100"` // referral, web, phone, ...
	Status string `json:"status" gorm:"size:50;not null;default:new;index"`
	Notes  string `json:"notes" gorm:"type:text"`

	AssignedTo string `json:"assignedTo" gorm:"type:uuid;index"`
	// CustomerID is set when the lead is won and converted.
	CustomerID string `json:"customerId" gorm:"type:uuid;index"`

	CreatedAt time.Time `json:"createdAt" gorm:"not null;autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"not null;autoUpdateTime"`
}

// validTransitions encodes the lead pipeline.
var validTransitions = map[string][]string{
	StatusNew:       {StatusContacted, StatusQualified, StatusLost},
	StatusContacted: {StatusQualified, StatusLost},
	StatusQualified: {StatusWon, StatusLost},
}

func canTransition(from, to string) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
