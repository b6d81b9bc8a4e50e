package job

import (
	"time"

	"backend/internal/tenant"
)

// Job statuses. cancelled and invoiced are terminal.
const (
	StatusScheduled  = "scheduled"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
	StatusInvoiced   = "invoiced"
)

// Job is a unit of scheduled field work for a customer.
type Job struct {
	ID string `json:"id" gorm:"primaryKey;type:uuid"`
	tenant.Scoped

	CustomerID string `json:"customerId" gorm:"type:uuid;not null;index"`
	EstimateID string `json:"estimateId" gorm:"type:uuid;index"`
	AddressID  string `json:"addressId" gorm:"type:uuid"`

	Title       string `json:"title" gorm:"size:255;not null"`
	Description string `json:"description" gorm:"type:text"`
	Status      string `json:"status" gorm:"size:50;not null;default:scheduled;index"`

	// AssignedTo is the technician user id.
	AssignedTo      string `json:"assignedTo" gorm:"type:uuid;index"`
	HourlyRateCents int64  `json:"hourlyRateCents" gorm:"not null;default:0"`

	ScheduledAt *time.Time `json:"scheduledAt"`
	StartedAt   *time.Time `json:"startedAt"`
	CompletedAt *time.Time `json:"completedAt"`

	CreatedAt time.Time `json:"createdAt" gorm:"not null;autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"not null;autoUpdateTime"`
}

var validTransitions = map[string][]string{
	StatusScheduled:  {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
	StatusCompleted:  {StatusInvoiced},
}

func canTransition(from, to string) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Stats is the dashboard aggregation over a tenant's jobs.
type Stats struct {
	Scheduled  int64 `json:"scheduled"`
	InProgress int64 `json:"inProgress"`
	Completed  int64 `json:"completed"`
	Invoiced   int64 `json:"invoiced"`
}
