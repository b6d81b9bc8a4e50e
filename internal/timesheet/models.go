package timesheet

import (
	"time"

	"backend/internal/tenant"
)

// TimeEntry records a technician's clocked time against a job. An entry
// with a nil ClockOut is open; a technician may hold at most one open
// entry at a time.
type TimeEntry struct {
	ID string `json:"id" gorm:"primaryKey;type:uuid"`
	tenant.Scoped

	JobID  string `json:"jobId" gorm:"type:uuid;not null;index"`
	UserID string `json:"userId" gorm:"type:uuid;not null;index"`

	ClockIn  time.Time  `json:"clockIn" gorm:"not null"`
	ClockOut *time.Time `json:"clockOut"`

	// Minutes is the rounded duration, filled on clock-out.
	Minutes int64  `json:"minutes" gorm:"not null;default:0"`
	Notes   string `json:"notes" gorm:"type:text"`

	CreatedAt time.Time `json:"createdAt" gorm:"not null;autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"not null;autoUpdateTime"`
}
