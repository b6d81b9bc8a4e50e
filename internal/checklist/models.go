package checklist

import (
	"time"

	"gorm.io/datatypes"

	"backend/internal/tenant"
)

// Template is a reusable list of checklist items for a kind of job.
type Template struct {
	ID string `json:"id" gorm:"primaryKey;type:uuid"`
	tenant.Scoped

	Name string `json:"name" gorm:"size:255;not null"`
	// Items is a JSON array of item labels.
	Items datatypes.JSON `json:"items" gorm:"type:json"`

	CreatedAt time.Time `json:"createdAt" gorm:"not null;autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"not null;autoUpdateTime"`
}

// Item is one entry of an instantiated job checklist.
type Item struct {
	Label string `json:"label"`
	Done  bool   `json:"done"`
}

// JobChecklist is a template instantiated onto a job. Items carry their own
// done flags; Progress is derived, never stored.
type JobChecklist struct {
	ID string `json:"id" gorm:"primaryKey;type:uuid"`
	tenant.Scoped

	JobID      string `json:"jobId" gorm:"type:uuid;not null;index"`
	TemplateID string `json:"templateId" gorm:"type:uuid;index"`

	Name  string         `json:"name" gorm:"size:255;not null"`
	Items datatypes.JSON `json:"items" gorm:"type:json"`

	CreatedAt time.Time `json:"createdAt" gorm:"not null;autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"not null;autoUpdateTime"`
}

// Progress summarizes completion of a job checklist.
type Progress struct {
	Done  int `json:"done"`
	Total int `json:"total"`
}
