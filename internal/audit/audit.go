package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"backend/internal/tenant"
)

// Log is one recorded business action. Tenant-scoped: rows are stamped and
// filtered by the scope plugin like any other business table.
type Log struct {
	ID string `json:"id" gorm:"primaryKey;type:uuid"`
	tenant.Scoped

	UserID    string         `json:"userId" gorm:"type:uuid;index"`
	RequestID string         `json:"requestId" gorm:"size:100"`
	Action    string         `json:"action" gorm:"size:100;not null;index"`
	Resource  string         `json:"resource" gorm:"size:100;not null"`
	Details   datatypes.JSON `json:"details,omitempty"`

	CreatedAt time.Time `json:"createdAt" gorm:"not null;autoCreateTime"`
}

func (Log) TableName() string { return "audit_logs" }

// Recorder writes audit entries. Failures are logged and swallowed so an
// audit problem never breaks a business mutation.
type Recorder struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewRecorder(db *gorm.DB, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{db: db, logger: logger}
}

// Record writes one audit row for the active request. The tenant id comes
// from the RequestContext via the scope plugin's create injection; when no
// tenant is active the entry is dropped.
func (r *Recorder) Record(ctx context.Context, action, resource string, details any) {
	if _, ok := tenant.TenantID(ctx); !ok {
		return
	}

	entry := &Log{
		ID:        uuid.New().String(),
		Action:    action,
		Resource:  resource,
		RequestID: tenant.RequestID(ctx),
	}
	if userID, ok := tenant.UserID(ctx); ok {
		entry.UserID = userID
	}
	if details != nil {
		if data, err := json.Marshal(details); err == nil {
			entry.Details = data
		}
	}

	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		r.logger.Warn("audit write failed",
			zap.String("action", action),
			zap.Error(err),
		)
	}
}
