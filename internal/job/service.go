package job

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"backend/internal/audit"
	"backend/internal/common"
	"backend/internal/metrics"
	"backend/internal/tenant"
)

var (
	ErrNotFound          = errors.New("job: not found")
	ErrInvalidTransition = errors.New("job: invalid status transition")
)

// Service manages jobs and their lifecycle.
type Service struct {
	db    *gorm.DB
	audit *audit.Recorder
}

func NewService(db *gorm.DB, rec *audit.Recorder) *Service {
	return &Service{db: db, audit: rec}
}

// CreateParams describes a new job.
type CreateParams struct {
	CustomerID      string
	EstimateID      string
	AddressID       string
	Title           string
	Description     string
	AssignedTo      string
	HourlyRateCents int64
	ScheduledAt     *time.Time
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Job, error) {
	tenantID, err := tenant.RequireTenantID(ctx)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(params.Title) == "" {
		return nil, errors.New("job: title is required")
	}
	if params.CustomerID == "" {
		return nil, errors.New("job: customer id is required")
	}

	j := &Job{
		ID:              uuid.New().String(),
		CustomerID:      params.CustomerID,
		EstimateID:      params.EstimateID,
		AddressID:       params.AddressID,
		Title:           strings.TrimSpace(params.Title),
		Description:     params.Description,
		Status:          StatusScheduled,
		AssignedTo:      params.AssignedTo,
		HourlyRateCents: params.HourlyRateCents,
		ScheduledAt:     params.ScheduledAt,
	}
	if err := s.db.WithContext(ctx).Create(j).Error; err != nil {
		return nil, err
	}

	metrics.JobsCreatedTotal.WithLabelValues(tenantID).Inc()
	if s.audit != nil {
		s.audit.Record(ctx, "job.create", "job", map[string]string{"id": j.ID})
	}
	return j, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Job, error) {
	if _, err := tenant.RequireTenantID(ctx); err != nil {
		return nil, err
	}
	var j Job
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&j).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &j, nil
}

// ListFilter narrows List results.
type ListFilter struct {
	Status     string
	CustomerID string
	AssignedTo string
	Keyword    string
}

func (s *Service) List(ctx context.Context, filter ListFilter, page common.PaginationRequest) ([]*Job, int64, error) {
	if _, err := tenant.RequireTenantID(ctx); err != nil {
		return nil, 0, err
	}

	q := s.db.WithContext(ctx).Model(&Job{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.CustomerID != "" {
		q = q.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.AssignedTo != "" {
		q = q.Where("assigned_to = ?", filter.AssignedTo)
	}
	q = q.Scopes(common.KeywordSearch(filter.Keyword, []string{"title", "description"}))

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var jobs []*Job
	err := q.Order("created_at DESC").Scopes(common.Paginate(page)).Find(&jobs).Error
	if err != nil {
		return nil, 0, err
	}
	return jobs, total, nil
}

// UpdateParams describes a partial job update. Nil fields are untouched.
type UpdateParams struct {
	Title           *string
	Description     *string
	AddressID       *string
	HourlyRateCents *int64
	ScheduledAt     *time.Time
}

func (s *Service) Update(ctx context.Context, id string, params UpdateParams) (*Job, error) {
	j, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.Title != nil && strings.TrimSpace(*params.Title) != "" {
		j.Title = strings.TrimSpace(*params.Title)
	}
	if params.Description != nil {
		j.Description = *params.Description
	}
	if params.AddressID != nil {
		j.AddressID = *params.AddressID
	}
	if params.HourlyRateCents != nil {
		j.HourlyRateCents = *params.HourlyRateCents
	}
	if params.ScheduledAt != nil {
		j.ScheduledAt = params.ScheduledAt
	}

	if err := s.db.WithContext(ctx).Save(j).Error; err != nil {
		return nil, err
	}
	return j, nil
}

// Assign hands the job to a technician.
func (s *Service) Assign(ctx context.Context, id, userID string) (*Job, error) {
	j, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	j.AssignedTo = userID
	if err := s.db.WithContext(ctx).Save(j).Error; err != nil {
		return nil, err
	}
	if s.audit != nil {
		s.audit.Record(ctx, "job.assign", "job", map[string]string{"id": j.ID, "user_id": userID})
	}
	return j, nil
}

// Transition moves the job through its lifecycle, stamping the start and
// completion times as it goes.
func (s *Service) Transition(ctx context.Context, id, status string) (*Job, error) {
	j, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canTransition(j.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, j.Status, status)
	}

	now := time.Now().UTC()
	j.Status = status
	switch status {
	case StatusInProgress:
		j.StartedAt = &now
	case StatusCompleted:
		j.CompletedAt = &now
	}

	if err := s.db.WithContext(ctx).Save(j).Error; err != nil {
		return nil, err
	}
	if s.audit != nil {
		s.audit.Record(ctx, "job.status", "job", map[string]string{"id": j.ID, "status": status})
	}
	return j, nil
}

// GetStats aggregates job counts by status for the dashboard.
func (s *Service) GetStats(ctx context.Context) (*Stats, error) {
	if _, err := tenant.RequireTenantID(ctx); err != nil {
		return nil, err
	}

	stats := &Stats{}
	counts := []struct {
		status string
		dest   *int64
	}{
		{StatusScheduled, &stats.Scheduled},
		{StatusInProgress, &stats.InProgress},
		{StatusCompleted, &stats.Completed},
		{StatusInvoiced, &stats.Invoiced},
	}
	for _, c := range counts {
		if err := s.db.WithContext(ctx).Model(&Job{}).
			Where("status = ?", c.status).
			Count(c.dest).Error; err != nil {
			return nil, err
		}
	}
	return stats, nil
}
