package estimate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"backend/internal/audit"
	"backend/internal/common"
	"backend/internal/job"
	"backend/internal/tenant"
)

var (
	ErrNotFound          = errors.New("estimate: not found")
	ErrInvalidTransition = errors.New("estimate: invalid status transition")
	ErrNotApproved       = errors.New("estimate: only approved estimates can be converted")
	ErrAlreadyConverted  = errors.New("estimate: already converted to a job")
	ErrNotEditable       = errors.New("estimate: only drafts can be edited")
)

// Service manages estimates and their conversion into jobs.
type Service struct {
	db    *gorm.DB
	jobs  *job.Service
	audit *audit.Recorder
}

func NewService(db *gorm.DB, jobs *job.Service, rec *audit.Recorder) *Service {
	return &Service{db: db, jobs: jobs, audit: rec}
}

// CreateParams describes a new draft estimate.
type CreateParams struct {
	CustomerID string
	LeadID     string
	Title      string
	Items      []LineItem
	Notes      string
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Estimate, error) {
	if _, err := tenant.RequireTenantID(ctx); err != nil {
		return nil, err
	}
	if strings.TrimSpace(params.Title) == "" {
		return nil, errors.New("estimate: title is required")
	}
	if params.CustomerID == "" {
		return nil, errors.New("estimate: customer id is required")
	}
	if err := validateItems(params.Items); err != nil {
		return nil, err
	}

	raw, err := json.Marshal(params.Items)
	if err != nil {
		return nil, err
	}

	e := &Estimate{
		ID:         uuid.New().String(),
		CustomerID: params.CustomerID,
		LeadID:     params.LeadID,
		Title:      strings.TrimSpace(params.Title),
		Status:     StatusDraft,
		Items:      datatypes.JSON(raw),
		TotalCents: totalOf(params.Items),
		Notes:      params.Notes,
	}
	if err := s.db.WithContext(ctx).Create(e).Error; err != nil {
		return nil, err
	}
	if s.audit != nil {
		s.audit.Record(ctx, "estimate.create", "estimate", map[string]string{"id": e.ID})
	}
	return e, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Estimate, error) {
	if _, err := tenant.RequireTenantID(ctx); err != nil {
		return nil, err
	}
	var e Estimate
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Items unmarshals the stored line items of an estimate.
func (s *Service) Items(e *Estimate) ([]LineItem, error) {
	var items []LineItem
	if len(e.Items) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(e.Items, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ListFilter narrows List results.
type ListFilter struct {
	Status     string
	CustomerID string
	Keyword    string
}

func (s *Service) List(ctx context.Context, filter ListFilter, page common.PaginationRequest) ([]*Estimate, int64, error) {
	if _, err := tenant.RequireTenantID(ctx); err != nil {
		return nil, 0, err
	}

	q := s.db.WithContext(ctx).Model(&Estimate{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.CustomerID != "" {
		q = q.Where("customer_id = ?", filter.CustomerID)
	}
	q = q.Scopes(common.KeywordSearch(filter.Keyword, []string{"title", "notes"}))

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var estimates []*Estimate
	err := q.Order("created_at DESC").Scopes(common.Paginate(page)).Find(&estimates).Error
	if err != nil {
		return nil, 0, err
	}
	return estimates, total, nil
}

// UpdateParams describes a partial update of a draft. Nil fields are
// untouched.
type UpdateParams struct {
	Title *string
	Items *[]LineItem
	Notes *string
}

func (s *Service) Update(ctx context.Context, id string, params UpdateParams) (*Estimate, error) {
	e, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.Status != StatusDraft {
		return nil, ErrNotEditable
	}

	if params.Title != nil && strings.TrimSpace(*params.Title) != "" {
		e.Title = strings.TrimSpace(*params.Title)
	}
	if params.Notes != nil {
		e.Notes = *params.Notes
	}
	if params.Items != nil {
		if err := validateItems(*params.Items); err != nil {
			return nil, err
		}
		raw, err := json.Marshal(*params.Items)
		if err != nil {
			return nil, err
		}
		e.Items = datatypes.JSON(raw)
		e.TotalCents = totalOf(*params.Items)
	}

	if err := s.db.WithContext(ctx).Save(e).Error; err != nil {
		return nil, err
	}
	return e, nil
}

// UpdateStatus moves an estimate through draft -> sent -> approved/declined.
func (s *Service) UpdateStatus(ctx context.Context, id, status string) (*Estimate, error) {
	e, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canTransition(e.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, e.Status, status)
	}

	now := time.Now().UTC()
	e.Status = status
	switch status {
	case StatusSent:
		e.SentAt = &now
	case StatusApproved, StatusDeclined:
		e.DecidedAt = &now
	}

	if err := s.db.WithContext(ctx).Save(e).Error; err != nil {
		return nil, err
	}
	if s.audit != nil {
		s.audit.Record(ctx, "estimate.status", "estimate", map[string]string{"id": e.ID, "status": status})
	}
	return e, nil
}

// ConvertToJob turns an approved estimate into a scheduled job carrying the
// given hourly rate. The estimate total remains the materials/fixed quote;
// labor is billed from time entries at invoice time.
func (s *Service) ConvertToJob(ctx context.Context, id string, hourlyRateCents int64, scheduledAt *time.Time) (*Estimate, *job.Job, error) {
	e, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if e.Status != StatusApproved {
		return nil, nil, ErrNotApproved
	}
	if e.JobID != "" {
		return nil, nil, ErrAlreadyConverted
	}

	j, err := s.jobs.Create(ctx, job.CreateParams{
		CustomerID:      e.CustomerID,
		EstimateID:      e.ID,
		Title:           e.Title,
		Description:     e.Notes,
		HourlyRateCents: hourlyRateCents,
		ScheduledAt:     scheduledAt,
	})
	if err != nil {
		return nil, nil, err
	}

	e.JobID = j.ID
	if err := s.db.WithContext(ctx).Save(e).Error; err != nil {
		return nil, nil, err
	}
	if s.audit != nil {
		s.audit.Record(ctx, "estimate.convert", "estimate", map[string]string{"id": e.ID, "job_id": j.ID})
	}
	return e, j, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := tenant.RequireTenantID(ctx); err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Where("id = ? AND status = ?", id, StatusDraft).Delete(&Estimate{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func validateItems(items []LineItem) error {
	for i, it := range items {
		if strings.TrimSpace(it.Description) == "" {
			return fmt.Errorf("estimate: item %d missing description", i)
		}
		if it.Quantity <= 0 {
			return fmt.Errorf("estimate: item %d has non-positive quantity", i)
		}
		if it.UnitPriceCents < 0 {
			return fmt.Errorf("estimate: item %d has negative unit price", i)
		}
	}
	return nil
}
