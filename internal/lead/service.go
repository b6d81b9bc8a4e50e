package lead

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"backend/internal/audit"
	"backend/internal/common"
	"backend/internal/customer"
	"backend/internal/infra/queue"
	"backend/internal/tenant"
	"backend/internal/worker/tasks"
)

var (
	ErrNotFound          = errors.New("lead: not found")
	ErrInvalidTransition = errors.New("lead: invalid status transition")
	ErrAlreadyConverted  = errors.New("lead: already converted")
)

// followUpDelay is how long a new lead may sit untouched before the worker
// reminds the assignee.
const followUpDelay = 48 * time.Hour

// Service manages the lead pipeline.
type Service struct {
	db        *gorm.DB
	customers *customer.Service
	queue     queue.Client
	audit     *audit.Recorder
	logger    *zap.Logger
}

func NewService(db *gorm.DB, customers *customer.Service, q queue.Client, rec *audit.Recorder, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{db: db, customers: customers, queue: q, audit: rec, logger: logger}
}

// CreateParams describes a new lead.
type CreateParams struct {
	Name       string
	Email      string
	Phone      string
	Source     string
	Notes      string
	AssignedTo string
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Lead, error) {
	tenantID, err := tenant.RequireTenantID(ctx)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(params.Name) == "" {
		return nil, errors.New("lead: name is required")
	}

	l := &Lead{
		ID:         uuid.New().String(),
		Name:       strings.TrimSpace(params.Name),
		Email:      strings.TrimSpace(params.Email),
		Phone:      strings.TrimSpace(params.Phone),
		Source:     params.Source,
		Status:     StatusNew,
		Notes:      params.Notes,
		AssignedTo: params.AssignedTo,
	}
	if err := s.db.WithContext(ctx).Create(l).Error; err != nil {
		return nil, err
	}

	if s.queue != nil {
		payload := tasks.LeadFollowUpPayload{LeadID: l.ID, TenantID: tenantID}
		if err := s.queue.EnqueueLeadFollowUp(payload, followUpDelay); err != nil {
			s.logger.Warn("enqueue lead follow-up failed", zap.String("lead_id", l.ID), zap.Error(err))
		}
	}
	if s.audit != nil {
		s.audit.Record(ctx, "lead.create", "lead", map[string]string{"id": l.ID})
	}
	return l, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Lead, error) {
	if _, err := tenant.RequireTenantID(ctx); err != nil {
		return nil, err
	}
	var l Lead
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&l).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// ListFilter narrows List results.
type ListFilter struct {
	Status     string
	AssignedTo string
	Keyword    string
}

func (s *Service) List(ctx context.Context, filter ListFilter, page common.PaginationRequest) ([]*Lead, int64, error) {
	if _, err := tenant.RequireTenantID(ctx); err != nil {
		return nil, 0, err
	}

	q := s.db.WithContext(ctx).Model(&Lead{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.AssignedTo != "" {
		q = q.Where("assigned_to = ?", filter.AssignedTo)
	}
	q = q.Scopes(common.KeywordSearch(filter.Keyword, []string{"name", "email", "phone"}))

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var leads []*Lead
	err := q.Order("created_at DESC").Scopes(common.Paginate(page)).Find(&leads).Error
	if err != nil {
		return nil, 0, err
	}
	return leads, total, nil
}

// UpdateParams describes a partial lead update. Nil fields are untouched.
type UpdateParams struct {
	Name       *string
	Email      *string
	Phone      *string
	Notes      *string
	AssignedTo *string
}

func (s *Service) Update(ctx context.Context, id string, params UpdateParams) (*Lead, error) {
	l, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.Name != nil && strings.TrimSpace(*params.Name) != "" {
		l.Name = strings.TrimSpace(*params.Name)
	}
	if params.Email != nil {
		l.Email = strings.TrimSpace(*params.Email)
	}
	if params.Phone != nil {
		l.Phone = strings.TrimSpace(*params.Phone)
	}
	if params.Notes != nil {
		l.Notes = *params.Notes
	}
	if params.AssignedTo != nil {
		l.AssignedTo = *params.AssignedTo
	}

	if err := s.db.WithContext(ctx).Save(l).Error; err != nil {
		return nil, err
	}
	return l, nil
}

// UpdateStatus moves a lead along the pipeline, validating the transition.
func (s *Service) UpdateStatus(ctx context.Context, id, status string) (*Lead, error) {
	l, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canTransition(l.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, l.Status, status)
	}

	l.Status = status
	if err := s.db.WithContext(ctx).Save(l).Error; err != nil {
		return nil, err
	}
	if s.audit != nil {
		s.audit.Record(ctx, "lead.status", "lead", map[string]string{"id": l.ID, "status": status})
	}
	return l, nil
}

// Convert wins a qualified lead and creates the corresponding customer.
func (s *Service) Convert(ctx context.Context, id string) (*Lead, *customer.Customer, error) {
	l, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if l.CustomerID != "" {
		return nil, nil, ErrAlreadyConverted
	}
	if !canTransition(l.Status, StatusWon) {
		return nil, nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, l.Status, StatusWon)
	}

	c, err := s.customers.Create(ctx, customer.CreateParams{
		Name:  l.Name,
		Email: l.Email,
		Phone: l.Phone,
		Notes: "converted from lead " + l.ID,
	})
	if err != nil {
		return nil, nil, err
	}

	l.Status = StatusWon
	l.CustomerID = c.ID
	if err := s.db.WithContext(ctx).Save(l).Error; err != nil {
		return nil, nil, err
	}
	if s.audit != nil {
		s.audit.Record(ctx, "lead.convert", "lead", map[string]string{"id": l.ID, "customer_id": c.ID})
	}
	return l, c, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := tenant.RequireTenantID(ctx); err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&Lead{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
