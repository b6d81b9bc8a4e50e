package checklist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"backend/internal/common"
	"backend/internal/tenant"
)

var (
	ErrNotFound       = errors.New("checklist: not found")
	ErrItemOutOfRange = errors.New("checklist: item index out of range")
)

// Service manages checklist templates and job checklists.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// CreateTemplate stores a reusable checklist.
func (s *Service) CreateTemplate(ctx context.Context, name string, labels []string) (*Template, error) {
	if _, err := tenant.RequireTenantID(ctx); err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, errors.New("checklist: template name is required")
	}
	if len(labels) == 0 {
		return nil, errors.New("checklist: template needs at least one item")
	}

	raw, err := json.Marshal(labels)
	if err != nil {
		return nil, err
	}
	t := &Template{
		ID:    uuid.New().String(),
		Name:  strings.TrimSpace(name),
		Items: datatypes.JSON(raw),
	}
	if err := s.db.WithContext(ctx).Create(t).Error; err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) GetTemplate(ctx context.Context, id string) (*Template, error) {
	if _, err := tenant.RequireTenantID(ctx); err != nil {
		return nil, err
	}
	var t Template
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Service) ListTemplates(ctx context.Context, page common.PaginationRequest) ([]*Template, int64, error) {
	if _, err := tenant.RequireTenantID(ctx); err != nil {
		return nil, 0, err
	}

	q := s.db.WithContext(ctx).Model(&Template{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var templates []*Template
	err := q.Order("name ASC").Scopes(common.Paginate(page)).Find(&templates).Error
	if err != nil {
		return nil, 0, err
	}
	return templates, total, nil
}

func (s *Service) DeleteTemplate(ctx context.Context, id string) error {
	if _, err := tenant.RequireTenantID(ctx); err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&Template{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// AttachToJob instantiates a template onto a job with all items unchecked.
func (s *Service) AttachToJob(ctx context.Context, jobID, templateID string) (*JobChecklist, error) {
	t, err := s.GetTemplate(ctx, templateID)
	if err != nil {
		return nil, err
	}

	var labels []string
	if err := json.Unmarshal(t.Items, &labels); err != nil {
		return nil, err
	}
	items := make([]Item, len(labels))
	for i, l := range labels {
		items[i] = Item{Label: l}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}

	cl := &JobChecklist{
		ID:         uuid.New().String(),
		JobID:      jobID,
		TemplateID: t.ID,
		Name:       t.Name,
		Items:      datatypes.JSON(raw),
	}
	if err := s.db.WithContext(ctx).Create(cl).Error; err != nil {
		return nil, err
	}
	return cl, nil
}

func (s *Service) Get(ctx context.Context, id string) (*JobChecklist, error) {
	if _, err := tenant.RequireTenantID(ctx); err != nil {
		return nil, err
	}
	var cl JobChecklist
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&cl).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &cl, nil
}

// ListForJob returns the checklists attached to a job.
func (s *Service) ListForJob(ctx context.Context, jobID string) ([]*JobChecklist, error) {
	if _, err := tenant.RequireTenantID(ctx); err != nil {
		return nil, err
	}
	var lists []*JobChecklist
	err := s.db.WithContext(ctx).
		Where("job_id = ?", jobID).
		Order("created_at ASC").
		Find(&lists).Error
	if err != nil {
		return nil, err
	}
	return lists, nil
}

// ToggleItem flips the done flag of one item by index.
func (s *Service) ToggleItem(ctx context.Context, id string, index int) (*JobChecklist, error) {
	cl, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var items []Item
	if err := json.Unmarshal(cl.Items, &items); err != nil {
		return nil, err
	}
	if index < 0 || index >= len(items) {
		return nil, fmt.Errorf("%w: %d", ErrItemOutOfRange, index)
	}
	items[index].Done = !items[index].Done

	raw, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}
	cl.Items = datatypes.JSON(raw)
	if err := s.db.WithContext(ctx).Save(cl).Error; err != nil {
		return nil, err
	}
	return cl, nil
}

// ProgressOf counts completed items of a checklist.
func (s *Service) ProgressOf(cl *JobChecklist) (Progress, error) {
	var items []Item
	if len(cl.Items) > 0 {
		if err := json.Unmarshal(cl.Items, &items); err != nil {
			return Progress{}, err
		}
	}
	p := Progress{Total: len(items)}
	for _, it := range items {
		if it.Done {
			p.Done++
		}
	}
	return p, nil
}
