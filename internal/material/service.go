package material

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"backend/internal/common"
	"backend/internal/tenant"
)

var (
	ErrNotFound = errors.New("material: not found")
	ErrInactive = errors.New("material: catalog item is inactive")
)

// Service manages the material catalog and per-job usage.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// CreateParams describes a new catalog item.
type CreateParams struct {
	Name          string
	SKU           string
	Unit          string
	UnitCostCents int64
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Material, error) {
	if _, err := tenant.RequireTenantID(ctx); err != nil {
		return nil, err
	}
	if strings.TrimSpace(params.Name) == "" {
		return nil, errors.New("material: name is required")
	}
	if params.UnitCostCents < 0 {
		return nil, errors.New("material: unit cost must not be negative")
	}

	m := &Material{
		ID:            uuid.New().String(),
		Name:          strings.TrimSpace(params.Name),
		SKU:           strings.TrimSpace(params.SKU),
		Unit:          params.Unit,
		UnitCostCents: params.UnitCostCents,
		Active:        true,
	}
	if m.Unit == "" {
		m.Unit = "each"
	}
	if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Material, error) {
	if _, err := tenant.RequireTenantID(ctx); err != nil {
		return nil, err
	}
	var m Material
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Service) List(ctx context.Context, keyword string, activeOnly bool, page common.PaginationRequest) ([]*Material, int64, error) {
	if _, err := tenant.RequireTenantID(ctx); err != nil {
		return nil, 0, err
	}

	q := s.db.WithContext(ctx).Model(&Material{}).
		Scopes(common.KeywordSearch(keyword, []string{"name", "sku"}))
	if activeOnly {
		q = q.Where("active = ?", true)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var materials []*Material
	err := q.Order("name ASC").Scopes(common.Paginate(page)).Find(&materials).Error
	if err != nil {
		return nil, 0, err
	}
	return materials, total, nil
}

// UpdateParams describes a partial catalog update. Nil fields are untouched.
type UpdateParams struct {
	Name          *string
	SKU           *string
	Unit          *string
	UnitCostCents *int64
	Active        *bool
}

func (s *Service) Update(ctx context.Context, id string, params UpdateParams) (*Material, error) {
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.Name != nil && strings.TrimSpace(*params.Name) != "" {
		m.Name = strings.TrimSpace(*params.Name)
	}
	if params.SKU != nil {
		m.SKU = strings.TrimSpace(*params.SKU)
	}
	if params.Unit != nil && *params.Unit != "" {
		m.Unit = *params.Unit
	}
	if params.UnitCostCents != nil && *params.UnitCostCents >= 0 {
		m.UnitCostCents = *params.UnitCostCents
	}
	if params.Active != nil {
		m.Active = *params.Active
	}

	if err := s.db.WithContext(ctx).Save(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

// RecordUsage snapshots a catalog item onto a job at its current cost.
func (s *Service) RecordUsage(ctx context.Context, jobID, materialID string, quantity int64) (*JobMaterial, error) {
	if quantity <= 0 {
		return nil, errors.New("material: quantity must be positive")
	}
	m, err := s.Get(ctx, materialID)
	if err != nil {
		return nil, err
	}
	if !m.Active {
		return nil, ErrInactive
	}

	jm := &JobMaterial{
		ID:            uuid.New().String(),
		JobID:         jobID,
		MaterialID:    m.ID,
		Name:          m.Name,
		Quantity:      quantity,
		UnitCostCents: m.UnitCostCents,
	}
	if err := s.db.WithContext(ctx).Create(jm).Error; err != nil {
		return nil, err
	}
	return jm, nil
}

// ListUsage returns the materials recorded against a job.
func (s *Service) ListUsage(ctx context.Context, jobID string) ([]*JobMaterial, error) {
	if _, err := tenant.RequireTenantID(ctx); err != nil {
		return nil, err
	}
	var usage []*JobMaterial
	err := s.db.WithContext(ctx).
		Where("job_id = ?", jobID).
		Order("created_at ASC").
		Find(&usage).Error
	if err != nil {
		return nil, err
	}
	return usage, nil
}

// CostForJob sums quantity * snapshotted unit cost over a job's usage rows.
func (s *Service) CostForJob(ctx context.Context, jobID string) (int64, error) {
	if _, err := tenant.RequireTenantID(ctx); err != nil {
		return 0, err
	}
	var total int64
	err := s.db.WithContext(ctx).Model(&JobMaterial{}).
		Where("job_id = ?", jobID).
		Select("COALESCE(SUM(quantity * unit_cost_cents), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

// RemoveUsage deletes a usage row, e.g. when logged against the wrong job.
func (s *Service) RemoveUsage(ctx context.Context, id string) error {
	if _, err := tenant.RequireTenantID(ctx); err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&JobMaterial{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
