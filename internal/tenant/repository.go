package tenant

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a requested tenant does not exist.
var ErrNotFound = errors.New("tenant: not found")

// Repository defines storage operations for the tenant directory.
type Repository interface {
	Insert(ctx context.Context, t *Tenant) error
	GetByID(ctx context.Context, id string) (*Tenant, error)
	// GetByIDOrSlug resolves a raw identifier that may be either the canonical
	// id or the human-readable slug. Single indexed equality query; this is on
	// the hot path of every tenant-scoped request.
	GetByIDOrSlug(ctx context.Context, idOrSlug string) (*Tenant, error)
	GetBySlug(ctx context.Context, slug string) (*Tenant, error)
	List(ctx context.Context, limit, offset int) ([]*Tenant, int64, error)
	Update(ctx context.Context, t *Tenant) error
	SoftDelete(ctx context.Context, id string) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository constructs a Repository backed by the given DB handle.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Insert(ctx context.Context, t *Tenant) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *gormRepository) GetByID(ctx context.Context, id string) (*Tenant, error) {
	var t Tenant
	err := r.db.WithContext(ctx).
		Where("id = ? AND deleted_at IS NULL", id).
		First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *gormRepository) GetByIDOrSlug(ctx context.Context, idOrSlug string) (*Tenant, error) {
	// The id column is a uuid; comparing it against a non-uuid string makes
	// Postgres reject the whole statement, so the id arm only runs for input
	// that parses as a uuid. Anything else can only be a slug.
	if _, err := uuid.Parse(idOrSlug); err != nil {
		return r.GetBySlug(ctx, idOrSlug)
	}

	var t Tenant
	err := r.db.WithContext(ctx).
		Where("(id = ? OR slug = ?) AND deleted_at IS NULL", idOrSlug, idOrSlug).
		First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *gormRepository) GetBySlug(ctx context.Context, slug string) (*Tenant, error) {
	var t Tenant
	err := r.db.WithContext(ctx).
		Where("slug = ? AND deleted_at IS NULL", slug).
		First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *gormRepository) List(ctx context.Context, limit, offset int) ([]*Tenant, int64, error) {
	q := r.db.WithContext(ctx).Model(&Tenant{}).Where("deleted_at IS NULL")

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tenants []*Tenant
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&tenants).Error
	if err != nil {
		return nil, 0, err
	}
	return tenants, total, nil
}

func (r *gormRepository) Update(ctx context.Context, t *Tenant) error {
	res := r.db.WithContext(ctx).Model(&Tenant{}).
		Where("id = ? AND deleted_at IS NULL", t.ID).
		Updates(t)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormRepository) SoftDelete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Model(&Tenant{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Update("deleted_at", gorm.Expr("CURRENT_TIMESTAMP"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
