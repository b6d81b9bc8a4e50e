package customer

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"backend/internal/common"
	"backend/internal/tenant"
)

var ErrNotFound = errors.New("customer: not found")

// Service manages customers and their service addresses. All queries run
// through the tenant-scoped DB handle; no method mentions the tenant id.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// CreateParams describes a new customer.
type CreateParams struct {
	Name  string
	Email string
	Phone string
	Notes string
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Customer, error) {
	if _, err := tenant.RequireTenantID(ctx); err != nil {
		return nil, err
	}
	if strings.TrimSpace(params.Name) == "" {
		return nil, errors.New("customer: name is required")
	}

	c := &Customer{
		ID:    uuid.New().String(),
		Name:  strings.TrimSpace(params.Name),
		Email: strings.TrimSpace(params.Email),
		Phone: strings.TrimSpace(params.Phone),
		Notes: params.Notes,
	}
	if err := s.db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Customer, error) {
	if _, err := tenant.RequireTenantID(ctx); err != nil {
		return nil, err
	}
	var c Customer
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Service) List(ctx context.Context, keyword string, page common.PaginationRequest) ([]*Customer, int64, error) {
	if _, err := tenant.RequireTenantID(ctx); err != nil {
		return nil, 0, err
	}

	q := s.db.WithContext(ctx).Model(&Customer{}).
		Scopes(common.KeywordSearch(keyword, []string{"name", "email", "phone"}))

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var customers []*Customer
	err := q.Order("created_at DESC").Scopes(common.Paginate(page)).Find(&customers).Error
	if err != nil {
		return nil, 0, err
	}
	return customers, total, nil
}

// UpdateParams describes a partial customer update. Nil fields are untouched.
type UpdateParams struct {
	Name  *string
	Email *string
	Phone *string
	Notes *string
}

func (s *Service) Update(ctx context.Context, id string, params UpdateParams) (*Customer, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.Name != nil && strings.TrimSpace(*params.Name) != "" {
		c.Name = strings.TrimSpace(*params.Name)
	}
	if params.Email != nil {
		c.Email = strings.TrimSpace(*params.Email)
	}
	if params.Phone != nil {
		c.Phone = strings.TrimSpace(*params.Phone)
	}
	if params.Notes != nil {
		c.Notes = *params.Notes
	}

	if err := s.db.WithContext(ctx).Save(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := tenant.RequireTenantID(ctx); err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&Customer{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// AddAddress attaches a service address to a customer.
func (s *Service) AddAddress(ctx context.Context, customerID string, addr ServiceAddress) (*ServiceAddress, error) {
	if _, err := s.Get(ctx, customerID); err != nil {
		return nil, err
	}

	addr.ID = uuid.New().String()
	addr.CustomerID = customerID
	if strings.TrimSpace(addr.Street) == "" {
		return nil, errors.New("customer: street is required")
	}
	if err := s.db.WithContext(ctx).Create(&addr).Error; err != nil {
		return nil, err
	}
	return &addr, nil
}

func (s *Service) ListAddresses(ctx context.Context, customerID string) ([]*ServiceAddress, error) {
	if _, err := tenant.RequireTenantID(ctx); err != nil {
		return nil, err
	}
	var addrs []*ServiceAddress
	err := s.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at ASC").
		Find(&addrs).Error
	if err != nil {
		return nil, err
	}
	return addrs, nil
}
