package user

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"backend/internal/common"
	"backend/internal/tenant"
)

var (
	ErrNotFound           = errors.New("user: not found")
	ErrEmailTaken         = errors.New("user: email already registered")
	ErrInvalidCredentials = errors.New("user: invalid credentials")
)

// Service manages staff accounts. Lookups run through the tenant-scoped DB
// handle, so the same email may exist under different tenants.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// CreateParams describes a new staff account.
type CreateParams struct {
	Email    string
	Name     string
	Password string
	Role     string
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*User, error) {
	if _, err := tenant.RequireTenantID(ctx); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(params.Email))
	if email == "" {
		return nil, errors.New("user: email is required")
	}
	if len(params.Password) < 8 {
		return nil, errors.New("user: password must be at least 8 characters")
	}
	role := params.Role
	if role == "" {
		role = RoleTechnician
	}

	var existing int64
	if err := s.db.WithContext(ctx).Model(&User{}).
		Where("email = ?", email).
		Count(&existing).Error; err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u := &User{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         strings.TrimSpace(params.Name),
		PasswordHash: string(hash),
		Role:         role,
		Active:       true,
	}
	if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
		return nil, err
	}
	return u, nil
}

// Authenticate checks credentials against the active tenant's accounts. The
// error is the same for unknown email and wrong password.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	if _, err := tenant.RequireTenantID(ctx); err != nil {
		return nil, err
	}

	var u User
	err := s.db.WithContext(ctx).
		Where("email = ? AND active = ?", strings.ToLower(strings.TrimSpace(email)), true).
		First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return &u, nil
}

func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	if _, err := tenant.RequireTenantID(ctx); err != nil {
		return nil, err
	}
	var u User
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Service) List(ctx context.Context, page common.PaginationRequest) ([]*User, int64, error) {
	if _, err := tenant.RequireTenantID(ctx); err != nil {
		return nil, 0, err
	}

	q := s.db.WithContext(ctx).Model(&User{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []*User
	err := q.Order("name ASC").Scopes(common.Paginate(page)).Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// Deactivate disables login without deleting history.
func (s *Service) Deactivate(ctx context.Context, id string) error {
	u, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	u.Active = false
	return s.db.WithContext(ctx).Save(u).Error
}
