package tenant

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrForbidden is returned when the caller is not allowed to perform the
	// requested directory operation.
	ErrForbidden = errors.New("tenant: forbidden")
	// ErrSlugTaken is returned when the requested slug is already in use.
	ErrSlugTaken = errors.New("tenant: slug already exists")
)

var slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,62}[a-z0-9]$`)

// Service manages the tenant directory. These are platform-operator
// operations; they run outside any tenant scope.
type Service interface {
	Create(ctx context.Context, params CreateParams) (*Tenant, error)
	Get(ctx context.Context, id string) (*Tenant, error)
	List(ctx context.Context, limit, offset int) ([]*Tenant, int64, error)
	Update(ctx context.Context, id string, params UpdateParams) (*Tenant, error)
	Delete(ctx context.Context, id string) error
}

// CreateParams describes inputs for a new tenant.
type CreateParams struct {
	Name          string
	Slug          string
	Tier          string
	ContactEmail  string
	ContactPhone  string
	ContactPerson string
}

// UpdateParams describes a partial tenant update. Nil fields are untouched.
type UpdateParams struct {
	Name         *string
	Status       *string
	Tier         *string
	ContactEmail *string
}

type service struct {
	repo Repository
}

// NewService constructs the directory service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, params CreateParams) (*Tenant, error) {
	name := strings.TrimSpace(params.Name)
	slug := strings.ToLower(strings.TrimSpace(params.Slug))
	if name == "" || slug == "" {
		return nil, errors.New("tenant: name and slug are required")
	}
	if !slugPattern.MatchString(slug) {
		return nil, errors.New("tenant: invalid slug")
	}

	if _, err := s.repo.GetBySlug(ctx, slug); err == nil {
		return nil, ErrSlugTaken
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	tier := params.Tier
	if tier == "" {
		tier = "free"
	}

	t := &Tenant{
		ID:            uuid.New().String(),
		Name:          name,
		Slug:          slug,
		Status:        StatusActive,
		Tier:          tier,
		ContactEmail:  strings.TrimSpace(params.ContactEmail),
		ContactPhone:  strings.TrimSpace(params.ContactPhone),
		ContactPerson: strings.TrimSpace(params.ContactPerson),
	}
	if err := s.repo.Insert(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *service) Get(ctx context.Context, id string) (*Tenant, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, limit, offset int) ([]*Tenant, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, limit, offset)
}

func (s *service) Update(ctx context.Context, id string, params UpdateParams) (*Tenant, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.Name != nil && strings.TrimSpace(*params.Name) != "" {
		t.Name = strings.TrimSpace(*params.Name)
	}
	if params.Status != nil {
		switch *params.Status {
		case StatusActive, StatusSuspended:
			t.Status = *params.Status
		default:
			return nil, errors.New("tenant: invalid status")
		}
	}
	if params.Tier != nil && *params.Tier != "" {
		t.Tier = *params.Tier
	}
	if params.ContactEmail != nil {
		t.ContactEmail = strings.TrimSpace(*params.ContactEmail)
	}

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	return s.repo.SoftDelete(ctx, id)
}
