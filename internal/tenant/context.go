package tenant

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ErrMissingTenantContext is returned by RequireTenantID when no tenant has been
// established for the current request. Services treat it as an authorization
// failure, not a transport error.
var ErrMissingTenantContext = errors.New("tenant: missing tenant context for database operation")

// RequestContext carries per-request identity through the request lifecycle.
// It is populated once at the HTTP boundary and then travels inside the
// standard context.Context, so services and repositories never thread tenant
// ids explicitly.
//
// TenantID starts out as the raw, unverified value taken from the X-Tenant-ID
// header. The tenant guard overwrites it with the canonical tenant id after
// resolution; the auth middleware may later attach a verified user id and
// roles. Those are the only two mutations in the happy path.
type RequestContext struct {
	mu sync.RWMutex

	requestID string
	tenantID  string
	userID    string
	roles     []string
}

// NewRequestContext builds a RequestContext. An empty requestID is replaced by
// a freshly generated UUID so the field is always present.
func NewRequestContext(requestID, tenantID, userID string) *RequestContext {
	if requestID == "" {
		requestID = uuid.New().String()
	}
	return &RequestContext{
		requestID: requestID,
		tenantID:  tenantID,
		userID:    userID,
	}
}

func (rc *RequestContext) RequestID() string {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	return rc.requestID
}

func (rc *RequestContext) TenantID() string {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	return rc.tenantID
}

func (rc *RequestContext) UserID() string {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	return rc.userID
}

// Roles returns a copy of the role set so callers cannot mutate shared state.
func (rc *RequestContext) Roles() []string {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	return append([]string{}, rc.roles...)
}

func (rc *RequestContext) setTenantID(id string) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.tenantID = id
}

func (rc *RequestContext) setUser(id string, roles []string) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.userID = id
	rc.roles = append([]string{}, roles...)
}

type requestContextKey struct{}

// WithRequestContext attaches rc to the given context. Handlers spawned from
// this context (including goroutines that inherit it) observe the same
// RequestContext instance, so a later SetTenantID is visible everywhere in the
// request's call graph.
func WithRequestContext(ctx context.Context, rc *RequestContext) context.Context {
	return context.WithValue(ctx, requestContextKey{}, rc)
}

// FromContext retrieves the RequestContext attached by the request-context
// middleware. The second return value reports whether one was present.
func FromContext(ctx context.Context) (*RequestContext, bool) {
	rc, ok := ctx.Value(requestContextKey{}).(*RequestContext)
	if !ok || rc == nil {
		return nil, false
	}
	return rc, true
}

// Current returns the active RequestContext, or a fresh one holding only a
// generated request id when none is attached. Unscoped code paths therefore
// never crash, but they also never inherit another request's tenant.
func Current(ctx context.Context) *RequestContext {
	if rc, ok := FromContext(ctx); ok {
		return rc
	}
	return NewRequestContext("", "", "")
}

// SetTenantID rewrites the tenant id of the active RequestContext in place.
// No-op when the context carries no RequestContext.
func SetTenantID(ctx context.Context, tenantID string) {
	if rc, ok := FromContext(ctx); ok {
		rc.setTenantID(tenantID)
	}
}

// SetUser attaches a verified user id and role set to the active
// RequestContext. No-op when the context carries no RequestContext.
func SetUser(ctx context.Context, userID string, roles []string) {
	if rc, ok := FromContext(ctx); ok {
		rc.setUser(userID, roles)
	}
}

// TenantID returns the active tenant id, if any.
func TenantID(ctx context.Context) (string, bool) {
	rc, ok := FromContext(ctx)
	if !ok {
		return "", false
	}
	id := rc.TenantID()
	return id, id != ""
}

// RequireTenantID is the accessor every tenant-scoped service calls at the top
// of its methods. It fails closed with ErrMissingTenantContext when the guard
// has not established a tenant.
func RequireTenantID(ctx context.Context) (string, error) {
	id, ok := TenantID(ctx)
	if !ok {
		return "", ErrMissingTenantContext
	}
	return id, nil
}

// RequestID returns the request id of the active RequestContext, or "" when
// the context is unscoped.
func RequestID(ctx context.Context) string {
	if rc, ok := FromContext(ctx); ok {
		return rc.RequestID()
	}
	return ""
}

// UserID returns the user id of the active RequestContext, if any.
func UserID(ctx context.Context) (string, bool) {
	rc, ok := FromContext(ctx)
	if !ok {
		return "", false
	}
	id := rc.UserID()
	return id, id != ""
}
