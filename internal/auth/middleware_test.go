package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"backend/internal/auth"
	"backend/internal/middleware"
	"backend/internal/tenant"
)

type staticResolver struct {
	tenants map[string]*tenant.Tenant
}

func (r *staticResolver) Resolve(_ context.Context, idOrSlug string) (*tenant.Tenant, error) {
	if t, ok := r.tenants[idOrSlug]; ok {
		return t, nil
	}
	return nil, tenant.ErrNotFound
}

func twoTenantDirectory() *staticResolver {
	return &staticResolver{tenants: map[string]*tenant.Tenant{
		"acme":    {ID: "id-acme", Slug: "acme", Status: tenant.StatusActive},
		"id-acme": {ID: "id-acme", Slug: "acme", Status: tenant.StatusActive},
		"beta":    {ID: "id-beta", Slug: "beta", Status: tenant.StatusActive},
		"id-beta": {ID: "id-beta", Slug: "beta", Status: tenant.StatusActive},
	}}
}

// authedRouter builds the production middleware chain: request context, tenant
// guard, then bearer auth.
func authedRouter(jwt *auth.JWTService, handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.RequestContext(zap.NewNop()))
	r.Use(middleware.TenantGuard(twoTenantDirectory(), zap.NewNop()))
	r.Use(auth.Middleware(jwt))
	r.GET("/data", handler)
	return r
}

func doAuthed(r *gin.Engine, token, tenantHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/data", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set(middleware.HeaderTenantID, tenantHeader)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestMiddleware_TokenBoundToItsTenant(t *testing.T) {
	jwt := auth.NewJWTService("test-secret", "fieldserve", nil)
	token, err := jwt.GenerateToken("user-1", "id-acme", []string{"technician"})
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	var handlerRan bool
	r := authedRouter(jwt, func(c *gin.Context) {
		handlerRan = true
		c.Status(http.StatusOK)
	})

	// A token issued under acme must not open any other tenant, whatever the
	// caller puts in the tenant header.
	resp := doAuthed(r, token, "beta")
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for mismatched tenant, got %d", resp.Code)
	}
	if handlerRan {
		t.Fatal("handler must not run with a foreign-tenant token")
	}

	resp = doAuthed(r, token, "id-beta")
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for mismatched canonical id, got %d", resp.Code)
	}

	// The same token works under its own tenant, by slug or id.
	for _, header := range []string{"acme", "id-acme"} {
		resp = doAuthed(r, token, header)
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200 under %s, got %d", header, resp.Code)
		}
	}
}

func TestMiddleware_TokenWithoutTenantClaimRejected(t *testing.T) {
	jwt := auth.NewJWTService("test-secret", "fieldserve", nil)
	token, err := jwt.GenerateToken("user-1", "", nil)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	r := authedRouter(jwt, func(c *gin.Context) { c.Status(http.StatusOK) })

	resp := doAuthed(r, token, "acme")
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for token without tenant claim, got %d", resp.Code)
	}
}

func TestMiddleware_AttachesUserToRequestContext(t *testing.T) {
	jwt := auth.NewJWTService("test-secret", "fieldserve", nil)
	token, err := jwt.GenerateToken("user-1", "id-acme", []string{"admin"})
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	var seenUser string
	var seenRoles []string
	r := authedRouter(jwt, func(c *gin.Context) {
		rc, _ := tenant.FromContext(c.Request.Context())
		seenUser = rc.UserID()
		seenRoles = rc.Roles()
		c.Status(http.StatusOK)
	})

	resp := doAuthed(r, token, "acme")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if seenUser != "user-1" {
		t.Fatalf("expected user-1, got %q", seenUser)
	}
	if len(seenRoles) != 1 || seenRoles[0] != "admin" {
		t.Fatalf("unexpected roles %v", seenRoles)
	}
}
