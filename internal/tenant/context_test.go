package tenant_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"backend/internal/tenant"
)

func TestRequestContext_GeneratesRequestID(t *testing.T) {
	rc := tenant.NewRequestContext("", "", "")
	if rc.RequestID() == "" {
		t.Fatal("expected a generated request id")
	}

	rc = tenant.NewRequestContext("req-1", "", "")
	if rc.RequestID() != "req-1" {
		t.Fatalf("expected req-1, got %s", rc.RequestID())
	}
}

func TestSetTenantID_VisibleThroughDerivedContexts(t *testing.T) {
	rc := tenant.NewRequestContext("", "raw-header-value", "")
	ctx := tenant.WithRequestContext(context.Background(), rc)

	// Derive a child the way handlers do; the guard's rewrite must be
	// visible through it because both share the same RequestContext.
	child := context.WithValue(ctx, struct{ k string }{"k"}, "v")

	tenant.SetTenantID(ctx, "canonical-id")

	got, ok := tenant.TenantID(child)
	if !ok || got != "canonical-id" {
		t.Fatalf("expected canonical-id through derived context, got %q (ok=%v)", got, ok)
	}
}

func TestSetTenantID_NoScopeIsNoOp(t *testing.T) {
	ctx := context.Background()
	tenant.SetTenantID(ctx, "t-1")

	if _, ok := tenant.TenantID(ctx); ok {
		t.Fatal("expected no tenant on an unscoped context")
	}
}

func TestCurrent_FailSoft(t *testing.T) {
	rc := tenant.Current(context.Background())
	if rc == nil {
		t.Fatal("expected a fresh RequestContext")
	}
	if rc.RequestID() == "" {
		t.Fatal("expected generated request id")
	}
	if rc.TenantID() != "" {
		t.Fatalf("fresh context must not carry a tenant, got %s", rc.TenantID())
	}
}

func TestCurrent_ReturnsAttached(t *testing.T) {
	rc := tenant.NewRequestContext("req-9", "t-9", "")
	ctx := tenant.WithRequestContext(context.Background(), rc)

	if got := tenant.Current(ctx); got != rc {
		t.Fatal("expected the attached RequestContext instance")
	}
}

func TestRequireTenantID(t *testing.T) {
	_, err := tenant.RequireTenantID(context.Background())
	if !errors.Is(err, tenant.ErrMissingTenantContext) {
		t.Fatalf("expected ErrMissingTenantContext, got %v", err)
	}

	// A RequestContext with an empty tenant id is still unscoped.
	ctx := tenant.WithRequestContext(context.Background(), tenant.NewRequestContext("", "", ""))
	if _, err := tenant.RequireTenantID(ctx); !errors.Is(err, tenant.ErrMissingTenantContext) {
		t.Fatalf("expected ErrMissingTenantContext for empty tenant, got %v", err)
	}

	tenant.SetTenantID(ctx, "t-1")
	id, err := tenant.RequireTenantID(ctx)
	if err != nil || id != "t-1" {
		t.Fatalf("expected t-1, got %q err=%v", id, err)
	}
}

func TestSetUser(t *testing.T) {
	rc := tenant.NewRequestContext("", "t-1", "")
	ctx := tenant.WithRequestContext(context.Background(), rc)

	tenant.SetUser(ctx, "u-1", []string{"admin"})

	id, ok := tenant.UserID(ctx)
	if !ok || id != "u-1" {
		t.Fatalf("expected u-1, got %q (ok=%v)", id, ok)
	}

	roles := rc.Roles()
	if len(roles) != 1 || roles[0] != "admin" {
		t.Fatalf("unexpected roles: %v", roles)
	}

	// Mutating the returned slice must not leak into shared state.
	roles[0] = "changed"
	if rc.Roles()[0] != "admin" {
		t.Fatal("Roles() must return a copy")
	}
}

func TestRequestContext_ConcurrentAccess(t *testing.T) {
	rc := tenant.NewRequestContext("", "t-0", "")
	ctx := tenant.WithRequestContext(context.Background(), rc)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			tenant.SetTenantID(ctx, "t-1")
		}()
		go func() {
			defer wg.Done()
			_, _ = tenant.TenantID(ctx)
			_ = rc.Roles()
		}()
	}
	wg.Wait()

	if got, _ := tenant.TenantID(ctx); got != "t-1" {
		t.Fatalf("expected t-1 after concurrent writes, got %s", got)
	}
}
