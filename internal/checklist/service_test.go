package checklist_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"backend/internal/checklist"
	"backend/internal/tenant"
)

func setupChecklistTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:checklist_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.Use(tenant.ScopePlugin{}); err != nil {
		t.Fatalf("install plugin: %v", err)
	}
	if err := db.AutoMigrate(&checklist.Template{}, &checklist.JobChecklist{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func scopedCtx(tenantID string) context.Context {
	return tenant.WithRequestContext(context.Background(), tenant.NewRequestContext("", tenantID, ""))
}

func TestChecklistService_TemplateValidation(t *testing.T) {
	svc := checklist.NewService(setupChecklistTestDB(t))
	ctx := scopedCtx("tenant-a")

	if _, err := svc.CreateTemplate(ctx, "", []string{"a"}); err == nil {
		t.Fatal("expected error for empty name")
	}
	if _, err := svc.CreateTemplate(ctx, "Startup", nil); err == nil {
		t.Fatal("expected error for empty item list")
	}
}

func TestChecklistService_AttachInstantiatesUnchecked(t *testing.T) {
	svc := checklist.NewService(setupChecklistTestDB(t))
	ctx := scopedCtx("tenant-a")

	tpl, err := svc.CreateTemplate(ctx, "HVAC startup", []string{"Check filter", "Test thermostat", "Verify drain"})
	if err != nil {
		t.Fatalf("create template: %v", err)
	}

	cl, err := svc.AttachToJob(ctx, "job-1", tpl.ID)
	if err != nil {
		t.Fatalf("attach: %v", err)
	}
	if cl.JobID != "job-1" || cl.Name != "HVAC startup" {
		t.Fatalf("unexpected checklist: %+v", cl)
	}

	p, err := svc.ProgressOf(cl)
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if p.Done != 0 || p.Total != 3 {
		t.Fatalf("expected 0/3, got %d/%d", p.Done, p.Total)
	}
}

func TestChecklistService_ToggleItem(t *testing.T) {
	svc := checklist.NewService(setupChecklistTestDB(t))
	ctx := scopedCtx("tenant-a")

	tpl, err := svc.CreateTemplate(ctx, "Startup", []string{"one", "two"})
	if err != nil {
		t.Fatalf("create template: %v", err)
	}
	cl, err := svc.AttachToJob(ctx, "job-1", tpl.ID)
	if err != nil {
		t.Fatalf("attach: %v", err)
	}

	toggled, err := svc.ToggleItem(ctx, cl.ID, 1)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	p, err := svc.ProgressOf(toggled)
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if p.Done != 1 || p.Total != 2 {
		t.Fatalf("expected 1/2, got %d/%d", p.Done, p.Total)
	}

	// Toggling again unchecks.
	toggled, err = svc.ToggleItem(ctx, cl.ID, 1)
	if err != nil {
		t.Fatalf("toggle back: %v", err)
	}
	p, err = svc.ProgressOf(toggled)
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if p.Done != 0 {
		t.Fatalf("expected unchecked, got %d done", p.Done)
	}

	if _, err := svc.ToggleItem(ctx, cl.ID, 5); !errors.Is(err, checklist.ErrItemOutOfRange) {
		t.Fatalf("expected ErrItemOutOfRange, got %v", err)
	}
}

func TestChecklistService_TemplateEditDoesNotRewriteAttached(t *testing.T) {
	svc := checklist.NewService(setupChecklistTestDB(t))
	ctx := scopedCtx("tenant-a")

	tpl, err := svc.CreateTemplate(ctx, "Startup", []string{"one", "two"})
	if err != nil {
		t.Fatalf("create template: %v", err)
	}
	cl, err := svc.AttachToJob(ctx, "job-1", tpl.ID)
	if err != nil {
		t.Fatalf("attach: %v", err)
	}

	// Deleting the template leaves the instantiated checklist intact.
	if err := svc.DeleteTemplate(ctx, tpl.ID); err != nil {
		t.Fatalf("delete template: %v", err)
	}
	got, err := svc.Get(ctx, cl.ID)
	if err != nil {
		t.Fatalf("get checklist: %v", err)
	}
	p, err := svc.ProgressOf(got)
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if p.Total != 2 {
		t.Fatalf("expected 2 items, got %d", p.Total)
	}
}

func TestChecklistService_IsolationAcrossTenants(t *testing.T) {
	svc := checklist.NewService(setupChecklistTestDB(t))

	tpl, err := svc.CreateTemplate(scopedCtx("tenant-a"), "Startup", []string{"one"})
	if err != nil {
		t.Fatalf("create template: %v", err)
	}

	if _, err := svc.GetTemplate(scopedCtx("tenant-b"), tpl.ID); !errors.Is(err, checklist.ErrNotFound) {
		t.Fatalf("expected not found across tenants, got %v", err)
	}
}
