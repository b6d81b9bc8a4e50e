package material_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"backend/internal/material"
	"backend/internal/tenant"
)

func setupMaterialTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:material_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.Use(tenant.ScopePlugin{}); err != nil {
		t.Fatalf("install plugin: %v", err)
	}
	if err := db.AutoMigrate(&material.Material{}, &material.JobMaterial{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func scopedCtx(tenantID string) context.Context {
	return tenant.WithRequestContext(context.Background(), tenant.NewRequestContext("", tenantID, ""))
}

func TestMaterialService_UsageSnapshotsCost(t *testing.T) {
	svc := material.NewService(setupMaterialTestDB(t))
	ctx := scopedCtx("tenant-a")

	m, err := svc.Create(ctx, material.CreateParams{Name: "Copper pipe", SKU: "CU-12", Unit: "ft", UnitCostCents: 350})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	usage, err := svc.RecordUsage(ctx, "job-1", m.ID, 10)
	if err != nil {
		t.Fatalf("record usage: %v", err)
	}
	if usage.UnitCostCents != 350 || usage.Name != "Copper pipe" {
		t.Fatalf("usage not snapshotted: %+v", usage)
	}

	// A later price change must not rewrite recorded usage.
	newCost := int64(500)
	if _, err := svc.Update(ctx, m.ID, material.UpdateParams{UnitCostCents: &newCost}); err != nil {
		t.Fatalf("update: %v", err)
	}

	cost, err := svc.CostForJob(ctx, "job-1")
	if err != nil {
		t.Fatalf("cost: %v", err)
	}
	if cost != 3500 {
		t.Fatalf("expected 3500 at the old price, got %d", cost)
	}
}

func TestMaterialService_InactiveItemCannotBeUsed(t *testing.T) {
	svc := material.NewService(setupMaterialTestDB(t))
	ctx := scopedCtx("tenant-a")

	m, err := svc.Create(ctx, material.CreateParams{Name: "Old valve", UnitCostCents: 100})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	inactive := false
	if _, err := svc.Update(ctx, m.ID, material.UpdateParams{Active: &inactive}); err != nil {
		t.Fatalf("update: %v", err)
	}

	if _, err := svc.RecordUsage(ctx, "job-1", m.ID, 1); !errors.Is(err, material.ErrInactive) {
		t.Fatalf("expected ErrInactive, got %v", err)
	}
}

func TestMaterialService_CostSumsAllUsage(t *testing.T) {
	svc := material.NewService(setupMaterialTestDB(t))
	ctx := scopedCtx("tenant-a")

	pipe, err := svc.Create(ctx, material.CreateParams{Name: "Pipe", UnitCostCents: 350})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	valve, err := svc.Create(ctx, material.CreateParams{Name: "Valve", UnitCostCents: 1200})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.RecordUsage(ctx, "job-1", pipe.ID, 4); err != nil {
		t.Fatalf("usage: %v", err)
	}
	if _, err := svc.RecordUsage(ctx, "job-1", valve.ID, 2); err != nil {
		t.Fatalf("usage: %v", err)
	}
	// Usage on another job does not leak in.
	if _, err := svc.RecordUsage(ctx, "job-2", pipe.ID, 100); err != nil {
		t.Fatalf("usage: %v", err)
	}

	cost, err := svc.CostForJob(ctx, "job-1")
	if err != nil {
		t.Fatalf("cost: %v", err)
	}
	if cost != 4*350+2*1200 {
		t.Fatalf("expected 3800, got %d", cost)
	}
}

func TestMaterialService_RemoveUsage(t *testing.T) {
	svc := material.NewService(setupMaterialTestDB(t))
	ctx := scopedCtx("tenant-a")

	m, err := svc.Create(ctx, material.CreateParams{Name: "Pipe", UnitCostCents: 350})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	usage, err := svc.RecordUsage(ctx, "job-1", m.ID, 4)
	if err != nil {
		t.Fatalf("usage: %v", err)
	}

	if err := svc.RemoveUsage(ctx, usage.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := svc.RemoveUsage(ctx, usage.ID); !errors.Is(err, material.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	cost, err := svc.CostForJob(ctx, "job-1")
	if err != nil {
		t.Fatalf("cost: %v", err)
	}
	if cost != 0 {
		t.Fatalf("expected 0 after removal, got %d", cost)
	}
}

func TestMaterialService_CatalogIsolationAcrossTenants(t *testing.T) {
	svc := material.NewService(setupMaterialTestDB(t))

	m, err := svc.Create(scopedCtx("tenant-a"), material.CreateParams{Name: "Pipe", UnitCostCents: 350})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Get(scopedCtx("tenant-b"), m.ID); !errors.Is(err, material.ErrNotFound) {
		t.Fatalf("expected not found across tenants, got %v", err)
	}
}
