package billing_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"backend/internal/billing"
	"backend/internal/config"
	"backend/internal/job"
	"backend/internal/material"
	"backend/internal/tenant"
	"backend/internal/timesheet"
)

func setupBillingTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:billing_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.Use(tenant.ScopePlugin{}); err != nil {
		t.Fatalf("install plugin: %v", err)
	}
	err = db.AutoMigrate(
		&billing.Invoice{},
		&job.Job{},
		&timesheet.TimeEntry{},
		&material.Material{},
		&material.JobMaterial{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func scopedCtx(tenantID string) context.Context {
	return tenant.WithRequestContext(context.Background(), tenant.NewRequestContext("", tenantID, ""))
}

type billingFixture struct {
	db         *gorm.DB
	jobs       *job.Service
	timesheets *timesheet.Service
	materials  *material.Service
	invoices   *billing.Service
}

func newBillingFixture(t *testing.T, cfg config.BillingConfig) *billingFixture {
	t.Helper()
	db := setupBillingTestDB(t)
	jobs := job.NewService(db, nil)
	timesheets := timesheet.NewService(db, jobs)
	materials := material.NewService(db)
	invoices := billing.NewService(db, jobs, timesheets, materials, nil, nil, cfg, nil)
	return &billingFixture{db: db, jobs: jobs, timesheets: timesheets, materials: materials, invoices: invoices}
}

// completedJob creates a job at 60.00/h and drives it to completed, with
// 90 closed minutes and one material usage of 3 x 2.50.
func (f *billingFixture) completedJob(t *testing.T, ctx context.Context) *job.Job {
	t.Helper()
	j, err := f.jobs.Create(ctx, job.CreateParams{CustomerID: "cust-1", Title: "Furnace swap", HourlyRateCents: 6000})
	if err != nil {
		t.Fatalf("create job: %v", err)
	}
	for _, status := range []string{job.StatusInProgress, job.StatusCompleted} {
		if _, err := f.jobs.Transition(ctx, j.ID, status); err != nil {
			t.Fatalf("transition to %s: %v", status, err)
		}
	}

	now := time.Now().UTC()
	out := now.Add(-time.Hour)
	entry := timesheet.TimeEntry{
		ID:       uuid.New().String(),
		JobID:    j.ID,
		UserID:   "user-1",
		ClockIn:  now.Add(-3 * time.Hour),
		ClockOut: &out,
		Minutes:  90,
	}
	if err := f.db.WithContext(ctx).Create(&entry).Error; err != nil {
		t.Fatalf("seed time entry: %v", err)
	}

	usage := material.JobMaterial{
		ID:            uuid.New().String(),
		JobID:         j.ID,
		MaterialID:    uuid.New().String(),
		Name:          "Flex duct",
		Quantity:      3,
		UnitCostCents: 250,
	}
	if err := f.db.WithContext(ctx).Create(&usage).Error; err != nil {
		t.Fatalf("seed material usage: %v", err)
	}
	return j
}

func TestBillingService_GenerateComputesTotals(t *testing.T) {
	f := newBillingFixture(t, config.BillingConfig{TaxRatePercent: 10, PaymentTermDays: 30})
	ctx := scopedCtx("tenant-a")
	j := f.completedJob(t, ctx)

	inv, err := f.invoices.Generate(ctx, j.ID)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	// 90 min at 6000c/h = 9000c labor; 3 x 250c = 750c materials;
	// subtotal 9750c; 10% tax = 975c; total 10725c.
	if inv.LaborMinutes != 90 {
		t.Fatalf("expected 90 labor minutes, got %d", inv.LaborMinutes)
	}
	if inv.LaborCents != 9000 {
		t.Fatalf("expected 9000 labor cents, got %d", inv.LaborCents)
	}
	if inv.MaterialsCents != 750 {
		t.Fatalf("expected 750 material cents, got %d", inv.MaterialsCents)
	}
	if inv.SubtotalCents != 9750 {
		t.Fatalf("expected 9750 subtotal, got %d", inv.SubtotalCents)
	}
	if inv.TaxCents != 975 {
		t.Fatalf("expected 975 tax, got %d", inv.TaxCents)
	}
	if inv.TotalCents != 10725 {
		t.Fatalf("expected 10725 total, got %d", inv.TotalCents)
	}
	if inv.TaxRatePercent != 10 {
		t.Fatalf("tax rate not snapshotted, got %v", inv.TaxRatePercent)
	}
	if inv.Status != billing.StatusDraft {
		t.Fatalf("expected draft, got %s", inv.Status)
	}
	if !strings.HasPrefix(inv.Number, "INV-") {
		t.Fatalf("unexpected invoice number %q", inv.Number)
	}
}

func TestBillingService_LaborRoundsUpToNextCent(t *testing.T) {
	f := newBillingFixture(t, config.BillingConfig{TaxRatePercent: 0})
	ctx := scopedCtx("tenant-a")

	j, err := f.jobs.Create(ctx, job.CreateParams{CustomerID: "cust-1", Title: "Quick fix", HourlyRateCents: 100})
	if err != nil {
		t.Fatalf("create job: %v", err)
	}
	for _, status := range []string{job.StatusInProgress, job.StatusCompleted} {
		if _, err := f.jobs.Transition(ctx, j.ID, status); err != nil {
			t.Fatalf("transition: %v", err)
		}
	}

	out := time.Now().UTC()
	entry := timesheet.TimeEntry{
		ID:       uuid.New().String(),
		JobID:    j.ID,
		UserID:   "user-1",
		ClockIn:  out.Add(-time.Minute),
		ClockOut: &out,
		Minutes:  1,
	}
	if err := f.db.WithContext(ctx).Create(&entry).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	inv, err := f.invoices.Generate(ctx, j.ID)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	// 1 minute at 100c/h is 1.67c, charged as 2c.
	if inv.LaborCents != 2 {
		t.Fatalf("expected 2 cents, got %d", inv.LaborCents)
	}
}

func TestBillingService_GenerateRequiresCompletedJob(t *testing.T) {
	f := newBillingFixture(t, config.BillingConfig{})
	ctx := scopedCtx("tenant-a")

	j, err := f.jobs.Create(ctx, job.CreateParams{CustomerID: "cust-1", Title: "Pending"})
	if err != nil {
		t.Fatalf("create job: %v", err)
	}

	if _, err := f.invoices.Generate(ctx, j.ID); !errors.Is(err, billing.ErrJobNotCompleted) {
		t.Fatalf("expected ErrJobNotCompleted, got %v", err)
	}
}

func TestBillingService_OneLiveInvoicePerJob(t *testing.T) {
	f := newBillingFixture(t, config.BillingConfig{TaxRatePercent: 10, PaymentTermDays: 30})
	ctx := scopedCtx("tenant-a")
	j := f.completedJob(t, ctx)

	first, err := f.invoices.Generate(ctx, j.ID)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := f.invoices.Generate(ctx, j.ID); !errors.Is(err, billing.ErrAlreadyInvoiced) {
		t.Fatalf("expected ErrAlreadyInvoiced, got %v", err)
	}

	// Voiding frees the job for a fresh invoice.
	if _, err := f.invoices.Void(ctx, first.ID); err != nil {
		t.Fatalf("void: %v", err)
	}
	if _, err := f.invoices.Generate(ctx, j.ID); err != nil {
		t.Fatalf("regenerate after void: %v", err)
	}
}

func TestBillingService_IssueLifecycle(t *testing.T) {
	f := newBillingFixture(t, config.BillingConfig{TaxRatePercent: 10, PaymentTermDays: 30})
	ctx := scopedCtx("tenant-a")
	j := f.completedJob(t, ctx)

	inv, err := f.invoices.Generate(ctx, j.ID)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	// Paying a draft is rejected.
	if _, err := f.invoices.MarkPaid(ctx, inv.ID); !errors.Is(err, billing.ErrNotIssued) {
		t.Fatalf("expected ErrNotIssued, got %v", err)
	}

	issued, err := f.invoices.Issue(ctx, inv.ID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if issued.IssuedAt == nil || issued.DueAt == nil {
		t.Fatal("expected issued/due stamps")
	}
	wantDue := issued.IssuedAt.AddDate(0, 0, 30)
	if !issued.DueAt.Equal(wantDue) {
		t.Fatalf("expected due %v, got %v", wantDue, issued.DueAt)
	}

	// Issuing moves the job to invoiced.
	reloaded, err := f.jobs.Get(ctx, j.ID)
	if err != nil {
		t.Fatalf("reload job: %v", err)
	}
	if reloaded.Status != job.StatusInvoiced {
		t.Fatalf("expected invoiced job, got %s", reloaded.Status)
	}

	// Issuing twice is rejected.
	if _, err := f.invoices.Issue(ctx, inv.ID); !errors.Is(err, billing.ErrNotDraft) {
		t.Fatalf("expected ErrNotDraft, got %v", err)
	}

	unpaid, err := f.invoices.UnpaidTotal(ctx)
	if err != nil {
		t.Fatalf("unpaid total: %v", err)
	}
	if unpaid != issued.TotalCents {
		t.Fatalf("expected unpaid %d, got %d", issued.TotalCents, unpaid)
	}

	paid, err := f.invoices.MarkPaid(ctx, inv.ID)
	if err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if paid.PaidAt == nil {
		t.Fatal("expected PaidAt stamp")
	}

	unpaid, err = f.invoices.UnpaidTotal(ctx)
	if err != nil {
		t.Fatalf("unpaid total: %v", err)
	}
	if unpaid != 0 {
		t.Fatalf("expected no unpaid balance, got %d", unpaid)
	}

	// Paid invoices cannot be voided.
	if _, err := f.invoices.Void(ctx, inv.ID); err == nil {
		t.Fatal("expected error voiding a paid invoice")
	}
}

func TestBillingService_IsolationAcrossTenants(t *testing.T) {
	f := newBillingFixture(t, config.BillingConfig{TaxRatePercent: 10, PaymentTermDays: 30})
	ctx := scopedCtx("tenant-a")
	j := f.completedJob(t, ctx)

	inv, err := f.invoices.Generate(ctx, j.ID)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := f.invoices.Get(scopedCtx("tenant-b"), inv.ID); !errors.Is(err, billing.ErrNotFound) {
		t.Fatalf("expected not found across tenants, got %v", err)
	}
}
