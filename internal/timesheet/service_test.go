package timesheet_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"backend/internal/job"
	"backend/internal/tenant"
	"backend/internal/timesheet"
)

func setupTimesheetTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:timesheet_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.Use(tenant.ScopePlugin{}); err != nil {
		t.Fatalf("install plugin: %v", err)
	}
	if err := db.AutoMigrate(&timesheet.TimeEntry{}, &job.Job{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func scopedCtx(tenantID string) context.Context {
	return tenant.WithRequestContext(context.Background(), tenant.NewRequestContext("", tenantID, ""))
}

// activeJob creates a job and drives it to in_progress.
func activeJob(t *testing.T, jobs *job.Service, ctx context.Context) *job.Job {
	t.Helper()
	j, err := jobs.Create(ctx, job.CreateParams{CustomerID: "cust-1", Title: "Repair", HourlyRateCents: 6000})
	if err != nil {
		t.Fatalf("create job: %v", err)
	}
	if _, err := jobs.Transition(ctx, j.ID, job.StatusInProgress); err != nil {
		t.Fatalf("start job: %v", err)
	}
	return j
}

func TestTimesheetService_ClockInRequiresActiveJob(t *testing.T) {
	db := setupTimesheetTestDB(t)
	jobs := job.NewService(db, nil)
	svc := timesheet.NewService(db, jobs)
	ctx := scopedCtx("tenant-a")

	j, err := jobs.Create(ctx, job.CreateParams{CustomerID: "cust-1", Title: "Repair"})
	if err != nil {
		t.Fatalf("create job: %v", err)
	}

	// Still scheduled, not in progress.
	if _, err := svc.ClockIn(ctx, j.ID, "user-1", ""); !errors.Is(err, timesheet.ErrJobNotActive) {
		t.Fatalf("expected ErrJobNotActive, got %v", err)
	}
}

func TestTimesheetService_SingleOpenEntryPerUser(t *testing.T) {
	db := setupTimesheetTestDB(t)
	jobs := job.NewService(db, nil)
	svc := timesheet.NewService(db, jobs)
	ctx := scopedCtx("tenant-a")
	j := activeJob(t, jobs, ctx)

	e, err := svc.ClockIn(ctx, j.ID, "user-1", "morning shift")
	if err != nil {
		t.Fatalf("clock in: %v", err)
	}
	if e.ClockOut != nil {
		t.Fatal("new entry must be open")
	}

	if _, err := svc.ClockIn(ctx, j.ID, "user-1", ""); !errors.Is(err, timesheet.ErrAlreadyOpen) {
		t.Fatalf("expected ErrAlreadyOpen, got %v", err)
	}

	// A different user may still clock in.
	if _, err := svc.ClockIn(ctx, j.ID, "user-2", ""); err != nil {
		t.Fatalf("second user clock in: %v", err)
	}

	open, err := svc.OpenEntry(ctx, "user-1")
	if err != nil {
		t.Fatalf("open entry: %v", err)
	}
	if open.ID != e.ID {
		t.Fatalf("expected entry %s, got %s", e.ID, open.ID)
	}
}

func TestTimesheetService_ClockOutFillsMinutes(t *testing.T) {
	db := setupTimesheetTestDB(t)
	jobs := job.NewService(db, nil)
	svc := timesheet.NewService(db, jobs)
	ctx := scopedCtx("tenant-a")
	j := activeJob(t, jobs, ctx)

	e, err := svc.ClockIn(ctx, j.ID, "user-1", "")
	if err != nil {
		t.Fatalf("clock in: %v", err)
	}

	// Backdate the clock-in so the rounded duration is deterministic-ish:
	// 61 minutes and change rounds up to 62.
	in := time.Now().UTC().Add(-61*time.Minute - 30*time.Second)
	if err := db.WithContext(ctx).Model(&timesheet.TimeEntry{}).
		Where("id = ?", e.ID).Update("clock_in", in).Error; err != nil {
		t.Fatalf("backdate: %v", err)
	}

	closed, err := svc.ClockOut(ctx, e.ID)
	if err != nil {
		t.Fatalf("clock out: %v", err)
	}
	if closed.ClockOut == nil {
		t.Fatal("expected ClockOut stamp")
	}
	if closed.Minutes != 62 {
		t.Fatalf("expected 62 minutes, got %d", closed.Minutes)
	}

	if _, err := svc.ClockOut(ctx, e.ID); !errors.Is(err, timesheet.ErrNotOpen) {
		t.Fatalf("expected ErrNotOpen on second clock-out, got %v", err)
	}
}

func TestTimesheetService_TotalMinutesCountsClosedOnly(t *testing.T) {
	db := setupTimesheetTestDB(t)
	jobs := job.NewService(db, nil)
	svc := timesheet.NewService(db, jobs)
	ctx := scopedCtx("tenant-a")
	j := activeJob(t, jobs, ctx)

	now := time.Now().UTC()
	closedAt := now.Add(-time.Hour)
	rows := []timesheet.TimeEntry{
		{ID: uuid.New().String(), JobID: j.ID, UserID: "user-1", ClockIn: now.Add(-3 * time.Hour), ClockOut: &closedAt, Minutes: 90},
		{ID: uuid.New().String(), JobID: j.ID, UserID: "user-2", ClockIn: now.Add(-2 * time.Hour), ClockOut: &closedAt, Minutes: 45},
		{ID: uuid.New().String(), JobID: j.ID, UserID: "user-3", ClockIn: now.Add(-time.Hour)}, // still open
	}
	if err := db.WithContext(ctx).Create(&rows).Error; err != nil {
		t.Fatalf("seed entries: %v", err)
	}

	total, err := svc.TotalMinutesForJob(ctx, j.ID)
	if err != nil {
		t.Fatalf("total minutes: %v", err)
	}
	if total != 135 {
		t.Fatalf("expected 135 closed minutes, got %d", total)
	}
}

func TestTimesheetService_MinutesThisWeekSkipsOldEntries(t *testing.T) {
	db := setupTimesheetTestDB(t)
	jobs := job.NewService(db, nil)
	svc := timesheet.NewService(db, jobs)
	ctx := scopedCtx("tenant-a")
	j := activeJob(t, jobs, ctx)

	now := time.Now().UTC()
	recent := now.Add(-time.Minute)
	lastWeek := now.AddDate(0, 0, -8)
	rows := []timesheet.TimeEntry{
		{ID: uuid.New().String(), JobID: j.ID, UserID: "user-1", ClockIn: recent, ClockOut: &now, Minutes: 30},
		{ID: uuid.New().String(), JobID: j.ID, UserID: "user-1", ClockIn: lastWeek, ClockOut: &lastWeek, Minutes: 480},
	}
	if err := db.WithContext(ctx).Create(&rows).Error; err != nil {
		t.Fatalf("seed entries: %v", err)
	}

	total, err := svc.MinutesThisWeek(ctx)
	if err != nil {
		t.Fatalf("minutes this week: %v", err)
	}
	if total != 30 {
		t.Fatalf("expected 30 minutes, got %d", total)
	}
}

func TestTimesheetService_IsolationAcrossTenants(t *testing.T) {
	db := setupTimesheetTestDB(t)
	jobs := job.NewService(db, nil)
	svc := timesheet.NewService(db, jobs)
	ctx := scopedCtx("tenant-a")
	j := activeJob(t, jobs, ctx)

	e, err := svc.ClockIn(ctx, j.ID, "user-1", "")
	if err != nil {
		t.Fatalf("clock in: %v", err)
	}

	if _, err := svc.Get(scopedCtx("tenant-b"), e.ID); !errors.Is(err, timesheet.ErrNotFound) {
		t.Fatalf("expected not found across tenants, got %v", err)
	}
}
