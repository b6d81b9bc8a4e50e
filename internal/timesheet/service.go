package timesheet

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"backend/internal/common"
	"backend/internal/job"
	"backend/internal/tenant"
)

var (
	ErrNotFound     = errors.New("timesheet: entry not found")
	ErrAlreadyOpen  = errors.New("timesheet: user already has an open entry")
	ErrNotOpen      = errors.New("timesheet: entry is not open")
	ErrJobNotActive = errors.New("timesheet: job is not in progress")
)

// Service tracks time against jobs.
type Service struct {
	db   *gorm.DB
	jobs *job.Service
}

func NewService(db *gorm.DB, jobs *job.Service) *Service {
	return &Service{db: db, jobs: jobs}
}

// ClockIn opens a time entry for the user on the given job. The job must be
// in progress and the user must not already be clocked in anywhere.
func (s *Service) ClockIn(ctx context.Context, jobID, userID, notes string) (*TimeEntry, error) {
	if _, err := tenant.RequireTenantID(ctx); err != nil {
		return nil, err
	}

	j, err := s.jobs.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if j.Status != job.StatusInProgress {
		return nil, ErrJobNotActive
	}

	var open int64
	err = s.db.WithContext(ctx).Model(&TimeEntry{}).
		Where("user_id = ? AND clock_out IS NULL", userID).
		Count(&open).Error
	if err != nil {
		return nil, err
	}
	if open > 0 {
		return nil, ErrAlreadyOpen
	}

	e := &TimeEntry{
		ID:      uuid.New().String(),
		JobID:   jobID,
		UserID:  userID,
		ClockIn: time.Now().UTC(),
		Notes:   notes,
	}
	if err := s.db.WithContext(ctx).Create(e).Error; err != nil {
		return nil, err
	}
	return e, nil
}

// ClockOut closes an open entry and fills in the rounded minute count.
// Durations round up so a one-second visit still bills a minute.
func (s *Service) ClockOut(ctx context.Context, entryID string) (*TimeEntry, error) {
	e, err := s.Get(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if e.ClockOut != nil {
		return nil, ErrNotOpen
	}

	now := time.Now().UTC()
	e.ClockOut = &now
	e.Minutes = roundedMinutes(e.ClockIn, now)

	if err := s.db.WithContext(ctx).Save(e).Error; err != nil {
		return nil, err
	}
	return e, nil
}

func (s *Service) Get(ctx context.Context, id string) (*TimeEntry, error) {
	if _, err := tenant.RequireTenantID(ctx); err != nil {
		return nil, err
	}
	var e TimeEntry
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// OpenEntry returns the user's open entry, or ErrNotFound if none.
func (s *Service) OpenEntry(ctx context.Context, userID string) (*TimeEntry, error) {
	if _, err := tenant.RequireTenantID(ctx); err != nil {
		return nil, err
	}
	var e TimeEntry
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND clock_out IS NULL", userID).
		First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// ListFilter narrows List results.
type ListFilter struct {
	JobID  string
	UserID string
}

func (s *Service) List(ctx context.Context, filter ListFilter, page common.PaginationRequest) ([]*TimeEntry, int64, error) {
	if _, err := tenant.RequireTenantID(ctx); err != nil {
		return nil, 0, err
	}

	q := s.db.WithContext(ctx).Model(&TimeEntry{})
	if filter.JobID != "" {
		q = q.Where("job_id = ?", filter.JobID)
	}
	if filter.UserID != "" {
		q = q.Where("user_id = ?", filter.UserID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []*TimeEntry
	err := q.Order("clock_in DESC").Scopes(common.Paginate(page)).Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// TotalMinutesForJob sums closed entries for a job. Open entries do not
// count until they are clocked out.
func (s *Service) TotalMinutesForJob(ctx context.Context, jobID string) (int64, error) {
	if _, err := tenant.RequireTenantID(ctx); err != nil {
		return 0, err
	}
	var total int64
	err := s.db.WithContext(ctx).Model(&TimeEntry{}).
		Where("job_id = ? AND clock_out IS NOT NULL", jobID).
		Select("COALESCE(SUM(minutes), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

// MinutesThisWeek sums closed minutes clocked in since Monday 00:00 UTC,
// for the dashboard.
func (s *Service) MinutesThisWeek(ctx context.Context) (int64, error) {
	if _, err := tenant.RequireTenantID(ctx); err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	weekday := int(now.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).
		AddDate(0, 0, -(weekday - 1))

	var total int64
	err := s.db.WithContext(ctx).Model(&TimeEntry{}).
		Where("clock_out IS NOT NULL AND clock_in >= ?", start).
		Select("COALESCE(SUM(minutes), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := tenant.RequireTenantID(ctx); err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&TimeEntry{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func roundedMinutes(in, out time.Time) int64 {
	d := out.Sub(in)
	if d <= 0 {
		return 0
	}
	m := int64(d / time.Minute)
	if d%time.Minute != 0 {
		m++
	}
	return m
}
