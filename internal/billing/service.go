package billing

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"backend/internal/audit"
	"backend/internal/common"
	"backend/internal/config"
	"backend/internal/infra/queue"
	"backend/internal/job"
	"backend/internal/material"
	"backend/internal/metrics"
	"backend/internal/tenant"
	"backend/internal/timesheet"
	"backend/internal/worker/tasks"
)

var (
	ErrNotFound        = errors.New("billing: invoice not found")
	ErrJobNotCompleted = errors.New("billing: job must be completed before invoicing")
	ErrAlreadyInvoiced = errors.New("billing: job already has an invoice")
	ErrNotDraft        = errors.New("billing: invoice is not a draft")
	ErrNotIssued       = errors.New("billing: invoice is not issued")
)

// Service generates and manages invoices.
type Service struct {
	db         *gorm.DB
	jobs       *job.Service
	timesheets *timesheet.Service
	materials  *material.Service
	queue      queue.Client
	audit      *audit.Recorder
	cfg        config.BillingConfig
	logger     *zap.Logger
}

func NewService(
	db *gorm.DB,
	jobs *job.Service,
	timesheets *timesheet.Service,
	materials *material.Service,
	q queue.Client,
	rec *audit.Recorder,
	cfg config.BillingConfig,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		db:         db,
		jobs:       jobs,
		timesheets: timesheets,
		materials:  materials,
		queue:      q,
		audit:      rec,
		cfg:        cfg,
		logger:     logger,
	}
}

// Generate builds a draft invoice for a completed job: labor from the
// closed time entries at the job's hourly rate, materials from the usage
// snapshots, tax from the configured rate.
func (s *Service) Generate(ctx context.Context, jobID string) (*Invoice, error) {
	if _, err := tenant.RequireTenantID(ctx); err != nil {
		return nil, err
	}

	j, err := s.jobs.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if j.Status != job.StatusCompleted {
		return nil, ErrJobNotCompleted
	}

	var existing int64
	if err := s.db.WithContext(ctx).Model(&Invoice{}).
		Where("job_id = ? AND status <> ?", jobID, StatusVoid).
		Count(&existing).Error; err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, ErrAlreadyInvoiced
	}

	minutes, err := s.timesheets.TotalMinutesForJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	materialsCents, err := s.materials.CostForJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	laborCents := laborCost(minutes, j.HourlyRateCents)
	subtotal := laborCents + materialsCents
	tax := taxOn(subtotal, s.cfg.TaxRatePercent)

	inv := &Invoice{
		ID:             uuid.New().String(),
		JobID:          j.ID,
		CustomerID:     j.CustomerID,
		Number:         newInvoiceNumber(),
		Status:         StatusDraft,
		LaborMinutes:   minutes,
		LaborCents:     laborCents,
		MaterialsCents: materialsCents,
		SubtotalCents:  subtotal,
		TaxCents:       tax,
		TotalCents:     subtotal + tax,
		TaxRatePercent: s.cfg.TaxRatePercent,
	}
	if err := s.db.WithContext(ctx).Create(inv).Error; err != nil {
		return nil, err
	}
	if s.audit != nil {
		s.audit.Record(ctx, "invoice.generate", "invoice", map[string]string{"id": inv.ID, "job_id": j.ID})
	}
	return inv, nil
}

// Issue finalizes a draft, stamps the due date, moves the job to invoiced
// and hands delivery to the worker queue.
func (s *Service) Issue(ctx context.Context, id string) (*Invoice, error) {
	tenantID, err := tenant.RequireTenantID(ctx)
	if err != nil {
		return nil, err
	}

	inv, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv.Status != StatusDraft {
		return nil, ErrNotDraft
	}

	now := time.Now().UTC()
	due := now.AddDate(0, 0, s.cfg.PaymentTermDays)
	inv.Status = StatusIssued
	inv.IssuedAt = &now
	inv.DueAt = &due

	if err := s.db.WithContext(ctx).Save(inv).Error; err != nil {
		return nil, err
	}

	if _, err := s.jobs.Transition(ctx, inv.JobID, job.StatusInvoiced); err != nil {
		s.logger.Warn("mark job invoiced failed",
			zap.String("invoice_id", inv.ID),
			zap.String("job_id", inv.JobID),
			zap.Error(err))
	}

	if s.queue != nil {
		payload := tasks.SendInvoicePayload{InvoiceID: inv.ID, TenantID: tenantID}
		if err := s.queue.EnqueueSendInvoice(payload); err != nil {
			s.logger.Warn("enqueue invoice delivery failed",
				zap.String("invoice_id", inv.ID), zap.Error(err))
		}
	}

	metrics.InvoicesIssuedTotal.WithLabelValues(tenantID).Inc()
	if s.audit != nil {
		s.audit.Record(ctx, "invoice.issue", "invoice", map[string]string{"id": inv.ID})
	}
	return inv, nil
}

// MarkPaid records payment of an issued invoice.
func (s *Service) MarkPaid(ctx context.Context, id string) (*Invoice, error) {
	inv, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv.Status != StatusIssued {
		return nil, ErrNotIssued
	}

	now := time.Now().UTC()
	inv.Status = StatusPaid
	inv.PaidAt = &now
	if err := s.db.WithContext(ctx).Save(inv).Error; err != nil {
		return nil, err
	}
	if s.audit != nil {
		s.audit.Record(ctx, "invoice.paid", "invoice", map[string]string{"id": inv.ID})
	}
	return inv, nil
}

// Void cancels a draft or issued invoice.
func (s *Service) Void(ctx context.Context, id string) (*Invoice, error) {
	inv, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv.Status != StatusDraft && inv.Status != StatusIssued {
		return nil, fmt.Errorf("billing: cannot void a %s invoice", inv.Status)
	}

	inv.Status = StatusVoid
	if err := s.db.WithContext(ctx).Save(inv).Error; err != nil {
		return nil, err
	}
	if s.audit != nil {
		s.audit.Record(ctx, "invoice.void", "invoice", map[string]string{"id": inv.ID})
	}
	return inv, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Invoice, error) {
	if _, err := tenant.RequireTenantID(ctx); err != nil {
		return nil, err
	}
	var inv Invoice
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// ListFilter narrows List results.
type ListFilter struct {
	Status     string
	CustomerID string
}

func (s *Service) List(ctx context.Context, filter ListFilter, page common.PaginationRequest) ([]*Invoice, int64, error) {
	if _, err := tenant.RequireTenantID(ctx); err != nil {
		return nil, 0, err
	}

	q := s.db.WithContext(ctx).Model(&Invoice{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.CustomerID != "" {
		q = q.Where("customer_id = ?", filter.CustomerID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var invoices []*Invoice
	err := q.Order("created_at DESC").Scopes(common.Paginate(page)).Find(&invoices).Error
	if err != nil {
		return nil, 0, err
	}
	return invoices, total, nil
}

// UnpaidTotal sums issued, unpaid invoice totals for the dashboard.
func (s *Service) UnpaidTotal(ctx context.Context) (int64, error) {
	if _, err := tenant.RequireTenantID(ctx); err != nil {
		return 0, err
	}
	var total int64
	err := s.db.WithContext(ctx).Model(&Invoice{}).
		Where("status = ?", StatusIssued).
		Select("COALESCE(SUM(total_cents), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

// laborCost charges whole minutes at the hourly rate, rounding up to the
// next cent.
func laborCost(minutes, hourlyRateCents int64) int64 {
	if minutes <= 0 || hourlyRateCents <= 0 {
		return 0
	}
	cents := minutes * hourlyRateCents
	return (cents + 59) / 60
}

func taxOn(subtotalCents int64, ratePercent float64) int64 {
	if subtotalCents <= 0 || ratePercent <= 0 {
		return 0
	}
	return int64(math.Round(float64(subtotalCents) * ratePercent / 100))
}

// newInvoiceNumber builds a human-readable invoice number. Uniqueness per
// tenant comes from the uuid suffix, not the date part.
func newInvoiceNumber() string {
	return fmt.Sprintf("INV-%s-%s",
		time.Now().UTC().Format("20060102"),
		uuid.New().String()[:8])
}
