package handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"backend/internal/billing"
	"backend/internal/customer"
	"backend/internal/lead"
	"backend/internal/notify"
	"backend/internal/tenant"
	"backend/internal/worker/tasks"
)

// Handlers processes queued tasks. Queue handlers run outside any HTTP
// request, so each one rebuilds a RequestContext from the tenant id carried
// in the payload before touching tenant-scoped tables.
type Handlers struct {
	invoices  *billing.Service
	customers *customer.Service
	leads     *lead.Service
	mailer    notify.Mailer
	logger    *zap.Logger
}

func New(invoices *billing.Service, customers *customer.Service, leads *lead.Service, mailer notify.Mailer, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{invoices: invoices, customers: customers, leads: leads, mailer: mailer, logger: logger}
}

// scopedContext re-establishes tenant scope for a task.
func scopedContext(ctx context.Context, tenantID string) context.Context {
	rc := tenant.NewRequestContext("", tenantID, "")
	return tenant.WithRequestContext(ctx, rc)
}

// HandleSendInvoice emails an issued invoice to the customer. The lookup
// proves the invoice still exists and is issued before anything goes out.
func (h *Handlers) HandleSendInvoice(ctx context.Context, t *asynq.Task) error {
	var payload tasks.SendInvoicePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	if payload.TenantID == "" {
		return fmt.Errorf("send invoice task missing tenant id: %w", asynq.SkipRetry)
	}

	ctx = scopedContext(ctx, payload.TenantID)

	inv, err := h.invoices.Get(ctx, payload.InvoiceID)
	if err != nil {
		return fmt.Errorf("load invoice %s: %w", payload.InvoiceID, err)
	}
	if inv.Status != billing.StatusIssued {
		h.logger.Info("skipping delivery for non-issued invoice",
			zap.String("invoice_id", inv.ID),
			zap.String("status", inv.Status))
		return nil
	}

	cust, err := h.customers.Get(ctx, inv.CustomerID)
	if err != nil {
		return fmt.Errorf("load customer %s: %w", inv.CustomerID, err)
	}
	if cust.Email == "" {
		h.logger.Warn("customer has no email, invoice not delivered",
			zap.String("invoice_id", inv.ID),
			zap.String("customer_id", cust.ID))
		return nil
	}

	msg := notify.InvoiceMessage(cust.Email, cust.Name, inv.Number, inv.TotalCents, inv.DueAt)
	if err := h.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("deliver invoice %s: %w", inv.ID, err)
	}

	h.logger.Info("invoice delivered",
		zap.String("invoice_id", inv.ID),
		zap.String("number", inv.Number),
		zap.String("to", cust.Email))
	return nil
}

// HandleLeadFollowUp reminds the assignee about a lead that is still in the
// new state after the follow-up delay. Leads that moved on are skipped.
func (h *Handlers) HandleLeadFollowUp(ctx context.Context, t *asynq.Task) error {
	var payload tasks.LeadFollowUpPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	if payload.TenantID == "" {
		return fmt.Errorf("lead follow-up task missing tenant id: %w", asynq.SkipRetry)
	}

	ctx = scopedContext(ctx, payload.TenantID)

	l, err := h.leads.Get(ctx, payload.LeadID)
	if err != nil {
		// The lead may have been deleted since the task was scheduled.
		h.logger.Info("lead follow-up target gone",
			zap.String("lead_id", payload.LeadID), zap.Error(err))
		return nil
	}
	if l.Status != lead.StatusNew {
		return nil
	}

	h.logger.Info("lead needs follow-up",
		zap.String("lead_id", l.ID),
		zap.String("name", l.Name),
		zap.String("assigned_to", l.AssignedTo))
	return nil
}
