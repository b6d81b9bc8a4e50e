package tasks

// Task type names registered on the asynq mux.
const (
	TypeSendInvoice  = "billing:send_invoice"
	TypeLeadFollowUp = "lead:follow_up"
)

// SendInvoicePayload asks the worker to deliver an issued invoice. TenantID is
// carried explicitly because queue handlers run outside any HTTP request scope
// and must re-establish the tenant context themselves.
type SendInvoicePayload struct {
	InvoiceID string `json:"invoice_id"`
	TenantID  string `json:"tenant_id"`
}

// LeadFollowUpPayload schedules a follow-up reminder for a lead that has not
// been contacted.
type LeadFollowUpPayload struct {
	LeadID   string `json:"lead_id"`
	TenantID string `json:"tenant_id"`
}
