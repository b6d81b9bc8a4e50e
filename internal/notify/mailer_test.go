package notify_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"backend/internal/config"
	"backend/internal/notify"
)

func TestInvoiceMessage(t *testing.T) {
	due := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	msg := notify.InvoiceMessage("jo@example.com", "Jo", "INV-20260901-abcd1234", 10725, &due)

	if msg.To != "jo@example.com" {
		t.Fatalf("unexpected recipient %q", msg.To)
	}
	if msg.Subject != "Invoice INV-20260901-abcd1234" {
		t.Fatalf("unexpected subject %q", msg.Subject)
	}
	if !strings.Contains(msg.Body, "$107.25") {
		t.Fatalf("body missing formatted total: %q", msg.Body)
	}
	if !strings.Contains(msg.Body, "October 1, 2026") {
		t.Fatalf("body missing due date: %q", msg.Body)
	}
}

func TestInvoiceMessage_NoDueDate(t *testing.T) {
	msg := notify.InvoiceMessage("jo@example.com", "Jo", "INV-1", 100, nil)
	if strings.Contains(msg.Body, "due by") {
		t.Fatalf("body must not mention a due date: %q", msg.Body)
	}
}

func TestNewMailer_NoHostDoesNotSend(t *testing.T) {
	m := notify.NewMailer(config.MailConfig{}, nil)
	err := m.Send(context.Background(), notify.Message{To: "jo@example.com", Subject: "x"})
	if err != nil {
		t.Fatalf("log mailer must accept messages, got %v", err)
	}
}
