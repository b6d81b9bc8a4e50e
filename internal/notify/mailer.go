package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"go.uber.org/zap"

	"backend/internal/config"
)

// Message is a plain-text email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers outbound mail. Implementations must be safe for
// concurrent use by queue workers.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// NewMailer returns an SMTP-backed mailer, or a logging stand-in when no
// SMTP host is configured so local environments work without a relay.
func NewMailer(cfg config.MailConfig, logger *zap.Logger) Mailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Host == "" {
		return &logMailer{logger: logger}
	}
	return &smtpMailer{cfg: cfg, logger: logger}
}

type smtpMailer struct {
	cfg    config.MailConfig
	logger *zap.Logger
}

func (m *smtpMailer) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return fmt.Errorf("notify: message has no recipient")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	from := m.cfg.FromAddress
	headers := []string{
		fmt.Sprintf("From: %s <%s>", m.cfg.FromName, from),
		fmt.Sprintf("To: %s", msg.To),
		fmt.Sprintf("Subject: %s", msg.Subject),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=UTF-8",
	}
	raw := strings.Join(headers, "\r\n") + "\r\n\r\n" + msg.Body

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	if err := smtp.SendMail(addr, auth, from, []string{msg.To}, []byte(raw)); err != nil {
		return fmt.Errorf("notify: send to %s: %w", msg.To, err)
	}

	m.logger.Info("mail sent",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject))
	return nil
}

// logMailer records deliveries instead of sending them.
type logMailer struct {
	logger *zap.Logger
}

func (m *logMailer) Send(_ context.Context, msg Message) error {
	m.logger.Info("mail delivery skipped, no smtp host configured",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject))
	return nil
}

// InvoiceMessage renders the delivery email for an issued invoice.
func InvoiceMessage(to, customerName, number string, totalCents int64, dueAt *time.Time) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", customerName)
	fmt.Fprintf(&b, "Invoice %s is ready. The total due is $%.2f.\n", number, float64(totalCents)/100)
	if dueAt != nil {
		fmt.Fprintf(&b, "Payment is due by %s.\n", dueAt.Format("January 2, 2006"))
	}
	b.WriteString("\nThank you for your business.\n")

	return Message{
		To:      to,
		Subject: fmt.Sprintf("Invoice %s", number),
		Body:    b.String(),
	}
}
