// Package notifier is the outbound-mail sink. Every send attempt is recorded
// in the append-only sent-email log; actual SMTP delivery only happens when
// relay credentials are configured.
package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/wneessen/go-mail"
	"github.com/yourorg/ridejoy/internal/domain"
	"github.com/yourorg/ridejoy/internal/observability/metrics"
	"github.com/yourorg/ridejoy/pkg/config"
)

// Sender is the interface the booking ledger depends on.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) bool
}

// Mailer records and optionally delivers notification emails
type Mailer struct {
	records domain.EmailRepository
	cfg     config.SMTPConfig
	logger  *slog.Logger
}

// NewMailer creates a new mailer
func NewMailer(records domain.EmailRepository, cfg config.SMTPConfig, logger *slog.Logger) *Mailer {
	if logger == nil {
		logger = slog.Default()
	}

	return &Mailer{
		records: records,
		cfg:     cfg,
		logger:  logger,
	}
}

// Send records the message and attempts delivery when SMTP is configured.
// The boolean is the delivery outcome: false means the relay rejected or
// failed the message. There is no retry. A failure to append the log record
// does not stop the delivery attempt.
func (m *Mailer) Send(ctx context.Context, to, subject, body string) bool {
	record := &domain.EmailRecord{
		ID:      uuid.NewString(),
		To:      to,
		Subject: subject,
		Body:    body,
		SentAt:  time.Now(),
	}

	if err := m.records.Append(ctx, record); err != nil {
		m.logger.Error("failed to record outbound email",
			slog.String("to", to),
			slog.String("subject", subject),
			slog.String("error", err.Error()),
		)
	}

	if !m.cfg.Configured() {
		m.logger.Info("smtp not configured, email recorded only",
			slog.String("to", to),
			slog.String("subject", subject),
		)
		metrics.ObserveEmail("recorded")
		return true
	}

	if err := m.deliver(ctx, to, subject, body); err != nil {
		m.logger.Error("email delivery failed",
			slog.String("to", to),
			slog.String("subject", subject),
			slog.String("error", err.Error()),
		)
		metrics.ObserveEmail("failed")
		return false
	}

	m.logger.Info("email delivered",
		slog.String("to", to),
		slog.String("subject", subject),
	)
	metrics.ObserveEmail("delivered")
	return true
}

// ListSent returns the full sent-email log in insertion order
func (m *Mailer) ListSent(ctx context.Context) ([]*domain.EmailRecord, error) {
	return m.records.List(ctx)
}

func (m *Mailer) deliver(ctx context.Context, to, subject, body string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, body)

	client, err := mail.NewClient(m.cfg.Host,
		mail.WithPort(m.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.cfg.Username),
		mail.WithPassword(m.cfg.Password),
	)
	if err != nil {
		return fmt.Errorf("failed to build smtp client: %w", err)
	}

	return client.DialAndSendWithContext(ctx, msg)
}
