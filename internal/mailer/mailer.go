// Package mailer delivers recipient-facing email. The log mailer stands in
// wherever no SMTP relay is configured: single-node runs, development, and
// tests that only care that a send happened.
package mailer

import (
	"context"
	"log/slog"
	"time"
)

// LogMailer writes would-be emails to the structured log instead of a relay.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) SendAssignment(ctx context.Context, to, name, policyTitle, linkURL string, dueAt *time.Time) error {
	attrs := []any{
		"to", to,
		"name", name,
		"policy", policyTitle,
		"link", linkURL,
	}
	if dueAt != nil {
		attrs = append(attrs, "due_at", dueAt.Format(time.RFC3339))
	}
	m.logger.InfoContext(ctx, "assignment email", attrs...)
	return nil
}

func (m *LogMailer) SendReminder(ctx context.Context, to, name, policyTitle, linkURL string, reminderNumber, daysRemaining int) error {
	m.logger.InfoContext(ctx, "reminder email",
		"to", to,
		"name", name,
		"policy", policyTitle,
		"link", linkURL,
		"reminder_number", reminderNumber,
		"days_remaining", daysRemaining,
	)
	return nil
}
