package handler

import (
	"time"

	"attest/internal/assignment"
	"attest/internal/assignment/bulk"
	"attest/internal/assignment/service"
)

// AssignmentResponse is one row in the admin listing. The can_* flags are the
// same predicates the service enforces, so the UI can disable controls
// instead of discovering rejections on click.
type AssignmentResponse struct {
	ID                  string     `json:"id"`
	PolicyID            string     `json:"policy_id"`
	UserEmail           string     `json:"user_email"`
	UserName            string     `json:"user_name"`
	Status              string     `json:"status"`
	ReminderCount       int        `json:"reminder_count"`
	RemainingReminders  int        `json:"remaining_reminders"`
	MaxRemindersReached bool       `json:"max_reminders_reached"`
	CanRemind           bool       `json:"can_remind"`
	CanDelete           bool       `json:"can_delete"`
	CanResendLink       bool       `json:"can_resend_link"`
	HasReceipt          bool       `json:"has_receipt"`
	CreatedAt           time.Time  `json:"created_at"`
	DueAt               *time.Time `json:"due_at,omitempty"`
	ViewedAt            *time.Time `json:"viewed_at,omitempty"`
	AcknowledgedAt      *time.Time `json:"acknowledged_at,omitempty"`
	DeclinedAt          *time.Time `json:"declined_at,omitempty"`
}

// FromRecord converts a domain record to its listing row, folding the derived
// overdue status in.
func FromRecord(rec *assignment.Record, now time.Time) *AssignmentResponse {
	return &AssignmentResponse{
		ID:                  rec.ID.String(),
		PolicyID:            rec.PolicyID.String(),
		UserEmail:           rec.UserEmail,
		UserName:            rec.UserName,
		Status:              string(rec.EffectiveStatus(now)),
		ReminderCount:       rec.ReminderCount,
		RemainingReminders:  rec.RemainingReminders(),
		MaxRemindersReached: rec.MaxRemindersReached(),
		CanRemind:           rec.CanSendReminder(),
		CanDelete:           rec.CanDelete(),
		CanResendLink:       rec.CanResendLink(),
		HasReceipt:          rec.HasReceipt,
		CreatedAt:           rec.CreatedAt,
		DueAt:               rec.DueAt,
		ViewedAt:            rec.ViewedAt,
		AcknowledgedAt:      rec.AcknowledgedAt,
		DeclinedAt:          rec.DeclinedAt,
	}
}

// ListResponse is the paged listing envelope.
type ListResponse struct {
	Assignments []*AssignmentResponse `json:"assignments"`
	Total       int                   `json:"total"`
	Page        int                   `json:"page"`
	PerPage     int                   `json:"per_page"`
}

// AddRecipientsResponse reports an import run.
type AddRecipientsResponse struct {
	Created int      `json:"created"`
	Skipped []string `json:"skipped"`
	Invalid []string `json:"invalid"`
}

// SendResponse reports a distribution run.
type SendResponse struct {
	Sent   int      `json:"sent"`
	Failed []string `json:"failed"`
}

// RemindResponse reports a single reminder send.
type RemindResponse struct {
	Message             string `json:"message"`
	ReminderCount       int    `json:"reminder_count"`
	MaxRemindersReached bool   `json:"max_reminders_reached"`
}

// ResendResponse carries the fresh link for clipboard copy.
type ResendResponse struct {
	Message    string `json:"message"`
	NewLinkURL string `json:"new_link_url"`
}

// MessageResponse is the generic confirmation envelope.
type MessageResponse struct {
	Message string `json:"message"`
}

// BulkResponse is the per-batch tally. Failed lists the IDs whose individual
// action failed; no_op means nothing in the selection was eligible.
type BulkResponse struct {
	Eligible  int      `json:"eligible"`
	Succeeded int      `json:"succeeded"`
	Failed    []string `json:"failed"`
	NoOp      bool     `json:"no_op"`
	DryRun    bool     `json:"dry_run,omitempty"`
}

// FromOutcome converts a bulk outcome to its response.
func FromOutcome(outcome bulk.Outcome) *BulkResponse {
	failed := make([]string, 0, len(outcome.Failed))
	for _, assignmentID := range outcome.Failed {
		failed = append(failed, assignmentID.String())
	}
	return &BulkResponse{
		Eligible:  outcome.Eligible,
		Succeeded: outcome.Succeeded,
		Failed:    failed,
		NoOp:      outcome.NoOp(),
	}
}

// FromPreview converts a dry-run preview to the same envelope the real run
// uses.
func FromPreview(preview *service.BulkPreview) *BulkResponse {
	return &BulkResponse{
		Eligible: preview.Eligible,
		Failed:   []string{},
		NoOp:     preview.Eligible == 0,
		DryRun:   true,
	}
}
