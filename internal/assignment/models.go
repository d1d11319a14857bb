package assignment

import (
	"time"

	id "attest/pkg/domain"
)

// Status tracks where a recipient's assignment sits in its lifecycle.
// Overdue is never stored; it is derived from the due date at read time so
// local state can never disagree with the clock.
type Status string

const (
	StatusPending      Status = "pending"
	StatusSent         Status = "sent"
	StatusViewed       Status = "viewed"
	StatusAcknowledged Status = "acknowledged"
	StatusDeclined     Status = "declined"
	StatusOverdue      Status = "overdue"
	StatusExpired      Status = "expired"
)

// MaxReminders is the hard cap on reminder emails per assignment. Fixed
// policy, not configurable per policy document.
const MaxReminders = 3

// Record is one recipient's relationship to one policy document.
type Record struct {
	ID             id.AssignmentID
	PolicyID       id.PolicyID
	UserID         id.UserID
	UserEmail      string
	UserName       string
	Status         Status
	ReminderCount  int
	MagicLinkToken string
	CreatedAt      time.Time
	DueAt          *time.Time
	ViewedAt       *time.Time
	AcknowledgedAt *time.Time
	DeclinedAt     *time.Time
	HasReceipt     bool
}

// EffectiveStatus folds the derived overdue state into the stored status.
// An assignment past its due date that is not yet acknowledged or declined
// reads as overdue without any stored transition.
func (r *Record) EffectiveStatus(now time.Time) Status {
	switch r.Status {
	case StatusPending, StatusSent, StatusViewed:
		if r.DueAt != nil && r.DueAt.Before(now) {
			return StatusOverdue
		}
	}
	return r.Status
}

// CanSendReminder reports whether a reminder may be sent: only assignments
// still awaiting acknowledgment, and only below the reminder cap.
func (r *Record) CanSendReminder() bool {
	if r.ReminderCount >= MaxReminders {
		return false
	}
	return r.Status == StatusPending || r.Status == StatusViewed
}

// CanDelete reports whether the assignment may be removed. Acknowledged
// assignments are the audit record and are never deletable.
func (r *Record) CanDelete() bool {
	return r.Status != StatusAcknowledged
}

// CanResendLink reports whether a fresh magic link may be issued.
func (r *Record) CanResendLink() bool {
	return r.Status == StatusPending || r.Status == StatusViewed
}

// RemainingReminders returns how many reminders are left before the cap.
func (r *Record) RemainingReminders() int {
	remaining := MaxReminders - r.ReminderCount
	if remaining < 0 {
		return 0
	}
	return remaining
}

// MaxRemindersReached reports whether the reminder cap has been hit.
func (r *Record) MaxRemindersReached() bool {
	return r.ReminderCount >= MaxReminders
}

// legalTransitions enumerates the stored-status edges. Derived states
// (overdue) never appear here.
var legalTransitions = map[Status][]Status{
	StatusPending: {StatusSent, StatusViewed, StatusDeclined, StatusExpired},
	StatusSent:    {StatusViewed, StatusDeclined, StatusExpired},
	StatusViewed:  {StatusAcknowledged, StatusDeclined, StatusExpired},
}

// CanTransition reports whether moving the record to the target status is a
// legal lifecycle edge.
func (r *Record) CanTransition(to Status) bool {
	for _, next := range legalTransitions[r.Status] {
		if next == to {
			return true
		}
	}
	return false
}
