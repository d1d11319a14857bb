// Package audit captures the compliance trail this service exists to
// produce: who was assigned what, when they viewed it, and how they resolved
// it. Events fan out from domain logic through a channel worker into a store
// and, when configured, a Kafka topic.
package audit

import (
	"context"
	"time"

	id "attest/pkg/domain"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Action       Action
	Timestamp    time.Time
	AssignmentID id.AssignmentID
	PolicyID     id.PolicyID
	UserEmail    string
	ActorID      string // admin who performed the action, when not the recipient
	RequestID    string
	Detail       string
}

// Action names an auditable occurrence in the assignment lifecycle.
type Action string

const (
	EventAssignmentCreated Action = "assignment_created"
	EventAssignmentSent    Action = "assignment_sent"
	EventAssignmentViewed  Action = "assignment_viewed"
	EventReviewConfirmed   Action = "review_confirmed"
	EventAcknowledged      Action = "assignment_acknowledged"
	EventDeclined          Action = "assignment_declined"
	EventReminderSent      Action = "reminder_sent"
	EventLinkResent        Action = "link_resent"
	EventAssignmentDeleted Action = "assignment_deleted"
	EventAssignmentExpired Action = "assignment_expired"
)

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Tee fans one event out to several stores. Every store is attempted; the
// first failure is reported after the rest have run.
type Tee []Store

func (t Tee) Append(ctx context.Context, event Event) error {
	var firstErr error
	for _, store := range t {
		if err := store.Append(ctx, event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Recorder is the producer side handed to services: a non-blocking emit into
// the worker's inbox. Dropping on a full inbox is preferred over stalling a
// request path; the drop is counted by the worker's owner.
type Recorder struct {
	inbox chan<- Event
}

func NewRecorder(inbox chan<- Event) *Recorder {
	return &Recorder{inbox: inbox}
}

// Record emits an event without blocking. Returns false when the inbox is
// full and the event was dropped.
func (r *Recorder) Record(event Event) bool {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	select {
	case r.inbox <- event:
		return true
	default:
		return false
	}
}
