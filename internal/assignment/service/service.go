// Package service orchestrates the assignment lifecycle: status transitions,
// reminder throttling, link reissue, and the admin bulk actions. Eligibility
// is always checked locally before any store or network work, so a
// disallowed action is rejected without ever reaching a backend.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"attest/internal/assignment"
	"attest/internal/platform/metrics"
	"attest/internal/policy"
	id "attest/pkg/domain"
	dErrors "attest/pkg/domain-errors"
	audit "attest/pkg/platform/audit"
	"attest/pkg/platform/sentinel"
)

// ErrInFlight reports that the record already has this action running; the
// duplicate invocation performed no work.
var ErrInFlight = errors.New("action already in flight for record")

// Mailer sends recipient-facing email. Implementations live at the edge;
// tests use fakes.
type Mailer interface {
	SendAssignment(ctx context.Context, to, name, policyTitle, linkURL string, dueAt *time.Time) error
	SendReminder(ctx context.Context, to, name, policyTitle, linkURL string, reminderNumber, daysRemaining int) error
}

// LinkIssuer mints and revokes magic link tokens.
type LinkIssuer interface {
	Mint(assignmentID id.AssignmentID, email string, now time.Time) (token, linkURL string, err error)
	LinkURL(token string) string
	Revoke(ctx context.Context, token string) error
}

// ReceiptStore is the boundary to the external receipt subsystem. Generate
// is invoked after a successful acknowledgment; Fetch streams the stored
// artifact.
type ReceiptStore interface {
	Generate(ctx context.Context, rec *assignment.Record) error
	Fetch(ctx context.Context, assignmentID id.AssignmentID) ([]byte, error)
}

// Service drives assignment records through their lifecycle.
type Service struct {
	store    assignment.Store
	policies policy.Store
	links    LinkIssuer
	mailer   Mailer
	receipts ReceiptStore
	recorder *audit.Recorder
	metrics  *metrics.Metrics
	logger   *slog.Logger
	tracer   trace.Tracer
	inflight *inflight
	now      func() time.Time
}

func New(
	store assignment.Store,
	policies policy.Store,
	links LinkIssuer,
	mailer Mailer,
	receipts ReceiptStore,
	recorder *audit.Recorder,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Service {
	return &Service{
		store:    store,
		policies: policies,
		links:    links,
		mailer:   mailer,
		receipts: receipts,
		recorder: recorder,
		metrics:  m,
		logger:   logger,
		tracer:   otel.Tracer("attest/assignment"),
		inflight: newInflight(),
		now:      time.Now,
	}
}

// Get returns one record.
func (s *Service) Get(ctx context.Context, assignmentID id.AssignmentID) (*assignment.Record, error) {
	return s.store.Get(ctx, assignmentID)
}

// List returns the filtered page for a policy plus the unpaged total.
func (s *Service) List(ctx context.Context, policyID id.PolicyID, filter assignment.ListFilter) ([]*assignment.Record, int, error) {
	if _, err := s.policies.Get(ctx, policyID); err != nil {
		return nil, 0, err
	}
	return s.store.ListByPolicy(ctx, policyID, filter)
}

// MarkViewed records that the recipient opened the document. Opening is all
// "viewed" requires; full review is the view gate's concern. Idempotent: an
// already-viewed record is returned unchanged.
func (s *Service) MarkViewed(ctx context.Context, assignmentID id.AssignmentID) (*assignment.Record, error) {
	rec, err := s.store.Get(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if rec.Status == assignment.StatusViewed || rec.Status == assignment.StatusAcknowledged {
		return rec, nil
	}
	if !rec.CanTransition(assignment.StatusViewed) {
		return nil, dErrors.New(dErrors.CodeIneligible, "assignment is no longer open for viewing")
	}

	now := s.now()
	rec.Status = assignment.StatusViewed
	if rec.ViewedAt == nil {
		rec.ViewedAt = &now
	}
	if err := s.store.Update(ctx, rec); err != nil {
		return nil, err
	}
	s.record(ctx, audit.EventAssignmentViewed, rec, "")
	return rec, nil
}

// AcknowledgeParams carries the recipient's acknowledgment submission.
type AcknowledgeParams struct {
	ReviewConfirmed bool
	Method          string // "typed" or "oneclick"
	TypedSignature  string
	ClientIP        string
	UserAgent       string
}

// Acknowledge finalizes an assignment. It requires a prior view and a
// confirmed review session; time spent or pages scrolled on their own never
// acknowledge anything.
func (s *Service) Acknowledge(ctx context.Context, assignmentID id.AssignmentID, params AcknowledgeParams) (*assignment.Record, error) {
	ctx, span := s.tracer.Start(ctx, "assignment.acknowledge")
	defer span.End()

	rec, err := s.store.Get(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if !rec.CanTransition(assignment.StatusAcknowledged) {
		return nil, dErrors.New(dErrors.CodeIneligible, "assignment cannot be acknowledged in its current status")
	}
	if !params.ReviewConfirmed {
		return nil, dErrors.New(dErrors.CodeNotReviewed, "document review has not been confirmed")
	}

	pol, err := s.policies.Get(ctx, rec.PolicyID)
	if err != nil {
		return nil, err
	}
	if pol.RequireTypedSignature && params.TypedSignature == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "this policy requires a typed signature")
	}

	now := s.now()
	rec.Status = assignment.StatusAcknowledged
	if rec.AcknowledgedAt == nil {
		rec.AcknowledgedAt = &now
	}
	if err := s.store.Update(ctx, rec); err != nil {
		return nil, err
	}

	// Receipt generation is owned externally; a failure there leaves the
	// acknowledgment intact with no receipt to fetch.
	if err := s.receipts.Generate(ctx, rec); err != nil {
		s.logger.ErrorContext(ctx, "receipt generation failed",
			"assignment_id", rec.ID.String(), "error", err)
	} else {
		rec.HasReceipt = true
		if err := s.store.Update(ctx, rec); err != nil {
			return nil, err
		}
	}

	s.metrics.Acknowledgments.Inc()
	s.record(ctx, audit.EventAcknowledged, rec, params.Method)
	return rec, nil
}

// Decline records an explicit refusal.
func (s *Service) Decline(ctx context.Context, assignmentID id.AssignmentID) (*assignment.Record, error) {
	rec, err := s.store.Get(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if !rec.CanTransition(assignment.StatusDeclined) {
		return nil, dErrors.New(dErrors.CodeIneligible, "assignment cannot be declined in its current status")
	}

	now := s.now()
	rec.Status = assignment.StatusDeclined
	rec.DeclinedAt = &now
	if err := s.store.Update(ctx, rec); err != nil {
		return nil, err
	}
	s.metrics.Declines.Inc()
	s.record(ctx, audit.EventDeclined, rec, "")
	return rec, nil
}

// RemindResult reports a reminder send.
type RemindResult struct {
	Message             string
	ReminderCount       int
	MaxRemindersReached bool
}

// Remind sends one reminder email, bounded by the reminder cap. The record
// is marked in flight for the duration so a double-click produces exactly
// one send.
func (s *Service) Remind(ctx context.Context, assignmentID id.AssignmentID) (*RemindResult, error) {
	ctx, span := s.tracer.Start(ctx, "assignment.remind")
	defer span.End()

	if !s.inflight.begin(assignmentID) {
		return nil, ErrInFlight
	}
	defer s.inflight.end(assignmentID)

	rec, err := s.store.Get(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if rec.MaxRemindersReached() {
		return nil, dErrors.New(dErrors.CodeMaxReminders, "maximum number of reminders (3) already sent for this assignment")
	}
	if !rec.CanSendReminder() {
		return nil, dErrors.New(dErrors.CodeIneligible, "cannot send reminder for this assignment status")
	}

	pol, err := s.policies.Get(ctx, rec.PolicyID)
	if err != nil {
		return nil, err
	}

	linkURL, err := s.ensureLink(ctx, rec)
	if err != nil {
		return nil, err
	}

	daysRemaining := 0
	if pol.DueAt != nil {
		daysRemaining = int(time.Until(*pol.DueAt).Hours() / 24)
	}
	reminderNumber := rec.ReminderCount + 1
	if err := s.mailer.SendReminder(ctx, rec.UserEmail, rec.UserName, pol.Title, linkURL, reminderNumber, daysRemaining); err != nil {
		// Count stays untouched on a failed send; the caller may retry.
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to send reminder email", err)
	}

	rec.ReminderCount = reminderNumber
	if err := s.store.Update(ctx, rec); err != nil {
		return nil, err
	}

	s.metrics.RemindersSent.Inc()
	s.record(ctx, audit.EventReminderSent, rec, fmt.Sprintf("reminder #%d", reminderNumber))
	return &RemindResult{
		Message:             fmt.Sprintf("Reminder #%d sent to %s", reminderNumber, rec.UserEmail),
		ReminderCount:       rec.ReminderCount,
		MaxRemindersReached: rec.MaxRemindersReached(),
	}, nil
}

// Delete removes an assignment. Acknowledged assignments are the audit
// record and are refused locally before any store call.
func (s *Service) Delete(ctx context.Context, assignmentID id.AssignmentID) error {
	ctx, span := s.tracer.Start(ctx, "assignment.delete")
	defer span.End()

	if !s.inflight.begin(assignmentID) {
		return ErrInFlight
	}
	defer s.inflight.end(assignmentID)

	rec, err := s.store.Get(ctx, assignmentID)
	if err != nil {
		return err
	}
	if !rec.CanDelete() {
		return dErrors.New(dErrors.CodeIneligible, "cannot delete acknowledged assignment")
	}

	if err := s.store.Delete(ctx, assignmentID); err != nil {
		return err
	}
	s.metrics.AssignmentsDeleted.Inc()
	s.record(ctx, audit.EventAssignmentDeleted, rec, "")
	return nil
}

// ResendResult carries the freshly minted link for clipboard copy.
type ResendResult struct {
	Message    string
	NewLinkURL string
}

// ResendLink reissues the magic link, invalidating the previous token so the
// old URL stops working.
func (s *Service) ResendLink(ctx context.Context, assignmentID id.AssignmentID) (*ResendResult, error) {
	ctx, span := s.tracer.Start(ctx, "assignment.resend_link")
	defer span.End()

	if !s.inflight.begin(assignmentID) {
		return nil, ErrInFlight
	}
	defer s.inflight.end(assignmentID)

	rec, err := s.store.Get(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if !rec.CanResendLink() {
		return nil, dErrors.New(dErrors.CodeIneligible, "cannot resend link for this assignment status")
	}

	oldToken := rec.MagicLinkToken
	token, linkURL, err := s.links.Mint(rec.ID, rec.UserEmail, s.now())
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to mint magic link", err)
	}
	rec.MagicLinkToken = token
	if err := s.store.Update(ctx, rec); err != nil {
		return nil, err
	}
	if oldToken != "" {
		if err := s.links.Revoke(ctx, oldToken); err != nil {
			s.logger.WarnContext(ctx, "failed to revoke previous magic link",
				"assignment_id", rec.ID.String(), "error", err)
		}
	}

	s.metrics.LinksResent.Inc()
	s.record(ctx, audit.EventLinkResent, rec, "")
	return &ResendResult{
		Message:    fmt.Sprintf("New link issued for %s", rec.UserEmail),
		NewLinkURL: linkURL,
	}, nil
}

// Receipt streams the acknowledgment receipt artifact.
func (s *Service) Receipt(ctx context.Context, assignmentID id.AssignmentID) ([]byte, error) {
	rec, err := s.store.Get(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if !rec.HasReceipt {
		return nil, dErrors.New(dErrors.CodeNotFound, "no receipt exists for this assignment")
	}
	artifact, err := s.receipts.Fetch(ctx, assignmentID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "no receipt exists for this assignment")
	}
	return artifact, err
}

// ensureLink returns the record's current link URL, minting and persisting a
// token when none exists yet. Reminders reuse the stored token rather than
// invalidating links the recipient may already hold; only ResendLink rotates.
func (s *Service) ensureLink(ctx context.Context, rec *assignment.Record) (string, error) {
	if rec.MagicLinkToken != "" {
		return s.links.LinkURL(rec.MagicLinkToken), nil
	}

	token, linkURL, err := s.links.Mint(rec.ID, rec.UserEmail, s.now())
	if err != nil {
		return "", dErrors.Wrap(dErrors.CodeInternal, "failed to mint magic link", err)
	}
	rec.MagicLinkToken = token
	if err := s.store.Update(ctx, rec); err != nil {
		return "", err
	}
	return linkURL, nil
}

func (s *Service) record(ctx context.Context, action audit.Action, rec *assignment.Record, detail string) {
	if s.recorder == nil {
		return
	}
	if !s.recorder.Record(audit.Event{
		Action:       action,
		AssignmentID: rec.ID,
		PolicyID:     rec.PolicyID,
		UserEmail:    rec.UserEmail,
		Detail:       detail,
	}) {
		s.logger.WarnContext(ctx, "audit inbox full, event dropped",
			"action", string(action), "assignment_id", rec.ID.String())
	}
}
