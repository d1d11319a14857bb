package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/asaskevich/govalidator"

	"attest/internal/assignment"
	id "attest/pkg/domain"
	dErrors "attest/pkg/domain-errors"
	"attest/pkg/email"
	audit "attest/pkg/platform/audit"
	"attest/pkg/platform/sentinel"
)

// AddRecipientsResult reports a recipient import.
type AddRecipientsResult struct {
	Created int
	Skipped []string // emails that already had an assignment
	Invalid []string // emails that failed validation
}

// AddRecipients creates one assignment per email for the policy. Recipients
// who already hold an assignment are skipped, not errors; invalid addresses
// are reported back instead of aborting the whole import.
func (s *Service) AddRecipients(ctx context.Context, policyID id.PolicyID, emails []string) (*AddRecipientsResult, error) {
	if len(emails) == 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "recipients list must not be empty")
	}
	pol, err := s.policies.Get(ctx, policyID)
	if err != nil {
		return nil, err
	}

	result := &AddRecipientsResult{}
	for _, address := range emails {
		if !govalidator.IsEmail(address) {
			result.Invalid = append(result.Invalid, address)
			continue
		}

		rec := &assignment.Record{
			ID:        id.NewAssignmentID(),
			PolicyID:  policyID,
			UserID:    id.NewUserID(),
			UserEmail: address,
			UserName:  email.DisplayNameFromEmail(address),
			Status:    assignment.StatusPending,
			CreatedAt: s.now(),
			DueAt:     pol.DueAt,
		}
		err := s.store.Create(ctx, rec)
		if errors.Is(err, sentinel.ErrConflict) {
			result.Skipped = append(result.Skipped, address)
			continue
		}
		if err != nil {
			return nil, err
		}
		result.Created++
		s.record(ctx, audit.EventAssignmentCreated, rec, "")
	}
	return result, nil
}

// SendResult reports a distribution run.
type SendResult struct {
	Sent   int
	Failed []string
}

// SendAssignments emails the policy to every pending or viewed recipient,
// minting magic links where missing. Sends run sequentially; one failed
// address never aborts the rest.
func (s *Service) SendAssignments(ctx context.Context, policyID id.PolicyID) (*SendResult, error) {
	pol, err := s.policies.Get(ctx, policyID)
	if err != nil {
		return nil, err
	}

	records, _, err := s.store.ListByPolicy(ctx, policyID, assignment.ListFilter{})
	if err != nil {
		return nil, err
	}

	result := &SendResult{}
	for _, rec := range records {
		if rec.Status != assignment.StatusPending && rec.Status != assignment.StatusViewed {
			continue
		}
		linkURL, err := s.ensureLink(ctx, rec)
		if err != nil {
			result.Failed = append(result.Failed, rec.UserEmail)
			continue
		}
		if err := s.mailer.SendAssignment(ctx, rec.UserEmail, rec.UserName, pol.Title, linkURL, pol.DueAt); err != nil {
			s.logger.ErrorContext(ctx, "assignment email failed",
				"assignment_id", rec.ID.String(), "error", err)
			result.Failed = append(result.Failed, rec.UserEmail)
			continue
		}
		if rec.Status == assignment.StatusPending {
			rec.Status = assignment.StatusSent
			if err := s.store.Update(ctx, rec); err != nil {
				result.Failed = append(result.Failed, rec.UserEmail)
				continue
			}
		}
		result.Sent++
		s.record(ctx, audit.EventAssignmentSent, rec, "")
	}
	if result.Sent == 0 && len(result.Failed) == 0 {
		return nil, dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("no assignments eligible for sending on policy %s", policyID))
	}
	return result, nil
}
