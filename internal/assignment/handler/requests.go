package handler

import (
	"strings"

	"attest/internal/assignment"
	"attest/internal/assignment/service"
	id "attest/pkg/domain"
	dErrors "attest/pkg/domain-errors"
)

// maxRecipientsPerImport bounds a single recipients upload.
const maxRecipientsPerImport = 1000

// AddRecipientsRequest is the body for POST /policies/{policyID}/recipients.
type AddRecipientsRequest struct {
	Emails []string `json:"emails"`
}

// Validate checks the import list before any store work.
func (r *AddRecipientsRequest) Validate() error {
	if r == nil || len(r.Emails) == 0 {
		return dErrors.New(dErrors.CodeBadRequest, "emails is required")
	}
	if len(r.Emails) > maxRecipientsPerImport {
		return dErrors.New(dErrors.CodeInvalidInput, "at most 1000 recipients per import")
	}
	for i, address := range r.Emails {
		r.Emails[i] = strings.TrimSpace(address)
	}
	return nil
}

// BulkRequest is the body for POST /assignments/bulk/{action}.
type BulkRequest struct {
	PolicyID string   `json:"policy_id"`
	IDs      []string `json:"ids"`
	DryRun   bool     `json:"dry_run"`

	// Parsed values (populated by Validate)
	parsedPolicyID id.PolicyID
	parsedIDs      []id.AssignmentID
}

// Validate parses the policy and assignment IDs.
func (r *BulkRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	policyID, err := id.ParsePolicyID(strings.TrimSpace(r.PolicyID))
	if err != nil {
		return err
	}
	r.parsedPolicyID = policyID

	if len(r.IDs) == 0 {
		return dErrors.New(dErrors.CodeBadRequest, "ids is required")
	}
	r.parsedIDs = make([]id.AssignmentID, 0, len(r.IDs))
	for _, raw := range r.IDs {
		assignmentID, err := id.ParseAssignmentID(strings.TrimSpace(raw))
		if err != nil {
			return err
		}
		r.parsedIDs = append(r.parsedIDs, assignmentID)
	}
	return nil
}

// ParsedPolicyID returns the validated policy ID.
func (r *BulkRequest) ParsedPolicyID() id.PolicyID {
	return r.parsedPolicyID
}

// ParsedIDs returns the validated assignment IDs.
func (r *BulkRequest) ParsedIDs() []id.AssignmentID {
	return r.parsedIDs
}

func parseBulkAction(raw string) (service.BulkAction, error) {
	switch service.BulkAction(raw) {
	case service.BulkActionRemind:
		return service.BulkActionRemind, nil
	case service.BulkActionDelete:
		return service.BulkActionDelete, nil
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, "bulk action must be remind or delete")
	}
}

func parseStatusFilter(raw string) (assignment.Status, error) {
	if raw == "" {
		return "", nil
	}
	switch status := assignment.Status(raw); status {
	case assignment.StatusPending, assignment.StatusSent, assignment.StatusViewed,
		assignment.StatusAcknowledged, assignment.StatusDeclined, assignment.StatusExpired:
		return status, nil
	case assignment.StatusOverdue:
		return "", dErrors.New(dErrors.CodeInvalidInput, "overdue is derived from the due date and cannot be filtered on")
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown status filter")
	}
}
