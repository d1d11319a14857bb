package service

import (
	"context"

	"attest/internal/assignment"
	"attest/internal/assignment/bulk"
	id "attest/pkg/domain"
	dErrors "attest/pkg/domain-errors"
)

// BulkAction names an operation the coordinator can run over a selection.
type BulkAction string

const (
	BulkActionRemind BulkAction = "remind"
	BulkActionDelete BulkAction = "delete"
)

// BulkPreview is the confirmation step: how many records the batch would
// touch. Callers show this count and only then execute.
type BulkPreview struct {
	Eligible int
}

// PrepareBulk computes the eligible subset size for the action without
// executing anything.
func (s *Service) PrepareBulk(ctx context.Context, policyID id.PolicyID, action BulkAction, selected []id.AssignmentID) (*BulkPreview, error) {
	eligible, err := s.eligibleFor(ctx, policyID, action, selected)
	if err != nil {
		return nil, err
	}
	return &BulkPreview{Eligible: len(eligible)}, nil
}

// RunBulk executes the action sequentially over the eligible subset of the
// selection. The per-record in-flight discipline and local eligibility
// checks still apply inside each action; a record failing mid-batch is
// tallied, never fatal.
func (s *Service) RunBulk(ctx context.Context, policyID id.PolicyID, action BulkAction, selected []id.AssignmentID) (bulk.Outcome, error) {
	eligible, err := s.eligibleFor(ctx, policyID, action, selected)
	if err != nil {
		return bulk.Outcome{}, err
	}

	var perRecord bulk.Action
	switch action {
	case BulkActionRemind:
		perRecord = func(ctx context.Context, rec *assignment.Record) error {
			_, err := s.Remind(ctx, rec.ID)
			return err
		}
	case BulkActionDelete:
		perRecord = func(ctx context.Context, rec *assignment.Record) error {
			return s.Delete(ctx, rec.ID)
		}
	default:
		return bulk.Outcome{}, dErrors.New(dErrors.CodeBadRequest, "unknown bulk action")
	}

	outcome := bulk.Run(ctx, eligible, perRecord)
	s.metrics.BulkActions.WithLabelValues(string(action), bulkOutcomeLabel(outcome)).Inc()
	s.logger.InfoContext(ctx, "bulk action completed",
		"action", string(action),
		"eligible", outcome.Eligible,
		"succeeded", outcome.Succeeded,
		"failed", len(outcome.Failed),
	)
	return outcome, nil
}

func (s *Service) eligibleFor(ctx context.Context, policyID id.PolicyID, action BulkAction, selected []id.AssignmentID) ([]*assignment.Record, error) {
	records, _, err := s.List(ctx, policyID, assignment.ListFilter{})
	if err != nil {
		return nil, err
	}

	var predicate func(*assignment.Record) bool
	switch action {
	case BulkActionRemind:
		predicate = (*assignment.Record).CanSendReminder
	case BulkActionDelete:
		predicate = (*assignment.Record).CanDelete
	default:
		return nil, dErrors.New(dErrors.CodeBadRequest, "unknown bulk action")
	}

	return bulk.Eligible(records, bulk.NewSelection(selected...), predicate), nil
}

func bulkOutcomeLabel(outcome bulk.Outcome) string {
	switch {
	case outcome.NoOp():
		return "noop"
	case len(outcome.Failed) == 0:
		return "ok"
	case outcome.Succeeded == 0:
		return "failed"
	default:
		return "partial"
	}
}
