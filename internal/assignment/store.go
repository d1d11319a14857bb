package assignment

import (
	"context"

	id "attest/pkg/domain"
)

// ListFilter narrows and pages the assignment listing for one policy.
type ListFilter struct {
	Status  Status // empty means all
	Search  string // matches recipient name or email, case-insensitive
	Page    int    // 1-based
	PerPage int
}

// Store persists assignment records. Implementations return sentinel errors
// (sentinel.ErrNotFound, sentinel.ErrConflict) so services can translate them.
type Store interface {
	Create(ctx context.Context, rec *Record) error
	Get(ctx context.Context, assignmentID id.AssignmentID) (*Record, error)
	// GetByRecipient returns the record binding a user to a policy, if any.
	GetByRecipient(ctx context.Context, policyID id.PolicyID, userID id.UserID) (*Record, error)
	// Update persists a mutated record; the record must already exist.
	Update(ctx context.Context, rec *Record) error
	Delete(ctx context.Context, assignmentID id.AssignmentID) error
	// ListByPolicy returns the filtered page plus the unpaged total.
	ListByPolicy(ctx context.Context, policyID id.PolicyID, filter ListFilter) ([]*Record, int, error)
	// ListUnfinished returns every record still in pending/sent/viewed,
	// for the expiry sweeper.
	ListUnfinished(ctx context.Context) ([]*Record, error)
}
