// Package domain holds typed identifiers shared across the service. Distinct
// types over uuid.UUID keep an AssignmentID from ever being passed where a
// PolicyID is expected; the compiler enforces the boundary.
package domain

import (
	"github.com/google/uuid"

	dErrors "attest/pkg/domain-errors"
)

type (
	// AssignmentID identifies one recipient's assignment to one policy.
	AssignmentID uuid.UUID
	// PolicyID identifies a distributed policy document.
	PolicyID uuid.UUID
	// UserID identifies a recipient or administrator.
	UserID uuid.UUID
	// SessionID identifies a live document view session.
	SessionID uuid.UUID
)

func (id AssignmentID) String() string { return uuid.UUID(id).String() }
func (id PolicyID) String() string     { return uuid.UUID(id).String() }
func (id UserID) String() string       { return uuid.UUID(id).String() }
func (id SessionID) String() string    { return uuid.UUID(id).String() }

// IsZero reports whether the ID is the nil UUID.
func (id AssignmentID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }

// NewAssignmentID mints a random assignment identifier.
func NewAssignmentID() AssignmentID { return AssignmentID(uuid.New()) }

// NewPolicyID mints a random policy identifier.
func NewPolicyID() PolicyID { return PolicyID(uuid.New()) }

// NewUserID mints a random user identifier.
func NewUserID() UserID { return UserID(uuid.New()) }

// NewSessionID mints a random view session identifier.
func NewSessionID() SessionID { return SessionID(uuid.New()) }

// ParseAssignmentID parses and validates an assignment ID from its string form.
// IDs must be valid, non-empty, non-nil UUIDs.
func ParseAssignmentID(s string) (AssignmentID, error) {
	u, err := parseUUID(s)
	return AssignmentID(u), err
}

// ParsePolicyID parses and validates a policy ID from its string form.
func ParsePolicyID(s string) (PolicyID, error) {
	u, err := parseUUID(s)
	return PolicyID(u), err
}

// ParseUserID parses and validates a user ID from its string form.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s)
	return UserID(u), err
}

// ParseSessionID parses and validates a view session ID from its string form.
func ParseSessionID(s string) (SessionID, error) {
	u, err := parseUUID(s)
	return SessionID(u), err
}

func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must not be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id is not a valid uuid")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must not be the nil uuid")
	}
	return u, nil
}
