// Package receipt renders and stores acknowledgment receipts. The artifact
// binds who acknowledged what, when, and against which document content, so
// an audit can stand on more than a status column.
package receipt

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"attest/internal/assignment"
	"attest/internal/policy"
	id "attest/pkg/domain"
	"attest/pkg/platform/sentinel"
)

// Artifact is the stored receipt document.
type Artifact struct {
	AssignmentID   string    `json:"assignment_id"`
	PolicyID       string    `json:"policy_id"`
	PolicyTitle    string    `json:"policy_title"`
	PolicyVersion  string    `json:"policy_version"`
	ContentSHA256  string    `json:"content_sha256"`
	RecipientEmail string    `json:"recipient_email"`
	RecipientName  string    `json:"recipient_name"`
	AcknowledgedAt time.Time `json:"acknowledged_at"`
	GeneratedAt    time.Time `json:"generated_at"`
	// Digest covers every field above, so a stored receipt that was
	// tampered with no longer matches.
	Digest string `json:"digest"`
}

// MemoryStore renders receipts as canonical JSON and keeps them in memory.
type MemoryStore struct {
	mu        sync.RWMutex
	policies  policy.Store
	artifacts map[id.AssignmentID][]byte
	now       func() time.Time
}

func NewMemoryStore(policies policy.Store) *MemoryStore {
	return &MemoryStore{
		policies:  policies,
		artifacts: make(map[id.AssignmentID][]byte),
		now:       time.Now,
	}
}

// Generate renders and stores the receipt for an acknowledged assignment.
func (s *MemoryStore) Generate(ctx context.Context, rec *assignment.Record) error {
	if rec.AcknowledgedAt == nil {
		return fmt.Errorf("assignment %s is not acknowledged", rec.ID)
	}
	pol, err := s.policies.Get(ctx, rec.PolicyID)
	if err != nil {
		return fmt.Errorf("load policy for receipt: %w", err)
	}

	artifact := Artifact{
		AssignmentID:   rec.ID.String(),
		PolicyID:       rec.PolicyID.String(),
		PolicyTitle:    pol.Title,
		PolicyVersion:  pol.Version,
		ContentSHA256:  pol.ContentSHA256,
		RecipientEmail: rec.UserEmail,
		RecipientName:  rec.UserName,
		AcknowledgedAt: *rec.AcknowledgedAt,
		GeneratedAt:    s.now(),
	}
	artifact.Digest = digest(artifact)

	payload, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return fmt.Errorf("render receipt: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.artifacts[rec.ID] = payload
	return nil
}

// Fetch returns the stored receipt artifact.
func (s *MemoryStore) Fetch(_ context.Context, assignmentID id.AssignmentID) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	payload, ok := s.artifacts[assignmentID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := make([]byte, len(payload))
	copy(out, payload)
	return out, nil
}

func digest(a Artifact) string {
	a.Digest = ""
	payload, _ := json.Marshal(a)
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
