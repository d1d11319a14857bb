// Package policy holds the minimal policy-document model this service needs:
// enough to address assignments, render page data, and compute due dates.
// Policy authoring, file upload, and versioning live in the admin backend.
package policy

import (
	"context"
	"sync"
	"time"

	id "attest/pkg/domain"
	"attest/pkg/platform/sentinel"
)

// Policy is the document being distributed for acknowledgment.
type Policy struct {
	ID                    id.PolicyID
	Title                 string
	FileURL               string
	ContentSHA256         string
	Version               string
	DueAt                 *time.Time
	RequireTypedSignature bool
	CreatedAt             time.Time
}

// Store reads policy documents. This service never writes them.
type Store interface {
	Get(ctx context.Context, policyID id.PolicyID) (*Policy, error)
}

// InMemoryStore backs tests and development runs.
type InMemoryStore struct {
	mu       sync.RWMutex
	policies map[id.PolicyID]*Policy
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{policies: make(map[id.PolicyID]*Policy)}
}

// Seed inserts a policy, replacing any existing entry with the same ID.
func (s *InMemoryStore) Seed(p *Policy) {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *p
	s.policies[p.ID] = &clone
}

func (s *InMemoryStore) Get(_ context.Context, policyID id.PolicyID) (*Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.policies[policyID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *p
	return &clone, nil
}
