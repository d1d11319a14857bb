package magiclink

import (
	"context"
	"sync"
	"time"
)

// InMemoryRevocations is the single-node RevocationStore. Entries are pruned
// lazily on read once their deadline passes.
type InMemoryRevocations struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func NewInMemoryRevocations() *InMemoryRevocations {
	return &InMemoryRevocations{revoked: make(map[string]time.Time)}
}

func (s *InMemoryRevocations) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[tokenID] = time.Now().Add(ttl)
	return nil
}

func (s *InMemoryRevocations) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	deadline, ok := s.revoked[tokenID]
	if !ok {
		return false, nil
	}
	if time.Now().After(deadline) {
		delete(s.revoked, tokenID)
		return false, nil
	}
	return true, nil
}
