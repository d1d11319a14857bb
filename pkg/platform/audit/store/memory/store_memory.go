package memory

import (
	"context"
	"sync"

	audit "attest/pkg/platform/audit"
)

// Store keeps the audit trail in memory, in append order. Backs tests and
// single-node runs; durable deployments publish to Kafka as well.
type Store struct {
	mu     sync.RWMutex
	events []audit.Event
}

func New() *Store {
	return &Store{}
}

func (s *Store) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// Events returns a snapshot of the trail.
func (s *Store) Events() []audit.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Event{}, s.events...)
}
