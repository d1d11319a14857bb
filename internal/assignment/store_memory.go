package assignment

import (
	"context"
	"sort"
	"strings"
	"sync"

	id "attest/pkg/domain"
	"attest/pkg/platform/sentinel"
)

// InMemoryStore keeps assignment records in process memory. It backs tests
// and development runs; production uses the postgres store.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[id.AssignmentID]*Record
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[id.AssignmentID]*Record)}
}

func (s *InMemoryStore) Create(_ context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[rec.ID]; exists {
		return sentinel.ErrConflict
	}
	for _, existing := range s.records {
		if existing.PolicyID == rec.PolicyID && existing.UserID == rec.UserID {
			return sentinel.ErrConflict
		}
	}
	clone := *rec
	s.records[rec.ID] = &clone
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, assignmentID id.AssignmentID) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[assignmentID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *rec
	return &clone, nil
}

func (s *InMemoryStore) GetByRecipient(_ context.Context, policyID id.PolicyID, userID id.UserID) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.records {
		if rec.PolicyID == policyID && rec.UserID == userID {
			clone := *rec
			return &clone, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) Update(_ context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[rec.ID]; !ok {
		return sentinel.ErrNotFound
	}
	clone := *rec
	s.records[rec.ID] = &clone
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, assignmentID id.AssignmentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[assignmentID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.records, assignmentID)
	return nil
}

func (s *InMemoryStore) ListByPolicy(_ context.Context, policyID id.PolicyID, filter ListFilter) ([]*Record, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*Record
	for _, rec := range s.records {
		if rec.PolicyID != policyID {
			continue
		}
		if filter.Status != "" && rec.Status != filter.Status {
			continue
		}
		if filter.Search != "" && !matchesSearch(rec, filter.Search) {
			continue
		}
		clone := *rec
		matched = append(matched, &clone)
	}

	// Stable ordering so pagination does not shuffle between requests.
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID.String() < matched[j].ID.String()
		}
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})

	total := len(matched)
	perPage := filter.PerPage
	if perPage < 1 {
		// No page size means the whole result set (bulk sends, sweeps).
		return matched, total, nil
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	start := (page - 1) * perPage
	if start >= total {
		return nil, total, nil
	}
	end := start + perPage
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (s *InMemoryStore) ListUnfinished(_ context.Context) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Record
	for _, rec := range s.records {
		switch rec.Status {
		case StatusPending, StatusSent, StatusViewed:
			clone := *rec
			out = append(out, &clone)
		}
	}
	return out, nil
}

func matchesSearch(rec *Record, search string) bool {
	needle := strings.ToLower(search)
	return strings.Contains(strings.ToLower(rec.UserName), needle) ||
		strings.Contains(strings.ToLower(rec.UserEmail), needle)
}
