package assignment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	id "attest/pkg/domain"
	"attest/pkg/platform/sentinel"
)

type MemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.ctx = context.Background()
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) newRecord(policyID id.PolicyID, email string, createdAt time.Time) *Record {
	return &Record{
		ID:        id.NewAssignmentID(),
		PolicyID:  policyID,
		UserID:    id.NewUserID(),
		UserEmail: email,
		UserName:  "Test Recipient",
		Status:    StatusPending,
		CreatedAt: createdAt,
	}
}

func (s *MemoryStoreSuite) TestCreateAndGet() {
	policyID := id.NewPolicyID()
	rec := s.newRecord(policyID, "a@example.com", time.Now())
	s.Require().NoError(s.store.Create(s.ctx, rec))

	found, err := s.store.Get(s.ctx, rec.ID)
	s.Require().NoError(err)
	s.Equal(rec.UserEmail, found.UserEmail)

	s.Run("returns ErrNotFound for unknown ID", func() {
		_, err := s.store.Get(s.ctx, id.NewAssignmentID())
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("rejects a second assignment for the same recipient and policy", func() {
		dup := s.newRecord(policyID, "a@example.com", time.Now())
		dup.UserID = rec.UserID
		s.Require().ErrorIs(s.store.Create(s.ctx, dup), sentinel.ErrConflict)
	})

	s.Run("mutating the caller's record does not leak into the store", func() {
		rec.Status = StatusAcknowledged
		found, err := s.store.Get(s.ctx, rec.ID)
		s.Require().NoError(err)
		s.Equal(StatusPending, found.Status)
	})
}

func (s *MemoryStoreSuite) TestUpdateAndDelete() {
	rec := s.newRecord(id.NewPolicyID(), "b@example.com", time.Now())
	s.Require().NoError(s.store.Create(s.ctx, rec))

	rec.Status = StatusViewed
	now := time.Now()
	rec.ViewedAt = &now
	s.Require().NoError(s.store.Update(s.ctx, rec))

	found, err := s.store.Get(s.ctx, rec.ID)
	s.Require().NoError(err)
	s.Equal(StatusViewed, found.Status)
	s.NotNil(found.ViewedAt)

	s.Require().NoError(s.store.Delete(s.ctx, rec.ID))
	s.Require().ErrorIs(s.store.Delete(s.ctx, rec.ID), sentinel.ErrNotFound)
	s.Require().ErrorIs(s.store.Update(s.ctx, rec), sentinel.ErrNotFound)
}

func (s *MemoryStoreSuite) TestListByPolicy() {
	policyID := id.NewPolicyID()
	base := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

	first := s.newRecord(policyID, "alice@example.com", base)
	first.UserName = "Alice Jones"
	second := s.newRecord(policyID, "bob@example.com", base.Add(time.Minute))
	second.UserName = "Bob Smith"
	second.Status = StatusViewed
	third := s.newRecord(policyID, "carol@example.com", base.Add(2*time.Minute))
	third.UserName = "Carol Davis"
	other := s.newRecord(id.NewPolicyID(), "dave@example.com", base)

	for _, rec := range []*Record{first, second, third, other} {
		s.Require().NoError(s.store.Create(s.ctx, rec))
	}

	s.Run("returns only the policy's records in creation order", func() {
		records, total, err := s.store.ListByPolicy(s.ctx, policyID, ListFilter{})
		s.Require().NoError(err)
		s.Equal(3, total)
		s.Require().Len(records, 3)
		s.Equal("alice@example.com", records[0].UserEmail)
		s.Equal("carol@example.com", records[2].UserEmail)
	})

	s.Run("filters by status", func() {
		records, total, err := s.store.ListByPolicy(s.ctx, policyID, ListFilter{Status: StatusViewed})
		s.Require().NoError(err)
		s.Equal(1, total)
		s.Require().Len(records, 1)
		s.Equal("bob@example.com", records[0].UserEmail)
	})

	s.Run("searches name and email case-insensitively", func() {
		records, _, err := s.store.ListByPolicy(s.ctx, policyID, ListFilter{Search: "ALICE"})
		s.Require().NoError(err)
		s.Require().Len(records, 1)
		s.Equal("alice@example.com", records[0].UserEmail)

		records, _, err = s.store.ListByPolicy(s.ctx, policyID, ListFilter{Search: "smith"})
		s.Require().NoError(err)
		s.Require().Len(records, 1)
		s.Equal("bob@example.com", records[0].UserEmail)
	})

	s.Run("paginates with a stable total", func() {
		records, total, err := s.store.ListByPolicy(s.ctx, policyID, ListFilter{Page: 2, PerPage: 2})
		s.Require().NoError(err)
		s.Equal(3, total)
		s.Require().Len(records, 1)
		s.Equal("carol@example.com", records[0].UserEmail)
	})

	s.Run("out-of-range page returns empty with the true total", func() {
		records, total, err := s.store.ListByPolicy(s.ctx, policyID, ListFilter{Page: 9, PerPage: 10})
		s.Require().NoError(err)
		s.Equal(3, total)
		s.Empty(records)
	})
}

func (s *MemoryStoreSuite) TestListUnfinished() {
	policyID := id.NewPolicyID()
	pending := s.newRecord(policyID, "p@example.com", time.Now())
	acked := s.newRecord(policyID, "a@example.com", time.Now())
	acked.Status = StatusAcknowledged

	s.Require().NoError(s.store.Create(s.ctx, pending))
	s.Require().NoError(s.store.Create(s.ctx, acked))

	records, err := s.store.ListUnfinished(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(records, 1)
	s.Equal(pending.ID, records[0].ID)
}
