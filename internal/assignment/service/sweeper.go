package service

import (
	"context"
	"time"

	"attest/internal/assignment"
	audit "attest/pkg/platform/audit"
)

// expiryGrace is how far past due an unresolved assignment may sit before
// the sweeper marks it expired. Generous on purpose: overdue recipients can
// still acknowledge; expired ones need a fresh distribution.
const expiryGrace = 30 * 24 * time.Hour

// ExpireStale transitions long-past-due unresolved assignments to expired.
// Returns how many were expired.
func (s *Service) ExpireStale(ctx context.Context, now time.Time) (int, error) {
	records, err := s.store.ListUnfinished(ctx)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, rec := range records {
		if rec.DueAt == nil || now.Before(rec.DueAt.Add(expiryGrace)) {
			continue
		}
		if !rec.CanTransition(assignment.StatusExpired) {
			continue
		}
		rec.Status = assignment.StatusExpired
		if err := s.store.Update(ctx, rec); err != nil {
			s.logger.ErrorContext(ctx, "failed to expire assignment",
				"assignment_id", rec.ID.String(), "error", err)
			continue
		}
		expired++
		s.record(ctx, audit.EventAssignmentExpired, rec, "")
	}
	return expired, nil
}

// RunSweeper invokes ExpireStale on the interval until the context ends.
func (s *Service) RunSweeper(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if n, err := s.ExpireStale(ctx, s.now()); err != nil {
				s.logger.ErrorContext(ctx, "expiry sweep failed", "error", err)
			} else if n > 0 {
				s.logger.InfoContext(ctx, "expiry sweep", "expired", n)
			}
		}
	}
}
