package viewgate

import (
	id "attest/pkg/domain"
)

// Strategy is how the document is being rendered for this session.
type Strategy string

const (
	// StrategyPaginated exposes per-page events; full review is inferred
	// from page coverage.
	StrategyPaginated Strategy = "paginated"
	// StrategyOpaque exposes no page boundaries; full review requires a
	// dwell threshold plus an explicit confirmation.
	StrategyOpaque Strategy = "opaque"
)

// Session is the per-open-document view state. All mutation happens under
// the owning gate's lock; the session itself is never shared.
type Session struct {
	ID             id.SessionID
	AssignmentID   id.AssignmentID
	Strategy       Strategy
	TotalPages     int // 0 while unknown
	ElapsedSeconds int
	Confirmed      bool

	pagesViewed map[int]struct{}
}

// newSession seeds the page set with page 1, which is displayed the moment
// the viewer opens.
func newSession(assignmentID id.AssignmentID) *Session {
	return &Session{
		ID:           id.NewSessionID(),
		AssignmentID: assignmentID,
		pagesViewed:  map[int]struct{}{1: {}},
	}
}

// recordPage marks a page index as displayed. Indices are 1-based; garbage
// indices are ignored.
func (s *Session) recordPage(page int) {
	if page < 1 {
		return
	}
	if s.TotalPages > 0 && page > s.TotalPages {
		return
	}
	s.pagesViewed[page] = struct{}{}
}

// PagesViewed returns how many distinct pages have been displayed.
func (s *Session) PagesViewed() int {
	return len(s.pagesViewed)
}

// fullCoverage reports whether every known page has been displayed. False
// while the page count is unknown.
func (s *Session) fullCoverage() bool {
	return s.TotalPages > 0 && len(s.pagesViewed) >= s.TotalPages
}
