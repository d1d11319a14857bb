package service

import (
	"sync"

	id "attest/pkg/domain"
)

// inflight marks records with a network-backed action currently running so a
// duplicate click is a no-op instead of a second request. Marking is
// per-record-id, not global: acting on record A never blocks record B.
type inflight struct {
	mu  sync.Mutex
	ids map[id.AssignmentID]struct{}
}

func newInflight() *inflight {
	return &inflight{ids: make(map[id.AssignmentID]struct{})}
}

// begin marks the record in flight. Returns false when it already was.
func (f *inflight) begin(assignmentID id.AssignmentID) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, busy := f.ids[assignmentID]; busy {
		return false
	}
	f.ids[assignmentID] = struct{}{}
	return true
}

// end clears the marker. Safe to call for a record not in flight.
func (f *inflight) end(assignmentID id.AssignmentID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.ids, assignmentID)
}
