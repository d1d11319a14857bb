package bulk

import (
	id "attest/pkg/domain"
)

// Selection is an immutable snapshot of checked assignment IDs. Mutating
// operations return a new Selection so async callbacks holding an old
// snapshot never observe concurrent edits.
type Selection struct {
	ids map[id.AssignmentID]struct{}
}

// NewSelection builds a selection from the given IDs.
func NewSelection(ids ...id.AssignmentID) Selection {
	m := make(map[id.AssignmentID]struct{}, len(ids))
	for _, assignmentID := range ids {
		m[assignmentID] = struct{}{}
	}
	return Selection{ids: m}
}

// With returns a copy of the selection including assignmentID.
func (s Selection) With(assignmentID id.AssignmentID) Selection {
	next := s.clone(1)
	next.ids[assignmentID] = struct{}{}
	return next
}

// Without returns a copy of the selection excluding assignmentID.
func (s Selection) Without(assignmentID id.AssignmentID) Selection {
	next := s.clone(0)
	delete(next.ids, assignmentID)
	return next
}

// Contains reports whether assignmentID is selected.
func (s Selection) Contains(assignmentID id.AssignmentID) bool {
	_, ok := s.ids[assignmentID]
	return ok
}

// Len returns the number of selected IDs.
func (s Selection) Len() int { return len(s.ids) }

// Clear returns the empty selection.
func (s Selection) Clear() Selection { return NewSelection() }

func (s Selection) clone(extra int) Selection {
	m := make(map[id.AssignmentID]struct{}, len(s.ids)+extra)
	for assignmentID := range s.ids {
		m[assignmentID] = struct{}{}
	}
	return Selection{ids: m}
}
