package assignment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func record(status Status, reminders int) *Record {
	return &Record{Status: status, ReminderCount: reminders}
}

func TestCanSendReminder(t *testing.T) {
	t.Run("allowed for pending and viewed below the cap", func(t *testing.T) {
		assert.True(t, record(StatusPending, 0).CanSendReminder())
		assert.True(t, record(StatusViewed, 2).CanSendReminder())
	})

	t.Run("denied at the cap for any status", func(t *testing.T) {
		for _, status := range []Status{StatusPending, StatusSent, StatusViewed, StatusAcknowledged, StatusDeclined, StatusExpired} {
			assert.False(t, record(status, MaxReminders).CanSendReminder(), "status %s", status)
			assert.False(t, record(status, MaxReminders+1).CanSendReminder(), "status %s", status)
		}
	})

	t.Run("denied for terminal and sent statuses below the cap", func(t *testing.T) {
		assert.False(t, record(StatusSent, 0).CanSendReminder())
		assert.False(t, record(StatusAcknowledged, 0).CanSendReminder())
		assert.False(t, record(StatusDeclined, 0).CanSendReminder())
		assert.False(t, record(StatusExpired, 0).CanSendReminder())
	})
}

func TestCanDelete(t *testing.T) {
	assert.False(t, record(StatusAcknowledged, 0).CanDelete())
	for _, status := range []Status{StatusPending, StatusSent, StatusViewed, StatusDeclined, StatusExpired} {
		assert.True(t, record(status, 0).CanDelete(), "status %s", status)
	}
}

func TestCanResendLink(t *testing.T) {
	assert.True(t, record(StatusPending, 0).CanResendLink())
	assert.True(t, record(StatusViewed, 0).CanResendLink())
	assert.False(t, record(StatusSent, 0).CanResendLink())
	assert.False(t, record(StatusAcknowledged, 0).CanResendLink())
	assert.False(t, record(StatusDeclined, 0).CanResendLink())
}

func TestRemainingReminders(t *testing.T) {
	assert.Equal(t, 3, record(StatusPending, 0).RemainingReminders())
	assert.Equal(t, 1, record(StatusPending, 2).RemainingReminders())
	assert.Equal(t, 0, record(StatusPending, 3).RemainingReminders())
	// Never negative, even if a legacy row overshot the cap.
	assert.Equal(t, 0, record(StatusPending, 5).RemainingReminders())
}

func TestEffectiveStatus(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)

	t.Run("past due reads as overdue while unresolved", func(t *testing.T) {
		for _, status := range []Status{StatusPending, StatusSent, StatusViewed} {
			rec := record(status, 0)
			rec.DueAt = &past
			assert.Equal(t, StatusOverdue, rec.EffectiveStatus(now), "status %s", status)
		}
	})

	t.Run("resolved statuses never read as overdue", func(t *testing.T) {
		for _, status := range []Status{StatusAcknowledged, StatusDeclined, StatusExpired} {
			rec := record(status, 0)
			rec.DueAt = &past
			assert.Equal(t, status, rec.EffectiveStatus(now), "status %s", status)
		}
	})

	t.Run("future or absent due date keeps the stored status", func(t *testing.T) {
		rec := record(StatusViewed, 0)
		rec.DueAt = &future
		assert.Equal(t, StatusViewed, rec.EffectiveStatus(now))

		rec.DueAt = nil
		assert.Equal(t, StatusViewed, rec.EffectiveStatus(now))
	})
}

func TestCanTransition(t *testing.T) {
	t.Run("legal edges", func(t *testing.T) {
		assert.True(t, record(StatusPending, 0).CanTransition(StatusViewed))
		assert.True(t, record(StatusSent, 0).CanTransition(StatusViewed))
		assert.True(t, record(StatusViewed, 0).CanTransition(StatusAcknowledged))
		assert.True(t, record(StatusPending, 0).CanTransition(StatusDeclined))
	})

	t.Run("acknowledgment requires a prior view", func(t *testing.T) {
		assert.False(t, record(StatusPending, 0).CanTransition(StatusAcknowledged))
		assert.False(t, record(StatusSent, 0).CanTransition(StatusAcknowledged))
	})

	t.Run("terminal statuses have no outgoing edges", func(t *testing.T) {
		for _, to := range []Status{StatusPending, StatusSent, StatusViewed, StatusAcknowledged, StatusDeclined, StatusExpired} {
			assert.False(t, record(StatusAcknowledged, 0).CanTransition(to))
			assert.False(t, record(StatusDeclined, 0).CanTransition(to))
			assert.False(t, record(StatusExpired, 0).CanTransition(to))
		}
	})
}
