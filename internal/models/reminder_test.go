package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReminderDueAt(t *testing.T) {
	r := &Reminder{
		ReminderDate: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		ReminderTime: "09:30",
	}
	due, err := r.DueAt()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC), due)
}

func TestReminderDueAtRejectsMalformedTime(t *testing.T) {
	for _, bad := range []string{"", "9:5", "12:34junk", "25:00", "10:61", "noon"} {
		r := &Reminder{
			ReminderDate: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
			ReminderTime: bad,
		}
		_, err := r.DueAt()
		assert.Errorf(t, err, "time %q should be rejected", bad)
	}
}
