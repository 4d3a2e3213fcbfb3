package project

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCalculateDaysLeft_WholeDays(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)
	midnight := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	for n := -45; n <= 45; n++ {
		deadline := midnight.AddDate(0, 0, n)
		assert.Equal(t, n, CalculateDaysLeft(deadline, now), "deadline %d days out", n)
	}
}

func TestCalculateDaysLeft_TimeOfDayIgnored(t *testing.T) {
	tests := []struct {
		name     string
		now      time.Time
		deadline time.Time
		want     int
	}{
		{
			name:     "deadline later today",
			now:      time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC),
			deadline: time.Date(2026, 3, 10, 23, 59, 0, 0, time.UTC),
			want:     0,
		},
		{
			name:     "deadline earlier today",
			now:      time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC),
			deadline: time.Date(2026, 3, 10, 0, 1, 0, 0, time.UTC),
			want:     0,
		},
		{
			name:     "36 hours away counts two days",
			now:      time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC),
			deadline: time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC).Add(36 * time.Hour),
			want:     2,
		},
		{
			name:     "one minute past midnight tomorrow",
			now:      time.Date(2026, 3, 10, 23, 59, 0, 0, time.UTC),
			deadline: time.Date(2026, 3, 11, 0, 1, 0, 0, time.UTC),
			want:     1,
		},
		{
			name:     "yesterday evening is one day overdue",
			now:      time.Date(2026, 3, 10, 0, 5, 0, 0, time.UTC),
			deadline: time.Date(2026, 3, 9, 23, 0, 0, 0, time.UTC),
			want:     -1,
		},
		{
			name:     "ten days ago",
			now:      time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
			deadline: time.Date(2026, 2, 28, 12, 0, 0, 0, time.UTC),
			want:     -10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CalculateDaysLeft(tt.deadline, tt.now))
		})
	}
}

func TestCalculateDaysLeft_UsesLocalCalendarOfNow(t *testing.T) {
	nairobi := time.FixedZone("EAT", 3*60*60)
	now := time.Date(2026, 3, 10, 10, 0, 0, 0, nairobi)

	// 22:00 UTC on the 10th is already the 11th in Nairobi
	deadline := time.Date(2026, 3, 10, 22, 0, 0, 0, time.UTC)

	assert.Equal(t, 1, CalculateDaysLeft(deadline, now))
}

func TestCalculateDaysLeft_AcrossDaylightSaving(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("timezone database not available")
	}

	// 2026-03-08 is a 23 hour day in New York
	now := time.Date(2026, 3, 7, 12, 0, 0, 0, loc)
	deadline := time.Date(2026, 3, 9, 0, 0, 0, 0, loc)
	assert.Equal(t, 2, CalculateDaysLeft(deadline, now))

	// 2026-11-01 is a 25 hour day
	now = time.Date(2026, 10, 31, 12, 0, 0, 0, loc)
	deadline = time.Date(2026, 11, 2, 0, 0, 0, 0, loc)
	assert.Equal(t, 2, CalculateDaysLeft(deadline, now))
}

func TestIsOverdueDays(t *testing.T) {
	assert.True(t, IsOverdueDays(-1))
	assert.False(t, IsOverdueDays(0))
	assert.False(t, IsOverdueDays(3))
}
