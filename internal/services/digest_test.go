package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEmailTimeReached(t *testing.T) {
	at := func(hour, min int) time.Time {
		return time.Date(2026, 3, 10, hour, min, 0, 0, time.UTC)
	}

	tests := []struct {
		name      string
		emailTime string
		now       time.Time
		expected  bool
	}{
		{"before preference", "07:00", at(6, 59), false},
		{"exactly at preference", "07:00", at(7, 0), true},
		{"after preference", "07:00", at(9, 30), true},
		{"late preference not reached", "21:00", at(12, 0), false},
		{"invalid falls back to 07:00", "not-a-time", at(8, 0), true},
		{"invalid falls back, too early", "not-a-time", at(5, 0), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, emailTimeReached(tc.emailTime, tc.now))
		})
	}
}

func TestIsWeekendDay(t *testing.T) {
	saturday := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	sunday := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	monday := time.Date(2026, 3, 16, 9, 0, 0, 0, time.UTC)

	assert.True(t, isWeekendDay(saturday))
	assert.True(t, isWeekendDay(sunday))
	assert.False(t, isWeekendDay(monday))
}
