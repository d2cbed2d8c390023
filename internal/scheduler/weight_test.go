package scheduler

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"revisit-backend/internal/models"
)

// makeProblem builds an active problem added daysAgo days before now.
// lastRevisitDaysAgo < 0 means never revisited.
func makeProblem(now time.Time, daysAgo, lastRevisitDaysAgo, timesRevisited int) models.Problem {
	p := models.Problem{
		ID:             uuid.New(),
		CreatedAt:      now.Add(-time.Duration(daysAgo) * 24 * time.Hour),
		TimesRevisited: timesRevisited,
		Status:         models.ProblemStatusActive,
	}
	if lastRevisitDaysAgo >= 0 {
		t := now.Add(-time.Duration(lastRevisitDaysAgo) * 24 * time.Hour)
		p.LastRevisitedAt = &t
	}
	return p
}

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func TestScore_Deterministic(t *testing.T) {
	p := makeProblem(testNow, 30, 5, 2)
	first := Score(p, testNow)
	second := Score(p, testNow)
	assert.Equal(t, first, second)
}

func TestScore_Bounds(t *testing.T) {
	cases := []struct {
		name                    string
		daysAgo, lastAgo, times int
	}{
		{"brand new", 0, -1, 0},
		{"revisited today", 10, 0, 1},
		{"very old never revisited", 3650, -1, 0},
		{"heavily revisited", 365, 1, 50},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := Score(makeProblem(testNow, tc.daysAgo, tc.lastAgo, tc.times), testNow)
			assert.GreaterOrEqual(t, w.Weight, 0.0)
			assert.GreaterOrEqual(t, w.RevisitDecay, 0.0)
			assert.LessOrEqual(t, w.RevisitDecay, 1.0)
			assert.False(t, w.Weight != w.Weight, "weight must not be NaN")
		})
	}
}

func TestScore_DecayMonotonicInDaysSinceRevisit(t *testing.T) {
	prev := -1.0
	for _, days := range []int{0, 1, 2, 4, 7, 14, 30, 90, 365} {
		w := Score(makeProblem(testNow, 400, days, 1), testNow)
		require.GreaterOrEqual(t, w.RevisitDecay, prev,
			"decay must be non-decreasing, broke at %d days", days)
		prev = w.RevisitDecay
	}
}

func TestScore_StalerOutweighsFresher(t *testing.T) {
	fresh := Score(makeProblem(testNow, 60, 1, 3), testNow)
	stale := Score(makeProblem(testNow, 60, 30, 3), testNow)
	assert.Greater(t, stale.Weight, fresh.Weight)
}

func TestScore_RepetitionDampsWeight(t *testing.T) {
	rare := Score(makeProblem(testNow, 30, 10, 1), testNow)
	often := Score(makeProblem(testNow, 30, 10, 12), testNow)
	assert.Greater(t, rare.Weight, often.Weight)
}

func TestScore_HarderWeighsMore(t *testing.T) {
	easy := makeProblem(testNow, 30, 10, 2)
	easy.Difficulty = models.DifficultyEasy
	hard := makeProblem(testNow, 30, 10, 2)
	hard.Difficulty = models.DifficultyHard

	assert.Greater(t, Score(hard, testNow).Weight, Score(easy, testNow).Weight)
}

func TestScore_NeverRevisitedUsesAgeAsDecayProxy(t *testing.T) {
	w := Score(makeProblem(testNow, 14, -1, 0), testNow)
	assert.Equal(t, 14, w.DaysSinceAdded)
	assert.Equal(t, 14, w.DaysSinceLastRevisit)
	assert.True(t, w.IsEligible, "never revisited problems are always eligible")
}

func TestScore_Priorities(t *testing.T) {
	// Old and never revisited saturates decay → high priority.
	high := Score(makeProblem(testNow, 100, -1, 0), testNow)
	assert.Equal(t, PriorityHigh, high.Priority)

	// Revisited many times a day ago → almost no decay → low priority.
	low := Score(makeProblem(testNow, 100, 1, 10), testNow)
	assert.Equal(t, PriorityLow, low.Priority)
}

func TestScore_CooldownGatesEligibility(t *testing.T) {
	// One revisit → cooldown 2 days. 1 day since → ineligible, 2 days → eligible.
	assert.False(t, Score(makeProblem(testNow, 30, 1, 1), testNow).IsEligible)
	assert.True(t, Score(makeProblem(testNow, 30, 2, 1), testNow).IsEligible)

	// Four revisits → cooldown 14 days.
	assert.False(t, Score(makeProblem(testNow, 90, 10, 4), testNow).IsEligible)
	assert.True(t, Score(makeProblem(testNow, 90, 14, 4), testNow).IsEligible)
}

func TestScore_RetiredNeverEligible(t *testing.T) {
	p := makeProblem(testNow, 200, -1, 0)
	p.Status = models.ProblemStatusRetired
	assert.False(t, Score(p, testNow).IsEligible)
}

func TestCooldown_NonDecreasingAndCapped(t *testing.T) {
	prev := 0
	for n := 0; n <= 40; n++ {
		c := Cooldown(n)
		require.GreaterOrEqual(t, c, prev, "cooldown must not shrink at n=%d", n)
		require.LessOrEqual(t, c, 30)
		prev = c
	}
	assert.Equal(t, 30, Cooldown(1000))
	assert.Equal(t, Cooldown(0), Cooldown(-5))
}
