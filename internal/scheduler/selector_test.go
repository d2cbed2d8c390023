package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"revisit-backend/internal/models"
)

// weekday/weekend instants for the skip_weekends rule
var (
	tuesday  = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	saturday = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
)

func candidate(now time.Time, daysAgo, lastAgo, times int, revisitedToday bool) Candidate {
	p := makeProblem(now, daysAgo, lastAgo, times)
	return Candidate{Problem: p, Weight: Score(p, now), RevisitedToday: revisitedToday}
}

func TestSelectToday_EmptySet(t *testing.T) {
	focus := SelectToday(nil, 3, false, tuesday)
	assert.Empty(t, focus.Problems)
	assert.Equal(t, FocusSummary{}, focus.Summary)
}

func TestSelectToday_SingleNewProblem(t *testing.T) {
	focus := SelectToday([]Candidate{candidate(tuesday, 0, -1, 0, false)}, 3, false, tuesday)

	require.Len(t, focus.Problems, 1)
	assert.False(t, focus.Problems[0].RevisitedToday)
	assert.True(t, focus.Problems[0].Weight.IsEligible)
	assert.Equal(t, FocusSummary{TotalFocus: 1, Completed: 0, Remaining: 1}, focus.Summary)
}

func TestSelectToday_CompletedStaysVisible(t *testing.T) {
	// Revisited this morning: ineligible by cooldown, but still shown as done.
	focus := SelectToday([]Candidate{candidate(tuesday, 10, 0, 1, true)}, 3, false, tuesday)

	require.Len(t, focus.Problems, 1)
	assert.True(t, focus.Problems[0].RevisitedToday)
	assert.Equal(t, FocusSummary{TotalFocus: 1, Completed: 1, Remaining: 0}, focus.Summary)
}

func TestSelectToday_TopWeightsDescending(t *testing.T) {
	// Five distinct decay levels; expect the three stalest, in weight order.
	cs := []Candidate{
		candidate(tuesday, 100, 3, 1, false),
		candidate(tuesday, 100, 40, 1, false),
		candidate(tuesday, 100, 10, 1, false),
		candidate(tuesday, 100, 25, 1, false),
		candidate(tuesday, 100, 17, 1, false),
	}
	focus := SelectToday(cs, 3, false, tuesday)

	require.Len(t, focus.Problems, 3)
	assert.Equal(t, 40, focus.Problems[0].Weight.DaysSinceLastRevisit)
	assert.Equal(t, 25, focus.Problems[1].Weight.DaysSinceLastRevisit)
	assert.Equal(t, 17, focus.Problems[2].Weight.DaysSinceLastRevisit)
	for i := 1; i < len(focus.Problems); i++ {
		assert.LessOrEqual(t, focus.Problems[i].Weight.Weight, focus.Problems[i-1].Weight.Weight)
	}
}

func TestSelectToday_IneligibleExcluded(t *testing.T) {
	cs := []Candidate{
		candidate(tuesday, 30, 1, 1, false), // cooldown 2d, only 1d elapsed
		candidate(tuesday, 30, 9, 1, false),
	}
	focus := SelectToday(cs, 3, false, tuesday)

	require.Len(t, focus.Problems, 1)
	assert.Equal(t, 9, focus.Problems[0].Weight.DaysSinceLastRevisit)
}

func TestSelectToday_CapRespected(t *testing.T) {
	var cs []Candidate
	for i := 0; i < 8; i++ {
		cs = append(cs, candidate(tuesday, 50+i, 5+i, 1, false))
	}
	cs = append(cs, candidate(tuesday, 40, 0, 2, true))
	cs = append(cs, candidate(tuesday, 41, 0, 2, true))

	focus := SelectToday(cs, 3, false, tuesday)

	// 2 completed leave room for exactly 1 new nomination.
	assert.Equal(t, 3, focus.Summary.TotalFocus)
	assert.Equal(t, 2, focus.Summary.Completed)
	assert.Equal(t, 1, focus.Summary.Remaining)
}

func TestSelectToday_CompletedMayExceedTarget(t *testing.T) {
	var cs []Candidate
	for i := 0; i < 4; i++ {
		cs = append(cs, candidate(tuesday, 60+i, 0, 2, true))
	}
	focus := SelectToday(cs, 3, false, tuesday)

	assert.Equal(t, 4, focus.Summary.TotalFocus)
	assert.Equal(t, 4, focus.Summary.Completed)
	assert.Equal(t, 0, focus.Summary.Remaining)
}

func TestSelectToday_Deterministic(t *testing.T) {
	var cs []Candidate
	for i := 0; i < 10; i++ {
		cs = append(cs, candidate(tuesday, 30+i, 3+i, i%4, false))
	}
	first := SelectToday(cs, 3, false, tuesday)
	second := SelectToday(cs, 3, false, tuesday)

	require.Equal(t, len(first.Problems), len(second.Problems))
	for i := range first.Problems {
		assert.Equal(t, first.Problems[i].Problem.ID, second.Problems[i].Problem.ID)
	}
}

func TestSelectToday_TieBreakByAgeThenID(t *testing.T) {
	// Identical weights: same age, same revisit distance, same count.
	a := candidate(tuesday, 20, 6, 1, false)
	b := candidate(tuesday, 20, 6, 1, false)
	older := candidate(tuesday, 25, 6, 1, false)

	focus := SelectToday([]Candidate{a, b, older}, 2, false, tuesday)

	require.Len(t, focus.Problems, 2)
	// The older addition surfaces first on equal weight... unless its weight
	// differs; here all share days-since-revisit so weights are equal.
	assert.Equal(t, older.Problem.ID, focus.Problems[0].Problem.ID)
	want := a.Problem.ID
	if b.Problem.ID.String() < a.Problem.ID.String() {
		want = b.Problem.ID
	}
	assert.Equal(t, want, focus.Problems[1].Problem.ID)
}

func TestSelectToday_WeekendSkip(t *testing.T) {
	cs := []Candidate{
		candidate(saturday, 60, 20, 1, false),
		candidate(saturday, 50, 0, 2, true),
	}

	focus := SelectToday(cs, 3, true, saturday)
	require.Len(t, focus.Problems, 1, "no new nominations on a skipped weekend")
	assert.True(t, focus.Problems[0].RevisitedToday)

	// Same instant without the preference still nominates.
	focus = SelectToday(cs, 3, false, saturday)
	assert.Len(t, focus.Problems, 2)
}

func TestSelectToday_RetireDropsFromSelection(t *testing.T) {
	top := candidate(tuesday, 90, 45, 1, false)
	runnerUp := candidate(tuesday, 80, 30, 1, false)

	focus := SelectToday([]Candidate{top, runnerUp}, 1, false, tuesday)
	require.Len(t, focus.Problems, 1)
	assert.Equal(t, top.Problem.ID, focus.Problems[0].Problem.ID)

	// Retiring the leader promotes the runner-up.
	top.Problem.Status = models.ProblemStatusRetired
	top.Weight = Score(top.Problem, tuesday)

	focus = SelectToday([]Candidate{top, runnerUp}, 1, false, tuesday)
	require.Len(t, focus.Problems, 1)
	assert.Equal(t, runnerUp.Problem.ID, focus.Problems[0].Problem.ID)
}
