package scheduler

import (
	"math"
	"time"

	"revisit-backend/internal/models"
)

// Tuning constants for the recall model. Decay follows a half-life curve:
// after halfLifeDays without a revisit, half of the recall freshness is gone.
const (
	halfLifeDays    = 7.0
	weightScale     = 10.0
	repetitionDamp  = 0.3
	priorityHighMin = 6.0
	priorityMedMin  = 3.0
)

// cooldownSchedule holds the minimum days between revisits, indexed by
// times_revisited. Intervals grow as a problem is mastered; the last entry
// caps the interval.
var cooldownSchedule = [...]int{1, 2, 4, 7, 14, 30}

const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// WeightInfo is the derived scheduling state of a problem at a point in time.
// It is recomputed on every read and never persisted.
type WeightInfo struct {
	Weight               float64 `json:"weight"`
	Priority             string  `json:"priority"`
	RevisitDecay         float64 `json:"revisit_decay"`
	DaysSinceLastRevisit int     `json:"days_since_last_revisit"`
	DaysSinceAdded       int     `json:"days_since_added"`
	TimesRevisited       int     `json:"times_revisited"`
	IsEligible           bool    `json:"is_eligible"`
}

// Cooldown returns the minimum number of days that must pass after the n-th
// revisit before the problem may be nominated again.
func Cooldown(timesRevisited int) int {
	if timesRevisited < 0 {
		timesRevisited = 0
	}
	if timesRevisited >= len(cooldownSchedule) {
		return cooldownSchedule[len(cooldownSchedule)-1]
	}
	return cooldownSchedule[timesRevisited]
}

// Score computes the scheduling weight of a problem at the given instant.
// Pure: same (problem, now) always yields the same WeightInfo.
//
// weight = 10 · decay · 1/(1 + 0.3·revisits) · difficulty
//   - decay is the fraction of freshness lost since the last revisit,
//     1 - 2^(-days/7), so urgency saturates toward 10 instead of growing
//     without bound;
//   - the repetition term damps problems that have been revisited often;
//   - harder problems are forgotten faster and weight slightly higher.
func Score(p models.Problem, now time.Time) WeightInfo {
	daysSinceAdded := daysBetween(p.CreatedAt, now)

	// A problem that was never revisited has been decaying since it was
	// added, so its age doubles as days-since-last-revisit.
	daysSinceLast := daysSinceAdded
	if p.LastRevisitedAt != nil {
		daysSinceLast = daysBetween(*p.LastRevisitedAt, now)
	}

	decay := 1.0 - math.Exp2(-float64(daysSinceLast)/halfLifeDays)
	repetition := 1.0 / (1.0 + repetitionDamp*float64(p.TimesRevisited))
	weight := weightScale * decay * repetition * difficultyFactor(p.Difficulty)

	eligible := p.Status == models.ProblemStatusActive &&
		(p.LastRevisitedAt == nil || daysSinceLast >= Cooldown(p.TimesRevisited))

	weight = round2(weight)

	return WeightInfo{
		Weight:               weight,
		Priority:             priorityFor(weight),
		RevisitDecay:         round2(decay),
		DaysSinceLastRevisit: daysSinceLast,
		DaysSinceAdded:       daysSinceAdded,
		TimesRevisited:       p.TimesRevisited,
		IsEligible:           eligible,
	}
}

func difficultyFactor(difficulty string) float64 {
	switch difficulty {
	case models.DifficultyEasy:
		return 0.90
	case models.DifficultyHard:
		return 1.15
	default:
		return 1.0
	}
}

func priorityFor(weight float64) string {
	switch {
	case weight >= priorityHighMin:
		return PriorityHigh
	case weight >= priorityMedMin:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// daysBetween counts whole elapsed days from a to b, never negative.
func daysBetween(a, b time.Time) int {
	d := int(b.Sub(a).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
