package scheduler

import (
	"sort"
	"time"

	"revisit-backend/internal/models"
)

// Candidate pairs a problem with its computed weight and the flag for
// whether it was already revisited on the selection day.
type Candidate struct {
	Problem        models.Problem
	Weight         WeightInfo
	RevisitedToday bool
}

type FocusItem struct {
	Problem        models.Problem `json:"problem"`
	Weight         WeightInfo     `json:"weight"`
	RevisitedToday bool           `json:"revisited_today"`
}

type FocusSummary struct {
	TotalFocus int `json:"total_focus"`
	Completed  int `json:"completed"`
	Remaining  int `json:"remaining"`
}

type TodaysFocus struct {
	Problems []FocusItem  `json:"problems"`
	Summary  FocusSummary `json:"summary"`
}

// SelectToday builds the daily focus set from pre-scored candidates.
//
// Problems already revisited today are always included so finished work stays
// visible. The remaining slots (dailyTarget minus completed count) are filled
// with the highest-weighted eligible problems. Ranking is strictly
// deterministic: weight descending, then created_at ascending, then id.
// When skipWeekends is set and now falls on Saturday or Sunday, no new
// problems are nominated.
func SelectToday(candidates []Candidate, dailyTarget int, skipWeekends bool, now time.Time) TodaysFocus {
	var completed, pending []Candidate
	for _, c := range candidates {
		switch {
		case c.RevisitedToday:
			completed = append(completed, c)
		case c.Weight.IsEligible:
			pending = append(pending, c)
		}
	}

	rank(pending)
	rank(completed)

	slots := dailyTarget - len(completed)
	if slots < 0 {
		slots = 0
	}
	if skipWeekends && isWeekend(now) {
		slots = 0
	}
	if slots > len(pending) {
		slots = len(pending)
	}

	items := make([]FocusItem, 0, slots+len(completed))
	for _, c := range pending[:slots] {
		items = append(items, FocusItem{Problem: c.Problem, Weight: c.Weight})
	}
	for _, c := range completed {
		items = append(items, FocusItem{Problem: c.Problem, Weight: c.Weight, RevisitedToday: true})
	}

	return TodaysFocus{
		Problems: items,
		Summary: FocusSummary{
			TotalFocus: len(items),
			Completed:  len(completed),
			Remaining:  len(items) - len(completed),
		},
	}
}

// rank sorts in place by weight desc, age (created_at) asc, id asc.
// The id tie-break makes the order total, so repeated reads are identical.
func rank(cs []Candidate) {
	sort.Slice(cs, func(i, j int) bool {
		a, b := cs[i], cs[j]
		if a.Weight.Weight != b.Weight.Weight {
			return a.Weight.Weight > b.Weight.Weight
		}
		if !a.Problem.CreatedAt.Equal(b.Problem.CreatedAt) {
			return a.Problem.CreatedAt.Before(b.Problem.CreatedAt)
		}
		return a.Problem.ID.String() < b.Problem.ID.String()
	})
}

func isWeekend(now time.Time) bool {
	wd := now.UTC().Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
