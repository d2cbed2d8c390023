package services

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"revisit-backend/internal/models"
	"revisit-backend/internal/repository"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC) // a Tuesday

// memStore is an in-memory ProblemStore + SettingsStore for service tests.
type memStore struct {
	problems map[uuid.UUID]*models.Problem
	revisits map[uuid.UUID][]models.RevisitEntry
	settings *models.UserSettings
}

func newMemStore(userID uuid.UUID) *memStore {
	return &memStore{
		problems: make(map[uuid.UUID]*models.Problem),
		revisits: make(map[uuid.UUID][]models.RevisitEntry),
		settings: models.DefaultSettings(userID),
	}
}

func (m *memStore) Create(_ context.Context, p *models.Problem) error {
	p.ID = uuid.New()
	p.Status = models.ProblemStatusActive
	p.CreatedAt = testNow
	cp := *p
	m.problems[p.ID] = &cp
	return nil
}

func (m *memStore) GetByID(_ context.Context, id, userID uuid.UUID) (*models.Problem, error) {
	p, ok := m.problems[id]
	if !ok || p.UserID != userID {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memStore) ListByUser(_ context.Context, userID uuid.UUID) ([]models.Problem, error) {
	return m.listWhere(userID, false), nil
}

func (m *memStore) ListActiveByUser(_ context.Context, userID uuid.UUID) ([]models.Problem, error) {
	return m.listWhere(userID, true), nil
}

func (m *memStore) listWhere(userID uuid.UUID, activeOnly bool) []models.Problem {
	out := []models.Problem{}
	for _, p := range m.problems {
		if p.UserID != userID {
			continue
		}
		if activeOnly && p.Status != models.ProblemStatusActive {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (m *memStore) Update(_ context.Context, p *models.Problem) error {
	existing, ok := m.problems[p.ID]
	if !ok || existing.UserID != p.UserID {
		return repository.ErrNotFound
	}
	existing.Title = p.Title
	existing.Link = p.Link
	existing.Difficulty = p.Difficulty
	existing.Source = p.Source
	existing.Tags = p.Tags
	return nil
}

func (m *memStore) Retire(_ context.Context, id, userID uuid.UUID) error {
	p, ok := m.problems[id]
	if !ok || p.UserID != userID {
		return repository.ErrNotFound
	}
	p.Status = models.ProblemStatusRetired
	return nil
}

func (m *memStore) Delete(_ context.Context, id, userID uuid.UUID) error {
	p, ok := m.problems[id]
	if !ok || p.UserID != userID {
		return repository.ErrNotFound
	}
	delete(m.problems, id)
	delete(m.revisits, id)
	return nil
}

func (m *memStore) RecordRevisit(_ context.Context, id, userID uuid.UUID, notes *string, now time.Time) (*models.RevisitEntry, error) {
	p, ok := m.problems[id]
	if !ok || p.UserID != userID {
		return nil, repository.ErrNotFound
	}
	if p.Status != models.ProblemStatusActive {
		return nil, repository.ErrProblemRetired
	}
	for _, e := range m.revisits[id] {
		if sameDay(e.RevisitedAt, now) {
			return nil, repository.ErrAlreadyRevisitedToday
		}
	}
	entry := models.RevisitEntry{ID: uuid.New(), ProblemID: id, RevisitedAt: now, Notes: notes}
	m.revisits[id] = append(m.revisits[id], entry)
	p.TimesRevisited++
	at := now
	p.LastRevisitedAt = &at
	return &entry, nil
}

func (m *memStore) ListRevisits(_ context.Context, problemID uuid.UUID) ([]models.RevisitEntry, error) {
	entries := append([]models.RevisitEntry{}, m.revisits[problemID]...)
	sort.Slice(entries, func(i, j int) bool { return entries[i].RevisitedAt.After(entries[j].RevisitedAt) })
	return entries, nil
}

func (m *memStore) RevisitedOn(_ context.Context, userID uuid.UUID, day time.Time) (map[uuid.UUID]bool, error) {
	out := map[uuid.UUID]bool{}
	for id, entries := range m.revisits {
		p, ok := m.problems[id]
		if !ok || p.UserID != userID {
			continue
		}
		for _, e := range entries {
			if sameDay(e.RevisitedAt, day) {
				out[id] = true
			}
		}
	}
	return out, nil
}

func (m *memStore) GetSettings(_ context.Context, userID uuid.UUID) (*models.UserSettings, error) {
	cp := *m.settings
	cp.UserID = userID
	return &cp, nil
}

func (m *memStore) UpdateSettings(_ context.Context, s *models.UserSettings) error {
	cp := *s
	m.settings = &cp
	return nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

func newTestService(t *testing.T) (*ProblemService, *memStore, uuid.UUID) {
	t.Helper()
	userID := uuid.New()
	store := newMemStore(userID)
	svc := NewProblemService(store, store, func() time.Time { return testNow })
	return svc, store, userID
}

// seedProblem inserts a problem directly with the given history shape.
func seedProblem(store *memStore, userID uuid.UUID, title string, daysOld, lastRevisitDaysAgo, times int) uuid.UUID {
	id := uuid.New()
	p := &models.Problem{
		ID:             id,
		UserID:         userID,
		Title:          title,
		Link:           "https://leetcode.com/problems/" + title,
		Source:         "LeetCode",
		Status:         models.ProblemStatusActive,
		TimesRevisited: times,
		CreatedAt:      testNow.AddDate(0, 0, -daysOld),
	}
	if lastRevisitDaysAgo >= 0 {
		at := testNow.AddDate(0, 0, -lastRevisitDaysAgo)
		p.LastRevisitedAt = &at
	}
	store.problems[id] = p
	return id
}

func TestCreateProblem_Defaults(t *testing.T) {
	svc, _, userID := newTestService(t)

	p, err := svc.Create(context.Background(), userID, models.CreateProblemRequest{
		Title: "two-sum",
		Link:  "https://leetcode.com/problems/two-sum",
	})
	require.NoError(t, err)

	assert.Equal(t, "LeetCode", p.Source)
	assert.Equal(t, models.ProblemStatusActive, p.Status)
	assert.Equal(t, 0, p.TimesRevisited)
	assert.Nil(t, p.LastRevisitedAt)
}

func TestCreateProblem_Validation(t *testing.T) {
	svc, _, userID := newTestService(t)

	_, err := svc.Create(context.Background(), userID, models.CreateProblemRequest{
		Link:       "https://example.com",
		Difficulty: "impossible",
	})

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Fields, "title")
	assert.Contains(t, vErr.Fields, "difficulty")
	assert.NotContains(t, vErr.Fields, "link")
}

func TestRecordRevisit_AdvancesCounters(t *testing.T) {
	svc, store, userID := newTestService(t)
	id := seedProblem(store, userID, "lru-cache", 10, -1, 0)

	entry, err := svc.RecordRevisit(context.Background(), userID, id, "solved in O(1)")
	require.NoError(t, err)
	require.NotNil(t, entry.Notes)
	assert.Equal(t, "solved in O(1)", *entry.Notes)

	p := store.problems[id]
	assert.Equal(t, 1, p.TimesRevisited)
	require.NotNil(t, p.LastRevisitedAt)
	assert.True(t, p.LastRevisitedAt.Equal(testNow))
}

func TestRecordRevisit_OncePerDay(t *testing.T) {
	svc, store, userID := newTestService(t)
	id := seedProblem(store, userID, "merge-intervals", 10, -1, 0)

	_, err := svc.RecordRevisit(context.Background(), userID, id, "")
	require.NoError(t, err)

	_, err = svc.RecordRevisit(context.Background(), userID, id, "")
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)

	// Counters unchanged by the rejected attempt.
	assert.Equal(t, 1, store.problems[id].TimesRevisited)
}

func TestRecordRevisit_Retired(t *testing.T) {
	svc, store, userID := newTestService(t)
	id := seedProblem(store, userID, "word-ladder", 10, -1, 0)
	store.problems[id].Status = models.ProblemStatusRetired

	_, err := svc.RecordRevisit(context.Background(), userID, id, "")
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
}

func TestRecordRevisit_NotFound(t *testing.T) {
	svc, _, userID := newTestService(t)

	_, err := svc.RecordRevisit(context.Background(), userID, uuid.New(), "")
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestToday_CapsAtDailyTarget(t *testing.T) {
	svc, store, userID := newTestService(t)
	for i, title := range []string{"a", "b", "c", "d", "e"} {
		seedProblem(store, userID, title, 30+i, -1, 0)
	}

	focus, err := svc.Today(context.Background(), userID)
	require.NoError(t, err)

	assert.Len(t, focus.Problems, 3) // default daily_problems
	assert.Equal(t, 3, focus.Summary.TotalFocus)
	assert.Equal(t, 0, focus.Summary.Completed)
	assert.Equal(t, 3, focus.Summary.Remaining)
}

func TestToday_CompletedStaysVisible(t *testing.T) {
	svc, store, userID := newTestService(t)
	done := seedProblem(store, userID, "done", 30, -1, 0)
	seedProblem(store, userID, "pending", 40, -1, 0)

	_, err := svc.RecordRevisit(context.Background(), userID, done, "")
	require.NoError(t, err)

	focus, err := svc.Today(context.Background(), userID)
	require.NoError(t, err)

	require.Len(t, focus.Problems, 2)
	assert.Equal(t, 1, focus.Summary.Completed)
	assert.Equal(t, 1, focus.Summary.Remaining)

	// Pending first, completed after.
	assert.False(t, focus.Problems[0].RevisitedToday)
	assert.True(t, focus.Problems[1].RevisitedToday)
	assert.Equal(t, done, focus.Problems[1].Problem.ID)
}

func TestToday_SkipWeekends(t *testing.T) {
	userID := uuid.New()
	store := newMemStore(userID)
	store.settings.SkipWeekends = true
	saturday := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	svc := NewProblemService(store, store, func() time.Time { return saturday })

	seedProblem(store, userID, "weekend", 30, -1, 0)

	focus, err := svc.Today(context.Background(), userID)
	require.NoError(t, err)
	assert.Empty(t, focus.Problems)
	assert.Equal(t, 0, focus.Summary.TotalFocus)
}

func TestToday_ExcludesRetired(t *testing.T) {
	svc, store, userID := newTestService(t)
	retired := seedProblem(store, userID, "retired", 50, -1, 0)
	store.problems[retired].Status = models.ProblemStatusRetired
	active := seedProblem(store, userID, "active", 20, -1, 0)

	focus, err := svc.Today(context.Background(), userID)
	require.NoError(t, err)

	require.Len(t, focus.Problems, 1)
	assert.Equal(t, active, focus.Problems[0].Problem.ID)
}

func TestDetail_IncludesHistory(t *testing.T) {
	svc, store, userID := newTestService(t)
	id := seedProblem(store, userID, "detail", 10, -1, 0)

	_, err := svc.RecordRevisit(context.Background(), userID, id, "first pass")
	require.NoError(t, err)

	detail, err := svc.Detail(context.Background(), userID, id)
	require.NoError(t, err)

	assert.True(t, detail.RevisitedToday)
	require.Len(t, detail.RevisitHistory, 1)
	assert.Equal(t, "first pass", *detail.RevisitHistory[0].Notes)
	assert.Equal(t, 1, detail.TimesRevisited)
}

func TestWeights_SortedDescending(t *testing.T) {
	svc, store, userID := newTestService(t)
	seedProblem(store, userID, "fresh", 2, 1, 3)
	seedProblem(store, userID, "stale", 60, 45, 1)
	seedProblem(store, userID, "new", 20, -1, 0)

	weighted, err := svc.Weights(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, weighted, 3)

	for i := 1; i < len(weighted); i++ {
		assert.GreaterOrEqual(t, weighted[i-1].Weight.Weight, weighted[i].Weight.Weight)
	}
}

func TestUpdateSettings_Validation(t *testing.T) {
	userID := uuid.New()
	store := newMemStore(userID)
	svc := NewSettingsService(store)

	_, err := svc.Update(context.Background(), userID, models.UpdateSettingsRequest{
		DailyProblems: 9,
		EmailTime:     "25:99",
	})

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Fields, "daily_problems")
	assert.Contains(t, vErr.Fields, "email_time")
}

func TestUpdateSettings_Persists(t *testing.T) {
	userID := uuid.New()
	store := newMemStore(userID)
	svc := NewSettingsService(store)

	updated, err := svc.Update(context.Background(), userID, models.UpdateSettingsRequest{
		DailyProblems:   5,
		SkipWeekends:    true,
		EmailTime:       "06:30",
		AIEncouragement: false,
	})
	require.NoError(t, err)

	assert.Equal(t, 5, updated.DailyProblems)
	assert.True(t, updated.SkipWeekends)
	assert.Equal(t, "06:30", store.settings.EmailTime)
	assert.False(t, store.settings.AIEncouragement)
}
