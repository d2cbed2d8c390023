package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"

	"revisit-backend/internal/models"
	"revisit-backend/internal/repository"
	"revisit-backend/internal/scheduler"
)

const defaultSource = "LeetCode"

// ProblemStore is the persistence contract the service needs. ProblemRepo
// implements it; tests substitute an in-memory stub.
type ProblemStore interface {
	Create(ctx context.Context, p *models.Problem) error
	GetByID(ctx context.Context, id, userID uuid.UUID) (*models.Problem, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Problem, error)
	ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]models.Problem, error)
	Update(ctx context.Context, p *models.Problem) error
	Retire(ctx context.Context, id, userID uuid.UUID) error
	Delete(ctx context.Context, id, userID uuid.UUID) error
	RecordRevisit(ctx context.Context, id, userID uuid.UUID, notes *string, now time.Time) (*models.RevisitEntry, error)
	ListRevisits(ctx context.Context, problemID uuid.UUID) ([]models.RevisitEntry, error)
	RevisitedOn(ctx context.Context, userID uuid.UUID, day time.Time) (map[uuid.UUID]bool, error)
}

type SettingsStore interface {
	GetSettings(ctx context.Context, userID uuid.UUID) (*models.UserSettings, error)
}

// ProblemDetail is the single-problem view: the record, its derived
// scheduling state, and the full revisit history newest-first.
type ProblemDetail struct {
	models.Problem
	RevisitedToday bool                  `json:"revisited_today"`
	WeightInfo     scheduler.WeightInfo  `json:"weight_info"`
	RevisitHistory []models.RevisitEntry `json:"revisit_history"`
}

// WeightedProblem is one row of the all-weights ranking view.
type WeightedProblem struct {
	Problem models.Problem       `json:"problem"`
	Weight  scheduler.WeightInfo `json:"weight"`
}

type ProblemService struct {
	problems ProblemStore
	settings SettingsStore
	now      func() time.Time
}

// NewProblemService wires the scheduling core to its stores. The clock is
// injected so tests can pin "today".
func NewProblemService(problems ProblemStore, settings SettingsStore, now func() time.Time) *ProblemService {
	if now == nil {
		now = time.Now
	}
	return &ProblemService{problems: problems, settings: settings, now: now}
}

func (s *ProblemService) Create(ctx context.Context, userID uuid.UUID, req models.CreateProblemRequest) (*models.Problem, error) {
	if fields := validateProblemFields(req.Title, req.Link, req.Difficulty); len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	source := req.Source
	if source == "" {
		source = defaultSource
	}

	p := &models.Problem{
		UserID:     userID,
		Title:      req.Title,
		Link:       req.Link,
		Difficulty: req.Difficulty,
		Source:     source,
		Tags:       req.Tags,
	}
	if err := s.problems.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ProblemService) List(ctx context.Context, userID uuid.UUID) ([]models.Problem, error) {
	return s.problems.ListByUser(ctx, userID)
}

func (s *ProblemService) Detail(ctx context.Context, userID, id uuid.UUID) (*ProblemDetail, error) {
	p, err := s.problems.GetByID(ctx, id, userID)
	if err != nil {
		return nil, mapStoreErr(err)
	}

	now := s.now()
	history, err := s.problems.ListRevisits(ctx, id)
	if err != nil {
		return nil, err
	}

	revisited := false
	if len(history) > 0 {
		revisited = dayOf(history[0].RevisitedAt).Equal(dayOf(now))
	}

	return &ProblemDetail{
		Problem:        *p,
		RevisitedToday: revisited,
		WeightInfo:     scheduler.Score(*p, now),
		RevisitHistory: history,
	}, nil
}

func (s *ProblemService) Update(ctx context.Context, userID, id uuid.UUID, req models.UpdateProblemRequest) error {
	if fields := validateProblemFields(req.Title, req.Link, req.Difficulty); len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	err := s.problems.Update(ctx, &models.Problem{
		ID:         id,
		UserID:     userID,
		Title:      req.Title,
		Link:       req.Link,
		Difficulty: req.Difficulty,
		Source:     req.Source,
		Tags:       req.Tags,
	})
	return mapStoreErr(err)
}

func (s *ProblemService) Retire(ctx context.Context, userID, id uuid.UUID) error {
	return mapStoreErr(s.problems.Retire(ctx, id, userID))
}

func (s *ProblemService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return mapStoreErr(s.problems.Delete(ctx, id, userID))
}

// RecordRevisit marks the problem done for the current day. At most one
// revisit per problem per UTC day succeeds; the rest observe a conflict.
func (s *ProblemService) RecordRevisit(ctx context.Context, userID, id uuid.UUID, notes string) (*models.RevisitEntry, error) {
	var notesPtr *string
	if notes != "" {
		notesPtr = &notes
	}

	entry, err := s.problems.RecordRevisit(ctx, id, userID, notesPtr, s.now())
	switch {
	case errors.Is(err, repository.ErrAlreadyRevisitedToday):
		return nil, &ConflictError{Message: "This problem has already been revisited today. Come back tomorrow!"}
	case errors.Is(err, repository.ErrProblemRetired):
		return nil, &ConflictError{Message: "Retired problems cannot be revisited"}
	case err != nil:
		return nil, mapStoreErr(err)
	}
	return entry, nil
}

// Today assembles the daily focus set for a user.
func (s *ProblemService) Today(ctx context.Context, userID uuid.UUID) (*scheduler.TodaysFocus, error) {
	settings, err := s.settings.GetSettings(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	problems, err := s.problems.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	revisited, err := s.problems.RevisitedOn(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	candidates := make([]scheduler.Candidate, 0, len(problems))
	for _, p := range problems {
		candidates = append(candidates, scheduler.Candidate{
			Problem:        p,
			Weight:         scheduler.Score(p, now),
			RevisitedToday: revisited[p.ID],
		})
	}

	focus := scheduler.SelectToday(candidates, settings.DailyProblems, settings.SkipWeekends, now)
	return &focus, nil
}

// Weights returns every active problem with its derived scheduling state,
// highest weight first.
func (s *ProblemService) Weights(ctx context.Context, userID uuid.UUID) ([]WeightedProblem, error) {
	problems, err := s.problems.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	results := make([]WeightedProblem, 0, len(problems))
	for _, p := range problems {
		results = append(results, WeightedProblem{Problem: p, Weight: scheduler.Score(p, now)})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Weight.Weight != results[j].Weight.Weight {
			return results[i].Weight.Weight > results[j].Weight.Weight
		}
		return results[i].Problem.ID.String() < results[j].Problem.ID.String()
	})
	return results, nil
}

func validateProblemFields(title, link, difficulty string) map[string]string {
	fields := make(map[string]string)
	if title == "" {
		fields["title"] = "Title is required"
	}
	if link == "" {
		fields["link"] = "Link is required"
	}
	switch difficulty {
	case "", models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard:
	default:
		fields["difficulty"] = "Difficulty must be easy, medium, or hard"
	}
	return fields
}

func mapStoreErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return &NotFoundError{Message: "Problem not found"}
	}
	return err
}

func dayOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
