package models

import (
	"time"

	"github.com/google/uuid"
)

// Problem statuses. Retired problems keep their history but are never
// nominated for daily focus again.
const (
	ProblemStatusActive  = "active"
	ProblemStatusRetired = "retired"
)

// Difficulty levels. Stored as plain text; empty means unset.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

type Problem struct {
	ID              uuid.UUID  `json:"id"`
	UserID          uuid.UUID  `json:"user_id"`
	Title           string     `json:"title"`
	Link            string     `json:"link"`
	Difficulty      string     `json:"difficulty,omitempty"`
	Source          string     `json:"source,omitempty"`
	Tags            []string   `json:"tags,omitempty"`
	Status          string     `json:"status"`
	TimesRevisited  int        `json:"times_revisited"`
	LastRevisitedAt *time.Time `json:"last_revisited_at"`
	CreatedAt       time.Time  `json:"created_at"`
}

// RevisitEntry is one row of the append-only revisit ledger. Entries are
// immutable once written; at most one exists per problem per calendar day.
type RevisitEntry struct {
	ID          uuid.UUID `json:"id"`
	ProblemID   uuid.UUID `json:"problem_id"`
	RevisitedAt time.Time `json:"revisited_at"`
	Notes       *string   `json:"notes,omitempty"`
}

type CreateProblemRequest struct {
	Title      string   `json:"title"`
	Link       string   `json:"link"`
	Difficulty string   `json:"difficulty"`
	Source     string   `json:"source"`
	Tags       []string `json:"tags"`
}

type UpdateProblemRequest struct {
	Title      string   `json:"title"`
	Link       string   `json:"link"`
	Difficulty string   `json:"difficulty"`
	Source     string   `json:"source"`
	Tags       []string `json:"tags"`
}

type RevisitRequest struct {
	Notes string `json:"notes"`
}
