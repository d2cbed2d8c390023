package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"revisit-backend/internal/models"
)

const (
	minDailyProblems = 1
	maxDailyProblems = 5
)

// SettingsWriter extends SettingsStore with the write half, needed only here.
type SettingsWriter interface {
	SettingsStore
	UpdateSettings(ctx context.Context, s *models.UserSettings) error
}

type SettingsService struct {
	store SettingsWriter
}

func NewSettingsService(store SettingsWriter) *SettingsService {
	return &SettingsService{store: store}
}

func (s *SettingsService) Get(ctx context.Context, userID uuid.UUID) (*models.UserSettings, error) {
	return s.store.GetSettings(ctx, userID)
}

// Update validates and persists the user's scheduling preferences. Bad values
// are rejected before any write.
func (s *SettingsService) Update(ctx context.Context, userID uuid.UUID, req models.UpdateSettingsRequest) (*models.UserSettings, error) {
	fields := make(map[string]string)

	if req.DailyProblems < minDailyProblems || req.DailyProblems > maxDailyProblems {
		fields["daily_problems"] = fmt.Sprintf("Must be between %d and %d", minDailyProblems, maxDailyProblems)
	}
	if _, err := time.Parse("15:04", req.EmailTime); err != nil {
		fields["email_time"] = "Must be a time in HH:MM format"
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	settings := &models.UserSettings{
		UserID:          userID,
		DailyProblems:   req.DailyProblems,
		SkipWeekends:    req.SkipWeekends,
		EmailTime:       req.EmailTime,
		AIEncouragement: req.AIEncouragement,
	}
	if err := s.store.UpdateSettings(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}
