package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID  `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	FullName     string     `json:"full_name"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLoginAt  *time.Time `json:"last_login_at"`
}

// UserSettings controls the daily focus selection and the digest email.
// DailyProblems must stay within [1,5]; EmailTime is "HH:MM" in UTC.
type UserSettings struct {
	UserID          uuid.UUID  `json:"user_id"`
	DailyProblems   int        `json:"daily_problems"`
	SkipWeekends    bool       `json:"skip_weekends"`
	EmailTime       string     `json:"email_time"`
	AIEncouragement bool       `json:"ai_encouragement"`
	DigestSentAt    *time.Time `json:"-"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// DefaultSettings are applied at registration and whenever a user has no
// settings row yet.
func DefaultSettings(userID uuid.UUID) *UserSettings {
	return &UserSettings{
		UserID:          userID,
		DailyProblems:   3,
		SkipWeekends:    false,
		EmailTime:       "07:00",
		AIEncouragement: true,
	}
}

type RegisterRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type UpdateSettingsRequest struct {
	DailyProblems   int    `json:"daily_problems"`
	SkipWeekends    bool   `json:"skip_weekends"`
	EmailTime       string `json:"email_time"`
	AIEncouragement bool   `json:"ai_encouragement"`
}
