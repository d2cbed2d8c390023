package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"revisit-backend/internal/models"
)

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

// DigestRecipient is one user due for a daily digest email.
type DigestRecipient struct {
	User     models.User
	Settings models.UserSettings
}

func (r *UserRepo) Create(ctx context.Context, user *models.User) error {
	user.ID = uuid.New()
	return r.pool.QueryRow(ctx, `
		INSERT INTO users (id, email, password_hash, full_name)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`,
		user.ID, user.Email, user.PasswordHash, user.FullName,
	).Scan(&user.CreatedAt)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, email, password_hash, full_name, created_at, last_login_at
		FROM users WHERE email = $1`, email).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.FullName, &user.CreatedAt, &user.LastLoginAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user := &models.User{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, email, password_hash, full_name, created_at, last_login_at
		FROM users WHERE id = $1`, id).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.FullName, &user.CreatedAt, &user.LastLoginAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepo) UpdateLastLogin(ctx context.Context, userID uuid.UUID, at time.Time) error {
	_, err := r.pool.Exec(ctx, "UPDATE users SET last_login_at = $1 WHERE id = $2", at, userID)
	return err
}

// CreateSettings inserts the default settings row; a no-op if one exists.
func (r *UserRepo) CreateSettings(ctx context.Context, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		"INSERT INTO user_settings (user_id) VALUES ($1) ON CONFLICT DO NOTHING", userID)
	return err
}

func (r *UserRepo) GetSettings(ctx context.Context, userID uuid.UUID) (*models.UserSettings, error) {
	s := &models.UserSettings{}
	err := r.pool.QueryRow(ctx, `
		SELECT user_id, daily_problems, skip_weekends, email_time, ai_encouragement, digest_sent_at, updated_at
		FROM user_settings WHERE user_id = $1`, userID).Scan(
		&s.UserID, &s.DailyProblems, &s.SkipWeekends, &s.EmailTime,
		&s.AIEncouragement, &s.DigestSentAt, &s.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.DefaultSettings(userID), nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *UserRepo) UpdateSettings(ctx context.Context, s *models.UserSettings) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO user_settings (user_id, daily_problems, skip_weekends, email_time, ai_encouragement, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			daily_problems = EXCLUDED.daily_problems,
			skip_weekends = EXCLUDED.skip_weekends,
			email_time = EXCLUDED.email_time,
			ai_encouragement = EXCLUDED.ai_encouragement,
			updated_at = NOW()`,
		s.UserID, s.DailyProblems, s.SkipWeekends, s.EmailTime, s.AIEncouragement,
	)
	return err
}

// ListDigestRecipients returns users whose digest has not been sent on the
// given day yet, with their settings. The email-time gate is applied by the
// caller so it stays testable.
func (r *UserRepo) ListDigestRecipients(ctx context.Context, day time.Time) ([]DigestRecipient, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT u.id, u.email, u.full_name, u.created_at,
		       s.daily_problems, s.skip_weekends, s.email_time, s.ai_encouragement, s.digest_sent_at
		FROM users u
		JOIN user_settings s ON s.user_id = u.id
		WHERE s.digest_sent_at IS NULL OR s.digest_sent_at::date < $1::date`, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recipients []DigestRecipient
	for rows.Next() {
		var rec DigestRecipient
		if err := rows.Scan(
			&rec.User.ID, &rec.User.Email, &rec.User.FullName, &rec.User.CreatedAt,
			&rec.Settings.DailyProblems, &rec.Settings.SkipWeekends, &rec.Settings.EmailTime,
			&rec.Settings.AIEncouragement, &rec.Settings.DigestSentAt,
		); err != nil {
			return nil, err
		}
		rec.Settings.UserID = rec.User.ID
		recipients = append(recipients, rec)
	}
	return recipients, rows.Err()
}

func (r *UserRepo) MarkDigestSent(ctx context.Context, userID uuid.UUID, at time.Time) error {
	_, err := r.pool.Exec(ctx,
		"UPDATE user_settings SET digest_sent_at = $1 WHERE user_id = $2", at, userID)
	return err
}
