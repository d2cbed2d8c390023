package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"revisit-backend/internal/models"
)

// Sentinel errors surfaced to the service layer, which maps them to the
// HTTP error taxonomy.
var (
	ErrNotFound              = errors.New("not found")
	ErrProblemRetired        = errors.New("problem is retired")
	ErrAlreadyRevisitedToday = errors.New("already revisited today")
)

const pgUniqueViolation = "23505"

type ProblemRepo struct {
	pool *pgxpool.Pool
}

func NewProblemRepo(pool *pgxpool.Pool) *ProblemRepo {
	return &ProblemRepo{pool: pool}
}

const problemColumns = `id, user_id, title, link, COALESCE(difficulty, ''), COALESCE(source, ''),
	tags, status, times_revisited, last_revisited_at, created_at`

func scanProblem(row pgx.Row) (*models.Problem, error) {
	p := &models.Problem{}
	err := row.Scan(
		&p.ID, &p.UserID, &p.Title, &p.Link, &p.Difficulty, &p.Source,
		&p.Tags, &p.Status, &p.TimesRevisited, &p.LastRevisitedAt, &p.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *ProblemRepo) Create(ctx context.Context, p *models.Problem) error {
	p.ID = uuid.New()
	p.Status = models.ProblemStatusActive
	return r.pool.QueryRow(ctx, `
		INSERT INTO problems (id, user_id, title, link, difficulty, source, tags, status)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), $7, $8)
		RETURNING created_at`,
		p.ID, p.UserID, p.Title, p.Link, p.Difficulty, p.Source, p.Tags, p.Status,
	).Scan(&p.CreatedAt)
}

func (r *ProblemRepo) GetByID(ctx context.Context, id, userID uuid.UUID) (*models.Problem, error) {
	return scanProblem(r.pool.QueryRow(ctx,
		`SELECT `+problemColumns+` FROM problems WHERE id = $1 AND user_id = $2`, id, userID))
}

func (r *ProblemRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Problem, error) {
	return r.list(ctx, `
		SELECT `+problemColumns+` FROM problems
		WHERE user_id = $1
		ORDER BY created_at DESC`, userID)
}

func (r *ProblemRepo) ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]models.Problem, error) {
	return r.list(ctx, `
		SELECT `+problemColumns+` FROM problems
		WHERE user_id = $1 AND status = 'active'
		ORDER BY created_at ASC`, userID)
}

func (r *ProblemRepo) list(ctx context.Context, query string, userID uuid.UUID) ([]models.Problem, error) {
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	problems := []models.Problem{}
	for rows.Next() {
		p, err := scanProblem(rows)
		if err != nil {
			return nil, err
		}
		problems = append(problems, *p)
	}
	return problems, rows.Err()
}

func (r *ProblemRepo) Update(ctx context.Context, p *models.Problem) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE problems
		SET title = $1, link = $2, difficulty = NULLIF($3, ''), source = NULLIF($4, ''), tags = $5
		WHERE id = $6 AND user_id = $7`,
		p.Title, p.Link, p.Difficulty, p.Source, p.Tags, p.ID, p.UserID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Retire removes a problem from scheduling permanently. History is kept.
func (r *ProblemRepo) Retire(ctx context.Context, id, userID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE problems SET status = 'retired'
		WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a problem and its revisit ledger in one transaction.
func (r *ProblemRepo) Delete(ctx context.Context, id, userID uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM revisit_entries WHERE problem_id = $1", id); err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, "DELETE FROM problems WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return tx.Commit(ctx)
}

// RecordRevisit appends a ledger entry and advances the problem's counters
// as one transaction. The unique index on (problem_id, revisit_day) is the
// once-per-day invariant: a concurrent duplicate loses on the insert and
// gets ErrAlreadyRevisitedToday, never a partial write.
func (r *ProblemRepo) RecordRevisit(ctx context.Context, id, userID uuid.UUID, notes *string, now time.Time) (*models.RevisitEntry, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var status string
	err = tx.QueryRow(ctx,
		"SELECT status FROM problems WHERE id = $1 AND user_id = $2", id, userID,
	).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if status != models.ProblemStatusActive {
		return nil, ErrProblemRetired
	}

	entry := &models.RevisitEntry{
		ID:          uuid.New(),
		ProblemID:   id,
		RevisitedAt: now,
		Notes:       notes,
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO revisit_entries (id, problem_id, revisited_at, revisit_day, notes)
		VALUES ($1, $2, $3, $4, $5)`,
		entry.ID, id, now, dayOf(now), notes,
	)
	if isUniqueViolation(err) {
		return nil, ErrAlreadyRevisitedToday
	}
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE problems
		SET times_revisited = times_revisited + 1, last_revisited_at = $1
		WHERE id = $2`, now, id)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *ProblemRepo) ListRevisits(ctx context.Context, problemID uuid.UUID) ([]models.RevisitEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, problem_id, revisited_at, notes
		FROM revisit_entries
		WHERE problem_id = $1
		ORDER BY revisited_at DESC`, problemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []models.RevisitEntry{}
	for rows.Next() {
		var e models.RevisitEntry
		if err := rows.Scan(&e.ID, &e.ProblemID, &e.RevisitedAt, &e.Notes); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// RevisitedOn returns the ids of the user's problems with a ledger entry on
// the given day. One query covers the whole focus set.
func (r *ProblemRepo) RevisitedOn(ctx context.Context, userID uuid.UUID, day time.Time) (map[uuid.UUID]bool, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT e.problem_id
		FROM revisit_entries e
		JOIN problems p ON p.id = e.problem_id
		WHERE p.user_id = $1 AND e.revisit_day = $2`, userID, dayOf(day))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	revisited := map[uuid.UUID]bool{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		revisited[id] = true
	}
	return revisited, rows.Err()
}

// dayOf truncates an instant to its UTC calendar date, the unit of the
// once-per-day invariant.
func dayOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
