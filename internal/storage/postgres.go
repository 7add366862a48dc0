package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BillwoodMarbles/goal-tracker-sub000/internal"
)

type PostgresStorage struct {
	pool   *pgxpool.Pool
	logger internal.Logger
}

const postgresSchema = `
CREATE TABLE IF NOT EXISTS goals (
	id            TEXT PRIMARY KEY,
	user_id       TEXT NOT NULL,
	title         TEXT NOT NULL,
	description   TEXT NOT NULL DEFAULT '',
	is_active     BOOLEAN NOT NULL DEFAULT TRUE,
	goal_type     TEXT NOT NULL,
	days_of_week  JSONB NOT NULL DEFAULT '[]',
	is_multi_step BOOLEAN NOT NULL DEFAULT FALSE,
	total_steps   INTEGER NOT NULL DEFAULT 1,
	created_at    TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS goals_user_idx ON goals (user_id, created_at DESC);

CREATE TABLE IF NOT EXISTS daily_status (
	user_id          TEXT NOT NULL,
	goal_id          TEXT NOT NULL,
	date             TEXT NOT NULL,
	completed        BOOLEAN NOT NULL DEFAULT FALSE,
	completed_at     TIMESTAMPTZ,
	completed_steps  INTEGER NOT NULL DEFAULT 0,
	step_completions JSONB NOT NULL DEFAULT '[]',
	snoozed          BOOLEAN NOT NULL DEFAULT FALSE,
	last_updated     TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (user_id, goal_id, date)
);

CREATE TABLE IF NOT EXISTS weekly_status (
	user_id          TEXT NOT NULL,
	goal_id          TEXT NOT NULL,
	week_start       TEXT NOT NULL,
	completed        BOOLEAN NOT NULL DEFAULT FALSE,
	completed_at     TIMESTAMPTZ,
	completed_steps  INTEGER NOT NULL DEFAULT 0,
	step_completions JSONB NOT NULL DEFAULT '[]',
	daily_increments JSONB NOT NULL DEFAULT '{}',
	last_updated     TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (user_id, goal_id, week_start)
);
`

func NewPostgresStorage(dsn string, logger internal.Logger) (*PostgresStorage, error) {
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		logger.Errorf("failed to connect to postgres: %v", err)
		return nil, err
	}
	s := &PostgresStorage{pool: pool, logger: logger}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (p *PostgresStorage) ensureSchema(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, postgresSchema); err != nil {
		p.logger.Errorf("failed to ensure schema: %v", err)
		return err
	}
	return nil
}

func (p *PostgresStorage) Close() error {
	p.pool.Close()
	return nil
}

// --- GoalRepository ---

func (p *PostgresStorage) SaveGoal(ctx context.Context, goal *internal.Goal) error {
	days, err := json.Marshal(goal.DaysOfWeek)
	if err != nil {
		return err
	}
	_, err = p.pool.Exec(ctx, `
		INSERT INTO goals (id, user_id, title, description, is_active, goal_type, days_of_week, is_multi_step, total_steps, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			is_active = EXCLUDED.is_active,
			goal_type = EXCLUDED.goal_type,
			days_of_week = EXCLUDED.days_of_week,
			is_multi_step = EXCLUDED.is_multi_step,
			total_steps = EXCLUDED.total_steps`,
		goal.ID, goal.UserID, goal.Title, goal.Description, goal.IsActive,
		goal.GoalType, days, goal.IsMultiStep, goal.TotalSteps, goal.CreatedAt)
	if err != nil {
		p.logger.Errorf("failed to upsert goal: %v", err)
		return err
	}
	return nil
}

func scanGoal(row pgx.Row) (*internal.Goal, error) {
	var g internal.Goal
	var goalType string
	var days []byte
	if err := row.Scan(&g.ID, &g.UserID, &g.Title, &g.Description, &g.IsActive,
		&goalType, &days, &g.IsMultiStep, &g.TotalSteps, &g.CreatedAt); err != nil {
		return nil, err
	}
	g.GoalType = internal.GoalType(goalType)
	if err := json.Unmarshal(days, &g.DaysOfWeek); err != nil {
		return nil, err
	}
	return &g, nil
}

func (p *PostgresStorage) GetGoal(ctx context.Context, userID, goalID string) (*internal.Goal, error) {
	row := p.pool.QueryRow(ctx, `
		SELECT id, user_id, title, description, is_active, goal_type, days_of_week, is_multi_step, total_steps, created_at
		FROM goals WHERE id = $1 AND user_id = $2`, goalID, userID)
	g, err := scanGoal(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		p.logger.Errorf("failed to query goal: %v", err)
		return nil, err
	}
	return g, nil
}

func (p *PostgresStorage) ListGoals(ctx context.Context, userID string) ([]internal.Goal, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, user_id, title, description, is_active, goal_type, days_of_week, is_multi_step, total_steps, created_at
		FROM goals WHERE user_id = $1 AND is_active ORDER BY created_at DESC`, userID)
	if err != nil {
		p.logger.Errorf("failed to query goals: %v", err)
		return nil, err
	}
	defer rows.Close()

	goals := []internal.Goal{}
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			p.logger.Errorf("failed to scan goal: %v", err)
			return nil, err
		}
		goals = append(goals, *g)
	}
	return goals, rows.Err()
}

// --- DailyStatusRepository ---

func (p *PostgresStorage) UpsertDailyStatus(ctx context.Context, status *internal.DailyCompletionStatus) error {
	steps, err := json.Marshal(status.StepCompletions)
	if err != nil {
		return err
	}
	_, err = p.pool.Exec(ctx, `
		INSERT INTO daily_status (user_id, goal_id, date, completed, completed_at, completed_steps, step_completions, snoozed, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id, goal_id, date) DO UPDATE SET
			completed = EXCLUDED.completed,
			completed_at = EXCLUDED.completed_at,
			completed_steps = EXCLUDED.completed_steps,
			step_completions = EXCLUDED.step_completions,
			snoozed = EXCLUDED.snoozed,
			last_updated = EXCLUDED.last_updated`,
		status.UserID, status.GoalID, status.Date, status.Completed, status.CompletedAt,
		status.CompletedSteps, steps, status.Snoozed, time.Now())
	if err != nil {
		p.logger.Errorf("failed to upsert daily status: %v", err)
		return err
	}
	return nil
}

func scanDailyStatus(row pgx.Row) (*internal.DailyCompletionStatus, error) {
	var st internal.DailyCompletionStatus
	var steps []byte
	if err := row.Scan(&st.UserID, &st.GoalID, &st.Date, &st.Completed, &st.CompletedAt,
		&st.CompletedSteps, &steps, &st.Snoozed, &st.LastUpdated); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(steps, &st.StepCompletions); err != nil {
		return nil, err
	}
	return &st, nil
}

func (p *PostgresStorage) GetDailyStatus(ctx context.Context, userID, goalID, date string) (*internal.DailyCompletionStatus, error) {
	row := p.pool.QueryRow(ctx, `
		SELECT user_id, goal_id, date, completed, completed_at, completed_steps, step_completions, snoozed, last_updated
		FROM daily_status WHERE user_id = $1 AND goal_id = $2 AND date = $3`, userID, goalID, date)
	st, err := scanDailyStatus(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		p.logger.Errorf("failed to query daily status: %v", err)
		return nil, err
	}
	return st, nil
}

func (p *PostgresStorage) ListDailyStatuses(ctx context.Context, userID string, dates []string) ([]internal.DailyCompletionStatus, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT user_id, goal_id, date, completed, completed_at, completed_steps, step_completions, snoozed, last_updated
		FROM daily_status WHERE user_id = $1 AND date = ANY($2)`, userID, dates)
	if err != nil {
		p.logger.Errorf("failed to query daily statuses: %v", err)
		return nil, err
	}
	defer rows.Close()

	var statuses []internal.DailyCompletionStatus
	for rows.Next() {
		st, err := scanDailyStatus(rows)
		if err != nil {
			p.logger.Errorf("failed to scan daily status: %v", err)
			return nil, err
		}
		statuses = append(statuses, *st)
	}
	return statuses, rows.Err()
}

// --- WeeklyStatusRepository ---

func (p *PostgresStorage) UpsertWeeklyStatus(ctx context.Context, status *internal.WeeklyCompletionStatus) error {
	steps, err := json.Marshal(status.StepCompletions)
	if err != nil {
		return err
	}
	increments, err := json.Marshal(status.DailyIncrements)
	if err != nil {
		return err
	}
	_, err = p.pool.Exec(ctx, `
		INSERT INTO weekly_status (user_id, goal_id, week_start, completed, completed_at, completed_steps, step_completions, daily_increments, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id, goal_id, week_start) DO UPDATE SET
			completed = EXCLUDED.completed,
			completed_at = EXCLUDED.completed_at,
			completed_steps = EXCLUDED.completed_steps,
			step_completions = EXCLUDED.step_completions,
			daily_increments = EXCLUDED.daily_increments,
			last_updated = EXCLUDED.last_updated`,
		status.UserID, status.GoalID, status.WeekStart, status.Completed, status.CompletedAt,
		status.CompletedSteps, steps, increments, time.Now())
	if err != nil {
		p.logger.Errorf("failed to upsert weekly status: %v", err)
		return err
	}
	return nil
}

func scanWeeklyStatus(row pgx.Row) (*internal.WeeklyCompletionStatus, error) {
	var st internal.WeeklyCompletionStatus
	var steps, increments []byte
	if err := row.Scan(&st.UserID, &st.GoalID, &st.WeekStart, &st.Completed, &st.CompletedAt,
		&st.CompletedSteps, &steps, &increments, &st.LastUpdated); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(steps, &st.StepCompletions); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(increments, &st.DailyIncrements); err != nil {
		return nil, err
	}
	return &st, nil
}

func (p *PostgresStorage) GetWeeklyStatus(ctx context.Context, userID, goalID, weekStart string) (*internal.WeeklyCompletionStatus, error) {
	row := p.pool.QueryRow(ctx, `
		SELECT user_id, goal_id, week_start, completed, completed_at, completed_steps, step_completions, daily_increments, last_updated
		FROM weekly_status WHERE user_id = $1 AND goal_id = $2 AND week_start = $3`, userID, goalID, weekStart)
	st, err := scanWeeklyStatus(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		p.logger.Errorf("failed to query weekly status: %v", err)
		return nil, err
	}
	return st, nil
}

func (p *PostgresStorage) ListWeeklyStatuses(ctx context.Context, userID, weekStart string) ([]internal.WeeklyCompletionStatus, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT user_id, goal_id, week_start, completed, completed_at, completed_steps, step_completions, daily_increments, last_updated
		FROM weekly_status WHERE user_id = $1 AND week_start = $2`, userID, weekStart)
	if err != nil {
		p.logger.Errorf("failed to query weekly statuses: %v", err)
		return nil, err
	}
	defer rows.Close()

	var statuses []internal.WeeklyCompletionStatus
	for rows.Next() {
		st, err := scanWeeklyStatus(rows)
		if err != nil {
			p.logger.Errorf("failed to scan weekly status: %v", err)
			return nil, err
		}
		statuses = append(statuses, *st)
	}
	return statuses, rows.Err()
}

// --- Compile-time assertions ---
var _ GoalRepository = (*PostgresStorage)(nil)
var _ DailyStatusRepository = (*PostgresStorage)(nil)
var _ WeeklyStatusRepository = (*PostgresStorage)(nil)
