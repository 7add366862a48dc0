package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/BillwoodMarbles/goal-tracker-sub000/internal"
)

// SQLiteStorage persists through a local SQLite database. Timestamps are
// stored as RFC3339 strings and the step ledgers as JSON text.
type SQLiteStorage struct {
	db     *sql.DB
	logger internal.Logger
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS goals (
	id            TEXT PRIMARY KEY,
	user_id       TEXT NOT NULL,
	title         TEXT NOT NULL,
	description   TEXT NOT NULL DEFAULT '',
	is_active     INTEGER NOT NULL DEFAULT 1,
	goal_type     TEXT NOT NULL,
	days_of_week  TEXT NOT NULL DEFAULT '[]',
	is_multi_step INTEGER NOT NULL DEFAULT 0,
	total_steps   INTEGER NOT NULL DEFAULT 1,
	created_at    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS goals_user_idx ON goals (user_id, created_at DESC);

CREATE TABLE IF NOT EXISTS daily_status (
	user_id          TEXT NOT NULL,
	goal_id          TEXT NOT NULL,
	date             TEXT NOT NULL,
	completed        INTEGER NOT NULL DEFAULT 0,
	completed_at     TEXT,
	completed_steps  INTEGER NOT NULL DEFAULT 0,
	step_completions TEXT NOT NULL DEFAULT '[]',
	snoozed          INTEGER NOT NULL DEFAULT 0,
	last_updated     TEXT NOT NULL,
	PRIMARY KEY (user_id, goal_id, date)
);

CREATE TABLE IF NOT EXISTS weekly_status (
	user_id          TEXT NOT NULL,
	goal_id          TEXT NOT NULL,
	week_start       TEXT NOT NULL,
	completed        INTEGER NOT NULL DEFAULT 0,
	completed_at     TEXT,
	completed_steps  INTEGER NOT NULL DEFAULT 0,
	step_completions TEXT NOT NULL DEFAULT '[]',
	daily_increments TEXT NOT NULL DEFAULT '{}',
	last_updated     TEXT NOT NULL,
	PRIMARY KEY (user_id, goal_id, week_start)
);
`

func NewSQLiteStorage(path string, logger internal.Logger) (*SQLiteStorage, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		logger.Errorf("failed to open sqlite database: %v", err)
		return nil, err
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		logger.Errorf("failed to create sqlite schema: %v", err)
		db.Close()
		return nil, err
	}
	return &SQLiteStorage{db: db, logger: logger}, nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func encodeTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func encodeNullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return encodeTime(*t)
}

func decodeTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp: %w", err)
	}
	return t, nil
}

func decodeNullTime(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid {
		return nil, nil
	}
	t, err := decodeTime(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// --- GoalRepository ---

func (s *SQLiteStorage) SaveGoal(ctx context.Context, goal *internal.Goal) error {
	days, err := json.Marshal(goal.DaysOfWeek)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO goals (id, user_id, title, description, is_active, goal_type, days_of_week, is_multi_step, total_steps, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			is_active = excluded.is_active,
			goal_type = excluded.goal_type,
			days_of_week = excluded.days_of_week,
			is_multi_step = excluded.is_multi_step,
			total_steps = excluded.total_steps`,
		goal.ID, goal.UserID, goal.Title, goal.Description, goal.IsActive,
		string(goal.GoalType), string(days), goal.IsMultiStep, goal.TotalSteps, encodeTime(goal.CreatedAt))
	if err != nil {
		s.logger.Errorf("failed to upsert goal: %v", err)
	}
	return err
}

type sqlRow interface {
	Scan(dest ...any) error
}

func (s *SQLiteStorage) scanGoal(row sqlRow) (*internal.Goal, error) {
	var g internal.Goal
	var goalType, days, createdAt string
	if err := row.Scan(&g.ID, &g.UserID, &g.Title, &g.Description, &g.IsActive,
		&goalType, &days, &g.IsMultiStep, &g.TotalSteps, &createdAt); err != nil {
		return nil, err
	}
	g.GoalType = internal.GoalType(goalType)
	if err := json.Unmarshal([]byte(days), &g.DaysOfWeek); err != nil {
		return nil, err
	}
	var err error
	if g.CreatedAt, err = decodeTime(createdAt); err != nil {
		return nil, err
	}
	return &g, nil
}

func (s *SQLiteStorage) GetGoal(ctx context.Context, userID, goalID string) (*internal.Goal, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, title, description, is_active, goal_type, days_of_week, is_multi_step, total_steps, created_at
		FROM goals WHERE id = ? AND user_id = ?`, goalID, userID)
	g, err := s.scanGoal(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		s.logger.Errorf("failed to query goal: %v", err)
		return nil, err
	}
	return g, nil
}

func (s *SQLiteStorage) ListGoals(ctx context.Context, userID string) ([]internal.Goal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, title, description, is_active, goal_type, days_of_week, is_multi_step, total_steps, created_at
		FROM goals WHERE user_id = ? AND is_active = 1 ORDER BY created_at DESC`, userID)
	if err != nil {
		s.logger.Errorf("failed to query goals: %v", err)
		return nil, err
	}
	defer rows.Close()

	goals := []internal.Goal{}
	for rows.Next() {
		g, err := s.scanGoal(rows)
		if err != nil {
			s.logger.Errorf("failed to scan goal: %v", err)
			return nil, err
		}
		goals = append(goals, *g)
	}
	return goals, rows.Err()
}

// --- DailyStatusRepository ---

func (s *SQLiteStorage) UpsertDailyStatus(ctx context.Context, status *internal.DailyCompletionStatus) error {
	steps, err := json.Marshal(status.StepCompletions)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO daily_status (user_id, goal_id, date, completed, completed_at, completed_steps, step_completions, snoozed, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, goal_id, date) DO UPDATE SET
			completed = excluded.completed,
			completed_at = excluded.completed_at,
			completed_steps = excluded.completed_steps,
			step_completions = excluded.step_completions,
			snoozed = excluded.snoozed,
			last_updated = excluded.last_updated`,
		status.UserID, status.GoalID, status.Date, status.Completed, encodeNullTime(status.CompletedAt),
		status.CompletedSteps, string(steps), status.Snoozed, encodeTime(time.Now()))
	if err != nil {
		s.logger.Errorf("failed to upsert daily status: %v", err)
	}
	return err
}

func (s *SQLiteStorage) scanDailyStatus(row sqlRow) (*internal.DailyCompletionStatus, error) {
	var st internal.DailyCompletionStatus
	var completedAt sql.NullString
	var steps, lastUpdated string
	if err := row.Scan(&st.UserID, &st.GoalID, &st.Date, &st.Completed, &completedAt,
		&st.CompletedSteps, &steps, &st.Snoozed, &lastUpdated); err != nil {
		return nil, err
	}
	var err error
	if st.CompletedAt, err = decodeNullTime(completedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(steps), &st.StepCompletions); err != nil {
		return nil, err
	}
	if st.LastUpdated, err = decodeTime(lastUpdated); err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *SQLiteStorage) GetDailyStatus(ctx context.Context, userID, goalID, date string) (*internal.DailyCompletionStatus, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT user_id, goal_id, date, completed, completed_at, completed_steps, step_completions, snoozed, last_updated
		FROM daily_status WHERE user_id = ? AND goal_id = ? AND date = ?`, userID, goalID, date)
	st, err := s.scanDailyStatus(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		s.logger.Errorf("failed to query daily status: %v", err)
		return nil, err
	}
	return st, nil
}

func (s *SQLiteStorage) ListDailyStatuses(ctx context.Context, userID string, dates []string) ([]internal.DailyCompletionStatus, error) {
	if len(dates) == 0 {
		return nil, nil
	}
	query := `
		SELECT user_id, goal_id, date, completed, completed_at, completed_steps, step_completions, snoozed, last_updated
		FROM daily_status WHERE user_id = ? AND date IN (?` + repeatPlaceholder(len(dates)-1) + `)`
	args := make([]any, 0, len(dates)+1)
	args = append(args, userID)
	for _, d := range dates {
		args = append(args, d)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		s.logger.Errorf("failed to query daily statuses: %v", err)
		return nil, err
	}
	defer rows.Close()

	var statuses []internal.DailyCompletionStatus
	for rows.Next() {
		st, err := s.scanDailyStatus(rows)
		if err != nil {
			s.logger.Errorf("failed to scan daily status: %v", err)
			return nil, err
		}
		statuses = append(statuses, *st)
	}
	return statuses, rows.Err()
}

func repeatPlaceholder(n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += ", ?"
	}
	return out
}

// --- WeeklyStatusRepository ---

func (s *SQLiteStorage) UpsertWeeklyStatus(ctx context.Context, status *internal.WeeklyCompletionStatus) error {
	steps, err := json.Marshal(status.StepCompletions)
	if err != nil {
		return err
	}
	increments, err := json.Marshal(status.DailyIncrements)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO weekly_status (user_id, goal_id, week_start, completed, completed_at, completed_steps, step_completions, daily_increments, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, goal_id, week_start) DO UPDATE SET
			completed = excluded.completed,
			completed_at = excluded.completed_at,
			completed_steps = excluded.completed_steps,
			step_completions = excluded.step_completions,
			daily_increments = excluded.daily_increments,
			last_updated = excluded.last_updated`,
		status.UserID, status.GoalID, status.WeekStart, status.Completed, encodeNullTime(status.CompletedAt),
		status.CompletedSteps, string(steps), string(increments), encodeTime(time.Now()))
	if err != nil {
		s.logger.Errorf("failed to upsert weekly status: %v", err)
	}
	return err
}

func (s *SQLiteStorage) scanWeeklyStatus(row sqlRow) (*internal.WeeklyCompletionStatus, error) {
	var st internal.WeeklyCompletionStatus
	var completedAt sql.NullString
	var steps, increments, lastUpdated string
	if err := row.Scan(&st.UserID, &st.GoalID, &st.WeekStart, &st.Completed, &completedAt,
		&st.CompletedSteps, &steps, &increments, &lastUpdated); err != nil {
		return nil, err
	}
	var err error
	if st.CompletedAt, err = decodeNullTime(completedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(steps), &st.StepCompletions); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(increments), &st.DailyIncrements); err != nil {
		return nil, err
	}
	if st.LastUpdated, err = decodeTime(lastUpdated); err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *SQLiteStorage) GetWeeklyStatus(ctx context.Context, userID, goalID, weekStart string) (*internal.WeeklyCompletionStatus, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT user_id, goal_id, week_start, completed, completed_at, completed_steps, step_completions, daily_increments, last_updated
		FROM weekly_status WHERE user_id = ? AND goal_id = ? AND week_start = ?`, userID, goalID, weekStart)
	st, err := s.scanWeeklyStatus(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		s.logger.Errorf("failed to query weekly status: %v", err)
		return nil, err
	}
	return st, nil
}

func (s *SQLiteStorage) ListWeeklyStatuses(ctx context.Context, userID, weekStart string) ([]internal.WeeklyCompletionStatus, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, goal_id, week_start, completed, completed_at, completed_steps, step_completions, daily_increments, last_updated
		FROM weekly_status WHERE user_id = ? AND week_start = ?`, userID, weekStart)
	if err != nil {
		s.logger.Errorf("failed to query weekly statuses: %v", err)
		return nil, err
	}
	defer rows.Close()

	var statuses []internal.WeeklyCompletionStatus
	for rows.Next() {
		st, err := s.scanWeeklyStatus(rows)
		if err != nil {
			s.logger.Errorf("failed to scan weekly status: %v", err)
			return nil, err
		}
		statuses = append(statuses, *st)
	}
	return statuses, rows.Err()
}

// --- Compile-time assertions ---
var _ GoalRepository = (*SQLiteStorage)(nil)
var _ DailyStatusRepository = (*SQLiteStorage)(nil)
var _ WeeklyStatusRepository = (*SQLiteStorage)(nil)
