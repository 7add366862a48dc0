package storage

import (
	"context"
	"errors"

	"github.com/BillwoodMarbles/goal-tracker-sub000/internal"
)

// ErrNotFound is returned by GetGoal when no goal matches. Missing status
// rows are not an error: the Get*Status methods return (nil, nil), since
// status records are created lazily on first mutation.
var ErrNotFound = errors.New("storage: not found")

type GoalRepository interface {
	SaveGoal(ctx context.Context, goal *internal.Goal) error
	GetGoal(ctx context.Context, userID, goalID string) (*internal.Goal, error)
	// ListGoals returns the user's non-archived goals, most recently
	// created first.
	ListGoals(ctx context.Context, userID string) ([]internal.Goal, error)
}

type DailyStatusRepository interface {
	GetDailyStatus(ctx context.Context, userID, goalID, date string) (*internal.DailyCompletionStatus, error)
	UpsertDailyStatus(ctx context.Context, status *internal.DailyCompletionStatus) error
	// ListDailyStatuses returns every status row for the user touching any
	// of the given dates.
	ListDailyStatuses(ctx context.Context, userID string, dates []string) ([]internal.DailyCompletionStatus, error)
}

type WeeklyStatusRepository interface {
	GetWeeklyStatus(ctx context.Context, userID, goalID, weekStart string) (*internal.WeeklyCompletionStatus, error)
	UpsertWeeklyStatus(ctx context.Context, status *internal.WeeklyCompletionStatus) error
	ListWeeklyStatuses(ctx context.Context, userID, weekStart string) ([]internal.WeeklyCompletionStatus, error)
}
