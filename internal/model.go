package internal

import "time"

type User struct {
	ID    string `json:"id"`
	Token string `json:"token"`
	Name  string `json:"name"`
}

type GoalType string

const (
	GoalTypeDaily  GoalType = "daily"
	GoalTypeWeekly GoalType = "weekly"
)

type Weekday string

const (
	Sunday    Weekday = "sunday"
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
)

// Goal is a recurring intention. Daily goals are scheduled on the days in
// DaysOfWeek; weekly goals are tracked once per Sunday-anchored week and
// ignore DaysOfWeek for scheduling. Goals are never hard-deleted, only
// flagged IsActive=false.
type Goal struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
	GoalType    GoalType  `json:"goal_type"`
	DaysOfWeek  []Weekday `json:"days_of_week"`
	IsMultiStep bool      `json:"is_multi_step"`
	TotalSteps  int       `json:"total_steps"`
	CreatedAt   time.Time `json:"created_at"`
}

// EffectiveTotalSteps treats a non-multi-step goal as a single step
// regardless of the stored TotalSteps.
func (g *Goal) EffectiveTotalSteps() int {
	if !g.IsMultiStep || g.TotalSteps < 1 {
		return 1
	}
	return g.TotalSteps
}

// CompletionState is the step ledger shared by daily and weekly status rows.
// A nil slot in StepCompletions is an empty step; CompletedSteps always equals
// the count of non-nil slots.
type CompletionState struct {
	Completed       bool         `json:"completed"`
	CompletedAt     *time.Time   `json:"completed_at,omitempty"`
	CompletedSteps  int          `json:"completed_steps"`
	StepCompletions []*time.Time `json:"step_completions"`
}

// DailyCompletionStatus is keyed by (UserID, GoalID, Date). Date is a
// "2006-01-02" calendar key.
type DailyCompletionStatus struct {
	UserID string `json:"user_id"`
	GoalID string `json:"goal_id"`
	Date   string `json:"date"`
	CompletionState
	Snoozed     bool      `json:"snoozed"`
	LastUpdated time.Time `json:"last_updated"`
}

// WeeklyCompletionStatus is keyed by (UserID, GoalID, WeekStart), where
// WeekStart is the "2006-01-02" key of the Sunday beginning the week. The
// step ledger may grow past the goal's TotalSteps (over-completion).
// DailyIncrements records, per calendar date, whether that day's increment
// has been applied and not undone.
type WeeklyCompletionStatus struct {
	UserID    string `json:"user_id"`
	GoalID    string `json:"goal_id"`
	WeekStart string `json:"week_start"`
	CompletionState
	DailyIncrements map[string]bool `json:"daily_increments"`
	LastUpdated     time.Time       `json:"last_updated"`
}
