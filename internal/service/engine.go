package service

import (
	"context"
	"time"

	"github.com/BillwoodMarbles/goal-tracker-sub000/internal"
	"github.com/BillwoodMarbles/goal-tracker-sub000/internal/calendar"
	"github.com/BillwoodMarbles/goal-tracker-sub000/internal/storage"
)

// IncrementOutcome labels what an increment call actually did.
type IncrementOutcome string

const (
	// Incremented filled one empty step slot.
	Incremented IncrementOutcome = "incremented"
	// IncrementReset cleared a fully-complete daily ledger back to zero.
	IncrementReset IncrementOutcome = "reset"
	// IncrementUndone reverted a weekly increment already applied the same
	// calendar day.
	IncrementUndone IncrementOutcome = "undone"
	// IncrementOverCompleted appended a slot past TotalSteps on an already
	// complete weekly goal.
	IncrementOverCompleted IncrementOutcome = "over_completed"
	// IncrementNoop is the silent undo-with-nothing-to-undo case; nothing
	// was written.
	IncrementNoop IncrementOutcome = "noop"
)

type IncrementResult struct {
	Outcome        IncrementOutcome `json:"outcome"`
	Completed      bool             `json:"completed"`
	CompletedSteps int              `json:"completed_steps"`
}

// Engine applies the completion state machine: each operation is a single
// read-modify-write against one (goal, date) or (goal, weekStart) status row.
// The resolved Goal is passed in by the caller; the engine never re-fetches
// goal definitions. The clock is injectable for tests.
type Engine struct {
	daily  storage.DailyStatusRepository
	weekly storage.WeeklyStatusRepository
	now    func() time.Time
}

func NewEngine(daily storage.DailyStatusRepository, weekly storage.WeeklyStatusRepository, now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{daily: daily, weekly: weekly, now: now}
}

// NewDailyStatus is the zero state synthesized for a (goal, date) pair with
// no stored record.
func NewDailyStatus(userID, goalID, date string) *internal.DailyCompletionStatus {
	return &internal.DailyCompletionStatus{
		UserID: userID,
		GoalID: goalID,
		Date:   date,
		CompletionState: internal.CompletionState{
			StepCompletions: []*time.Time{},
		},
	}
}

// NewWeeklyStatus is the zero state for a (goal, weekStart) pair.
func NewWeeklyStatus(userID, goalID, weekStart string) *internal.WeeklyCompletionStatus {
	return &internal.WeeklyCompletionStatus{
		UserID:    userID,
		GoalID:    goalID,
		WeekStart: weekStart,
		CompletionState: internal.CompletionState{
			StepCompletions: []*time.Time{},
		},
		DailyIncrements: map[string]bool{},
	}
}

func (e *Engine) loadDaily(ctx context.Context, goal *internal.Goal, date time.Time) (*internal.DailyCompletionStatus, error) {
	key := calendar.DateKey(date)
	st, err := e.daily.GetDailyStatus(ctx, goal.UserID, goal.ID, key)
	if err != nil {
		return nil, err
	}
	if st == nil {
		st = NewDailyStatus(goal.UserID, goal.ID, key)
	}
	return st, nil
}

func (e *Engine) loadWeekly(ctx context.Context, goal *internal.Goal, date time.Time) (*internal.WeeklyCompletionStatus, error) {
	key := calendar.WeekStartKey(date)
	st, err := e.weekly.GetWeeklyStatus(ctx, goal.UserID, goal.ID, key)
	if err != nil {
		return nil, err
	}
	if st == nil {
		st = NewWeeklyStatus(goal.UserID, goal.ID, key)
	}
	if st.DailyIncrements == nil {
		st.DailyIncrements = map[string]bool{}
	}
	return st, nil
}

// Toggle flips an occurrence between fully complete and empty. Weekly goals
// bucket by the week containing date.
func (e *Engine) Toggle(ctx context.Context, goal *internal.Goal, date time.Time) (bool, error) {
	now := e.now()
	if goal.GoalType == internal.GoalTypeWeekly {
		st, err := e.loadWeekly(ctx, goal, date)
		if err != nil {
			return false, err
		}
		completed := applyToggle(&st.CompletionState, goal.EffectiveTotalSteps(), now)
		return completed, e.weekly.UpsertWeeklyStatus(ctx, st)
	}
	st, err := e.loadDaily(ctx, goal, date)
	if err != nil {
		return false, err
	}
	completed := applyToggle(&st.CompletionState, goal.EffectiveTotalSteps(), now)
	return completed, e.daily.UpsertDailyStatus(ctx, st)
}

// ToggleStep flips one slot of a multi-step occurrence. Returns the slot's
// new occupancy.
func (e *Engine) ToggleStep(ctx context.Context, goal *internal.Goal, date time.Time, stepIndex int) (bool, error) {
	if !goal.IsMultiStep {
		return false, ErrNotMultiStep
	}
	if stepIndex < 0 || stepIndex >= goal.TotalSteps {
		return false, ErrInvalidStepIndex
	}
	now := e.now()
	if goal.GoalType == internal.GoalTypeWeekly {
		st, err := e.loadWeekly(ctx, goal, date)
		if err != nil {
			return false, err
		}
		filled := applyStepToggle(&st.CompletionState, goal.EffectiveTotalSteps(), stepIndex, now)
		return filled, e.weekly.UpsertWeeklyStatus(ctx, st)
	}
	st, err := e.loadDaily(ctx, goal, date)
	if err != nil {
		return false, err
	}
	filled := applyStepToggle(&st.CompletionState, goal.EffectiveTotalSteps(), stepIndex, now)
	return filled, e.daily.UpsertDailyStatus(ctx, st)
}

// Increment advances a multi-step occurrence by one step. Daily goals reset
// when already full; weekly goals apply the one-increment-per-calendar-day
// guard, undoing on a same-day repeat and over-completing past TotalSteps.
func (e *Engine) Increment(ctx context.Context, goal *internal.Goal, date time.Time) (IncrementResult, error) {
	if !goal.IsMultiStep || goal.TotalSteps <= 1 {
		return IncrementResult{}, ErrNotEligibleForIncrement
	}
	now := e.now()
	if goal.GoalType == internal.GoalTypeWeekly {
		st, err := e.loadWeekly(ctx, goal, date)
		if err != nil {
			return IncrementResult{}, err
		}
		outcome := applyWeeklyIncrement(st, goal.TotalSteps, calendar.DateKey(date), now)
		res := IncrementResult{Outcome: outcome, Completed: st.Completed, CompletedSteps: st.CompletedSteps}
		if outcome == IncrementNoop {
			return res, nil
		}
		return res, e.weekly.UpsertWeeklyStatus(ctx, st)
	}
	st, err := e.loadDaily(ctx, goal, date)
	if err != nil {
		return IncrementResult{}, err
	}
	outcome := applyDailyIncrement(&st.CompletionState, goal.TotalSteps, now)
	res := IncrementResult{Outcome: outcome, Completed: st.Completed, CompletedSteps: st.CompletedSteps}
	return res, e.daily.UpsertDailyStatus(ctx, st)
}

// Snooze toggles the daily-only suppression flag. Snoozing zeroes any
// partial progress; un-snoozing does not bring it back.
func (e *Engine) Snooze(ctx context.Context, goal *internal.Goal, date time.Time) (bool, error) {
	if goal.GoalType == internal.GoalTypeWeekly {
		return false, ErrWeeklyNotSnoozable
	}
	st, err := e.loadDaily(ctx, goal, date)
	if err != nil {
		return false, err
	}
	st.Snoozed = !st.Snoozed
	if st.Snoozed {
		resetState(&st.CompletionState)
	}
	return st.Snoozed, e.daily.UpsertDailyStatus(ctx, st)
}

// --- Pure transitions ---

func resetState(cs *internal.CompletionState) {
	cs.Completed = false
	cs.CompletedAt = nil
	cs.CompletedSteps = 0
	cs.StepCompletions = []*time.Time{}
}

// padSteps grows the ledger with empty slots up to total. Existing slots,
// including any past total, are untouched.
func padSteps(cs *internal.CompletionState, total int) {
	for len(cs.StepCompletions) < total {
		cs.StepCompletions = append(cs.StepCompletions, nil)
	}
}

// recompute derives CompletedSteps, Completed and CompletedAt from slot
// occupancy. Completion is >= to cover weekly over-completion; daily ledgers
// never exceed total.
func recompute(cs *internal.CompletionState, total int, now time.Time) {
	count := 0
	for _, slot := range cs.StepCompletions {
		if slot != nil {
			count++
		}
	}
	cs.CompletedSteps = count
	cs.Completed = count >= total
	if cs.Completed {
		t := now
		cs.CompletedAt = &t
	} else {
		cs.CompletedAt = nil
	}
}

func applyToggle(cs *internal.CompletionState, total int, now time.Time) bool {
	if cs.Completed {
		resetState(cs)
		return false
	}
	slots := make([]*time.Time, total)
	for i := range slots {
		t := now
		slots[i] = &t
	}
	cs.StepCompletions = slots
	recompute(cs, total, now)
	return true
}

func applyStepToggle(cs *internal.CompletionState, total, stepIndex int, now time.Time) bool {
	padSteps(cs, total)
	if cs.StepCompletions[stepIndex] != nil {
		cs.StepCompletions[stepIndex] = nil
	} else {
		t := now
		cs.StepCompletions[stepIndex] = &t
	}
	recompute(cs, total, now)
	return cs.StepCompletions[stepIndex] != nil
}

func applyDailyIncrement(cs *internal.CompletionState, total int, now time.Time) IncrementOutcome {
	if cs.CompletedSteps >= total {
		resetState(cs)
		return IncrementReset
	}
	padSteps(cs, total)
	for i, slot := range cs.StepCompletions {
		if slot == nil {
			t := now
			cs.StepCompletions[i] = &t
			break
		}
	}
	recompute(cs, total, now)
	return Incremented
}

func applyWeeklyIncrement(st *internal.WeeklyCompletionStatus, total int, dateKey string, now time.Time) IncrementOutcome {
	cs := &st.CompletionState
	if st.DailyIncrements[dateKey] {
		// Second call on the same calendar day undoes the highest filled
		// slot, whatever filled it.
		undone := -1
		for i := len(cs.StepCompletions) - 1; i >= 0; i-- {
			if cs.StepCompletions[i] != nil {
				undone = i
				break
			}
		}
		if undone == -1 {
			return IncrementNoop
		}
		cs.StepCompletions[undone] = nil
		st.DailyIncrements[dateKey] = false
		recompute(cs, total, now)
		return IncrementUndone
	}

	if cs.CompletedSteps >= total {
		// Already met for the week: the ledger grows past total.
		t := now
		cs.StepCompletions = append(cs.StepCompletions, &t)
		st.DailyIncrements[dateKey] = true
		recompute(cs, total, now)
		return IncrementOverCompleted
	}

	padSteps(cs, total)
	for i := 0; i < total; i++ {
		if cs.StepCompletions[i] == nil {
			t := now
			cs.StepCompletions[i] = &t
			break
		}
	}
	st.DailyIncrements[dateKey] = true
	recompute(cs, total, now)
	return Incremented
}
