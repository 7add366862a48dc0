package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/BillwoodMarbles/goal-tracker-sub000/internal"
)

func entry(goalID string, isMultiStep bool, totalSteps, completedSteps int, completed, snoozed bool) DailyGoalStatus {
	return DailyGoalStatus{
		Goal: internal.Goal{
			ID:          goalID,
			UserID:      "u1",
			IsActive:    true,
			GoalType:    internal.GoalTypeDaily,
			IsMultiStep: isMultiStep,
			TotalSteps:  totalSteps,
		},
		Status: internal.DailyCompletionStatus{
			UserID: "u1",
			GoalID: goalID,
			Date:   "2024-01-15",
			CompletionState: internal.CompletionState{
				Completed:      completed,
				CompletedSteps: completedSteps,
			},
			Snoozed: snoozed,
		},
	}
}

func TestStatsEmpty(t *testing.T) {
	assert.Equal(t, Summary{}, Stats(nil))
	assert.Equal(t, Summary{}, Stats([]DailyGoalStatus{}))
}

func TestStatsAllComplete(t *testing.T) {
	entries := []DailyGoalStatus{
		entry("a", false, 1, 1, true, false),
		entry("b", false, 1, 1, true, false),
		entry("c", false, 1, 1, true, false),
	}
	assert.Equal(t, Summary{Total: 3, Completed: 3, Percentage: 100}, Stats(entries))
}

func TestStatsPartialMultiStep(t *testing.T) {
	entries := []DailyGoalStatus{
		entry("a", true, 4, 1, false, false),
	}
	assert.Equal(t, Summary{Total: 1, Completed: 0, Percentage: 25}, Stats(entries))
}

func TestStatsMixedRounding(t *testing.T) {
	// 100 + 50 + 0 over three goals = 50.
	entries := []DailyGoalStatus{
		entry("a", false, 1, 1, true, false),
		entry("b", true, 4, 2, false, false),
		entry("c", false, 1, 0, false, false),
	}
	assert.Equal(t, Summary{Total: 3, Completed: 1, Percentage: 50}, Stats(entries))

	// 100 + 100*1/3 rounds to 67.
	entries = []DailyGoalStatus{
		entry("a", false, 1, 1, true, false),
		entry("b", true, 3, 1, false, false),
	}
	assert.Equal(t, 67, Stats(entries).Percentage)
}

func TestStatsSkipsSnoozed(t *testing.T) {
	entries := []DailyGoalStatus{
		entry("a", false, 1, 1, true, false),
		entry("b", false, 1, 0, false, true),
	}
	assert.Equal(t, Summary{Total: 1, Completed: 1, Percentage: 100}, Stats(entries))

	// Only snoozed goals means nothing is active for the day.
	entries = []DailyGoalStatus{entry("b", false, 1, 0, false, true)}
	assert.Equal(t, Summary{}, Stats(entries))
}

func TestStatsNonMultiStepIgnoresStoredTotal(t *testing.T) {
	// A goal flagged single-step contributes all-or-nothing even if a stale
	// TotalSteps value survives.
	e := entry("a", false, 5, 0, false, false)
	assert.Equal(t, Summary{Total: 1}, Stats([]DailyGoalStatus{e}))
	e.Status.Completed = true
	assert.Equal(t, Summary{Total: 1, Completed: 1, Percentage: 100}, Stats([]DailyGoalStatus{e}))
}
