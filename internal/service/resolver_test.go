package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/BillwoodMarbles/goal-tracker-sub000/internal"
)

func TestResolveSplitsByScheduleAndType(t *testing.T) {
	goals := []internal.Goal{
		{ID: "mon", IsActive: true, GoalType: internal.GoalTypeDaily, DaysOfWeek: []internal.Weekday{internal.Monday}},
		{ID: "tue", IsActive: true, GoalType: internal.GoalTypeDaily, DaysOfWeek: []internal.Weekday{internal.Tuesday}},
		{ID: "wk", IsActive: true, GoalType: internal.GoalTypeWeekly, DaysOfWeek: []internal.Weekday{internal.Friday}},
	}

	res := Resolve(goals, testMonday)
	assert.Equal(t, []string{"mon"}, goalIDs(res.Active))
	assert.Equal(t, []string{"tue"}, goalIDs(res.Inactive))
	assert.Equal(t, []string{"wk"}, goalIDs(res.Weekly))

	// Weekly goals ignore DaysOfWeek: active on any date of the week.
	res = Resolve(goals, testTuesday)
	assert.Equal(t, []string{"tue"}, goalIDs(res.Active))
	assert.Equal(t, []string{"wk"}, goalIDs(res.Weekly))
}

func TestResolveExcludesArchivedGoals(t *testing.T) {
	goals := []internal.Goal{
		{ID: "gone", IsActive: false, GoalType: internal.GoalTypeDaily, DaysOfWeek: []internal.Weekday{internal.Monday}},
		{ID: "gone-wk", IsActive: false, GoalType: internal.GoalTypeWeekly},
	}
	res := Resolve(goals, testMonday)
	assert.Empty(t, res.Active)
	assert.Empty(t, res.Inactive)
	assert.Empty(t, res.Weekly)
}

func TestResolvePreservesInputOrder(t *testing.T) {
	goals := []internal.Goal{
		{ID: "c", IsActive: true, GoalType: internal.GoalTypeDaily, DaysOfWeek: []internal.Weekday{internal.Monday}},
		{ID: "b", IsActive: true, GoalType: internal.GoalTypeDaily, DaysOfWeek: []internal.Weekday{internal.Monday}},
		{ID: "a", IsActive: true, GoalType: internal.GoalTypeDaily, DaysOfWeek: []internal.Weekday{internal.Monday}},
	}
	res := Resolve(goals, testMonday)
	assert.Equal(t, []string{"c", "b", "a"}, goalIDs(res.Active))
}

func TestResolveMultiDaySchedule(t *testing.T) {
	goals := []internal.Goal{
		{ID: "wk-days", IsActive: true, GoalType: internal.GoalTypeDaily,
			DaysOfWeek: []internal.Weekday{internal.Monday, internal.Wednesday, internal.Friday}},
	}
	assert.Len(t, Resolve(goals, testMonday).Active, 1)
	assert.Len(t, Resolve(goals, testTuesday).Active, 0)
	assert.Len(t, Resolve(goals, testSunday).Active, 0)
}

func goalIDs(goals []internal.Goal) []string {
	ids := make([]string, 0, len(goals))
	for _, g := range goals {
		ids = append(ids, g.ID)
	}
	return ids
}
