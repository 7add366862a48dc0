package service

import (
	"context"
	"time"

	"github.com/BillwoodMarbles/goal-tracker-sub000/internal"
	"github.com/BillwoodMarbles/goal-tracker-sub000/internal/calendar"
	"github.com/BillwoodMarbles/goal-tracker-sub000/internal/storage"
)

// WeeklyGoalStatus pairs a weekly goal with its effective status for one
// week bucket.
type WeeklyGoalStatus struct {
	Goal   internal.Goal                   `json:"goal"`
	Status internal.WeeklyCompletionStatus `json:"status"`
}

// DayView is everything the daily screen needs for one date.
type DayView struct {
	Date     string             `json:"date"`
	Active   []DailyGoalStatus  `json:"active"`
	Inactive []internal.Goal    `json:"inactive"`
	Weekly   []WeeklyGoalStatus `json:"weekly,omitempty"`
	Stats    Summary            `json:"stats"`
}

// WeekView holds 7 day views plus the week's weekly-goal statuses, assembled
// from a fixed number of store queries.
type WeekView struct {
	WeekStart string             `json:"week_start"`
	Days      [7]DayView         `json:"days"`
	Weekly    []WeeklyGoalStatus `json:"weekly"`
}

func effectiveDaily(goal *internal.Goal, byGoal map[string]internal.DailyCompletionStatus, date string) internal.DailyCompletionStatus {
	if st, ok := byGoal[goal.ID]; ok {
		return st
	}
	return *NewDailyStatus(goal.UserID, goal.ID, date)
}

func effectiveWeekly(goal *internal.Goal, byGoal map[string]internal.WeeklyCompletionStatus, weekStart string) internal.WeeklyCompletionStatus {
	if st, ok := byGoal[goal.ID]; ok {
		return st
	}
	return *NewWeeklyStatus(goal.UserID, goal.ID, weekStart)
}

func buildDayView(goals []internal.Goal, date time.Time, daily map[string]internal.DailyCompletionStatus, includeWeekly bool, weekly map[string]internal.WeeklyCompletionStatus, weekStart string) DayView {
	dateKey := calendar.DateKey(date)
	res := Resolve(goals, date)

	view := DayView{
		Date:     dateKey,
		Active:   make([]DailyGoalStatus, 0, len(res.Active)),
		Inactive: res.Inactive,
	}
	for _, g := range res.Active {
		view.Active = append(view.Active, DailyGoalStatus{
			Goal:   g,
			Status: effectiveDaily(&g, daily, dateKey),
		})
	}
	if includeWeekly {
		view.Weekly = make([]WeeklyGoalStatus, 0, len(res.Weekly))
		for _, g := range res.Weekly {
			view.Weekly = append(view.Weekly, WeeklyGoalStatus{
				Goal:   g,
				Status: effectiveWeekly(&g, weekly, weekStart),
			})
		}
	}
	view.Stats = Stats(view.Active)
	return view
}

// LoadDay assembles the daily view in three store queries: the goal list,
// the date's daily statuses, and the containing week's weekly statuses.
func LoadDay(ctx context.Context, repos storage.Repositories, userID string, date time.Time) (*DayView, error) {
	goals, err := repos.Goals.ListGoals(ctx, userID)
	if err != nil {
		return nil, err
	}

	dateKey := calendar.DateKey(date)
	dailyRows, err := repos.Daily.ListDailyStatuses(ctx, userID, []string{dateKey})
	if err != nil {
		return nil, err
	}
	daily := make(map[string]internal.DailyCompletionStatus, len(dailyRows))
	for _, st := range dailyRows {
		daily[st.GoalID] = st
	}

	weekStart := calendar.WeekStartKey(date)
	weeklyRows, err := repos.Weekly.ListWeeklyStatuses(ctx, userID, weekStart)
	if err != nil {
		return nil, err
	}
	weekly := make(map[string]internal.WeeklyCompletionStatus, len(weeklyRows))
	for _, st := range weeklyRows {
		weekly[st.GoalID] = st
	}

	view := buildDayView(goals, date, daily, true, weekly, weekStart)
	return &view, nil
}

// LoadWeek assembles all 7 day views from three store queries total, rather
// than one round trip per goal per day.
func LoadWeek(ctx context.Context, repos storage.Repositories, userID string, weekStart time.Time) (*WeekView, error) {
	weekStart = calendar.WeekStart(weekStart)
	dates := calendar.WeekDates(weekStart)
	weekStartKey := calendar.DateKey(weekStart)

	goals, err := repos.Goals.ListGoals(ctx, userID)
	if err != nil {
		return nil, err
	}

	dateKeys := make([]string, len(dates))
	for i, d := range dates {
		dateKeys[i] = calendar.DateKey(d)
	}
	dailyRows, err := repos.Daily.ListDailyStatuses(ctx, userID, dateKeys)
	if err != nil {
		return nil, err
	}
	dailyByDate := make(map[string]map[string]internal.DailyCompletionStatus)
	for _, st := range dailyRows {
		if dailyByDate[st.Date] == nil {
			dailyByDate[st.Date] = make(map[string]internal.DailyCompletionStatus)
		}
		dailyByDate[st.Date][st.GoalID] = st
	}

	weeklyRows, err := repos.Weekly.ListWeeklyStatuses(ctx, userID, weekStartKey)
	if err != nil {
		return nil, err
	}
	weekly := make(map[string]internal.WeeklyCompletionStatus, len(weeklyRows))
	for _, st := range weeklyRows {
		weekly[st.GoalID] = st
	}

	view := &WeekView{WeekStart: weekStartKey}
	for i, d := range dates {
		view.Days[i] = buildDayView(goals, d, dailyByDate[calendar.DateKey(d)], false, nil, weekStartKey)
	}

	res := Resolve(goals, weekStart)
	view.Weekly = make([]WeeklyGoalStatus, 0, len(res.Weekly))
	for _, g := range res.Weekly {
		view.Weekly = append(view.Weekly, WeeklyGoalStatus{
			Goal:   g,
			Status: effectiveWeekly(&g, weekly, weekStartKey),
		})
	}
	return view, nil
}
