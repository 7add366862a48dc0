package service

import (
	"time"

	"github.com/BillwoodMarbles/goal-tracker-sub000/internal"
	"github.com/BillwoodMarbles/goal-tracker-sub000/internal/calendar"
)

// Resolution splits a goal set for one date. Active daily goals are
// scheduled that day; inactive ones are daily goals off-schedule, listed for
// display but never completable. Weekly goals are active every week. Input
// order (newest first from the stores) is preserved in each bucket.
type Resolution struct {
	Active   []internal.Goal `json:"active"`
	Inactive []internal.Goal `json:"inactive"`
	Weekly   []internal.Goal `json:"weekly"`
}

func Resolve(goals []internal.Goal, date time.Time) Resolution {
	day := calendar.DayOfWeek(date)
	res := Resolution{
		Active:   []internal.Goal{},
		Inactive: []internal.Goal{},
		Weekly:   []internal.Goal{},
	}
	for _, g := range goals {
		if !g.IsActive {
			continue
		}
		if g.GoalType == internal.GoalTypeWeekly {
			res.Weekly = append(res.Weekly, g)
			continue
		}
		if scheduledOn(&g, day) {
			res.Active = append(res.Active, g)
		} else {
			res.Inactive = append(res.Inactive, g)
		}
	}
	return res
}

func scheduledOn(g *internal.Goal, day internal.Weekday) bool {
	for _, d := range g.DaysOfWeek {
		if d == day {
			return true
		}
	}
	return false
}
