// Package calendar holds the date arithmetic for goal scheduling: Sunday-first
// day-of-week naming, Sunday-anchored week starts, and the "2006-01-02" keys
// status rows are bucketed by.
package calendar

import (
	"time"

	"github.com/BillwoodMarbles/goal-tracker-sub000/internal"
)

// DateKeyLayout is the canonical key format for daily dates and week starts.
const DateKeyLayout = "2006-01-02"

var weekdayNames = [7]internal.Weekday{
	internal.Sunday,
	internal.Monday,
	internal.Tuesday,
	internal.Wednesday,
	internal.Thursday,
	internal.Friday,
	internal.Saturday,
}

// DayOfWeek maps a date to its named day, Sunday first.
func DayOfWeek(t time.Time) internal.Weekday {
	return weekdayNames[int(t.Weekday())]
}

// WeekStart returns midnight UTC of the Sunday on or before t.
func WeekStart(t time.Time) time.Time {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return d.AddDate(0, 0, -int(d.Weekday()))
}

// WeekDates returns the 7 consecutive dates starting at weekStart.
func WeekDates(weekStart time.Time) [7]time.Time {
	var dates [7]time.Time
	for i := range dates {
		dates[i] = weekStart.AddDate(0, 0, i)
	}
	return dates
}

func DateKey(t time.Time) string {
	return t.Format(DateKeyLayout)
}

// ParseDateKey parses a "2006-01-02" key into midnight UTC of that date.
func ParseDateKey(s string) (time.Time, error) {
	return time.ParseInLocation(DateKeyLayout, s, time.UTC)
}

// WeekStartKey is the Sunday bucket key for the week containing t.
func WeekStartKey(t time.Time) string {
	return DateKey(WeekStart(t))
}
