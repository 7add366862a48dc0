package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/BillwoodMarbles/goal-tracker-sub000/internal"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDayOfWeek(t *testing.T) {
	// 2024-01-14 is a Sunday
	assert.Equal(t, internal.Sunday, DayOfWeek(date(2024, time.January, 14)))
	assert.Equal(t, internal.Monday, DayOfWeek(date(2024, time.January, 15)))
	assert.Equal(t, internal.Saturday, DayOfWeek(date(2024, time.January, 20)))
}

func TestWeekStart(t *testing.T) {
	sunday := date(2024, time.January, 14)
	// A Sunday is its own week start.
	assert.Equal(t, sunday, WeekStart(sunday))
	// Any other day of that week maps back to the same Sunday.
	for i := 1; i < 7; i++ {
		assert.Equal(t, sunday, WeekStart(sunday.AddDate(0, 0, i)), "offset %d", i)
	}
	// The next Sunday starts a new week.
	next := sunday.AddDate(0, 0, 7)
	assert.Equal(t, next, WeekStart(next))
}

func TestWeekStartNormalizesTimeOfDay(t *testing.T) {
	late := time.Date(2024, time.January, 17, 23, 59, 59, 0, time.UTC)
	assert.Equal(t, date(2024, time.January, 14), WeekStart(late))
}

func TestWeekDates(t *testing.T) {
	dates := WeekDates(date(2024, time.January, 14))
	assert.Equal(t, date(2024, time.January, 14), dates[0])
	assert.Equal(t, date(2024, time.January, 20), dates[6])
	for i := 1; i < 7; i++ {
		assert.Equal(t, dates[i-1].AddDate(0, 0, 1), dates[i])
	}
}

func TestDateKeyRoundTrip(t *testing.T) {
	d := date(2024, time.February, 29)
	key := DateKey(d)
	assert.Equal(t, "2024-02-29", key)
	parsed, err := ParseDateKey(key)
	assert.NoError(t, err)
	assert.Equal(t, d, parsed)

	_, err = ParseDateKey("not-a-date")
	assert.Error(t, err)
}

func TestWeekStartKey(t *testing.T) {
	assert.Equal(t, "2024-01-14", WeekStartKey(date(2024, time.January, 16)))
}
