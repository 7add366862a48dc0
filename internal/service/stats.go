package service

import (
	"math"

	"github.com/BillwoodMarbles/goal-tracker-sub000/internal"
)

// DailyGoalStatus pairs an active daily goal with its effective status for
// one date.
type DailyGoalStatus struct {
	Goal   internal.Goal                  `json:"goal"`
	Status internal.DailyCompletionStatus `json:"status"`
}

// Summary is the aggregate completion for one date's active daily goals.
// Weekly goals track on their own cadence and are excluded.
type Summary struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	Percentage int `json:"percentage"`
}

// Stats averages per-goal completion percentages with equal weight. Simple
// goals contribute 0 or 100; multi-step goals contribute their fractional
// progress. Snoozed occurrences do not count as active for the day.
func Stats(entries []DailyGoalStatus) Summary {
	var sum float64
	s := Summary{}
	for _, e := range entries {
		if e.Status.Snoozed {
			continue
		}
		s.Total++
		if e.Status.Completed {
			s.Completed++
		}
		total := e.Goal.EffectiveTotalSteps()
		if total == 1 {
			if e.Status.Completed {
				sum += 100
			}
			continue
		}
		sum += 100 * float64(e.Status.CompletedSteps) / float64(total)
	}
	if s.Total > 0 {
		s.Percentage = int(math.Round(sum / float64(s.Total)))
	}
	return s
}
