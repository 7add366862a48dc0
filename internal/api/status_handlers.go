package api

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/BillwoodMarbles/goal-tracker-sub000/internal"
	"github.com/BillwoodMarbles/goal-tracker-sub000/internal/service"
)

// StatusMutationRequest is the shared body for toggle/increment/snooze. An
// empty date means today.
type StatusMutationRequest struct {
	Date string `json:"date"`
}

func bindMutation(c *gin.Context, app App) (*internal.Goal, time.Time, bool) {
	user := currentUser(c)

	var req StatusMutationRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid request body")
			return nil, time.Time{}, false
		}
	}

	date, err := parseDateOrToday(req.Date)
	if err != nil {
		HandleError(c, app.Logger(), err, 400, "Invalid 'date' value")
		return nil, time.Time{}, false
	}

	goal, err := service.GetGoal(c.Request.Context(), app.Repos().Goals, user.ID, c.Param("id"))
	if err != nil {
		HandleError(c, app.Logger(), err, serviceErrorStatus(err), "Failed to resolve goal")
		return nil, time.Time{}, false
	}
	return goal, date, true
}

func ToggleGoal(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		goal, date, ok := bindMutation(c, app)
		if !ok {
			return
		}

		completed, err := app.Engine().Toggle(c.Request.Context(), goal, date)
		if err != nil {
			HandleError(c, app.Logger(), err, serviceErrorStatus(err), "Failed to toggle goal")
			return
		}

		HandleSuccess(c, app.Logger(), gin.H{"completed": completed}, nil)
	}
}

func ToggleGoalStep(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		stepIndex, err := strconv.Atoi(c.Param("index"))
		if err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid step index")
			return
		}

		goal, date, ok := bindMutation(c, app)
		if !ok {
			return
		}

		filled, err := app.Engine().ToggleStep(c.Request.Context(), goal, date, stepIndex)
		if err != nil {
			HandleError(c, app.Logger(), err, serviceErrorStatus(err), "Failed to toggle step")
			return
		}

		HandleSuccess(c, app.Logger(), gin.H{"completed": filled}, nil)
	}
}

func IncrementGoal(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		goal, date, ok := bindMutation(c, app)
		if !ok {
			return
		}

		result, err := app.Engine().Increment(c.Request.Context(), goal, date)
		if err != nil {
			HandleError(c, app.Logger(), err, serviceErrorStatus(err), "Failed to increment goal")
			return
		}

		HandleSuccess(c, app.Logger(), result, nil)
	}
}

func SnoozeGoal(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		goal, date, ok := bindMutation(c, app)
		if !ok {
			return
		}

		snoozed, err := app.Engine().Snooze(c.Request.Context(), goal, date)
		if err != nil {
			HandleError(c, app.Logger(), err, serviceErrorStatus(err), "Failed to snooze goal")
			return
		}

		HandleSuccess(c, app.Logger(), gin.H{"snoozed": snoozed}, nil)
	}
}
