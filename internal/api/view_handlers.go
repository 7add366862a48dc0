package api

import (
	"github.com/gin-gonic/gin"

	"github.com/BillwoodMarbles/goal-tracker-sub000/internal/service"
)

func GetDayView(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)

		date, err := parseDateOrToday(c.Query("date"))
		if err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid 'date' parameter")
			return
		}

		view, err := service.LoadDay(c.Request.Context(), app.Repos(), user.ID, date)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to load day view")
			return
		}

		HandleSuccess(c, app.Logger(), view, nil)
	}
}

func GetWeekView(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)

		start, err := parseDateOrToday(c.Query("start"))
		if err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid 'start' parameter")
			return
		}

		view, err := service.LoadWeek(c.Request.Context(), app.Repos(), user.ID, start)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to load week view")
			return
		}

		HandleSuccess(c, app.Logger(), view, nil)
	}
}
