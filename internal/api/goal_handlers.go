package api

import (
	"github.com/gin-gonic/gin"

	"github.com/BillwoodMarbles/goal-tracker-sub000/internal/service"
)

func ListGoals(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)

		goals, err := app.Repos().Goals.ListGoals(c.Request.Context(), user.ID)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to fetch goals")
			return
		}

		HandleSuccess(c, app.Logger(), goals, nil)
	}
}

func PostGoal(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)

		var req service.GoalRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid request body")
			return
		}

		if err := service.ValidateGoalRequest(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Goal validation failed")
			return
		}

		goal, err := service.CreateGoal(c.Request.Context(), app.Repos().Goals, user, &req)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to save goal")
			return
		}

		HandleSuccess(c, app.Logger(), goal, nil)
	}
}

func PutGoal(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)

		var req service.GoalRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid request body")
			return
		}

		if err := service.ValidateGoalRequest(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Goal validation failed")
			return
		}

		goal, err := service.UpdateGoal(c.Request.Context(), app.Repos().Goals, user.ID, c.Param("id"), &req)
		if err != nil {
			HandleError(c, app.Logger(), err, serviceErrorStatus(err), "Failed to update goal")
			return
		}

		HandleSuccess(c, app.Logger(), goal, nil)
	}
}

// DeleteGoal archives rather than deletes: completion history survives.
func DeleteGoal(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)

		if err := service.ArchiveGoal(c.Request.Context(), app.Repos().Goals, user.ID, c.Param("id")); err != nil {
			HandleError(c, app.Logger(), err, serviceErrorStatus(err), "Failed to archive goal")
			return
		}

		HandleSuccess(c, app.Logger(), gin.H{"archived": true}, nil)
	}
}
