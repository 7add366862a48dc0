package api

import "github.com/gin-gonic/gin"

// RegisterRoutes wires the protected API surface onto the router. The same
// wiring is used by the server and the HTTP tests.
func RegisterRoutes(r *gin.Engine, app App, authMiddleware gin.HandlerFunc) {
	r.Use(RequestIDMiddleware())

	g := r.Group("/api", authMiddleware)
	g.GET("/goals", ListGoals(app))
	g.POST("/goals", PostGoal(app))
	g.PUT("/goals/:id", PutGoal(app))
	g.DELETE("/goals/:id", DeleteGoal(app))

	g.GET("/day", GetDayView(app))
	g.GET("/week", GetWeekView(app))

	g.POST("/goals/:id/toggle", ToggleGoal(app))
	g.POST("/goals/:id/steps/:index/toggle", ToggleGoalStep(app))
	g.POST("/goals/:id/increment", IncrementGoal(app))
	g.POST("/goals/:id/snooze", SnoozeGoal(app))
}
