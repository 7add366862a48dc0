package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/BillwoodMarbles/goal-tracker-sub000/internal"
	"github.com/BillwoodMarbles/goal-tracker-sub000/internal/calendar"
	"github.com/BillwoodMarbles/goal-tracker-sub000/internal/response"
	"github.com/BillwoodMarbles/goal-tracker-sub000/internal/service"
)

func HandleError(c *gin.Context, logger internal.Logger, err error, status int, msg string) {
	requestID := c.GetString("request_id")
	logger.Errorf("[request_id=%s] %s: %v", requestID, msg, err)
	var resp response.APIResponse
	switch status {
	case 400:
		resp = response.BadRequest(msg + ": " + err.Error())
	case 404:
		resp = response.NotFound(msg + ": " + err.Error())
	case 500:
		resp = response.InternalError(msg + ": " + err.Error())
	default:
		resp = response.NewAppError(status, msg+": "+err.Error())
	}
	c.JSON(status, resp)
}

func HandleSuccess(c *gin.Context, logger internal.Logger, data interface{}, meta map[string]any) {
	requestID := c.GetString("request_id")
	logger.Infof("[request_id=%s] Success", requestID)
	c.JSON(http.StatusOK, response.Success(data, meta))
}

func currentUser(c *gin.Context) *internal.User {
	return c.MustGet("user").(*internal.User)
}

// serviceErrorStatus maps the engine's named errors onto HTTP statuses.
// Shape mismatches and bad indexes are the caller's fault; anything
// unrecognized is a store failure.
func serviceErrorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrGoalNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidStepIndex),
		errors.Is(err, service.ErrNotMultiStep),
		errors.Is(err, service.ErrNotEligibleForIncrement),
		errors.Is(err, service.ErrWeeklyNotSnoozable):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// parseDateOrToday reads a "2006-01-02" value, defaulting to the server's
// current date when empty.
func parseDateOrToday(value string) (time.Time, error) {
	if value == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return calendar.ParseDateKey(value)
}
