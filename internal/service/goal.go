package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/BillwoodMarbles/goal-tracker-sub000/internal"
	"github.com/BillwoodMarbles/goal-tracker-sub000/internal/storage"
)

var validate = validator.New()

type GoalRequest struct {
	Title       string             `json:"title" validate:"required"`
	Description string             `json:"description"`
	GoalType    internal.GoalType  `json:"goal_type" validate:"required,oneof=daily weekly"`
	DaysOfWeek  []internal.Weekday `json:"days_of_week" validate:"required_if=GoalType daily,dive,oneof=sunday monday tuesday wednesday thursday friday saturday"`
	IsMultiStep bool               `json:"is_multi_step"`
	TotalSteps  int                `json:"total_steps" validate:"omitempty,gte=1"`
}

func ValidateGoalRequest(req *GoalRequest) error {
	return validate.Struct(req)
}

// normalizeSteps keeps the TotalSteps invariant: at least 1, and exactly 1
// when the goal is not multi-step.
func normalizeSteps(isMultiStep bool, totalSteps int) int {
	if !isMultiStep || totalSteps < 1 {
		return 1
	}
	return totalSteps
}

func CreateGoal(ctx context.Context, goalRepo storage.GoalRepository, user *internal.User, req *GoalRequest) (*internal.Goal, error) {
	goal := &internal.Goal{
		ID:          uuid.NewString(),
		UserID:      user.ID,
		Title:       req.Title,
		Description: req.Description,
		IsActive:    true,
		GoalType:    req.GoalType,
		DaysOfWeek:  req.DaysOfWeek,
		IsMultiStep: req.IsMultiStep,
		TotalSteps:  normalizeSteps(req.IsMultiStep, req.TotalSteps),
		CreatedAt:   time.Now(),
	}
	if err := goalRepo.SaveGoal(ctx, goal); err != nil {
		return nil, err
	}
	return goal, nil
}

func GetGoal(ctx context.Context, goalRepo storage.GoalRepository, userID, goalID string) (*internal.Goal, error) {
	goal, err := goalRepo.GetGoal(ctx, userID, goalID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrGoalNotFound
		}
		return nil, err
	}
	return goal, nil
}

func UpdateGoal(ctx context.Context, goalRepo storage.GoalRepository, userID, goalID string, req *GoalRequest) (*internal.Goal, error) {
	goal, err := GetGoal(ctx, goalRepo, userID, goalID)
	if err != nil {
		return nil, err
	}
	goal.Title = req.Title
	goal.Description = req.Description
	goal.GoalType = req.GoalType
	goal.DaysOfWeek = req.DaysOfWeek
	goal.IsMultiStep = req.IsMultiStep
	goal.TotalSteps = normalizeSteps(req.IsMultiStep, req.TotalSteps)
	if err := goalRepo.SaveGoal(ctx, goal); err != nil {
		return nil, err
	}
	return goal, nil
}

// ArchiveGoal soft-deletes: completion history stays, scheduling stops.
func ArchiveGoal(ctx context.Context, goalRepo storage.GoalRepository, userID, goalID string) error {
	goal, err := GetGoal(ctx, goalRepo, userID, goalID)
	if err != nil {
		return err
	}
	goal.IsActive = false
	return goalRepo.SaveGoal(ctx, goal)
}
