package service

import "errors"

// Operation failures surfaced to the API layer. Shape and bounds checks run
// before any read-modify-write, so a rejected operation never writes.
var (
	ErrGoalNotFound            = errors.New("goal not found")
	ErrInvalidStepIndex        = errors.New("step index out of range")
	ErrNotMultiStep            = errors.New("goal is not multi-step")
	ErrNotEligibleForIncrement = errors.New("goal is not eligible for increment")
	ErrWeeklyNotSnoozable      = errors.New("weekly goals cannot be snoozed")
)
