package errors

import "errors"

var (
	ErrPlanNotFound = errors.New("subscription plan not found")
	ErrUserNotFound = errors.New("user not found")
	ErrInvalidID    = errors.New("invalid ID format")
)
