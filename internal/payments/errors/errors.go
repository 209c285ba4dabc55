package errors

import "errors"

var (
	ErrBookingNotFound = errors.New("booking not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidID       = errors.New("invalid ID format")
)
