package errors

import "errors"

var (
	ErrNotFound  = errors.New("user not found")
	ErrInvalidID = errors.New("invalid user ID format")
)
