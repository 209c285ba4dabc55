package errors

import "errors"

var (
	ErrNotFound = errors.New("trainer not found")

	ErrInvalidID = errors.New("invalid trainer ID format")
)
