package errors

import "errors"

var (
	ErrNotFound = errors.New("stable not found")

	ErrInvalidID = errors.New("invalid stable ID format")
)
