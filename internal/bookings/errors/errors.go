package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	// ErrSlotTaken signals a live advisory lock held by another request.
	ErrSlotTaken = errors.New("booking slot is locked by another request")
)
