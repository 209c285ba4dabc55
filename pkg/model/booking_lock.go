package model

import "time"

// BookingLock is an advisory lock guarding booking creation for one
// listing/date-slot. A TTL index on expires_at clears abandoned locks.
type BookingLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
