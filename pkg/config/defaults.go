package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "paddock"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultJWTTTL          = 24 * time.Hour
	DefaultPaymentCurrency = "eur"

	DefaultKafkaPaymentTopic = "paddock.payments"
	DefaultKafkaBookingTopic = "paddock.bookings"
	DefaultKafkaGroupID      = "paddock-bookings"

	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultBookingLockTTL = 10 * time.Second

	DefaultPaginationLimit = 100

	// RatingMin and RatingMax bound every rating submission.
	RatingMin = 0.0
	RatingMax = 5.0

	// DaysPerWeek converts week-rate bookings into occupied days.
	DaysPerWeek = 7

	// MaxAvailabilityRangeDays caps the day-by-day availability scan.
	MaxAvailabilityRangeDays = 366
)
