package events

import (
	"encoding/json"
	"time"
)

const (
	TypeBookingCreated   = "booking.created"
	TypeBookingConfirmed = "booking.confirmed"
	TypeBookingCancelled = "booking.cancelled"
	TypePaymentPaid      = "payment.paid"
	TypePaymentFailed    = "payment.failed"
)

// Message is the broker-agnostic envelope published to Kafka. Key selects
// the partition, so events for one booking stay ordered.
type Message struct {
	Key       string
	Value     []byte
	Headers   map[string]string
	Timestamp time.Time
}

// BookingEvent is emitted by the bookings service on lifecycle changes.
type BookingEvent struct {
	Type       string    `json:"type"`
	BookingID  string    `json:"booking_id"`
	ListingKind string   `json:"listing_kind"`
	ListingID  string    `json:"listing_id"`
	ClientID   string    `json:"client_id"`
	TotalPrice float64   `json:"total_price"`
	OccurredAt time.Time `json:"occurred_at"`
}

// PaymentEvent is emitted by the payments flow; the bookings consumer
// confirms or cancels pending bookings from it.
type PaymentEvent struct {
	Type           string    `json:"type"`
	BookingID      string    `json:"booking_id"`
	ChargeID       string    `json:"charge_id"`
	Amount         int64     `json:"amount"`
	Currency       string    `json:"currency"`
	FailureCode    string    `json:"failure_code,omitempty"`
	FailureMessage string    `json:"failure_message,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

func NewMessage(key string, payload any, eventType string) (Message, error) {
	value, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{
		Key:   key,
		Value: value,
		Headers: map[string]string{
			"event_type": eventType,
		},
		Timestamp: time.Now().UTC(),
	}, nil
}
