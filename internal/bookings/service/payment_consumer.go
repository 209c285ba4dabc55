package service

import (
	"context"
	"encoding/json"
	"errors"
	bookingserrors "paddock/internal/bookings/errors"
	"paddock/internal/bookings/repository"
	"paddock/pkg/config"
	"paddock/pkg/events"
	"paddock/pkg/model"
	"time"
)

// PaymentEventHandler reacts to payment outcomes: a paid charge confirms
// the pending booking it references, a failed one cancels it. The booking
// ID alone does not say which collection holds the booking, so the stable
// repository is tried first and the trainer one on miss.
type PaymentEventHandler struct {
	stableRepo  repository.StableBookingRepository
	trainerRepo repository.TrainerBookingRepository
	producer    *events.Producer
	cfg         *config.Config
}

func NewPaymentEventHandler(
	stableRepo repository.StableBookingRepository,
	trainerRepo repository.TrainerBookingRepository,
	producer *events.Producer,
	cfg *config.Config,
) *PaymentEventHandler {
	return &PaymentEventHandler{
		stableRepo:  stableRepo,
		trainerRepo: trainerRepo,
		producer:    producer,
		cfg:         cfg,
	}
}

// Handle implements events.HandlerFunc. Unknown event types and unknown
// booking IDs are logged and committed rather than retried; returning an
// error would wedge the partition on a poison message.
func (h *PaymentEventHandler) Handle(ctx context.Context, msg events.Message) error {
	var event events.PaymentEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		h.cfg.Log.Error("Failed to decode payment event", "key", msg.Key, "error", err)
		return nil
	}

	switch event.Type {
	case events.TypePaymentPaid:
		return h.applyStatus(ctx, event, model.BookingStatusConfirmed, events.TypeBookingConfirmed)
	case events.TypePaymentFailed:
		h.cfg.Log.Warn("Payment failed for booking",
			"booking_id", event.BookingID,
			"failure_code", event.FailureCode,
			"failure_message", event.FailureMessage,
		)
		return h.applyStatus(ctx, event, model.BookingStatusCancelled, events.TypeBookingCancelled)
	default:
		h.cfg.Log.Debug("Ignoring event type", "type", event.Type, "key", msg.Key)
		return nil
	}
}

func (h *PaymentEventHandler) applyStatus(ctx context.Context, event events.PaymentEvent, status, bookingEventType string) error {
	listingKind := "stable"
	err := h.stableRepo.UpdateStatus(ctx, event.BookingID, status)
	if errors.Is(err, bookingserrors.ErrNotFound) || errors.Is(err, bookingserrors.ErrInvalidID) {
		listingKind = "trainer"
		err = h.trainerRepo.UpdateStatus(ctx, event.BookingID, status)
	}
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) || errors.Is(err, bookingserrors.ErrInvalidID) {
			h.cfg.Log.Warn("Payment event references unknown booking", "booking_id", event.BookingID)
			return nil
		}
		h.cfg.Log.Error("Failed to apply payment outcome",
			"booking_id", event.BookingID, "status", status, "error", err)
		return err
	}

	h.cfg.Log.Info("Booking status updated from payment event",
		"booking_id", event.BookingID,
		"status", status,
		"charge_id", event.ChargeID,
	)

	h.producer.PublishEvent(ctx, event.BookingID, events.BookingEvent{
		Type:        bookingEventType,
		BookingID:   event.BookingID,
		ListingKind: listingKind,
		OccurredAt:  time.Now().UTC(),
	}, bookingEventType)

	return nil
}
