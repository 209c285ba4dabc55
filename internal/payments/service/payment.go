package service

import (
	"context"
	"errors"
	"math"
	paymentserrors "paddock/internal/payments/errors"
	"paddock/internal/payments/repository"
	"paddock/pkg/config"
	apperrors "paddock/pkg/errors"
	"paddock/pkg/events"
	"paddock/pkg/model"
	"time"
)

// ChargeBookingRequest carries a single-use card token for a pending
// booking. The amount is never client-supplied, it comes from the stored
// booking's total.
type ChargeBookingRequest struct {
	BookingID   string `json:"booking_id"`
	ListingKind string `json:"listing_kind"`
	CardToken   string `json:"card_token"`
}

type PaymentService interface {
	ChargeBooking(ctx context.Context, req *ChargeBookingRequest) (*ChargeOutcome, error)
	GetCharge(ctx context.Context, id string) (*ChargeOutcome, error)
	HandleProcessorEvent(ctx context.Context, eventID string) error
}

type paymentService struct {
	bookings  repository.BookingLookupRepository
	billing   repository.BillingRepository
	processor Processor
	producer  *events.Producer
	cfg       *config.Config
}

func NewPaymentService(
	bookings repository.BookingLookupRepository,
	billing repository.BillingRepository,
	processor Processor,
	producer *events.Producer,
	cfg *config.Config,
) PaymentService {
	return &paymentService{
		bookings:  bookings,
		billing:   billing,
		processor: processor,
		producer:  producer,
		cfg:       cfg,
	}
}

func (s *paymentService) ChargeBooking(ctx context.Context, req *ChargeBookingRequest) (*ChargeOutcome, error) {
	if req.BookingID == "" || req.CardToken == "" {
		return nil, apperrors.InvalidInput("booking_id and card_token are required")
	}
	if req.ListingKind != "stable" && req.ListingKind != "trainer" {
		return nil, apperrors.InvalidInput("listing_kind must be stable or trainer")
	}

	clientID, totalPrice, status, err := s.resolveBooking(ctx, req.BookingID, req.ListingKind)
	if err != nil {
		return nil, err
	}
	switch status {
	case model.BookingStatusPending:
	case model.BookingStatusConfirmed:
		return nil, apperrors.Conflict("Booking is already paid")
	default:
		return nil, apperrors.Conflict("Cancelled bookings cannot be paid")
	}

	amount := int64(math.Round(totalPrice * 100))
	outcome, err := s.processor.CreateCharge(ctx, amount, s.cfg.PaymentCurrency, req.CardToken, map[string]any{
		"booking_id": req.BookingID,
		"purpose":    "booking",
	})
	if err != nil {
		s.cfg.Log.Error("Charge creation failed", "booking_id", req.BookingID, "error", err)
		s.publishFailed(ctx, req.BookingID, "", "create_charge_error", err.Error())
		return nil, apperrors.PaymentFailed("Payment could not be processed", err)
	}
	outcome.BookingID = req.BookingID

	switch outcome.Status {
	case chargeStatusSuccessful:
		s.settlePaid(ctx, outcome, clientID)
	case chargeStatusFailed:
		s.publishFailed(ctx, req.BookingID, outcome.ID, outcome.FailureCode, outcome.FailureMessage)
		return nil, apperrors.PaymentFailed("Payment was declined", nil)
	default:
		// awaiting a redirect flow, the webhook settles it
		s.cfg.Log.Info("Charge pending processor confirmation",
			"booking_id", req.BookingID, "charge_id", outcome.ID, "status", outcome.Status)
	}

	return outcome, nil
}

func (s *paymentService) GetCharge(ctx context.Context, id string) (*ChargeOutcome, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Charge ID cannot be empty")
	}

	outcome, err := s.processor.RetrieveCharge(ctx, id)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve charge", err)
	}
	return outcome, nil
}

// HandleProcessorEvent settles a charge reported via webhook. The event is
// re-fetched from the processor by ID; a body that fails that lookup is
// not authentic and gets rejected.
func (s *paymentService) HandleProcessorEvent(ctx context.Context, eventID string) error {
	if eventID == "" {
		return apperrors.InvalidInput("event id is required")
	}

	event, err := s.processor.RetrieveEvent(ctx, eventID)
	if err != nil {
		s.cfg.Log.Warn("Webhook event verification failed", "event_id", eventID, "error", err)
		return apperrors.InvalidInput("Unknown processor event")
	}

	if event.Key != "charge.complete" {
		s.cfg.Log.Debug("Ignoring processor event", "event_id", eventID, "key", event.Key)
		return nil
	}
	if event.Charge == nil {
		s.cfg.Log.Warn("Processor event carries no charge", "event_id", eventID)
		return nil
	}

	outcome := event.Charge
	if outcome.BookingID == "" {
		s.cfg.Log.Warn("Charge has no booking reference", "charge_id", outcome.ID)
		return nil
	}

	if outcome.Status == chargeStatusSuccessful {
		clientID, _, _, err := s.lookupAnyBooking(ctx, outcome.BookingID)
		if err != nil {
			s.cfg.Log.Warn("Paid charge references unknown booking",
				"booking_id", outcome.BookingID, "charge_id", outcome.ID)
			clientID = ""
		}
		s.settlePaid(ctx, outcome, clientID)
		return nil
	}

	s.publishFailed(ctx, outcome.BookingID, outcome.ID, outcome.FailureCode, outcome.FailureMessage)
	return nil
}

// settlePaid publishes the paid event and records the charge on the
// client's payment history. The history write is best effort; losing it
// must not block the booking confirmation downstream.
func (s *paymentService) settlePaid(ctx context.Context, outcome *ChargeOutcome, clientID string) {
	s.producer.PublishEvent(ctx, outcome.BookingID, events.PaymentEvent{
		Type:       events.TypePaymentPaid,
		BookingID:  outcome.BookingID,
		ChargeID:   outcome.ID,
		Amount:     outcome.Amount,
		Currency:   outcome.Currency,
		OccurredAt: time.Now().UTC(),
	}, events.TypePaymentPaid)

	s.cfg.Log.Info("Payment settled",
		"booking_id", outcome.BookingID,
		"charge_id", outcome.ID,
		"amount", outcome.Amount,
	)

	if clientID == "" {
		return
	}
	record := model.PaymentRecord{
		Amount:    float64(outcome.Amount) / 100,
		Currency:  s.cfg.PaymentCurrency,
		Reference: outcome.ID,
		Purpose:   "booking",
		PaidAt:    time.Now().UTC(),
	}
	if err := s.billing.AppendPayment(ctx, clientID, record); err != nil {
		s.cfg.Log.Error("Failed to record payment history",
			"user_id", clientID, "charge_id", outcome.ID, "error", err)
	}
}

func (s *paymentService) publishFailed(ctx context.Context, bookingID, chargeID, code, message string) {
	s.producer.PublishEvent(ctx, bookingID, events.PaymentEvent{
		Type:           events.TypePaymentFailed,
		BookingID:      bookingID,
		ChargeID:       chargeID,
		FailureCode:    code,
		FailureMessage: message,
		OccurredAt:     time.Now().UTC(),
	}, events.TypePaymentFailed)
}

func (s *paymentService) resolveBooking(ctx context.Context, bookingID, kind string) (clientID string, totalPrice float64, status string, err error) {
	if kind == "stable" {
		booking, findErr := s.bookings.FindStableBooking(ctx, bookingID)
		if findErr != nil {
			return "", 0, "", mapBookingLookupError(findErr, bookingID)
		}
		return booking.ClientID, booking.TotalPrice, booking.Status, nil
	}

	booking, findErr := s.bookings.FindTrainerBooking(ctx, bookingID)
	if findErr != nil {
		return "", 0, "", mapBookingLookupError(findErr, bookingID)
	}
	return booking.ClientID, booking.TotalPrice, booking.Status, nil
}

func (s *paymentService) lookupAnyBooking(ctx context.Context, bookingID string) (clientID string, totalPrice float64, status string, err error) {
	clientID, totalPrice, status, err = s.resolveBooking(ctx, bookingID, "stable")
	if err == nil {
		return clientID, totalPrice, status, nil
	}
	return s.resolveBooking(ctx, bookingID, "trainer")
}

func mapBookingLookupError(err error, id string) error {
	if errors.Is(err, paymentserrors.ErrBookingNotFound) {
		return apperrors.NotFoundWithID("Booking", id)
	}
	if errors.Is(err, paymentserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid booking ID format")
	}
	return apperrors.Internal("Booking lookup failed", err)
}
