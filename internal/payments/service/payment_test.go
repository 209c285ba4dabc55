package service

import (
	"context"
	"errors"
	paymentserrors "paddock/internal/payments/errors"
	"paddock/pkg/config"
	apperrors "paddock/pkg/errors"
	"paddock/pkg/logger"
	"paddock/pkg/model"
	"testing"
)

type mockBookingLookup struct {
	findStableFunc  func(ctx context.Context, id string) (*model.StableBooking, error)
	findTrainerFunc func(ctx context.Context, id string) (*model.TrainerBooking, error)
}

func (m *mockBookingLookup) FindStableBooking(ctx context.Context, id string) (*model.StableBooking, error) {
	if m.findStableFunc != nil {
		return m.findStableFunc(ctx, id)
	}
	return nil, paymentserrors.ErrBookingNotFound
}

func (m *mockBookingLookup) FindTrainerBooking(ctx context.Context, id string) (*model.TrainerBooking, error) {
	if m.findTrainerFunc != nil {
		return m.findTrainerFunc(ctx, id)
	}
	return nil, paymentserrors.ErrBookingNotFound
}

type mockBilling struct {
	appended []model.PaymentRecord
	userIDs  []string
}

func (m *mockBilling) AppendPayment(ctx context.Context, userID string, record model.PaymentRecord) error {
	m.userIDs = append(m.userIDs, userID)
	m.appended = append(m.appended, record)
	return nil
}

type mockProcessor struct {
	createChargeFunc  func(ctx context.Context, amount int64, currency, cardToken string, metadata map[string]any) (*ChargeOutcome, error)
	retrieveEventFunc func(ctx context.Context, id string) (*ProcessorEvent, error)
}

func (m *mockProcessor) CreateCharge(ctx context.Context, amount int64, currency, cardToken string, metadata map[string]any) (*ChargeOutcome, error) {
	if m.createChargeFunc != nil {
		return m.createChargeFunc(ctx, amount, currency, cardToken, metadata)
	}
	return &ChargeOutcome{ID: "chrg_test_1", Status: chargeStatusSuccessful, Amount: amount, Currency: currency}, nil
}

func (m *mockProcessor) RetrieveCharge(ctx context.Context, id string) (*ChargeOutcome, error) {
	return &ChargeOutcome{ID: id, Status: chargeStatusSuccessful}, nil
}

func (m *mockProcessor) RetrieveEvent(ctx context.Context, id string) (*ProcessorEvent, error) {
	if m.retrieveEventFunc != nil {
		return m.retrieveEventFunc(ctx, id)
	}
	return nil, errors.New("no such event")
}

func newPaymentService(bookings *mockBookingLookup, billing *mockBilling, processor *mockProcessor) PaymentService {
	log := logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	})
	cfg := &config.Config{Log: log, PaymentCurrency: "eur"}
	return NewPaymentService(bookings, billing, processor, nil, cfg)
}

func pendingStableLookup(price float64) *mockBookingLookup {
	return &mockBookingLookup{
		findStableFunc: func(ctx context.Context, id string) (*model.StableBooking, error) {
			return &model.StableBooking{
				ID:         id,
				ClientID:   "507f1f77bcf86cd799439012",
				Status:     model.BookingStatusPending,
				TotalPrice: price,
			}, nil
		},
	}
}

func TestChargeBooking_AmountFromStoredTotal(t *testing.T) {
	var chargedAmount int64
	processor := &mockProcessor{
		createChargeFunc: func(ctx context.Context, amount int64, currency, cardToken string, metadata map[string]any) (*ChargeOutcome, error) {
			chargedAmount = amount
			return &ChargeOutcome{ID: "chrg_test_1", Status: chargeStatusSuccessful, Amount: amount, Currency: currency}, nil
		},
	}
	svc := newPaymentService(pendingStableLookup(180.5), &mockBilling{}, processor)

	outcome, err := svc.ChargeBooking(context.Background(), &ChargeBookingRequest{
		BookingID:   "507f1f77bcf86cd799439099",
		ListingKind: "stable",
		CardToken:   "tokn_test_1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if chargedAmount != 18050 {
		t.Errorf("expected 18050 minor units, got %d", chargedAmount)
	}
	if outcome.BookingID != "507f1f77bcf86cd799439099" {
		t.Errorf("expected booking reference on outcome, got %q", outcome.BookingID)
	}
}

func TestChargeBooking_RecordsClientPaymentHistory(t *testing.T) {
	billing := &mockBilling{}
	svc := newPaymentService(pendingStableLookup(100), billing, &mockProcessor{})

	_, err := svc.ChargeBooking(context.Background(), &ChargeBookingRequest{
		BookingID:   "507f1f77bcf86cd799439099",
		ListingKind: "stable",
		CardToken:   "tokn_test_1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(billing.appended) != 1 {
		t.Fatalf("expected one payment record, got %d", len(billing.appended))
	}
	record := billing.appended[0]
	if record.Purpose != "booking" || record.Amount != 100 {
		t.Errorf("unexpected record: %+v", record)
	}
	if billing.userIDs[0] != "507f1f77bcf86cd799439012" {
		t.Errorf("expected record on client, got %q", billing.userIDs[0])
	}
}

func TestChargeBooking_DeclinedCharge(t *testing.T) {
	processor := &mockProcessor{
		createChargeFunc: func(ctx context.Context, amount int64, currency, cardToken string, metadata map[string]any) (*ChargeOutcome, error) {
			return &ChargeOutcome{ID: "chrg_test_1", Status: chargeStatusFailed, FailureCode: "insufficient_fund"}, nil
		},
	}
	svc := newPaymentService(pendingStableLookup(100), &mockBilling{}, processor)

	_, err := svc.ChargeBooking(context.Background(), &ChargeBookingRequest{
		BookingID:   "507f1f77bcf86cd799439099",
		ListingKind: "stable",
		CardToken:   "tokn_test_1",
	})
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodePaymentFail {
		t.Errorf("expected payment failure, got %v", err)
	}
}

func TestChargeBooking_ConfirmedBookingConflicts(t *testing.T) {
	bookings := &mockBookingLookup{
		findStableFunc: func(ctx context.Context, id string) (*model.StableBooking, error) {
			return &model.StableBooking{ID: id, Status: model.BookingStatusConfirmed, TotalPrice: 100}, nil
		},
	}
	svc := newPaymentService(bookings, &mockBilling{}, &mockProcessor{})

	_, err := svc.ChargeBooking(context.Background(), &ChargeBookingRequest{
		BookingID:   "507f1f77bcf86cd799439099",
		ListingKind: "stable",
		CardToken:   "tokn_test_1",
	})
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeConflict {
		t.Errorf("expected conflict for paid booking, got %v", err)
	}
}

func TestChargeBooking_UnknownListingKind(t *testing.T) {
	svc := newPaymentService(&mockBookingLookup{}, &mockBilling{}, &mockProcessor{})

	_, err := svc.ChargeBooking(context.Background(), &ChargeBookingRequest{
		BookingID:   "507f1f77bcf86cd799439099",
		ListingKind: "karaoke",
		CardToken:   "tokn_test_1",
	})
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeInvalidInput {
		t.Errorf("expected invalid input, got %v", err)
	}
}

func TestHandleProcessorEvent_UnverifiableEventRejected(t *testing.T) {
	svc := newPaymentService(&mockBookingLookup{}, &mockBilling{}, &mockProcessor{})

	err := svc.HandleProcessorEvent(context.Background(), "evnt_bogus")
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeInvalidInput {
		t.Errorf("expected rejection of unverifiable event, got %v", err)
	}
}

func TestHandleProcessorEvent_PaidChargeRecordsHistory(t *testing.T) {
	billing := &mockBilling{}
	processor := &mockProcessor{
		retrieveEventFunc: func(ctx context.Context, id string) (*ProcessorEvent, error) {
			return &ProcessorEvent{
				Key: "charge.complete",
				Charge: &ChargeOutcome{
					ID:        "chrg_test_1",
					Status:    chargeStatusSuccessful,
					Amount:    10000,
					Currency:  "eur",
					BookingID: "507f1f77bcf86cd799439099",
				},
			}, nil
		},
	}
	svc := newPaymentService(pendingStableLookup(100), billing, processor)

	if err := svc.HandleProcessorEvent(context.Background(), "evnt_test_1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(billing.appended) != 1 {
		t.Fatalf("expected payment history entry, got %d", len(billing.appended))
	}
	if billing.appended[0].Reference != "chrg_test_1" {
		t.Errorf("unexpected reference %q", billing.appended[0].Reference)
	}
}

func TestHandleProcessorEvent_OtherEventKeysIgnored(t *testing.T) {
	billing := &mockBilling{}
	processor := &mockProcessor{
		retrieveEventFunc: func(ctx context.Context, id string) (*ProcessorEvent, error) {
			return &ProcessorEvent{Key: "customer.update"}, nil
		},
	}
	svc := newPaymentService(&mockBookingLookup{}, billing, processor)

	if err := svc.HandleProcessorEvent(context.Background(), "evnt_test_2"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if len(billing.appended) != 0 {
		t.Errorf("expected no history writes, got %d", len(billing.appended))
	}
}
