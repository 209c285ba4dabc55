package service

import (
	"context"
	"encoding/json"
	bookingserrors "paddock/internal/bookings/errors"
	"paddock/pkg/events"
	"paddock/pkg/model"
	"testing"
	"time"

	mongotx "paddock/pkg/db/mongo"

	"go.mongodb.org/mongo-driver/mongo"
)

type mockTrainerBookingRepo struct {
	updateStatusFunc func(ctx context.Context, id string, status string) error
}

func (m *mockTrainerBookingRepo) Create(ctx context.Context, booking *model.TrainerBooking) error {
	return nil
}

func (m *mockTrainerBookingRepo) FindByID(ctx context.Context, id string) (*model.TrainerBooking, error) {
	return nil, bookingserrors.ErrNotFound
}

func (m *mockTrainerBookingRepo) FindAll(ctx context.Context, limit int, offset int64) ([]*model.TrainerBooking, error) {
	return []*model.TrainerBooking{}, nil
}

func (m *mockTrainerBookingRepo) FindByClient(ctx context.Context, clientID string, limit int, offset int64) ([]*model.TrainerBooking, error) {
	return []*model.TrainerBooking{}, nil
}

func (m *mockTrainerBookingRepo) CountByClient(ctx context.Context, clientID string) (int64, error) {
	return 0, nil
}

func (m *mockTrainerBookingRepo) FindOverlapping(ctx context.Context, trainerID string, from, to time.Time) ([]*model.TrainerBooking, error) {
	return []*model.TrainerBooking{}, nil
}

func (m *mockTrainerBookingRepo) Update(ctx context.Context, id string, booking *model.TrainerBooking) (*mongo.UpdateResult, error) {
	return &mongo.UpdateResult{MatchedCount: 1}, nil
}

func (m *mockTrainerBookingRepo) UpdateStatus(ctx context.Context, id string, status string) error {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, status)
	}
	return nil
}

func (m *mockTrainerBookingRepo) Delete(ctx context.Context, id string) error { return nil }

func (m *mockTrainerBookingRepo) Count(ctx context.Context) (int64, error) { return 0, nil }

func (m *mockTrainerBookingRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(mongo.NewSessionContext(ctx, nil))
}

func paymentMessage(t *testing.T, event events.PaymentEvent) events.Message {
	t.Helper()
	value, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("failed to marshal event: %v", err)
	}
	return events.Message{Key: event.BookingID, Value: value}
}

func TestHandle_PaidConfirmsStableBooking(t *testing.T) {
	var gotID, gotStatus string
	stableRepo := &mockStableBookingRepo{
		updateStatusFunc: func(ctx context.Context, id string, status string) error {
			gotID, gotStatus = id, status
			return nil
		},
	}
	handler := NewPaymentEventHandler(stableRepo, &mockTrainerBookingRepo{}, nil, testBookingConfig())

	msg := paymentMessage(t, events.PaymentEvent{
		Type:      events.TypePaymentPaid,
		BookingID: "b-1",
		ChargeID:  "chrg_test_1",
		Amount:    15000,
		Currency:  "thb",
	})
	if err := handler.Handle(context.Background(), msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotID != "b-1" || gotStatus != model.BookingStatusConfirmed {
		t.Errorf("expected b-1 confirmed, got %q %q", gotID, gotStatus)
	}
}

func TestHandle_PaidFallsBackToTrainerBooking(t *testing.T) {
	stableRepo := &mockStableBookingRepo{
		updateStatusFunc: func(ctx context.Context, id string, status string) error {
			return bookingserrors.ErrNotFound
		},
	}
	var trainerStatus string
	trainerRepo := &mockTrainerBookingRepo{
		updateStatusFunc: func(ctx context.Context, id string, status string) error {
			trainerStatus = status
			return nil
		},
	}
	handler := NewPaymentEventHandler(stableRepo, trainerRepo, nil, testBookingConfig())

	msg := paymentMessage(t, events.PaymentEvent{
		Type:      events.TypePaymentPaid,
		BookingID: "b-2",
	})
	if err := handler.Handle(context.Background(), msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if trainerStatus != model.BookingStatusConfirmed {
		t.Errorf("expected trainer booking confirmed, got %q", trainerStatus)
	}
}

func TestHandle_FailedCancelsBooking(t *testing.T) {
	var gotStatus string
	stableRepo := &mockStableBookingRepo{
		updateStatusFunc: func(ctx context.Context, id string, status string) error {
			gotStatus = status
			return nil
		},
	}
	handler := NewPaymentEventHandler(stableRepo, &mockTrainerBookingRepo{}, nil, testBookingConfig())

	msg := paymentMessage(t, events.PaymentEvent{
		Type:           events.TypePaymentFailed,
		BookingID:      "b-3",
		FailureCode:    "insufficient_fund",
		FailureMessage: "insufficient funds in the account",
	})
	if err := handler.Handle(context.Background(), msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotStatus != model.BookingStatusCancelled {
		t.Errorf("expected cancelled, got %q", gotStatus)
	}
}

func TestHandle_UnknownBookingCommitted(t *testing.T) {
	stableRepo := &mockStableBookingRepo{
		updateStatusFunc: func(ctx context.Context, id string, status string) error {
			return bookingserrors.ErrNotFound
		},
	}
	trainerRepo := &mockTrainerBookingRepo{
		updateStatusFunc: func(ctx context.Context, id string, status string) error {
			return bookingserrors.ErrNotFound
		},
	}
	handler := NewPaymentEventHandler(stableRepo, trainerRepo, nil, testBookingConfig())

	msg := paymentMessage(t, events.PaymentEvent{
		Type:      events.TypePaymentPaid,
		BookingID: "gone",
	})
	if err := handler.Handle(context.Background(), msg); err != nil {
		t.Errorf("expected unknown booking to be committed, got %v", err)
	}
}

func TestHandle_MalformedPayloadCommitted(t *testing.T) {
	handler := NewPaymentEventHandler(&mockStableBookingRepo{}, &mockTrainerBookingRepo{}, nil, testBookingConfig())

	msg := events.Message{Key: "junk", Value: []byte("{not json")}
	if err := handler.Handle(context.Background(), msg); err != nil {
		t.Errorf("expected malformed payload to be committed, got %v", err)
	}
}

func TestHandle_UnknownEventTypeIgnored(t *testing.T) {
	called := false
	stableRepo := &mockStableBookingRepo{
		updateStatusFunc: func(ctx context.Context, id string, status string) error {
			called = true
			return nil
		},
	}
	handler := NewPaymentEventHandler(stableRepo, &mockTrainerBookingRepo{}, nil, testBookingConfig())

	msg := paymentMessage(t, events.PaymentEvent{Type: "payment.refunded", BookingID: "b-4"})
	if err := handler.Handle(context.Background(), msg); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if called {
		t.Error("expected unrelated event type to leave bookings untouched")
	}
}
