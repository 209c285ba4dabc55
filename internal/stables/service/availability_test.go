package service

import (
	"context"
	"paddock/pkg/model"
	"testing"
	"time"

	apperrors "paddock/pkg/errors"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func availabilityService(bookings []*model.StableBooking) *stableService {
	repo := &mockStableRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Stable, error) {
			return validStable(), nil
		},
	}
	bookingRepo := &mockBookingLookupRepository{
		findOverlappingFunc: func(ctx context.Context, stableID string, from, to time.Time) ([]*model.StableBooking, error) {
			return bookings, nil
		},
	}
	return newTestService(repo, bookingRepo, &mockRatingEventRepository{})
}

func TestAvailability_EmptyRangeAllFree(t *testing.T) {
	svc := availabilityService(nil)

	report, err := svc.Availability(context.Background(), &AvailabilityQuery{
		StableID:  "507f1f77bcf86cd799439011",
		StartDate: day("2026-03-01"),
		EndDate:   day("2026-03-07"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.TotalDays != 7 {
		t.Errorf("expected 7 total days, got %d", report.TotalDays)
	}
	if report.AvailableDays != 7 || report.BookedDays != 0 {
		t.Errorf("expected all days free, got available=%d booked=%d", report.AvailableDays, report.BookedDays)
	}
	if report.BookedPct != 0 {
		t.Errorf("expected 0%% booked, got %v", report.BookedPct)
	}
}

func TestAvailability_SingleDayBookingOccupiesStartDayOnly(t *testing.T) {
	svc := availabilityService([]*model.StableBooking{
		{
			ID:         "b1",
			ClientID:   "507f1f77bcf86cd799439012",
			Type:       model.BookingTypeDay,
			StartDate:  day("2026-03-03"),
			HorseCount: 2,
			Status:     model.BookingStatusConfirmed,
		},
	})

	report, err := svc.Availability(context.Background(), &AvailabilityQuery{
		StableID:  "507f1f77bcf86cd799439011",
		StartDate: day("2026-03-01"),
		EndDate:   day("2026-03-05"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.BookedDays != 1 {
		t.Fatalf("expected exactly 1 booked day, got %d", report.BookedDays)
	}
	for _, d := range report.Days {
		booked := d.Date == "2026-03-03"
		if d.Available == booked {
			t.Errorf("day %s: expected available=%v, got %v", d.Date, !booked, d.Available)
		}
		if booked && (d.Booking == nil || d.Booking.BookingID != "b1") {
			t.Errorf("day %s: expected booking ref b1, got %+v", d.Date, d.Booking)
		}
	}
}

func TestAvailability_RangeBookingCoversSpan(t *testing.T) {
	end := day("2026-03-10")
	svc := availabilityService([]*model.StableBooking{
		{
			ID:        "b2",
			ClientID:  "507f1f77bcf86cd799439012",
			Type:      model.BookingTypeWeek,
			StartDate: day("2026-03-04"),
			EndDate:   &end,
			Status:    model.BookingStatusConfirmed,
		},
	})

	report, err := svc.Availability(context.Background(), &AvailabilityQuery{
		StableID:  "507f1f77bcf86cd799439011",
		StartDate: day("2026-03-01"),
		EndDate:   day("2026-03-14"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.BookedDays != 7 {
		t.Errorf("expected 7 booked days, got %d", report.BookedDays)
	}
	if report.AvailableDays+report.BookedDays != report.TotalDays {
		t.Errorf("day counts do not add up: %d + %d != %d",
			report.AvailableDays, report.BookedDays, report.TotalDays)
	}
	if report.BookedPct != 50 {
		t.Errorf("expected 50%% booked, got %v", report.BookedPct)
	}
}

func TestAvailability_ReversedRangeRejected(t *testing.T) {
	svc := availabilityService(nil)

	_, err := svc.Availability(context.Background(), &AvailabilityQuery{
		StableID:  "507f1f77bcf86cd799439011",
		StartDate: day("2026-03-10"),
		EndDate:   day("2026-03-01"),
	})
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeInvalidInput {
		t.Errorf("expected invalid input error, got %v", err)
	}
}

func TestAvailability_RangeCapEnforced(t *testing.T) {
	svc := availabilityService(nil)

	_, err := svc.Availability(context.Background(), &AvailabilityQuery{
		StableID:  "507f1f77bcf86cd799439011",
		StartDate: day("2026-01-01"),
		EndDate:   day("2028-01-01"),
	})
	if err == nil {
		t.Fatal("expected error for oversized range")
	}
}

func TestAvailability_UnknownStable(t *testing.T) {
	svc := availabilityService(nil)
	// Default mock behavior returns ErrNotFound from FindByID.
	svc.repo = &mockStableRepository{}

	_, err := svc.Availability(context.Background(), &AvailabilityQuery{
		StableID:  "507f1f77bcf86cd799439099",
		StartDate: day("2026-03-01"),
		EndDate:   day("2026-03-02"),
	})
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeNotFound {
		t.Errorf("expected not found error, got %v", err)
	}
}

func TestAvailability_EqualDatesRejected(t *testing.T) {
	svc := availabilityService(nil)

	report, err := svc.Availability(context.Background(), &AvailabilityQuery{
		StableID:  "507f1f77bcf86cd799439011",
		StartDate: day("2026-03-01"),
		EndDate:   day("2026-03-01"),
	})
	if report != nil {
		t.Fatalf("expected no report for equal dates, got %+v", report)
	}
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeInvalidInput {
		t.Errorf("expected invalid input for equal dates, got %v", err)
	}
}
