package service

import (
	"context"
	"errors"
	"fmt"
	stableserrors "paddock/internal/stables/errors"
	"paddock/pkg/config"
	apperrors "paddock/pkg/errors"
	"paddock/pkg/model"
	"time"
)

const dateLayout = "2006-01-02"

// AvailabilityQuery carries the parsed query parameters of the
// availability endpoint.
type AvailabilityQuery struct {
	StableID  string
	StartDate time.Time
	EndDate   time.Time
}

// Availability builds a day-by-day occupancy report for a stable over the
// requested date range. A day counts as booked when any non-cancelled
// booking covers it; bookings without an end date occupy their start day
// only.
func (s *stableService) Availability(ctx context.Context, query *AvailabilityQuery) (*model.AvailabilityReport, error) {
	if query.StableID == "" {
		return nil, apperrors.InvalidInput("stable_id is required")
	}

	start := model.StartOfDay(query.StartDate)
	end := model.StartOfDay(query.EndDate)

	if !end.After(start) {
		return nil, apperrors.InvalidInput("end_date must be after start_date")
	}
	totalDays := int(end.Sub(start).Hours()/24) + 1
	if totalDays > config.MaxAvailabilityRangeDays {
		return nil, apperrors.InvalidInput(
			fmt.Sprintf("Date range exceeds %d days", config.MaxAvailabilityRangeDays))
	}

	if _, err := s.repo.FindByID(ctx, query.StableID); err != nil {
		if errors.Is(err, stableserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Stable", query.StableID)
		}
		if errors.Is(err, stableserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid stable ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve stable", err)
	}

	bookings, err := s.bookingRepo.FindOverlapping(ctx, query.StableID, start, model.EndOfDay(end))
	if err != nil {
		s.cfg.Log.Error("Failed to load bookings for availability report",
			"stable_id", query.StableID, "error", err)
		return nil, apperrors.Internal("Failed to load bookings", err)
	}

	report := &model.AvailabilityReport{
		StableID:  query.StableID,
		StartDate: start.Format(dateLayout),
		EndDate:   end.Format(dateLayout),
		Days:      make([]model.DayAvailability, 0, totalDays),
		TotalDays: totalDays,
	}

	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		entry := model.DayAvailability{
			Date:      day.Format(dateLayout),
			Available: true,
		}
		if b := coveringBooking(bookings, day); b != nil {
			entry.Available = false
			entry.Booking = &model.BookingRef{
				BookingID:  b.ID,
				ClientID:   b.ClientID,
				Type:       b.Type,
				HorseCount: b.HorseCount,
			}
		}
		report.Days = append(report.Days, entry)
	}

	for _, d := range report.Days {
		if d.Available {
			report.AvailableDays++
		} else {
			report.BookedDays++
		}
	}
	if report.TotalDays > 0 {
		report.BookedPct = float64(report.BookedDays) / float64(report.TotalDays) * 100
	}

	s.cfg.Log.Debug("Availability report computed",
		"stable_id", query.StableID,
		"total_days", report.TotalDays,
		"booked_days", report.BookedDays,
	)
	return report, nil
}

// coveringBooking returns the first booking occupying the given day. The
// pre-filter keeps the candidate list short, so a linear scan per day is
// fine.
func coveringBooking(bookings []*model.StableBooking, day time.Time) *model.StableBooking {
	for _, b := range bookings {
		from := model.StartOfDay(b.StartDate)
		to := model.StartOfDay(b.EffectiveEnd())
		if !day.Before(from) && !day.After(to) {
			return b
		}
	}
	return nil
}
