package service

import (
	"paddock/pkg/config"
	apperrors "paddock/pkg/errors"
	"paddock/pkg/model"
	"paddock/pkg/sanitizer"
	"strconv"
	"strings"
	"time"
)

// occupiedDays counts calendar days covered by a booking, inclusive of
// both ends. A nil end date means a single day.
func occupiedDays(start time.Time, end *time.Time) int {
	from := model.StartOfDay(start)
	to := from
	if end != nil {
		to = model.StartOfDay(*end)
	}
	if to.Before(from) {
		return 0
	}
	return int(to.Sub(from).Hours()/24) + 1
}

// billingUnits converts occupied days into the listing's billing unit.
// Week bookings round up: 8 days bill as 2 weeks.
func billingUnits(bookingType string, days int) int {
	if bookingType == model.BookingTypeWeek {
		return (days + config.DaysPerWeek - 1) / config.DaysPerWeek
	}
	return days
}

// resolveSelectedServices matches the client's selections against the
// offerings of the listing and replaces client-sent prices with the
// listed ones. Unknown selections are rejected.
func resolveSelectedServices(selected []model.SelectedService, offered []model.AddonService) ([]model.SelectedService, error) {
	if len(selected) == 0 {
		return nil, nil
	}

	priceByName := make(map[string]float64, len(offered))
	for _, svc := range offered {
		priceByName[sanitizer.SanitizeServiceName(svc.Name)] = svc.PricePerDay
	}

	resolved := make([]model.SelectedService, 0, len(selected))
	var unknown []string
	for _, sel := range selected {
		name := sanitizer.SanitizeServiceName(sel.Name)
		price, ok := priceByName[name]
		if !ok {
			unknown = append(unknown, sel.Name)
			continue
		}
		resolved = append(resolved, model.SelectedService{Name: name, PricePerDay: price})
	}

	if len(unknown) > 0 {
		return nil, apperrors.Validation("Selected services not offered by this listing",
			map[string]any{"services": strings.Join(unknown, ", ")})
	}
	return resolved, nil
}

// stableBookingPrice recomputes base and total price from the stable's
// rate table. Client-sent figures are never trusted.
func stableBookingPrice(stable *model.Stable, booking *model.StableBooking) (base, total float64, err error) {
	days := occupiedDays(booking.StartDate, booking.EndDate)
	if days == 0 {
		return 0, 0, apperrors.InvalidInput("end_date must not be before start_date")
	}

	rate, ok := stable.RateFor(booking.Type)
	if !ok {
		return 0, 0, apperrors.Validation("Stable has no rate for the requested booking type",
			map[string]any{"type": booking.Type})
	}

	base = rate.Amount * float64(billingUnits(booking.Type, days))
	total = base
	for _, svc := range booking.Services {
		total += svc.PricePerDay * float64(days)
	}
	return base, total, nil
}

// trainerBookingPrice derives the base price from the trainer's weekly
// schedule: every occupied day contributes its scheduled hours times the
// hourly rate. Days the trainer does not work contribute nothing.
func trainerBookingPrice(trainer *model.Trainer, booking *model.TrainerBooking) (base, total float64, err error) {
	days := occupiedDays(booking.StartDate, booking.EndDate)
	if days == 0 {
		return 0, 0, apperrors.InvalidInput("end_date must not be before start_date")
	}

	hoursByDay := make(map[string]float64, len(trainer.WeeklySchedule))
	for _, entry := range trainer.WeeklySchedule {
		hoursByDay[entry.Day] = scheduleHours(entry)
	}

	from := model.StartOfDay(booking.StartDate)
	for i := 0; i < days; i++ {
		weekday := from.AddDate(0, 0, i).Weekday().String()
		base += hoursByDay[weekday] * trainer.HourlyPrice
	}

	total = base
	for _, group := range [][]model.SelectedService{booking.Disciplines, booking.Trainings, booking.Coaching} {
		for _, svc := range group {
			total += svc.PricePerDay * float64(days)
		}
	}
	return base, total, nil
}

// scheduleHours measures one weekly window in fractional hours. Windows
// are validated as HH:MM before they reach here; a malformed one counts
// as zero.
func scheduleHours(entry model.ScheduleEntry) float64 {
	start, okStart := parseWallClock(entry.Start)
	end, okEnd := parseWallClock(entry.End)
	if !okStart || !okEnd || end <= start {
		return 0
	}
	return (end - start).Hours()
}

func parseWallClock(s string) (time.Duration, bool) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	h, errH := strconv.Atoi(parts[0])
	m, errM := strconv.Atoi(parts[1])
	if errH != nil || errM != nil {
		return 0, false
	}
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute, true
}
