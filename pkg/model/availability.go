package model

import "time"

// BookingRef identifies the conflicting booking on a booked day.
type BookingRef struct {
	BookingID  string `json:"booking_id"`
	ClientID   string `json:"client_id"`
	Type       string `json:"type"`
	HorseCount int    `json:"horse_count"`
}

type DayAvailability struct {
	Date      string      `json:"date"`
	Available bool        `json:"available"`
	Booking   *BookingRef `json:"booking,omitempty"`
}

type AvailabilityReport struct {
	StableID      string            `json:"stable_id"`
	StartDate     string            `json:"start_date"`
	EndDate       string            `json:"end_date"`
	Days          []DayAvailability `json:"days"`
	TotalDays     int               `json:"total_days"`
	AvailableDays int               `json:"available_days"`
	BookedDays    int               `json:"booked_days"`
	BookedPct     float64           `json:"booked_pct"`
}

// EndOfDay returns the last instant of t's calendar day in UTC.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 23, 59, 59, 999000000, time.UTC)
}

// StartOfDay truncates t to midnight UTC.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
