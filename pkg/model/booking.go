package model

import "time"

const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
)

const (
	BookingTypeDay  = "day"
	BookingTypeWeek = "week"
)

// SelectedService is a per-day add-on chosen on a booking. The name must
// match one offered by the stable or trainer; the price is resolved
// server side from the listing, never taken from the client.
type SelectedService struct {
	Name        string  `json:"name" bson:"name" validate:"required,min=2,max=100"`
	PricePerDay float64 `json:"price_per_day" bson:"price_per_day" validate:"min=0"`
}

type StableBooking struct {
	ID         string            `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	OwnerID    string            `json:"owner_id" bson:"owner_id" validate:"omitempty,mongodb"`
	ClientID   string            `json:"client_id" bson:"client_id" validate:"required,mongodb"`
	StableID   string            `json:"stable_id" bson:"stable_id" validate:"required,mongodb"`
	Type       string            `json:"type" bson:"type" validate:"required,oneof=day week"`
	StartDate  time.Time         `json:"start_date" bson:"start_date" validate:"required"`
	EndDate    *time.Time        `json:"end_date,omitempty" bson:"end_date,omitempty" validate:"omitempty"`
	HorseCount int               `json:"horse_count" bson:"horse_count" validate:"required,min=1,max=100"`
	BasePrice  float64           `json:"base_price" bson:"base_price" validate:"min=0"`
	Services   []SelectedService `json:"services,omitempty" bson:"services" validate:"omitempty,max=20,dive"`
	TotalPrice float64           `json:"total_price" bson:"total_price" validate:"min=0"`
	Status     string            `json:"status" bson:"status" validate:"required,oneof=pending confirmed cancelled"`
	CreatedAt  time.Time         `json:"created_at" bson:"created_at" validate:"omitempty"`
}

type StableBookingUpdate struct {
	Type       string             `json:"type,omitempty" validate:"omitempty,oneof=day week"`
	StartDate  *time.Time         `json:"start_date,omitempty" validate:"omitempty"`
	EndDate    *time.Time         `json:"end_date,omitempty" validate:"omitempty"`
	HorseCount *int               `json:"horse_count,omitempty" validate:"omitempty,min=1,max=100"`
	Services   *[]SelectedService `json:"services,omitempty" validate:"omitempty,max=20,dive"`
	Status     string             `json:"status,omitempty" validate:"omitempty,oneof=pending confirmed cancelled"`
}

type TrainerBooking struct {
	ID          string            `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	OwnerID     string            `json:"owner_id" bson:"owner_id" validate:"omitempty,mongodb"`
	ClientID    string            `json:"client_id" bson:"client_id" validate:"required,mongodb"`
	TrainerID   string            `json:"trainer_id" bson:"trainer_id" validate:"required,mongodb"`
	Type        string            `json:"type" bson:"type" validate:"required,oneof=day week"`
	StartDate   time.Time         `json:"start_date" bson:"start_date" validate:"required"`
	EndDate     *time.Time        `json:"end_date,omitempty" bson:"end_date,omitempty" validate:"omitempty"`
	HorseCount  int               `json:"horse_count" bson:"horse_count" validate:"required,min=1,max=100"`
	BasePrice   float64           `json:"base_price" bson:"base_price" validate:"min=0"`
	Disciplines []SelectedService `json:"disciplines,omitempty" bson:"disciplines" validate:"omitempty,max=20,dive"`
	Trainings   []SelectedService `json:"trainings,omitempty" bson:"trainings" validate:"omitempty,max=20,dive"`
	Coaching    []SelectedService `json:"coaching,omitempty" bson:"coaching" validate:"omitempty,max=20,dive"`
	TotalPrice  float64           `json:"total_price" bson:"total_price" validate:"min=0"`
	Status      string            `json:"status" bson:"status" validate:"required,oneof=pending confirmed cancelled"`
	CreatedAt   time.Time         `json:"created_at" bson:"created_at" validate:"omitempty"`
}

type TrainerBookingUpdate struct {
	Type        string             `json:"type,omitempty" validate:"omitempty,oneof=day week"`
	StartDate   *time.Time         `json:"start_date,omitempty" validate:"omitempty"`
	EndDate     *time.Time         `json:"end_date,omitempty" validate:"omitempty"`
	HorseCount  *int               `json:"horse_count,omitempty" validate:"omitempty,min=1,max=100"`
	Disciplines *[]SelectedService `json:"disciplines,omitempty" validate:"omitempty,max=20,dive"`
	Trainings   *[]SelectedService `json:"trainings,omitempty" validate:"omitempty,max=20,dive"`
	Coaching    *[]SelectedService `json:"coaching,omitempty" validate:"omitempty,max=20,dive"`
	Status      string             `json:"status,omitempty" validate:"omitempty,oneof=pending confirmed cancelled"`
}

// EffectiveEnd resolves the booking's last occupied instant. A booking
// without an end date occupies exactly its start day.
func (b *StableBooking) EffectiveEnd() time.Time {
	if b.EndDate != nil {
		return *b.EndDate
	}
	return b.StartDate
}

func (b *TrainerBooking) EffectiveEnd() time.Time {
	if b.EndDate != nil {
		return *b.EndDate
	}
	return b.StartDate
}
