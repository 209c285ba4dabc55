package model

import "time"

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

const (
	RateUnitDay   = "day"
	RateUnitWeek  = "week"
	RateUnitMonth = "month"
)

type Location struct {
	Address   string  `json:"address" bson:"address" validate:"required,min=2,max=200"`
	City      string  `json:"city" bson:"city" validate:"required,min=2,max=50"`
	Latitude  float64 `json:"latitude" bson:"latitude" validate:"min=-90,max=90"`
	Longitude float64 `json:"longitude" bson:"longitude" validate:"min=-180,max=180"`
}

// PriceRate is one billing entry, e.g. 50 per day or 300 per week.
type PriceRate struct {
	Amount float64 `json:"amount" bson:"amount" validate:"min=0"`
	Unit   string  `json:"unit" bson:"unit" validate:"required,oneof=day week month"`
}

// AddonService is an optional per-day line item a booking may select.
type AddonService struct {
	Name        string  `json:"name" bson:"name" validate:"required,min=2,max=100"`
	PricePerDay float64 `json:"price_per_day" bson:"price_per_day" validate:"min=0"`
}

type AvailabilitySlot struct {
	Date  time.Time `json:"date" bson:"date" validate:"required"`
	Start string    `json:"start" bson:"start" validate:"required,day_time"`
	End   string    `json:"end" bson:"end" validate:"required,day_time"`
}

type Stable struct {
	ID                 string             `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	OwnerID            string             `json:"owner_id" bson:"owner_id" validate:"required,mongodb"`
	Title              string             `json:"title" bson:"title" validate:"required,min=2,max=100"`
	Details            string             `json:"details" bson:"details" validate:"omitempty,max=5000"`
	Location           Location           `json:"location" bson:"location" validate:"required"`
	Images             []string           `json:"images,omitempty" bson:"images" validate:"omitempty,max=20,dive,url"`
	Rates              []PriceRate        `json:"rates" bson:"rates" validate:"required,min=1,max=3,dive"`
	Services           []AddonService     `json:"services,omitempty" bson:"services" validate:"omitempty,max=20,dive"`
	Slots              []AvailabilitySlot `json:"slots,omitempty" bson:"slots" validate:"omitempty,max=100,dive"`
	Status             string             `json:"status" bson:"status" validate:"required,oneof=active inactive"`
	Capacity           int                `json:"capacity" bson:"capacity" validate:"required,min=1,max=500"`
	Rating             float64            `json:"rating" bson:"rating" validate:"min=0,max=5"`
	NoofRatingCustomers int64             `json:"noof_rating_customers" bson:"noof_rating_customers" validate:"min=0"`
	CreatedAt          time.Time          `json:"created_at" bson:"created_at" validate:"omitempty"`
}

type StableUpdate struct {
	Title    string              `json:"title,omitempty" validate:"omitempty,min=2,max=100"`
	Details  *string             `json:"details,omitempty" validate:"omitempty,max=5000"`
	Location *Location           `json:"location,omitempty" validate:"omitempty"`
	Images   *[]string           `json:"images,omitempty" validate:"omitempty,max=20,dive,url"`
	Rates    *[]PriceRate        `json:"rates,omitempty" validate:"omitempty,min=1,max=3,dive"`
	Services *[]AddonService     `json:"services,omitempty" validate:"omitempty,max=20,dive"`
	Slots    *[]AvailabilitySlot `json:"slots,omitempty" validate:"omitempty,max=100,dive"`
	Status   string              `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
	Capacity *int                `json:"capacity,omitempty" validate:"omitempty,min=1,max=500"`
}

// RateFor returns the rate entry for the given unit, if the stable carries one.
func (s *Stable) RateFor(unit string) (PriceRate, bool) {
	for _, r := range s.Rates {
		if r.Unit == unit {
			return r, true
		}
	}
	return PriceRate{}, false
}
