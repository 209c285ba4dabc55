package model

import "time"

// ScheduleEntry is one weekly working window, e.g. Monday 09:00-17:00.
type ScheduleEntry struct {
	Day   string `json:"day" bson:"day" validate:"required,oneof=Sunday Monday Tuesday Wednesday Thursday Friday Saturday"`
	Start string `json:"start" bson:"start" validate:"required,day_time"`
	End   string `json:"end" bson:"end" validate:"required,day_time"`
}

type Trainer struct {
	ID                  string          `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	OwnerID             string          `json:"owner_id" bson:"owner_id" validate:"required,mongodb"`
	Title               string          `json:"title" bson:"title" validate:"required,min=2,max=100"`
	Details             string          `json:"details" bson:"details" validate:"omitempty,max=5000"`
	HourlyPrice         float64         `json:"hourly_price" bson:"hourly_price" validate:"min=0"`
	Experience          string          `json:"experience" bson:"experience" validate:"omitempty,max=2000"`
	Location            Location        `json:"location" bson:"location" validate:"required"`
	Images              []string        `json:"images,omitempty" bson:"images" validate:"omitempty,max=20,dive,url"`
	WeeklySchedule      []ScheduleEntry `json:"weekly_schedule" bson:"weekly_schedule" validate:"required,min=1,max=7,dive"`
	Disciplines         []AddonService  `json:"disciplines,omitempty" bson:"disciplines" validate:"omitempty,max=20,dive"`
	Trainings           []AddonService  `json:"trainings,omitempty" bson:"trainings" validate:"omitempty,max=20,dive"`
	CompetitionCoaching []AddonService  `json:"competition_coaching,omitempty" bson:"competition_coaching" validate:"omitempty,max=20,dive"`
	Status              string          `json:"status" bson:"status" validate:"required,oneof=active inactive"`
	Rating              float64         `json:"rating" bson:"rating" validate:"min=0,max=5"`
	NoofRatingCustomers int64           `json:"noof_rating_customers" bson:"noof_rating_customers" validate:"min=0"`
	CreatedAt           time.Time       `json:"created_at" bson:"created_at" validate:"omitempty"`
}

type TrainerUpdate struct {
	Title               string           `json:"title,omitempty" validate:"omitempty,min=2,max=100"`
	Details             *string          `json:"details,omitempty" validate:"omitempty,max=5000"`
	HourlyPrice         *float64         `json:"hourly_price,omitempty" validate:"omitempty,min=0"`
	Experience          *string          `json:"experience,omitempty" validate:"omitempty,max=2000"`
	Location            *Location        `json:"location,omitempty" validate:"omitempty"`
	Images              *[]string        `json:"images,omitempty" validate:"omitempty,max=20,dive,url"`
	WeeklySchedule      *[]ScheduleEntry `json:"weekly_schedule,omitempty" validate:"omitempty,min=1,max=7,dive"`
	Disciplines         *[]AddonService  `json:"disciplines,omitempty" validate:"omitempty,max=20,dive"`
	Trainings           *[]AddonService  `json:"trainings,omitempty" validate:"omitempty,max=20,dive"`
	CompetitionCoaching *[]AddonService  `json:"competition_coaching,omitempty" validate:"omitempty,max=20,dive"`
	Status              string           `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
}
