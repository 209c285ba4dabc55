package model

import "time"

// SubscriptionPlan is a purchasable plan. Features maps a feature name to
// its allowance, e.g. {"listings": 10, "images_per_listing": 5}.
type SubscriptionPlan struct {
	ID           string         `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name         string         `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Price        float64        `json:"price" bson:"price" validate:"min=0"`
	DiscountPct  float64        `json:"discount_pct" bson:"discount_pct" validate:"min=0,max=100"`
	DurationDays int            `json:"duration_days" bson:"duration_days" validate:"required,min=1,max=3650"`
	Features     map[string]int `json:"features,omitempty" bson:"features" validate:"omitempty"`
	CreatedAt    time.Time      `json:"created_at" bson:"created_at" validate:"omitempty"`
}

type SubscriptionPlanUpdate struct {
	Name         string          `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Price        *float64        `json:"price,omitempty" validate:"omitempty,min=0"`
	DiscountPct  *float64        `json:"discount_pct,omitempty" validate:"omitempty,min=0,max=100"`
	DurationDays *int            `json:"duration_days,omitempty" validate:"omitempty,min=1,max=3650"`
	Features     *map[string]int `json:"features,omitempty" validate:"omitempty"`
}

// EffectivePrice applies the plan discount.
func (p *SubscriptionPlan) EffectivePrice() float64 {
	return p.Price * (1 - p.DiscountPct/100)
}
