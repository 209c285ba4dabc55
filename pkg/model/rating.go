package model

import "time"

const (
	RatingEntityStable  = "stable"
	RatingEntityTrainer = "trainer"
)

// RatingSubmission is the request body for rating endpoints.
type RatingSubmission struct {
	EntityID string   `json:"entity_id" bson:"-" validate:"required,mongodb"`
	UserID   string   `json:"user_id" bson:"-" validate:"required,mongodb"`
	Score    *float64 `json:"score" bson:"-" validate:"required,min=0,max=5"`
}

// RatingEvent is the persisted audit record of one submission. The running
// mean on the rated entity stays the read-path source of truth; events make
// the mean recomputable after the fact.
type RatingEvent struct {
	ID         string    `json:"id,omitempty" bson:"_id,omitempty"`
	EntityKind string    `json:"entity_kind" bson:"entity_kind" validate:"required,oneof=stable trainer"`
	EntityID   string    `json:"entity_id" bson:"entity_id" validate:"required,mongodb"`
	UserID     string    `json:"user_id" bson:"user_id" validate:"required,mongodb"`
	Score      float64   `json:"score" bson:"score" validate:"min=0,max=5"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}

// AccumulateRating folds one new score into a running mean.
func AccumulateRating(oldMean float64, oldCount int64, score float64) (float64, int64) {
	newCount := oldCount + 1
	return (oldMean*float64(oldCount) + score) / float64(newCount), newCount
}
