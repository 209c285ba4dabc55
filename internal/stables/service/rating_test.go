package service

import (
	"context"
	"math"
	"paddock/pkg/model"
	"testing"

	apperrors "paddock/pkg/errors"

	"go.mongodb.org/mongo-driver/mongo"
)

func ratingSubmission(score float64) *model.RatingSubmission {
	return &model.RatingSubmission{
		EntityID: "507f1f77bcf86cd799439011",
		UserID:   "507f1f77bcf86cd799439012",
		Score:    &score,
	}
}

func TestSubmitRating_FirstRating(t *testing.T) {
	stable := validStable()
	stable.ID = "507f1f77bcf86cd799439011"

	var appliedMean float64
	var appliedCount int64
	repo := &mockStableRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Stable, error) {
			return stable, nil
		},
		applyRatingFunc: func(ctx context.Context, id string, mean float64, count int64) error {
			appliedMean = mean
			appliedCount = count
			return nil
		},
	}
	svc := newTestService(repo, &mockBookingLookupRepository{}, &mockRatingEventRepository{})

	rated, err := svc.SubmitRating(context.Background(), ratingSubmission(4))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if appliedMean != 4 || appliedCount != 1 {
		t.Errorf("expected mean=4 count=1, got mean=%v count=%d", appliedMean, appliedCount)
	}
	if rated.Rating != 4 || rated.NoofRatingCustomers != 1 {
		t.Errorf("returned stable not updated: rating=%v count=%d", rated.Rating, rated.NoofRatingCustomers)
	}
}

func TestSubmitRating_AccumulatesMean(t *testing.T) {
	stable := validStable()
	stable.ID = "507f1f77bcf86cd799439011"
	stable.Rating = 4
	stable.NoofRatingCustomers = 1

	var appliedMean float64
	repo := &mockStableRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Stable, error) {
			return stable, nil
		},
		applyRatingFunc: func(ctx context.Context, id string, mean float64, count int64) error {
			appliedMean = mean
			return nil
		},
	}
	svc := newTestService(repo, &mockBookingLookupRepository{}, &mockRatingEventRepository{})

	if _, err := svc.SubmitRating(context.Background(), ratingSubmission(5)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if math.Abs(appliedMean-4.5) > 1e-9 {
		t.Errorf("expected mean 4.5 after scores 4 and 5, got %v", appliedMean)
	}
}

func TestSubmitRating_OutOfRangeRejected(t *testing.T) {
	svc := newTestService(&mockStableRepository{}, &mockBookingLookupRepository{}, &mockRatingEventRepository{})

	for _, score := range []float64{-0.1, 5.1} {
		_, err := svc.SubmitRating(context.Background(), ratingSubmission(score))
		appErr := apperrors.AsAppError(err)
		if appErr == nil || appErr.Code != apperrors.CodeValidation {
			t.Errorf("score %v: expected validation error, got %v", score, err)
		}
	}
}

func TestSubmitRating_MissingScoreRejected(t *testing.T) {
	svc := newTestService(&mockStableRepository{}, &mockBookingLookupRepository{}, &mockRatingEventRepository{})

	_, err := svc.SubmitRating(context.Background(), &model.RatingSubmission{
		EntityID: "507f1f77bcf86cd799439011",
		UserID:   "507f1f77bcf86cd799439012",
	})
	if err == nil {
		t.Fatal("expected validation error for missing score")
	}
}

func TestSubmitRating_DuplicateUserConflicts(t *testing.T) {
	stable := validStable()
	stable.ID = "507f1f77bcf86cd799439011"

	repo := &mockStableRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Stable, error) {
			return stable, nil
		},
	}
	ratingRepo := &mockRatingEventRepository{
		existsForUserFunc: func(ctx context.Context, entityKind, entityID, userID string) (bool, error) {
			return true, nil
		},
	}
	svc := newTestService(repo, &mockBookingLookupRepository{}, ratingRepo)

	_, err := svc.SubmitRating(context.Background(), ratingSubmission(3))
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeConflict {
		t.Errorf("expected conflict error, got %v", err)
	}
}

func TestSubmitRating_DuplicateInsertConflicts(t *testing.T) {
	stable := validStable()
	stable.ID = "507f1f77bcf86cd799439011"

	repo := &mockStableRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Stable, error) {
			return stable, nil
		},
	}
	// pre-check misses the concurrent writer, the unique index catches it
	ratingRepo := &mockRatingEventRepository{
		insertFunc: func(ctx context.Context, e *model.RatingEvent) (string, error) {
			return "", mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
		},
	}
	svc := newTestService(repo, &mockBookingLookupRepository{}, ratingRepo)

	_, err := svc.SubmitRating(context.Background(), ratingSubmission(3))
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeConflict {
		t.Errorf("expected conflict for racing duplicate rating, got %v", err)
	}
}

func TestSubmitRating_EventCarriesSubmission(t *testing.T) {
	stable := validStable()
	stable.ID = "507f1f77bcf86cd799439011"

	var event *model.RatingEvent
	repo := &mockStableRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Stable, error) {
			return stable, nil
		},
	}
	ratingRepo := &mockRatingEventRepository{
		insertFunc: func(ctx context.Context, e *model.RatingEvent) (string, error) {
			event = e
			return "event-id", nil
		},
	}
	svc := newTestService(repo, &mockBookingLookupRepository{}, ratingRepo)

	if _, err := svc.SubmitRating(context.Background(), ratingSubmission(2.5)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if event == nil {
		t.Fatal("expected a rating event to be recorded")
	}
	if event.EntityKind != model.RatingEntityStable || event.Score != 2.5 {
		t.Errorf("unexpected event: %+v", event)
	}
}
