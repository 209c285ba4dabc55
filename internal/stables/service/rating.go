package service

import (
	"context"
	"errors"
	stableserrors "paddock/internal/stables/errors"
	apperrors "paddock/pkg/errors"
	"paddock/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

// SubmitRating folds one score into the stable's running mean. The event
// insert and the mean update run in one transaction so the stored mean
// never drifts from the event log; concurrent submissions serialize on the
// transactional re-read of the current mean.
func (s *stableService) SubmitRating(ctx context.Context, submission *model.RatingSubmission) (*model.Stable, error) {
	if err := s.validator.ValidateRating(submission); err != nil {
		s.cfg.Log.Warn("Rating validation failed", "entity_id", submission.EntityID, "error", err)
		return nil, apperrors.Validation("Invalid rating input", map[string]any{"error": err.Error()})
	}

	var rated *model.Stable
	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		stable, err := s.repo.FindByID(sessCtx, submission.EntityID)
		if err != nil {
			if errors.Is(err, stableserrors.ErrNotFound) {
				return apperrors.NotFoundWithID("Stable", submission.EntityID)
			}
			if errors.Is(err, stableserrors.ErrInvalidID) {
				return apperrors.InvalidInput("Invalid stable ID format")
			}
			return apperrors.Internal("Failed to retrieve stable", err)
		}

		already, err := s.ratingRepo.ExistsForUser(sessCtx, model.RatingEntityStable, submission.EntityID, submission.UserID)
		if err != nil {
			return apperrors.Internal("Failed to check previous ratings", err)
		}
		if already {
			return apperrors.Conflict("User has already rated this stable")
		}

		event := &model.RatingEvent{
			EntityKind: model.RatingEntityStable,
			EntityID:   submission.EntityID,
			UserID:     submission.UserID,
			Score:      *submission.Score,
		}
		if _, err := s.ratingRepo.Insert(sessCtx, event); err != nil {
			// the unique entity+user index closes the race the pre-check leaves open
			if mongo.IsDuplicateKeyError(err) {
				return apperrors.Conflict("User has already rated this stable")
			}
			return apperrors.Internal("Failed to record rating", err)
		}

		mean, count := model.AccumulateRating(stable.Rating, stable.NoofRatingCustomers, *submission.Score)
		if err := s.repo.ApplyRating(sessCtx, submission.EntityID, mean, count); err != nil {
			return apperrors.Internal("Failed to apply rating", err)
		}

		stable.Rating = mean
		stable.NoofRatingCustomers = count
		rated = stable
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to submit rating", "entity_id", submission.EntityID, "error", err)
		return nil, err
	}

	s.cfg.Log.Info("Rating submitted",
		"stable_id", submission.EntityID,
		"user_id", submission.UserID,
		"score", *submission.Score,
		"new_rating", rated.Rating,
		"rating_count", rated.NoofRatingCustomers,
	)
	return rated, nil
}
