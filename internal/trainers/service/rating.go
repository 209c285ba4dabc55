package service

import (
	"context"
	"errors"
	trainerserrors "paddock/internal/trainers/errors"
	apperrors "paddock/pkg/errors"
	"paddock/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

// SubmitRating applies one score to the trainer's running mean inside a
// transaction, mirroring the stable rating flow.
func (s *trainerService) SubmitRating(ctx context.Context, submission *model.RatingSubmission) (*model.Trainer, error) {
	if err := s.validator.ValidateRating(submission); err != nil {
		s.cfg.Log.Warn("Rating validation failed", "entity_id", submission.EntityID, "error", err)
		return nil, apperrors.Validation("Invalid rating input", map[string]any{"error": err.Error()})
	}

	var rated *model.Trainer
	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		trainer, err := s.repo.FindByID(sessCtx, submission.EntityID)
		if err != nil {
			if errors.Is(err, trainerserrors.ErrNotFound) {
				return apperrors.NotFoundWithID("Trainer", submission.EntityID)
			}
			if errors.Is(err, trainerserrors.ErrInvalidID) {
				return apperrors.InvalidInput("Invalid trainer ID format")
			}
			return apperrors.Internal("Failed to retrieve trainer", err)
		}

		already, err := s.ratingRepo.ExistsForUser(sessCtx, model.RatingEntityTrainer, submission.EntityID, submission.UserID)
		if err != nil {
			return apperrors.Internal("Failed to check previous ratings", err)
		}
		if already {
			return apperrors.Conflict("User has already rated this trainer")
		}

		event := &model.RatingEvent{
			EntityKind: model.RatingEntityTrainer,
			EntityID:   submission.EntityID,
			UserID:     submission.UserID,
			Score:      *submission.Score,
		}
		if _, err := s.ratingRepo.Insert(sessCtx, event); err != nil {
			// the unique entity+user index closes the race the pre-check leaves open
			if mongo.IsDuplicateKeyError(err) {
				return apperrors.Conflict("User has already rated this trainer")
			}
			return apperrors.Internal("Failed to record rating", err)
		}

		mean, count := model.AccumulateRating(trainer.Rating, trainer.NoofRatingCustomers, *submission.Score)
		if err := s.repo.ApplyRating(sessCtx, submission.EntityID, mean, count); err != nil {
			return apperrors.Internal("Failed to apply rating", err)
		}

		trainer.Rating = mean
		trainer.NoofRatingCustomers = count
		rated = trainer
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to submit rating", "entity_id", submission.EntityID, "error", err)
		return nil, err
	}

	s.cfg.Log.Info("Rating submitted",
		"trainer_id", submission.EntityID,
		"user_id", submission.UserID,
		"score", *submission.Score,
	)
	return rated, nil
}
