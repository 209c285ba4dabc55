package service

import (
	"context"
	"errors"
	trainerserrors "paddock/internal/trainers/errors"
	"paddock/internal/trainers/repository"
	"paddock/internal/trainers/validator"
	"paddock/pkg/config"
	apperrors "paddock/pkg/errors"
	"paddock/pkg/model"
	"paddock/pkg/sanitizer"
	"sync"
)

type TrainerService interface {
	Create(ctx context.Context, trainer *model.Trainer) error
	GetByID(ctx context.Context, id string) (*model.Trainer, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Trainer, int64, error)
	Update(ctx context.Context, id string, updates *model.TrainerUpdate) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, city, status string, limit int, offset int64) ([]*model.Trainer, int64, error)
	SubmitRating(ctx context.Context, submission *model.RatingSubmission) (*model.Trainer, error)
}

type trainerService struct {
	repo       repository.TrainerRepository
	ratingRepo repository.RatingEventRepository
	validator  *validator.TrainerValidator
	cfg        *config.Config
}

func NewTrainerService(
	repo repository.TrainerRepository,
	ratingRepo repository.RatingEventRepository,
	validator *validator.TrainerValidator,
	cfg *config.Config,
) TrainerService {
	return &trainerService{
		repo:       repo,
		ratingRepo: ratingRepo,
		validator:  validator,
		cfg:        cfg,
	}
}

func (s *trainerService) Create(ctx context.Context, trainer *model.Trainer) error {
	if trainer.Status == "" {
		trainer.Status = model.StatusActive
	}
	s.sanitize(trainer)
	if err := s.validate(trainer); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, trainer); err != nil {
		s.cfg.Log.Error("Failed to create trainer", "error", err)
		return apperrors.Internal("Failed to create trainer", err)
	}

	s.cfg.Log.Info("Trainer created successfully",
		"id", trainer.ID,
		"owner_id", trainer.OwnerID,
		"city", trainer.Location.City,
	)
	return nil
}

func (s *trainerService) GetByID(ctx context.Context, id string) (*model.Trainer, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Trainer ID cannot be empty")
	}

	trainer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapLookupError(err, id)
	}

	return trainer, nil
}

func (s *trainerService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Trainer, int64, error) {

	var count int64
	var trainers []*model.Trainer
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count trainers", "error", errCount)
			errCount = apperrors.Internal("Failed to count trainers", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		trainers, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list trainers", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve trainers", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return trainers, count, nil
}

func (s *trainerService) Update(ctx context.Context, id string, updates *model.TrainerUpdate) error {
	if id == "" {
		return apperrors.InvalidInput("Trainer ID cannot be empty")
	}
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return s.mapLookupError(err, id)
	}
	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Trainer update validation failed", "id", id, "error", err)
		return apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	merged := s.merge(existing, updates)
	s.sanitize(merged)
	if err := s.validate(merged); err != nil {
		return err
	}

	if _, err := s.repo.Update(ctx, id, merged); err != nil {
		s.cfg.Log.Error("Failed to update trainer", "id", id, "error", err)
		return apperrors.Internal("Failed to update trainer", err)
	}

	s.cfg.Log.Info("Trainer updated successfully", "id", id)
	return nil
}

func (s *trainerService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Trainer ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.mapLookupError(err, id)
	}

	s.cfg.Log.Info("Trainer deleted successfully", "id", id)
	return nil
}

func (s *trainerService) Search(ctx context.Context, city, status string, limit int, offset int64) ([]*model.Trainer, int64, error) {
	city = sanitizer.SanitizeCity(city)
	if city == "" && status == "" {
		return nil, 0, apperrors.InvalidInput("At least one search filter is required")
	}
	if status != "" && status != model.StatusActive && status != model.StatusInactive {
		return nil, 0, apperrors.InvalidInput("Status must be 'active' or 'inactive'")
	}

	var count int64
	var trainers []*model.Trainer
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.CountBySearch(ctx, city, status)
		if err != nil {
			s.cfg.Log.Error("Failed to count trainers by search", "city", city, "status", status, "error", err)
			errCount = apperrors.Internal("Failed to count trainers", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		trainers, err = s.repo.Search(ctx, city, status, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to search trainers", "city", city, "status", status, "error", err)
			errFind = apperrors.Internal("Failed to search trainers", err)
		}
	}()

	wg.Wait()

	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return trainers, count, nil
}

// --- Helpers ---

func (s *trainerService) sanitize(t *model.Trainer) {
	t.Title = sanitizer.NormalizeTitle(t.Title)
	t.Details = sanitizer.TrimAndNormalize(t.Details)
	t.Experience = sanitizer.TrimAndNormalize(t.Experience)
	t.Location.Address = sanitizer.TrimAndNormalize(t.Location.Address)
	t.Location.City = sanitizer.SanitizeCity(t.Location.City)

	for i, img := range t.Images {
		t.Images[i] = sanitizer.SanitizeImageURL(img)
	}
	for i := range t.Disciplines {
		t.Disciplines[i].Name = sanitizer.SanitizeServiceName(t.Disciplines[i].Name)
	}
	for i := range t.Trainings {
		t.Trainings[i].Name = sanitizer.SanitizeServiceName(t.Trainings[i].Name)
	}
	for i := range t.CompetitionCoaching {
		t.CompetitionCoaching[i].Name = sanitizer.SanitizeServiceName(t.CompetitionCoaching[i].Name)
	}
}

func (s *trainerService) validate(t *model.Trainer) error {
	if err := s.validator.Validate(t); err != nil {
		s.cfg.Log.Warn("Trainer validation failed", "error", err)
		return apperrors.Validation("Invalid trainer input", map[string]any{"error": err.Error()})
	}
	return nil
}

func (s *trainerService) mapLookupError(err error, id string) error {
	if errors.Is(err, trainerserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Trainer", id)
	}
	if errors.Is(err, trainerserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid trainer ID format")
	}
	return apperrors.Internal("Trainer lookup failed", err)
}

func (s *trainerService) merge(existing *model.Trainer, updates *model.TrainerUpdate) *model.Trainer {
	merged := *existing

	if updates.Title != "" {
		merged.Title = updates.Title
	}
	if updates.Details != nil {
		merged.Details = *updates.Details
	}
	if updates.HourlyPrice != nil {
		merged.HourlyPrice = *updates.HourlyPrice
	}
	if updates.Experience != nil {
		merged.Experience = *updates.Experience
	}
	if updates.Location != nil {
		merged.Location = *updates.Location
	}
	if updates.Images != nil {
		merged.Images = *updates.Images
	}
	if updates.WeeklySchedule != nil {
		merged.WeeklySchedule = *updates.WeeklySchedule
	}
	if updates.Disciplines != nil {
		merged.Disciplines = *updates.Disciplines
	}
	if updates.Trainings != nil {
		merged.Trainings = *updates.Trainings
	}
	if updates.CompetitionCoaching != nil {
		merged.CompetitionCoaching = *updates.CompetitionCoaching
	}
	if updates.Status != "" {
		merged.Status = updates.Status
	}

	return &merged
}
