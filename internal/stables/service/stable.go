package service

import (
	"context"
	"errors"
	stableserrors "paddock/internal/stables/errors"
	"paddock/internal/stables/repository"
	"paddock/internal/stables/validator"
	"paddock/pkg/config"
	apperrors "paddock/pkg/errors"
	"paddock/pkg/model"
	"paddock/pkg/sanitizer"
	"sync"
)

type StableService interface {
	Create(ctx context.Context, stable *model.Stable) error
	GetByID(ctx context.Context, id string) (*model.Stable, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Stable, int64, error)
	Update(ctx context.Context, id string, updates *model.StableUpdate) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, city, status string, limit int, offset int64) ([]*model.Stable, int64, error)
	Availability(ctx context.Context, query *AvailabilityQuery) (*model.AvailabilityReport, error)
	SubmitRating(ctx context.Context, submission *model.RatingSubmission) (*model.Stable, error)
}

type stableService struct {
	repo        repository.StableRepository
	bookingRepo repository.BookingLookupRepository
	ratingRepo  repository.RatingEventRepository
	validator   *validator.StableValidator
	cfg         *config.Config
}

func NewStableService(
	repo repository.StableRepository,
	bookingRepo repository.BookingLookupRepository,
	ratingRepo repository.RatingEventRepository,
	validator *validator.StableValidator,
	cfg *config.Config,
) StableService {
	return &stableService{
		repo:        repo,
		bookingRepo: bookingRepo,
		ratingRepo:  ratingRepo,
		validator:   validator,
		cfg:         cfg,
	}
}

func (s *stableService) Create(ctx context.Context, stable *model.Stable) error {
	s.applyDefaults(stable)
	s.sanitize(stable)
	if err := s.validate(stable); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, stable); err != nil {
		s.cfg.Log.Error("Failed to create stable", "error", err)
		return apperrors.Internal("Failed to create stable", err)
	}

	s.cfg.Log.Info("Stable created successfully",
		"id", stable.ID,
		"owner_id", stable.OwnerID,
		"city", stable.Location.City,
	)
	return nil
}

func (s *stableService) GetByID(ctx context.Context, id string) (*model.Stable, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Stable ID cannot be empty")
	}

	stable, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, stableserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Stable", id)
		}
		if errors.Is(err, stableserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid stable ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve stable", err)
	}

	return stable, nil
}

func (s *stableService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Stable, int64, error) {

	var count int64
	var stables []*model.Stable
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count stables", "error", errCount)
			errCount = apperrors.Internal("Failed to count stables", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		stables, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list stables", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve stables", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return stables, count, nil
}

func (s *stableService) Update(ctx context.Context, id string, updates *model.StableUpdate) error {
	if id == "" {
		return apperrors.InvalidInput("Stable ID cannot be empty")
	}
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, stableserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Stable", id)
		}
		if errors.Is(err, stableserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid stable ID format")
		}
		return apperrors.Internal("Failed to check stable existence", err)
	}
	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Stable update validation failed", "id", id, "error", err)
		return apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	merged := s.mergeStableUpdates(existing, updates)
	s.sanitize(merged)
	if err := s.validate(merged); err != nil {
		return err
	}

	if _, err := s.repo.Update(ctx, id, merged); err != nil {
		s.cfg.Log.Error("Failed to update stable", "id", id, "error", err)
		return apperrors.Internal("Failed to update stable", err)
	}

	s.cfg.Log.Info("Stable updated successfully", "id", id)
	return nil
}

func (s *stableService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Stable ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, stableserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Stable", id)
		}
		if errors.Is(err, stableserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid stable ID format")
		}
		return apperrors.Internal("Failed to delete stable", err)
	}

	s.cfg.Log.Info("Stable deleted successfully", "id", id)
	return nil
}

func (s *stableService) Search(ctx context.Context, city, status string, limit int, offset int64) ([]*model.Stable, int64, error) {
	city = sanitizer.SanitizeCity(city)
	if city == "" && status == "" {
		return nil, 0, apperrors.InvalidInput("At least one search filter is required")
	}
	if status != "" && status != model.StatusActive && status != model.StatusInactive {
		return nil, 0, apperrors.InvalidInput("Status must be 'active' or 'inactive'")
	}

	var count int64
	var stables []*model.Stable
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.CountBySearch(ctx, city, status)
		if err != nil {
			s.cfg.Log.Error("Failed to count stables by search", "city", city, "status", status, "error", err)
			errCount = apperrors.Internal("Failed to count stables", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		stables, err = s.repo.Search(ctx, city, status, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to search stables",
				"city", city,
				"status", status,
				"limit", limit,
				"offset", offset,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to search stables", err)
		}
	}()

	wg.Wait()

	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	s.cfg.Log.Debug("Stable search completed",
		"city", city,
		"status", status,
		"count", len(stables),
		"total_count", count,
	)
	return stables, count, nil
}

// --- Helpers ---

func (s *stableService) sanitize(st *model.Stable) {
	st.Title = sanitizer.NormalizeTitle(st.Title)
	st.Details = sanitizer.TrimAndNormalize(st.Details)
	st.Location.Address = sanitizer.TrimAndNormalize(st.Location.Address)
	st.Location.City = sanitizer.SanitizeCity(st.Location.City)

	for i, img := range st.Images {
		st.Images[i] = sanitizer.SanitizeImageURL(img)
	}
	for i := range st.Services {
		st.Services[i].Name = sanitizer.SanitizeServiceName(st.Services[i].Name)
	}
}

func (s *stableService) applyDefaults(st *model.Stable) {
	if st.Status == "" {
		st.Status = model.StatusActive
	}
}

func (s *stableService) validate(st *model.Stable) error {
	if err := s.validator.Validate(st); err != nil {
		s.cfg.Log.Warn("Stable validation failed", "error", err)
		return apperrors.Validation("Invalid stable input", map[string]any{"error": err.Error()})
	}
	return nil
}

func (s *stableService) mergeStableUpdates(existing *model.Stable, updates *model.StableUpdate) *model.Stable {
	merged := *existing

	if updates.Title != "" {
		merged.Title = updates.Title
	}
	if updates.Details != nil {
		merged.Details = *updates.Details
	}
	if updates.Location != nil {
		merged.Location = *updates.Location
	}
	if updates.Images != nil {
		merged.Images = *updates.Images
	}
	if updates.Rates != nil {
		merged.Rates = *updates.Rates
	}
	if updates.Services != nil {
		merged.Services = *updates.Services
	}
	if updates.Slots != nil {
		merged.Slots = *updates.Slots
	}
	if updates.Status != "" {
		merged.Status = updates.Status
	}
	if updates.Capacity != nil {
		merged.Capacity = *updates.Capacity
	}

	return &merged
}
