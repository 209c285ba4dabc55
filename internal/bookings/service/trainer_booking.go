package service

import (
	"context"
	"errors"
	"fmt"
	"paddock/internal/bookings/repository"
	"paddock/internal/bookings/validator"
	"paddock/pkg/config"
	apperrors "paddock/pkg/errors"
	"paddock/pkg/events"
	"paddock/pkg/model"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

type TrainerBookingService interface {
	Create(ctx context.Context, booking *model.TrainerBooking) error
	GetByID(ctx context.Context, id string) (*model.TrainerBooking, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.TrainerBooking, int64, error)
	GetByClient(ctx context.Context, clientID string, limit int, offset int64) ([]*model.TrainerBooking, int64, error)
	GetByTrainer(ctx context.Context, trainerID string, from, to time.Time) ([]*model.TrainerBooking, error)
	Update(ctx context.Context, id string, updates *model.TrainerBookingUpdate) error
	Cancel(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

type trainerBookingService struct {
	repo      repository.TrainerBookingRepository
	lockRepo  repository.BookingLockRepository
	listings  repository.ListingLookupRepository
	users     repository.UserLookupRepository
	validator *validator.BookingValidator
	producer  *events.Producer
	cfg       *config.Config
}

func NewTrainerBookingService(
	repo repository.TrainerBookingRepository,
	lockRepo repository.BookingLockRepository,
	listings repository.ListingLookupRepository,
	users repository.UserLookupRepository,
	validator *validator.BookingValidator,
	producer *events.Producer,
	cfg *config.Config,
) TrainerBookingService {
	return &trainerBookingService{
		repo:      repo,
		lockRepo:  lockRepo,
		listings:  listings,
		users:     users,
		validator: validator,
		producer:  producer,
		cfg:       cfg,
	}
}

func (s *trainerBookingService) Create(ctx context.Context, booking *model.TrainerBooking) error {
	if booking.Status == "" {
		booking.Status = model.BookingStatusPending
	}
	if err := s.validate(booking); err != nil {
		return err
	}

	trainer, err := s.resolveTrainer(ctx, booking)
	if err != nil {
		return err
	}
	if err := s.verifyClient(ctx, booking.ClientID); err != nil {
		return err
	}
	if err := s.priceBooking(trainer, booking); err != nil {
		return err
	}

	lockID := trainerLockID(booking.TrainerID, booking.StartDate)
	if err := s.acquireLock(ctx, lockID); err != nil {
		return err
	}
	defer func() {
		if releaseErr := s.lockRepo.Release(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release booking lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.verifyNoOverlap(sessCtx, booking, ""); err != nil {
			return err
		}
		if err := s.repo.Create(sessCtx, booking); err != nil {
			return apperrors.Internal("Failed to create booking", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create trainer booking", "trainer_id", booking.TrainerID, "error", err)
		return err
	}

	s.cfg.Log.Info("Trainer booking created",
		"id", booking.ID,
		"trainer_id", booking.TrainerID,
		"client_id", booking.ClientID,
		"start_date", booking.StartDate,
		"total_price", booking.TotalPrice,
	)

	s.producer.PublishEvent(ctx, booking.ID, events.BookingEvent{
		Type:        events.TypeBookingCreated,
		BookingID:   booking.ID,
		ListingKind: "trainer",
		ListingID:   booking.TrainerID,
		ClientID:    booking.ClientID,
		TotalPrice:  booking.TotalPrice,
		OccurredAt:  time.Now().UTC(),
	}, events.TypeBookingCreated)

	return nil
}

func (s *trainerBookingService) GetByID(ctx context.Context, id string) (*model.TrainerBooking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapBookingLookupError(err, id)
	}

	return booking, nil
}

func (s *trainerBookingService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.TrainerBooking, int64, error) {

	var count int64
	var bookings []*model.TrainerBooking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count bookings", "error", errCount)
			errCount = apperrors.Internal("Failed to count bookings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list bookings", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve bookings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return bookings, count, nil
}

func (s *trainerBookingService) GetByClient(ctx context.Context, clientID string, limit int, offset int64) ([]*model.TrainerBooking, int64, error) {
	if clientID == "" {
		return nil, 0, apperrors.InvalidInput("client_id is required")
	}

	var count int64
	var bookings []*model.TrainerBooking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.CountByClient(ctx, clientID)
		if err != nil {
			s.cfg.Log.Error("Failed to count client bookings", "client_id", clientID, "error", err)
			errCount = apperrors.Internal("Failed to count bookings", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		bookings, err = s.repo.FindByClient(ctx, clientID, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to list client bookings", "client_id", clientID, "error", err)
			errFind = apperrors.Internal("Failed to retrieve bookings", err)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return bookings, count, nil
}

func (s *trainerBookingService) GetByTrainer(ctx context.Context, trainerID string, from, to time.Time) ([]*model.TrainerBooking, error) {
	if trainerID == "" {
		return nil, apperrors.InvalidInput("trainer_id is required")
	}
	if to.Before(from) {
		return nil, apperrors.InvalidInput("end_date must not be before start_date")
	}

	bookings, err := s.repo.FindOverlapping(ctx, trainerID, model.StartOfDay(from), model.EndOfDay(to))
	if err != nil {
		s.cfg.Log.Error("Failed to list trainer bookings", "trainer_id", trainerID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve bookings", err)
	}
	return bookings, nil
}

func (s *trainerBookingService) Update(ctx context.Context, id string, updates *model.TrainerBookingUpdate) error {
	if id == "" {
		return apperrors.InvalidInput("Booking ID cannot be empty")
	}
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return mapBookingLookupError(err, id)
	}
	if existing.Status == model.BookingStatusCancelled {
		return apperrors.Conflict("Cancelled bookings cannot be modified")
	}
	if err := s.validator.ValidateTrainerBookingUpdate(updates); err != nil {
		s.cfg.Log.Warn("Booking update validation failed", "id", id, "error", err)
		return apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	merged := s.merge(existing, updates)
	if err := s.validate(merged); err != nil {
		return err
	}

	trainer, err := s.resolveTrainer(ctx, merged)
	if err != nil {
		return err
	}
	if err := s.priceBooking(trainer, merged); err != nil {
		return err
	}

	lockID := trainerLockID(merged.TrainerID, merged.StartDate)
	if err := s.acquireLock(ctx, lockID); err != nil {
		return err
	}
	defer func() {
		if releaseErr := s.lockRepo.Release(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release booking lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.verifyNoOverlap(sessCtx, merged, id); err != nil {
			return err
		}
		if _, err := s.repo.Update(sessCtx, id, merged); err != nil {
			return apperrors.Internal("Failed to update booking", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to update trainer booking", "id", id, "error", err)
		return err
	}

	s.cfg.Log.Info("Trainer booking updated", "id", id)
	return nil
}

func (s *trainerBookingService) Cancel(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return mapBookingLookupError(err, id)
	}
	if booking.Status == model.BookingStatusCancelled {
		return nil
	}

	if err := s.repo.UpdateStatus(ctx, id, model.BookingStatusCancelled); err != nil {
		return apperrors.Internal("Failed to cancel booking", err)
	}

	s.cfg.Log.Info("Trainer booking cancelled", "id", id)

	s.producer.PublishEvent(ctx, id, events.BookingEvent{
		Type:        events.TypeBookingCancelled,
		BookingID:   id,
		ListingKind: "trainer",
		ListingID:   booking.TrainerID,
		ClientID:    booking.ClientID,
		TotalPrice:  booking.TotalPrice,
		OccurredAt:  time.Now().UTC(),
	}, events.TypeBookingCancelled)

	return nil
}

func (s *trainerBookingService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Booking ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return mapBookingLookupError(err, id)
	}

	s.cfg.Log.Info("Trainer booking deleted", "id", id)
	return nil
}

// --- Helpers ---

func (s *trainerBookingService) validate(b *model.TrainerBooking) error {
	if err := s.validator.ValidateTrainerBooking(b); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "error", err)
		return apperrors.Validation("Invalid booking input", map[string]any{"error": err.Error()})
	}
	return nil
}

func (s *trainerBookingService) resolveTrainer(ctx context.Context, b *model.TrainerBooking) (*model.Trainer, error) {
	trainer, err := s.listings.FindTrainer(ctx, b.TrainerID)
	if err != nil {
		if errors.Is(err, repository.ErrListingNotFound) {
			return nil, apperrors.NotFoundWithID("Trainer", b.TrainerID)
		}
		if errors.Is(err, repository.ErrInvalidRefID) {
			return nil, apperrors.InvalidInput("Invalid trainer ID format")
		}
		return nil, apperrors.Internal("Failed to resolve trainer", err)
	}
	if trainer.Status != model.StatusActive {
		return nil, apperrors.Conflict("Trainer is not accepting bookings")
	}
	b.OwnerID = trainer.OwnerID
	return trainer, nil
}

func (s *trainerBookingService) verifyClient(ctx context.Context, clientID string) error {
	exists, err := s.users.Exists(ctx, clientID)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidRefID) {
			return apperrors.InvalidInput("Invalid client ID format")
		}
		return apperrors.Internal("Failed to verify client", err)
	}
	if !exists {
		return apperrors.NotFoundWithID("User", clientID)
	}
	return nil
}

// priceBooking resolves each selection group against the trainer's price
// tables and recomputes totals from the weekly schedule.
func (s *trainerBookingService) priceBooking(trainer *model.Trainer, b *model.TrainerBooking) error {
	var err error
	if b.Disciplines, err = resolveSelectedServices(b.Disciplines, trainer.Disciplines); err != nil {
		return err
	}
	if b.Trainings, err = resolveSelectedServices(b.Trainings, trainer.Trainings); err != nil {
		return err
	}
	if b.Coaching, err = resolveSelectedServices(b.Coaching, trainer.CompetitionCoaching); err != nil {
		return err
	}

	base, total, err := trainerBookingPrice(trainer, b)
	if err != nil {
		return err
	}
	if b.TotalPrice != 0 && b.TotalPrice != total {
		s.cfg.Log.Warn("Client-sent total price overridden",
			"trainer_id", b.TrainerID,
			"client_total", b.TotalPrice,
			"computed_total", total,
		)
	}
	b.BasePrice = base
	b.TotalPrice = total
	return nil
}

func (s *trainerBookingService) acquireLock(ctx context.Context, lockID string) error {
	if err := s.lockRepo.Acquire(ctx, lockID, s.cfg.BookingLockTTL); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.Conflict("Another booking for this slot is in progress")
		}
		return apperrors.Internal("Failed to acquire booking lock", err)
	}
	return nil
}

func (s *trainerBookingService) verifyNoOverlap(ctx context.Context, b *model.TrainerBooking, excludeID string) error {
	from := model.StartOfDay(b.StartDate)
	to := model.EndOfDay(b.EffectiveEnd())

	overlapping, err := s.repo.FindOverlapping(ctx, b.TrainerID, from, to)
	if err != nil {
		return apperrors.Internal("Failed to check booking overlap", err)
	}
	for _, other := range overlapping {
		if excludeID != "" && other.ID == excludeID {
			continue
		}
		return apperrors.Conflict("Trainer is already booked for the requested dates")
	}
	return nil
}

func (s *trainerBookingService) merge(existing *model.TrainerBooking, updates *model.TrainerBookingUpdate) *model.TrainerBooking {
	merged := *existing

	if updates.Type != "" {
		merged.Type = updates.Type
	}
	if updates.StartDate != nil {
		merged.StartDate = *updates.StartDate
	}
	if updates.EndDate != nil {
		merged.EndDate = updates.EndDate
	}
	if updates.HorseCount != nil {
		merged.HorseCount = *updates.HorseCount
	}
	if updates.Disciplines != nil {
		merged.Disciplines = *updates.Disciplines
	}
	if updates.Trainings != nil {
		merged.Trainings = *updates.Trainings
	}
	if updates.Coaching != nil {
		merged.Coaching = *updates.Coaching
	}
	if updates.Status != "" {
		merged.Status = updates.Status
	}

	return &merged
}

func trainerLockID(trainerID string, start time.Time) string {
	return fmt.Sprintf("trainer:%s:%s", trainerID, start.UTC().Format("2006-01-02"))
}
