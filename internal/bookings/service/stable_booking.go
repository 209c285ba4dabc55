package service

import (
	"context"
	"errors"
	"fmt"
	bookingserrors "paddock/internal/bookings/errors"
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

type StableBookingService interface {
	Create(ctx context.Context, booking *model.StableBooking) error
	GetByID(ctx context.Context, id string) (*model.StableBooking, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.StableBooking, int64, error)
	GetByClient(ctx context.Context, clientID string, limit int, offset int64) ([]*model.StableBooking, int64, error)
	GetByStable(ctx context.Context, stableID string, from, to time.Time) ([]*model.StableBooking, error)
	Update(ctx context.Context, id string, updates *model.StableBookingUpdate) error
	Cancel(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

type stableBookingService struct {
	repo      repository.StableBookingRepository
	lockRepo  repository.BookingLockRepository
	listings  repository.ListingLookupRepository
	users     repository.UserLookupRepository
	validator *validator.BookingValidator
	producer  *events.Producer
	cfg       *config.Config
}

func NewStableBookingService(
	repo repository.StableBookingRepository,
	lockRepo repository.BookingLockRepository,
	listings repository.ListingLookupRepository,
	users repository.UserLookupRepository,
	validator *validator.BookingValidator,
	producer *events.Producer,
	cfg *config.Config,
) StableBookingService {
	return &stableBookingService{
		repo:      repo,
		lockRepo:  lockRepo,
		listings:  listings,
		users:     users,
		validator: validator,
		producer:  producer,
		cfg:       cfg,
	}
}

func (s *stableBookingService) Create(ctx context.Context, booking *model.StableBooking) error {
	if booking.Status == "" {
		booking.Status = model.BookingStatusPending
	}
	if err := s.validate(booking); err != nil {
		return err
	}

	stable, err := s.resolveStable(ctx, booking)
	if err != nil {
		return err
	}
	if err := s.verifyClient(ctx, booking.ClientID); err != nil {
		return err
	}
	if err := s.priceBooking(stable, booking); err != nil {
		return err
	}

	lockID := stableLockID(booking.StableID, booking.StartDate)
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
		s.cfg.Log.Error("Failed to create stable booking", "stable_id", booking.StableID, "error", err)
		return err
	}

	s.cfg.Log.Info("Stable booking created",
		"id", booking.ID,
		"stable_id", booking.StableID,
		"client_id", booking.ClientID,
		"start_date", booking.StartDate,
		"total_price", booking.TotalPrice,
	)

	s.producer.PublishEvent(ctx, booking.ID, events.BookingEvent{
		Type:        events.TypeBookingCreated,
		BookingID:   booking.ID,
		ListingKind: "stable",
		ListingID:   booking.StableID,
		ClientID:    booking.ClientID,
		TotalPrice:  booking.TotalPrice,
		OccurredAt:  time.Now().UTC(),
	}, events.TypeBookingCreated)

	return nil
}

func (s *stableBookingService) GetByID(ctx context.Context, id string) (*model.StableBooking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapBookingLookupError(err, id)
	}

	return booking, nil
}

func (s *stableBookingService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.StableBooking, int64, error) {

	var count int64
	var bookings []*model.StableBooking
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

func (s *stableBookingService) GetByClient(ctx context.Context, clientID string, limit int, offset int64) ([]*model.StableBooking, int64, error) {
	if clientID == "" {
		return nil, 0, apperrors.InvalidInput("client_id is required")
	}

	var count int64
	var bookings []*model.StableBooking
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

// GetByStable lists non-cancelled bookings for a stable inside a date
// window. One-day bookings count as covering their start day.
func (s *stableBookingService) GetByStable(ctx context.Context, stableID string, from, to time.Time) ([]*model.StableBooking, error) {
	if stableID == "" {
		return nil, apperrors.InvalidInput("stable_id is required")
	}
	if to.Before(from) {
		return nil, apperrors.InvalidInput("end_date must not be before start_date")
	}

	bookings, err := s.repo.FindOverlapping(ctx, stableID, model.StartOfDay(from), model.EndOfDay(to))
	if err != nil {
		s.cfg.Log.Error("Failed to list stable bookings", "stable_id", stableID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve bookings", err)
	}
	return bookings, nil
}

func (s *stableBookingService) Update(ctx context.Context, id string, updates *model.StableBookingUpdate) error {
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
	if err := s.validator.ValidateStableBookingUpdate(updates); err != nil {
		s.cfg.Log.Warn("Booking update validation failed", "id", id, "error", err)
		return apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	merged := s.merge(existing, updates)
	if err := s.validate(merged); err != nil {
		return err
	}

	stable, err := s.resolveStable(ctx, merged)
	if err != nil {
		return err
	}
	if err := s.priceBooking(stable, merged); err != nil {
		return err
	}

	lockID := stableLockID(merged.StableID, merged.StartDate)
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
		s.cfg.Log.Error("Failed to update stable booking", "id", id, "error", err)
		return err
	}

	s.cfg.Log.Info("Stable booking updated", "id", id)
	return nil
}

func (s *stableBookingService) Cancel(ctx context.Context, id string) error {
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

	s.cfg.Log.Info("Stable booking cancelled", "id", id)

	s.producer.PublishEvent(ctx, id, events.BookingEvent{
		Type:        events.TypeBookingCancelled,
		BookingID:   id,
		ListingKind: "stable",
		ListingID:   booking.StableID,
		ClientID:    booking.ClientID,
		TotalPrice:  booking.TotalPrice,
		OccurredAt:  time.Now().UTC(),
	}, events.TypeBookingCancelled)

	return nil
}

func (s *stableBookingService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Booking ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return mapBookingLookupError(err, id)
	}

	s.cfg.Log.Info("Stable booking deleted", "id", id)
	return nil
}

// --- Helpers ---

func (s *stableBookingService) validate(b *model.StableBooking) error {
	if err := s.validator.ValidateStableBooking(b); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "error", err)
		return apperrors.Validation("Invalid booking input", map[string]any{"error": err.Error()})
	}
	return nil
}

// resolveStable loads the listing and checks the booking's owner matches.
func (s *stableBookingService) resolveStable(ctx context.Context, b *model.StableBooking) (*model.Stable, error) {
	stable, err := s.listings.FindStable(ctx, b.StableID)
	if err != nil {
		if errors.Is(err, repository.ErrListingNotFound) {
			return nil, apperrors.NotFoundWithID("Stable", b.StableID)
		}
		if errors.Is(err, repository.ErrInvalidRefID) {
			return nil, apperrors.InvalidInput("Invalid stable ID format")
		}
		return nil, apperrors.Internal("Failed to resolve stable", err)
	}
	if stable.Status != model.StatusActive {
		return nil, apperrors.Conflict("Stable is not accepting bookings")
	}
	b.OwnerID = stable.OwnerID
	return stable, nil
}

func (s *stableBookingService) verifyClient(ctx context.Context, clientID string) error {
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

// priceBooking resolves selected services against the listing and
// recomputes prices server side. A client-sent total that disagrees is
// overridden and logged.
func (s *stableBookingService) priceBooking(stable *model.Stable, b *model.StableBooking) error {
	resolved, err := resolveSelectedServices(b.Services, stable.Services)
	if err != nil {
		return err
	}
	b.Services = resolved

	base, total, err := stableBookingPrice(stable, b)
	if err != nil {
		return err
	}
	if b.TotalPrice != 0 && b.TotalPrice != total {
		s.cfg.Log.Warn("Client-sent total price overridden",
			"stable_id", b.StableID,
			"client_total", b.TotalPrice,
			"computed_total", total,
		)
	}
	b.BasePrice = base
	b.TotalPrice = total
	return nil
}

func (s *stableBookingService) acquireLock(ctx context.Context, lockID string) error {
	if err := s.lockRepo.Acquire(ctx, lockID, s.cfg.BookingLockTTL); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.Conflict("Another booking for this slot is in progress")
		}
		return apperrors.Internal("Failed to acquire booking lock", err)
	}
	return nil
}

// verifyNoOverlap re-checks inside the transaction so two requests that
// both passed the pre-checks cannot both insert.
func (s *stableBookingService) verifyNoOverlap(ctx context.Context, b *model.StableBooking, excludeID string) error {
	from := model.StartOfDay(b.StartDate)
	to := model.EndOfDay(b.EffectiveEnd())

	overlapping, err := s.repo.FindOverlapping(ctx, b.StableID, from, to)
	if err != nil {
		return apperrors.Internal("Failed to check booking overlap", err)
	}
	for _, other := range overlapping {
		if excludeID != "" && other.ID == excludeID {
			continue
		}
		return apperrors.Conflict("Stable is already booked for the requested dates")
	}
	return nil
}

func (s *stableBookingService) merge(existing *model.StableBooking, updates *model.StableBookingUpdate) *model.StableBooking {
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
	if updates.Services != nil {
		merged.Services = *updates.Services
	}
	if updates.Status != "" {
		merged.Status = updates.Status
	}

	return &merged
}

func stableLockID(stableID string, start time.Time) string {
	return fmt.Sprintf("stable:%s:%s", stableID, start.UTC().Format("2006-01-02"))
}

func mapBookingLookupError(err error, id string) error {
	if errors.Is(err, bookingserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Booking", id)
	}
	if errors.Is(err, bookingserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid booking ID format")
	}
	return apperrors.Internal("Booking lookup failed", err)
}
