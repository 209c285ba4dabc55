package service

import (
	"context"
	bookingserrors "paddock/internal/bookings/errors"
	"paddock/internal/bookings/repository"
	"paddock/internal/bookings/validator"
	"paddock/pkg/config"
	apperrors "paddock/pkg/errors"
	"paddock/pkg/logger"
	"paddock/pkg/model"
	"testing"
	"time"

	mongotx "paddock/pkg/db/mongo"

	"go.mongodb.org/mongo-driver/mongo"
)

type mockStableBookingRepo struct {
	createFunc          func(ctx context.Context, booking *model.StableBooking) error
	findByIDFunc        func(ctx context.Context, id string) (*model.StableBooking, error)
	findOverlappingFunc func(ctx context.Context, stableID string, from, to time.Time) ([]*model.StableBooking, error)
	updateStatusFunc    func(ctx context.Context, id string, status string) error
}

func (m *mockStableBookingRepo) Create(ctx context.Context, booking *model.StableBooking) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, booking)
	}
	return nil
}

func (m *mockStableBookingRepo) FindByID(ctx context.Context, id string) (*model.StableBooking, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, bookingserrors.ErrNotFound
}

func (m *mockStableBookingRepo) FindAll(ctx context.Context, limit int, offset int64) ([]*model.StableBooking, error) {
	return []*model.StableBooking{}, nil
}

func (m *mockStableBookingRepo) FindByClient(ctx context.Context, clientID string, limit int, offset int64) ([]*model.StableBooking, error) {
	return []*model.StableBooking{}, nil
}

func (m *mockStableBookingRepo) CountByClient(ctx context.Context, clientID string) (int64, error) {
	return 0, nil
}

func (m *mockStableBookingRepo) FindOverlapping(ctx context.Context, stableID string, from, to time.Time) ([]*model.StableBooking, error) {
	if m.findOverlappingFunc != nil {
		return m.findOverlappingFunc(ctx, stableID, from, to)
	}
	return []*model.StableBooking{}, nil
}

func (m *mockStableBookingRepo) Update(ctx context.Context, id string, booking *model.StableBooking) (*mongo.UpdateResult, error) {
	return &mongo.UpdateResult{MatchedCount: 1}, nil
}

func (m *mockStableBookingRepo) UpdateStatus(ctx context.Context, id string, status string) error {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, status)
	}
	return nil
}

func (m *mockStableBookingRepo) Delete(ctx context.Context, id string) error { return nil }

func (m *mockStableBookingRepo) Count(ctx context.Context) (int64, error) { return 0, nil }

func (m *mockStableBookingRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(mongo.NewSessionContext(ctx, nil))
}

type mockLockRepo struct {
	acquireFunc func(ctx context.Context, lockID string, ttl time.Duration) error
	released    []string
}

func (m *mockLockRepo) Acquire(ctx context.Context, lockID string, ttl time.Duration) error {
	if m.acquireFunc != nil {
		return m.acquireFunc(ctx, lockID, ttl)
	}
	return nil
}

func (m *mockLockRepo) Release(ctx context.Context, lockID string) error {
	m.released = append(m.released, lockID)
	return nil
}

type mockListingLookup struct {
	findStableFunc  func(ctx context.Context, id string) (*model.Stable, error)
	findTrainerFunc func(ctx context.Context, id string) (*model.Trainer, error)
}

func (m *mockListingLookup) FindStable(ctx context.Context, id string) (*model.Stable, error) {
	if m.findStableFunc != nil {
		return m.findStableFunc(ctx, id)
	}
	return nil, repository.ErrListingNotFound
}

func (m *mockListingLookup) FindTrainer(ctx context.Context, id string) (*model.Trainer, error) {
	if m.findTrainerFunc != nil {
		return m.findTrainerFunc(ctx, id)
	}
	return nil, repository.ErrListingNotFound
}

type mockUserLookup struct {
	existsFunc func(ctx context.Context, id string) (bool, error)
}

func (m *mockUserLookup) Exists(ctx context.Context, id string) (bool, error) {
	if m.existsFunc != nil {
		return m.existsFunc(ctx, id)
	}
	return true, nil
}

func testBookingConfig() *config.Config {
	log := logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	})
	return &config.Config{
		Log:            log,
		ReadTimeout:    5 * time.Second,
		WriteTimeout:   5 * time.Second,
		BookingLockTTL: 10 * time.Second,
	}
}

func newBookingService(repo *mockStableBookingRepo, locks *mockLockRepo, listings *mockListingLookup, users *mockUserLookup) *stableBookingService {
	cfg := testBookingConfig()
	return &stableBookingService{
		repo:      repo,
		lockRepo:  locks,
		listings:  listings,
		users:     users,
		validator: validator.NewBookingValidator(cfg.Log),
		producer:  nil, // nil producer is a no-op
		cfg:       cfg,
	}
}

func activeStableLookup() *mockListingLookup {
	return &mockListingLookup{
		findStableFunc: func(ctx context.Context, id string) (*model.Stable, error) {
			return boardingStable(), nil
		},
	}
}

func pendingBooking() *model.StableBooking {
	return &model.StableBooking{
		ClientID:   "507f1f77bcf86cd799439012",
		StableID:   "507f1f77bcf86cd799439011",
		OwnerID:    "507f1f77bcf86cd799439010",
		Type:       model.BookingTypeDay,
		StartDate:  date("2026-03-01"),
		EndDate:    datePtr("2026-03-03"),
		HorseCount: 2,
	}
}

func TestCreate_ComputesPriceServerSide(t *testing.T) {
	var created *model.StableBooking
	repo := &mockStableBookingRepo{
		createFunc: func(ctx context.Context, booking *model.StableBooking) error {
			created = booking
			return nil
		},
	}
	svc := newBookingService(repo, &mockLockRepo{}, activeStableLookup(), &mockUserLookup{})

	booking := pendingBooking()
	booking.TotalPrice = 1 // client-sent figure, must be overridden

	if err := svc.Create(context.Background(), booking); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if created.BasePrice != 150 {
		t.Errorf("expected base price 150, got %v", created.BasePrice)
	}
	if created.TotalPrice != 150 {
		t.Errorf("expected recomputed total 150, got %v", created.TotalPrice)
	}
	if created.Status != model.BookingStatusPending {
		t.Errorf("expected pending status, got %q", created.Status)
	}
}

func TestCreate_OverlapConflicts(t *testing.T) {
	repo := &mockStableBookingRepo{
		findOverlappingFunc: func(ctx context.Context, stableID string, from, to time.Time) ([]*model.StableBooking, error) {
			return []*model.StableBooking{{ID: "existing"}}, nil
		},
	}
	svc := newBookingService(repo, &mockLockRepo{}, activeStableLookup(), &mockUserLookup{})

	err := svc.Create(context.Background(), pendingBooking())
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeConflict {
		t.Errorf("expected conflict error, got %v", err)
	}
}

func TestCreate_ReleasesLockAfterConflict(t *testing.T) {
	repo := &mockStableBookingRepo{
		findOverlappingFunc: func(ctx context.Context, stableID string, from, to time.Time) ([]*model.StableBooking, error) {
			return []*model.StableBooking{{ID: "existing"}}, nil
		},
	}
	locks := &mockLockRepo{}
	svc := newBookingService(repo, locks, activeStableLookup(), &mockUserLookup{})

	_ = svc.Create(context.Background(), pendingBooking())

	if len(locks.released) != 1 {
		t.Fatalf("expected lock release after conflict, got %d releases", len(locks.released))
	}
	want := "stable:507f1f77bcf86cd799439011:2026-03-01"
	if locks.released[0] != want {
		t.Errorf("expected lock ID %q, got %q", want, locks.released[0])
	}
}

func TestCreate_UnknownClientRejected(t *testing.T) {
	users := &mockUserLookup{
		existsFunc: func(ctx context.Context, id string) (bool, error) {
			return false, nil
		},
	}
	svc := newBookingService(&mockStableBookingRepo{}, &mockLockRepo{}, activeStableLookup(), users)

	err := svc.Create(context.Background(), pendingBooking())
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeNotFound {
		t.Errorf("expected not found for unknown client, got %v", err)
	}
}

func TestCreate_InactiveStableRejected(t *testing.T) {
	listings := &mockListingLookup{
		findStableFunc: func(ctx context.Context, id string) (*model.Stable, error) {
			stable := boardingStable()
			stable.Status = model.StatusInactive
			return stable, nil
		},
	}
	svc := newBookingService(&mockStableBookingRepo{}, &mockLockRepo{}, listings, &mockUserLookup{})

	err := svc.Create(context.Background(), pendingBooking())
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeConflict {
		t.Errorf("expected conflict for inactive stable, got %v", err)
	}
}

func TestCreate_ReversedDatesRejected(t *testing.T) {
	svc := newBookingService(&mockStableBookingRepo{}, &mockLockRepo{}, activeStableLookup(), &mockUserLookup{})

	booking := pendingBooking()
	booking.EndDate = datePtr("2026-02-01")

	err := svc.Create(context.Background(), booking)
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeValidation {
		t.Errorf("expected validation error for reversed dates, got %v", err)
	}
}

func TestCreate_EndEqualToStartRejected(t *testing.T) {
	svc := newBookingService(&mockStableBookingRepo{}, &mockLockRepo{}, activeStableLookup(), &mockUserLookup{})

	// a one-day booking omits the end date instead of repeating the start
	booking := pendingBooking()
	booking.EndDate = datePtr("2026-03-01")

	err := svc.Create(context.Background(), booking)
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeValidation {
		t.Errorf("expected validation error for end equal to start, got %v", err)
	}
}

func TestUpdate_CancelledBookingImmutable(t *testing.T) {
	repo := &mockStableBookingRepo{
		findByIDFunc: func(ctx context.Context, id string) (*model.StableBooking, error) {
			b := pendingBooking()
			b.ID = id
			b.Status = model.BookingStatusCancelled
			return b, nil
		},
	}
	svc := newBookingService(repo, &mockLockRepo{}, activeStableLookup(), &mockUserLookup{})

	err := svc.Update(context.Background(), "507f1f77bcf86cd799439099", &model.StableBookingUpdate{})
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeConflict {
		t.Errorf("expected conflict for cancelled booking, got %v", err)
	}
}

func TestCancel_Idempotent(t *testing.T) {
	statusUpdates := 0
	repo := &mockStableBookingRepo{
		findByIDFunc: func(ctx context.Context, id string) (*model.StableBooking, error) {
			b := pendingBooking()
			b.ID = id
			b.Status = model.BookingStatusCancelled
			return b, nil
		},
		updateStatusFunc: func(ctx context.Context, id string, status string) error {
			statusUpdates++
			return nil
		},
	}
	svc := newBookingService(repo, &mockLockRepo{}, activeStableLookup(), &mockUserLookup{})

	if err := svc.Cancel(context.Background(), "507f1f77bcf86cd799439099"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if statusUpdates != 0 {
		t.Errorf("expected no status write for already-cancelled booking, got %d", statusUpdates)
	}
}

func TestGetByStable_ReversedWindowRejected(t *testing.T) {
	svc := newBookingService(&mockStableBookingRepo{}, &mockLockRepo{}, activeStableLookup(), &mockUserLookup{})

	from := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	_, err := svc.GetByStable(context.Background(), "507f1f77bcf86cd799439011", from, to)
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeInvalidInput {
		t.Errorf("expected invalid input for reversed window, got %v", err)
	}
}

func TestGetByStable_QueriesFullDays(t *testing.T) {
	var gotFrom, gotTo time.Time
	repo := &mockStableBookingRepo{
		findOverlappingFunc: func(ctx context.Context, stableID string, from, to time.Time) ([]*model.StableBooking, error) {
			gotFrom, gotTo = from, to
			return []*model.StableBooking{pendingBooking()}, nil
		},
	}
	svc := newBookingService(repo, &mockLockRepo{}, activeStableLookup(), &mockUserLookup{})

	from := time.Date(2026, 3, 1, 15, 30, 0, 0, time.UTC)
	to := time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)
	bookings, err := svc.GetByStable(context.Background(), "507f1f77bcf86cd799439011", from, to)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bookings) != 1 {
		t.Fatalf("expected 1 booking, got %d", len(bookings))
	}
	if gotFrom.Hour() != 0 || gotFrom.Day() != 1 {
		t.Errorf("expected window start at beginning of day, got %v", gotFrom)
	}
	if gotTo.Day() != 3 || gotTo.Hour() != 23 {
		t.Errorf("expected window end at end of day, got %v", gotTo)
	}
}
