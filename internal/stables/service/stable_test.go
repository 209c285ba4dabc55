package service

import (
	"context"
	"errors"
	stableserrors "paddock/internal/stables/errors"
	"paddock/internal/stables/validator"
	"paddock/pkg/config"
	apperrors "paddock/pkg/errors"
	"paddock/pkg/logger"
	"paddock/pkg/model"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	mongotx "paddock/pkg/db/mongo"
)

type mockStableRepository struct {
	createFunc        func(ctx context.Context, stable *model.Stable) error
	findByIDFunc      func(ctx context.Context, id string) (*model.Stable, error)
	findAllFunc       func(ctx context.Context, limit int, offset int64) ([]*model.Stable, error)
	updateFunc        func(ctx context.Context, id string, stable *model.Stable) (*mongo.UpdateResult, error)
	deleteFunc        func(ctx context.Context, id string) error
	searchFunc        func(ctx context.Context, city, status string, limit int, offset int64) ([]*model.Stable, error)
	countBySearchFunc func(ctx context.Context, city, status string) (int64, error)
	countFunc         func(ctx context.Context) (int64, error)
	applyRatingFunc   func(ctx context.Context, id string, mean float64, count int64) error
}

func (m *mockStableRepository) Create(ctx context.Context, stable *model.Stable) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, stable)
	}
	return nil
}

func (m *mockStableRepository) FindByID(ctx context.Context, id string) (*model.Stable, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, stableserrors.ErrNotFound
}

func (m *mockStableRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Stable, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, limit, offset)
	}
	return []*model.Stable{}, nil
}

func (m *mockStableRepository) Update(ctx context.Context, id string, stable *model.Stable) (*mongo.UpdateResult, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, stable)
	}
	return &mongo.UpdateResult{MatchedCount: 1}, nil
}

func (m *mockStableRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockStableRepository) Search(ctx context.Context, city, status string, limit int, offset int64) ([]*model.Stable, error) {
	if m.searchFunc != nil {
		return m.searchFunc(ctx, city, status, limit, offset)
	}
	return []*model.Stable{}, nil
}

func (m *mockStableRepository) CountBySearch(ctx context.Context, city, status string) (int64, error) {
	if m.countBySearchFunc != nil {
		return m.countBySearchFunc(ctx, city, status)
	}
	return 0, nil
}

func (m *mockStableRepository) Count(ctx context.Context) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx)
	}
	return 0, nil
}

func (m *mockStableRepository) ApplyRating(ctx context.Context, id string, mean float64, count int64) error {
	if m.applyRatingFunc != nil {
		return m.applyRatingFunc(ctx, id, mean, count)
	}
	return nil
}

func (m *mockStableRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(mongo.NewSessionContext(ctx, nil))
}

type mockBookingLookupRepository struct {
	findOverlappingFunc func(ctx context.Context, stableID string, from, to time.Time) ([]*model.StableBooking, error)
}

func (m *mockBookingLookupRepository) FindOverlapping(ctx context.Context, stableID string, from, to time.Time) ([]*model.StableBooking, error) {
	if m.findOverlappingFunc != nil {
		return m.findOverlappingFunc(ctx, stableID, from, to)
	}
	return []*model.StableBooking{}, nil
}

type mockRatingEventRepository struct {
	insertFunc         func(ctx context.Context, event *model.RatingEvent) (string, error)
	existsForUserFunc  func(ctx context.Context, entityKind, entityID, userID string) (bool, error)
	countForEntityFunc func(ctx context.Context, entityKind, entityID string) (int64, error)
}

func (m *mockRatingEventRepository) Insert(ctx context.Context, event *model.RatingEvent) (string, error) {
	if m.insertFunc != nil {
		return m.insertFunc(ctx, event)
	}
	return "event-id", nil
}

func (m *mockRatingEventRepository) ExistsForUser(ctx context.Context, entityKind, entityID, userID string) (bool, error) {
	if m.existsForUserFunc != nil {
		return m.existsForUserFunc(ctx, entityKind, entityID, userID)
	}
	return false, nil
}

func (m *mockRatingEventRepository) CountForEntity(ctx context.Context, entityKind, entityID string) (int64, error) {
	if m.countForEntityFunc != nil {
		return m.countForEntityFunc(ctx, entityKind, entityID)
	}
	return 0, nil
}

func newTestConfig() *config.Config {
	log := logger.New(logger.Config{
		Level:     "info",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})

	return &config.Config{
		Log:          log,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
}

func newTestService(repo *mockStableRepository, bookingRepo *mockBookingLookupRepository, ratingRepo *mockRatingEventRepository) *stableService {
	cfg := newTestConfig()
	return &stableService{
		repo:        repo,
		bookingRepo: bookingRepo,
		ratingRepo:  ratingRepo,
		validator:   validator.NewStableValidator(cfg.Log),
		cfg:         cfg,
	}
}

func validStable() *model.Stable {
	return &model.Stable{
		OwnerID: "507f1f77bcf86cd799439011",
		Title:   "Sunrise Stables",
		Location: model.Location{
			Address: "12 Meadow Lane",
			City:    "Hamburg",
		},
		Rates: []model.PriceRate{
			{Amount: 50, Unit: model.RateUnitDay},
			{Amount: 300, Unit: model.RateUnitWeek},
		},
		Status:   model.StatusActive,
		Capacity: 12,
	}
}

func TestCreate_Valid(t *testing.T) {
	var created *model.Stable
	repo := &mockStableRepository{
		createFunc: func(ctx context.Context, stable *model.Stable) error {
			created = stable
			return nil
		},
	}
	svc := newTestService(repo, &mockBookingLookupRepository{}, &mockRatingEventRepository{})

	stable := validStable()
	stable.Location.City = "  HAMBURG "
	if err := svc.Create(context.Background(), stable); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if created == nil {
		t.Fatal("expected Create to reach the repository")
	}
	if created.Location.City != "hamburg" {
		t.Errorf("expected sanitized city %q, got %q", "hamburg", created.Location.City)
	}
}

func TestCreate_DefaultsStatusToActive(t *testing.T) {
	repo := &mockStableRepository{}
	svc := newTestService(repo, &mockBookingLookupRepository{}, &mockRatingEventRepository{})

	stable := validStable()
	stable.Status = ""
	if err := svc.Create(context.Background(), stable); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stable.Status != model.StatusActive {
		t.Errorf("expected default status %q, got %q", model.StatusActive, stable.Status)
	}
}

func TestCreate_DuplicateRateUnitRejected(t *testing.T) {
	svc := newTestService(&mockStableRepository{}, &mockBookingLookupRepository{}, &mockRatingEventRepository{})

	stable := validStable()
	stable.Rates = []model.PriceRate{
		{Amount: 50, Unit: model.RateUnitDay},
		{Amount: 45, Unit: model.RateUnitDay},
	}

	err := svc.Create(context.Background(), stable)
	if err == nil {
		t.Fatal("expected validation error for duplicate rate unit")
	}
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeValidation {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	repo := &mockStableRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Stable, error) {
			return nil, stableserrors.ErrNotFound
		},
	}
	svc := newTestService(repo, &mockBookingLookupRepository{}, &mockRatingEventRepository{})

	_, err := svc.GetByID(context.Background(), "507f1f77bcf86cd799439011")
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeNotFound {
		t.Errorf("expected not found error, got %v", err)
	}
}

func TestGetAll_CountAndFindRunConcurrently(t *testing.T) {
	repo := &mockStableRepository{
		countFunc: func(ctx context.Context) (int64, error) {
			time.Sleep(10 * time.Millisecond)
			return 42, nil
		},
		findAllFunc: func(ctx context.Context, limit int, offset int64) ([]*model.Stable, error) {
			time.Sleep(10 * time.Millisecond)
			return []*model.Stable{validStable()}, nil
		},
	}
	svc := newTestService(repo, &mockBookingLookupRepository{}, &mockRatingEventRepository{})

	// Run with -race to catch shared state issues between the goroutines.
	for i := 0; i < 20; i++ {
		stables, count, err := svc.GetAll(context.Background(), 10, 0)
		if err != nil {
			t.Fatalf("iteration %d: unexpected error: %v", i, err)
		}
		if count != 42 {
			t.Errorf("iteration %d: expected count 42, got %d", i, count)
		}
		if len(stables) != 1 {
			t.Errorf("iteration %d: expected 1 stable, got %d", i, len(stables))
		}
	}
}

func TestGetAll_CountFailure(t *testing.T) {
	repo := &mockStableRepository{
		countFunc: func(ctx context.Context) (int64, error) {
			return 0, errors.New("boom")
		},
	}
	svc := newTestService(repo, &mockBookingLookupRepository{}, &mockRatingEventRepository{})

	_, _, err := svc.GetAll(context.Background(), 10, 0)
	if err == nil {
		t.Fatal("expected error when count fails")
	}
}

func TestSearch_RequiresFilter(t *testing.T) {
	svc := newTestService(&mockStableRepository{}, &mockBookingLookupRepository{}, &mockRatingEventRepository{})

	_, _, err := svc.Search(context.Background(), "", "", 10, 0)
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeInvalidInput {
		t.Errorf("expected invalid input error, got %v", err)
	}
}

func TestSearch_RejectsUnknownStatus(t *testing.T) {
	svc := newTestService(&mockStableRepository{}, &mockBookingLookupRepository{}, &mockRatingEventRepository{})

	_, _, err := svc.Search(context.Background(), "hamburg", "archived", 10, 0)
	if err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestSearch_SanitizesCity(t *testing.T) {
	var capturedCity string
	repo := &mockStableRepository{
		searchFunc: func(ctx context.Context, city, status string, limit int, offset int64) ([]*model.Stable, error) {
			capturedCity = city
			return []*model.Stable{}, nil
		},
	}
	svc := newTestService(repo, &mockBookingLookupRepository{}, &mockRatingEventRepository{})

	_, _, err := svc.Search(context.Background(), "Ham-Burg! (a+)+b", "", 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if capturedCity != "hamburgab" {
		t.Errorf("expected sanitized city %q, got %q", "hamburgab", capturedCity)
	}
}

func TestUpdate_MergesFields(t *testing.T) {
	existing := validStable()
	existing.ID = "507f1f77bcf86cd799439011"

	var updated *model.Stable
	repo := &mockStableRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Stable, error) {
			return existing, nil
		},
		updateFunc: func(ctx context.Context, id string, stable *model.Stable) (*mongo.UpdateResult, error) {
			updated = stable
			return &mongo.UpdateResult{MatchedCount: 1}, nil
		},
	}
	svc := newTestService(repo, &mockBookingLookupRepository{}, &mockRatingEventRepository{})

	capacity := 20
	err := svc.Update(context.Background(), existing.ID, &model.StableUpdate{
		Title:    "Sunset Stables",
		Capacity: &capacity,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if updated.Title != "Sunset Stables" {
		t.Errorf("expected updated title, got %q", updated.Title)
	}
	if updated.Capacity != 20 {
		t.Errorf("expected updated capacity 20, got %d", updated.Capacity)
	}
	if updated.Location.City != existing.Location.City {
		t.Errorf("expected untouched city to survive the merge")
	}
}

func TestDelete_NotFound(t *testing.T) {
	repo := &mockStableRepository{
		deleteFunc: func(ctx context.Context, id string) error {
			return stableserrors.ErrNotFound
		},
	}
	svc := newTestService(repo, &mockBookingLookupRepository{}, &mockRatingEventRepository{})

	err := svc.Delete(context.Background(), "507f1f77bcf86cd799439011")
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeNotFound {
		t.Errorf("expected not found error, got %v", err)
	}
}
