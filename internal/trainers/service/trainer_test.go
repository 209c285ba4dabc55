package service

import (
	"context"
	trainerserrors "paddock/internal/trainers/errors"
	"paddock/internal/trainers/validator"
	"paddock/pkg/config"
	apperrors "paddock/pkg/errors"
	"paddock/pkg/logger"
	"paddock/pkg/model"
	"testing"
	"time"

	mongotx "paddock/pkg/db/mongo"

	"go.mongodb.org/mongo-driver/mongo"
)

type mockTrainerRepository struct {
	createFunc      func(ctx context.Context, trainer *model.Trainer) error
	findByIDFunc    func(ctx context.Context, id string) (*model.Trainer, error)
	findAllFunc     func(ctx context.Context, limit int, offset int64) ([]*model.Trainer, error)
	countFunc       func(ctx context.Context) (int64, error)
	applyRatingFunc func(ctx context.Context, id string, mean float64, count int64) error
}

func (m *mockTrainerRepository) Create(ctx context.Context, trainer *model.Trainer) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, trainer)
	}
	return nil
}

func (m *mockTrainerRepository) FindByID(ctx context.Context, id string) (*model.Trainer, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, trainerserrors.ErrNotFound
}

func (m *mockTrainerRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Trainer, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, limit, offset)
	}
	return []*model.Trainer{}, nil
}

func (m *mockTrainerRepository) Update(ctx context.Context, id string, trainer *model.Trainer) (*mongo.UpdateResult, error) {
	return &mongo.UpdateResult{MatchedCount: 1}, nil
}

func (m *mockTrainerRepository) Delete(ctx context.Context, id string) error {
	return nil
}

func (m *mockTrainerRepository) Search(ctx context.Context, city, status string, limit int, offset int64) ([]*model.Trainer, error) {
	return []*model.Trainer{}, nil
}

func (m *mockTrainerRepository) CountBySearch(ctx context.Context, city, status string) (int64, error) {
	return 0, nil
}

func (m *mockTrainerRepository) Count(ctx context.Context) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx)
	}
	return 0, nil
}

func (m *mockTrainerRepository) ApplyRating(ctx context.Context, id string, mean float64, count int64) error {
	if m.applyRatingFunc != nil {
		return m.applyRatingFunc(ctx, id, mean, count)
	}
	return nil
}

func (m *mockTrainerRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(mongo.NewSessionContext(ctx, nil))
}

type mockRatingRepo struct {
	insertFunc func(ctx context.Context, event *model.RatingEvent) (string, error)
	existsFunc func(ctx context.Context, entityKind, entityID, userID string) (bool, error)
}

func (m *mockRatingRepo) Insert(ctx context.Context, event *model.RatingEvent) (string, error) {
	if m.insertFunc != nil {
		return m.insertFunc(ctx, event)
	}
	return "event-id", nil
}

func (m *mockRatingRepo) ExistsForUser(ctx context.Context, entityKind, entityID, userID string) (bool, error) {
	if m.existsFunc != nil {
		return m.existsFunc(ctx, entityKind, entityID, userID)
	}
	return false, nil
}

func newService(repo *mockTrainerRepository, ratingRepo *mockRatingRepo) *trainerService {
	log := logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	})
	cfg := &config.Config{
		Log:          log,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
	return &trainerService{
		repo:       repo,
		ratingRepo: ratingRepo,
		validator:  validator.NewTrainerValidator(log),
		cfg:        cfg,
	}
}

func validTrainer() *model.Trainer {
	return &model.Trainer{
		OwnerID:     "507f1f77bcf86cd799439011",
		Title:       "Dressage with Anna",
		HourlyPrice: 80,
		Location: model.Location{
			Address: "3 Paddock Way",
			City:    "munich",
		},
		WeeklySchedule: []model.ScheduleEntry{
			{Day: "Monday", Start: "09:00", End: "17:00"},
			{Day: "Wednesday", Start: "09:00", End: "13:00"},
		},
		Status: model.StatusActive,
	}
}

func TestCreate_SanitizesDisciplineNames(t *testing.T) {
	var created *model.Trainer
	repo := &mockTrainerRepository{
		createFunc: func(ctx context.Context, trainer *model.Trainer) error {
			created = trainer
			return nil
		},
	}
	svc := newService(repo, &mockRatingRepo{})

	trainer := validTrainer()
	trainer.Disciplines = []model.AddonService{{Name: "  Show Jumping  ", PricePerDay: 30}}

	if err := svc.Create(context.Background(), trainer); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.Disciplines[0].Name != "show jumping" {
		t.Errorf("expected sanitized discipline name, got %q", created.Disciplines[0].Name)
	}
}

func TestCreate_DuplicateWeekdayRejected(t *testing.T) {
	svc := newService(&mockTrainerRepository{}, &mockRatingRepo{})

	trainer := validTrainer()
	trainer.WeeklySchedule = []model.ScheduleEntry{
		{Day: "Monday", Start: "09:00", End: "12:00"},
		{Day: "Monday", Start: "14:00", End: "17:00"},
	}

	err := svc.Create(context.Background(), trainer)
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeValidation {
		t.Errorf("expected validation error for duplicate weekday, got %v", err)
	}
}

func TestCreate_RequiresSchedule(t *testing.T) {
	svc := newService(&mockTrainerRepository{}, &mockRatingRepo{})

	trainer := validTrainer()
	trainer.WeeklySchedule = nil

	if err := svc.Create(context.Background(), trainer); err == nil {
		t.Fatal("expected error for missing weekly schedule")
	}
}

func TestSubmitRating_UpdatesMean(t *testing.T) {
	trainer := validTrainer()
	trainer.ID = "507f1f77bcf86cd799439011"
	trainer.Rating = 3
	trainer.NoofRatingCustomers = 2

	var appliedMean float64
	var appliedCount int64
	repo := &mockTrainerRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Trainer, error) {
			return trainer, nil
		},
		applyRatingFunc: func(ctx context.Context, id string, mean float64, count int64) error {
			appliedMean = mean
			appliedCount = count
			return nil
		},
	}
	svc := newService(repo, &mockRatingRepo{})

	score := 5.0
	rated, err := svc.SubmitRating(context.Background(), &model.RatingSubmission{
		EntityID: trainer.ID,
		UserID:   "507f1f77bcf86cd799439012",
		Score:    &score,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// (3*2 + 5) / 3
	want := 11.0 / 3.0
	if appliedMean != want || appliedCount != 3 {
		t.Errorf("expected mean=%v count=3, got mean=%v count=%d", want, appliedMean, appliedCount)
	}
	if rated.NoofRatingCustomers != 3 {
		t.Errorf("returned trainer not updated: count=%d", rated.NoofRatingCustomers)
	}
}

func TestSubmitRating_SecondRatingBySameUserConflicts(t *testing.T) {
	trainer := validTrainer()
	trainer.ID = "507f1f77bcf86cd799439011"

	repo := &mockTrainerRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Trainer, error) {
			return trainer, nil
		},
	}
	ratingRepo := &mockRatingRepo{
		existsFunc: func(ctx context.Context, entityKind, entityID, userID string) (bool, error) {
			return true, nil
		},
	}
	svc := newService(repo, ratingRepo)

	score := 4.0
	_, err := svc.SubmitRating(context.Background(), &model.RatingSubmission{
		EntityID: trainer.ID,
		UserID:   "507f1f77bcf86cd799439012",
		Score:    &score,
	})
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeConflict {
		t.Errorf("expected conflict, got %v", err)
	}
}

func TestSubmitRating_RacingDuplicateInsertConflicts(t *testing.T) {
	trainer := validTrainer()
	trainer.ID = "507f1f77bcf86cd799439011"

	repo := &mockTrainerRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Trainer, error) {
			return trainer, nil
		},
	}
	ratingRepo := &mockRatingRepo{
		insertFunc: func(ctx context.Context, event *model.RatingEvent) (string, error) {
			return "", mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
		},
	}
	svc := newService(repo, ratingRepo)

	score := 4.0
	_, err := svc.SubmitRating(context.Background(), &model.RatingSubmission{
		EntityID: trainer.ID,
		UserID:   "507f1f77bcf86cd799439012",
		Score:    &score,
	})
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeConflict {
		t.Errorf("expected conflict for racing duplicate rating, got %v", err)
	}
}

func TestGetAll_PropagatesCounts(t *testing.T) {
	repo := &mockTrainerRepository{
		countFunc: func(ctx context.Context) (int64, error) { return 7, nil },
		findAllFunc: func(ctx context.Context, limit int, offset int64) ([]*model.Trainer, error) {
			return []*model.Trainer{validTrainer()}, nil
		},
	}
	svc := newService(repo, &mockRatingRepo{})

	trainers, count, err := svc.GetAll(context.Background(), 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 7 || len(trainers) != 1 {
		t.Errorf("expected count=7 len=1, got count=%d len=%d", count, len(trainers))
	}
}
