package repository

import (
	"context"
	"errors"
	"fmt"
	trainerserrors "paddock/internal/trainers/errors"
	"paddock/pkg/config"
	mongotx "paddock/pkg/db/mongo"
	"paddock/pkg/model"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Trainers"
)

type mongoTrainerRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type TrainerRepository interface {
	Create(ctx context.Context, trainer *model.Trainer) error
	FindByID(ctx context.Context, id string) (*model.Trainer, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Trainer, error)
	Update(ctx context.Context, id string, trainer *model.Trainer) (*mongo.UpdateResult, error)
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, city string, status string, limit int, offset int64) ([]*model.Trainer, error)
	CountBySearch(ctx context.Context, city string, status string) (int64, error)
	Count(ctx context.Context) (int64, error)
	ApplyRating(ctx context.Context, id string, mean float64, count int64) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoTrainerRepository(cfg *config.Config) TrainerRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoTrainerRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoTrainerRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

func (r *mongoTrainerRepository) Create(ctx context.Context, trainer *model.Trainer) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	trainer.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, trainer)
	if err != nil {
		return fmt.Errorf("failed to create trainer: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		trainer.ID = oid.Hex()
	}
	return nil
}

func (r *mongoTrainerRepository) FindByID(ctx context.Context, id string) (*model.Trainer, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", trainerserrors.ErrInvalidID, id)
	}

	var trainer model.Trainer
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&trainer)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, trainerserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find trainer: %w", err)
	}

	return &trainer, nil
}

func (r *mongoTrainerRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Trainer, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find trainers: %w", err)
	}
	defer cursor.Close(ctx)

	var trainers []*model.Trainer
	if err = cursor.All(ctx, &trainers); err != nil {
		return nil, fmt.Errorf("failed to decode trainers: %w", err)
	}

	return trainers, nil
}

func (r *mongoTrainerRepository) Update(ctx context.Context, id string, trainer *model.Trainer) (*mongo.UpdateResult, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", trainerserrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"title":                trainer.Title,
			"details":              trainer.Details,
			"hourly_price":         trainer.HourlyPrice,
			"experience":           trainer.Experience,
			"location":             trainer.Location,
			"images":               trainer.Images,
			"weekly_schedule":      trainer.WeeklySchedule,
			"disciplines":          trainer.Disciplines,
			"trainings":            trainer.Trainings,
			"competition_coaching": trainer.CompetitionCoaching,
			"status":               trainer.Status,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update trainer: %w", err)
	}

	if result.MatchedCount == 0 {
		return nil, trainerserrors.ErrNotFound
	}

	return result, nil
}

func (r *mongoTrainerRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", trainerserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete trainer: %w", err)
	}

	if result.DeletedCount == 0 {
		return trainerserrors.ErrNotFound
	}

	return nil
}

func (r *mongoTrainerRepository) Search(ctx context.Context, city string, status string, limit int, offset int64) ([]*model.Trainer, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "rating", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, r.buildSearchFilter(city, status), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to search trainers: %w", err)
	}
	defer cursor.Close(ctx)

	var trainers []*model.Trainer
	if err = cursor.All(ctx, &trainers); err != nil {
		return nil, fmt.Errorf("failed to decode trainers: %w", err)
	}

	return trainers, nil
}

func (r *mongoTrainerRepository) CountBySearch(ctx context.Context, city string, status string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, r.buildSearchFilter(city, status))
	if err != nil {
		return 0, fmt.Errorf("failed to count trainers by search: %w", err)
	}
	return count, nil
}

func (r *mongoTrainerRepository) buildSearchFilter(city string, status string) bson.M {
	filter := bson.M{}
	if city != "" {
		filter["location.city"] = city
	}
	if status != "" {
		filter["status"] = status
	}
	return filter
}

func (r *mongoTrainerRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count trainers: %w", err)
	}

	return count, nil
}

func (r *mongoTrainerRepository) ApplyRating(ctx context.Context, id string, mean float64, count int64) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", trainerserrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"rating":                mean,
			"noof_rating_customers": count,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to apply rating: %w", err)
	}

	if result.MatchedCount == 0 {
		return trainerserrors.ErrNotFound
	}

	return nil
}

func (r *mongoTrainerRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
