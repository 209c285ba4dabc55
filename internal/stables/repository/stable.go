package repository

import (
	"context"
	"errors"
	"fmt"
	stableserrors "paddock/internal/stables/errors"
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
	CollectionName = "Stables"
)

type mongoStableRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type StableRepository interface {
	Create(ctx context.Context, stable *model.Stable) error
	FindByID(ctx context.Context, id string) (*model.Stable, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Stable, error)
	Update(ctx context.Context, id string, stable *model.Stable) (*mongo.UpdateResult, error)
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, city string, status string, limit int, offset int64) ([]*model.Stable, error)
	CountBySearch(ctx context.Context, city string, status string) (int64, error)
	Count(ctx context.Context) (int64, error)
	ApplyRating(ctx context.Context, id string, mean float64, count int64) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoStableRepository(cfg *config.Config) StableRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoStableRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout wraps the context with a timeout unless we are already inside
// a transaction; a SessionContext cannot be wrapped without breaking
// transaction semantics.
func (r *mongoStableRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
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

func (r *mongoStableRepository) Create(ctx context.Context, stable *model.Stable) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	stable.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, stable)
	if err != nil {
		return fmt.Errorf("failed to create stable: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		stable.ID = oid.Hex()
	}
	return nil
}

func (r *mongoStableRepository) FindByID(ctx context.Context, id string) (*model.Stable, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", stableserrors.ErrInvalidID, id)
	}

	var stable model.Stable
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&stable)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, stableserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find stable: %w", err)
	}

	return &stable, nil
}

func (r *mongoStableRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Stable, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find stables: %w", err)
	}
	defer cursor.Close(ctx)

	var stables []*model.Stable
	if err = cursor.All(ctx, &stables); err != nil {
		return nil, fmt.Errorf("failed to decode stables: %w", err)
	}

	return stables, nil
}

func (r *mongoStableRepository) Update(ctx context.Context, id string, stable *model.Stable) (*mongo.UpdateResult, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", stableserrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"title":    stable.Title,
			"details":  stable.Details,
			"location": stable.Location,
			"images":   stable.Images,
			"rates":    stable.Rates,
			"services": stable.Services,
			"slots":    stable.Slots,
			"status":   stable.Status,
			"capacity": stable.Capacity,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update stable: %w", err)
	}

	if result.MatchedCount == 0 {
		return nil, stableserrors.ErrNotFound
	}

	return result, nil
}

func (r *mongoStableRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", stableserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete stable: %w", err)
	}

	if result.DeletedCount == 0 {
		return stableserrors.ErrNotFound
	}

	return nil
}

func (r *mongoStableRepository) Search(ctx context.Context, city string, status string, limit int, offset int64) ([]*model.Stable, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "rating", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, r.buildSearchFilter(city, status), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to search stables: %w", err)
	}
	defer cursor.Close(ctx)

	var stables []*model.Stable
	if err = cursor.All(ctx, &stables); err != nil {
		return nil, fmt.Errorf("failed to decode stables: %w", err)
	}

	return stables, nil
}

func (r *mongoStableRepository) CountBySearch(ctx context.Context, city string, status string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, r.buildSearchFilter(city, status))
	if err != nil {
		return 0, fmt.Errorf("failed to count stables by search: %w", err)
	}
	return count, nil
}

func (r *mongoStableRepository) buildSearchFilter(city string, status string) bson.M {
	filter := bson.M{}
	if city != "" {
		filter["location.city"] = city
	}
	if status != "" {
		filter["status"] = status
	}
	return filter
}

func (r *mongoStableRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count stables: %w", err)
	}

	return count, nil
}

// ApplyRating persists a recomputed running mean and customer count.
// Callers run this inside a transaction together with the rating event
// insert so concurrent submissions cannot lose an update.
func (r *mongoStableRepository) ApplyRating(ctx context.Context, id string, mean float64, count int64) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", stableserrors.ErrInvalidID, id)
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
		return stableserrors.ErrNotFound
	}
	return nil
}

func (r *mongoStableRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
