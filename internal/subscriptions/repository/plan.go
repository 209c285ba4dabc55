package repository

import (
	"context"
	"errors"
	"fmt"
	subserrors "paddock/internal/subscriptions/errors"
	"paddock/pkg/config"
	"paddock/pkg/model"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	PlanCollectionName = "SubscriptionPlans"
)

type mongoPlanRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

type PlanRepository interface {
	Create(ctx context.Context, plan *model.SubscriptionPlan) error
	FindByID(ctx context.Context, id string) (*model.SubscriptionPlan, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.SubscriptionPlan, error)
	Update(ctx context.Context, id string, plan *model.SubscriptionPlan) (*mongo.UpdateResult, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

func NewMongoPlanRepository(cfg *config.Config) PlanRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoPlanRepository{
		cfg:        cfg,
		collection: db.Collection(PlanCollectionName),
	}
}

func (r *mongoPlanRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoPlanRepository) Create(ctx context.Context, plan *model.SubscriptionPlan) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	plan.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, plan)
	if err != nil {
		return fmt.Errorf("failed to create plan: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		plan.ID = oid.Hex()
	}
	return nil
}

func (r *mongoPlanRepository) FindByID(ctx context.Context, id string) (*model.SubscriptionPlan, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", subserrors.ErrInvalidID, id)
	}

	var plan model.SubscriptionPlan
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&plan)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, subserrors.ErrPlanNotFound
		}
		return nil, fmt.Errorf("failed to find plan: %w", err)
	}

	return &plan, nil
}

func (r *mongoPlanRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.SubscriptionPlan, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "price", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find plans: %w", err)
	}
	defer cursor.Close(ctx)

	var plans []*model.SubscriptionPlan
	if err = cursor.All(ctx, &plans); err != nil {
		return nil, fmt.Errorf("failed to decode plans: %w", err)
	}

	return plans, nil
}

func (r *mongoPlanRepository) Update(ctx context.Context, id string, plan *model.SubscriptionPlan) (*mongo.UpdateResult, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", subserrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"name":          plan.Name,
			"price":         plan.Price,
			"discount_pct":  plan.DiscountPct,
			"duration_days": plan.DurationDays,
			"features":      plan.Features,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update plan: %w", err)
	}

	if result.MatchedCount == 0 {
		return nil, subserrors.ErrPlanNotFound
	}

	return result, nil
}

func (r *mongoPlanRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", subserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete plan: %w", err)
	}

	if result.DeletedCount == 0 {
		return subserrors.ErrPlanNotFound
	}

	return nil
}

func (r *mongoPlanRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count plans: %w", err)
	}

	return count, nil
}
