package repository

import (
	"context"
	"paddock/pkg/config"
	"paddock/pkg/model"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const RatingCollectionName = "RatingEvents"

// RatingEventRepository persists individual rating submissions. The events
// are the audit trail behind the running mean stored on each listing.
type RatingEventRepository interface {
	Insert(ctx context.Context, event *model.RatingEvent) (string, error)
	ExistsForUser(ctx context.Context, entityKind, entityID, userID string) (bool, error)
	CountForEntity(ctx context.Context, entityKind, entityID string) (int64, error)
}

type mongoRatingEventRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewRatingEventRepository(cfg *config.Config) RatingEventRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoRatingEventRepository{
		cfg:        cfg,
		collection: db.Collection(RatingCollectionName),
	}
}

func (r *mongoRatingEventRepository) Insert(ctx context.Context, event *model.RatingEvent) (string, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	event.ID = primitive.NewObjectID().Hex()
	event.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)

	if _, err := r.collection.InsertOne(ctx, event); err != nil {
		r.cfg.Log.Error("Failed to insert rating event", "entity_id", event.EntityID, "error", err)
		return "", err
	}

	return event.ID, nil
}

func (r *mongoRatingEventRepository) ExistsForUser(ctx context.Context, entityKind, entityID, userID string) (bool, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{
		"entity_kind": entityKind,
		"entity_id":   entityID,
		"user_id":     userID,
	})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *mongoRatingEventRepository) CountForEntity(ctx context.Context, entityKind, entityID string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	return r.collection.CountDocuments(ctx, bson.M{
		"entity_kind": entityKind,
		"entity_id":   entityID,
	})
}

func (r *mongoRatingEventRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}
