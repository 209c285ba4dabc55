package repository

import (
	"context"
	"paddock/pkg/config"
	"paddock/pkg/model"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const LockCollectionName = "BookingLocks"

// BookingLockRepository manages advisory locks keyed by listing and start
// date. Insert fails with a duplicate key error while another request
// holds the lock; the TTL index on expires_at reaps abandoned ones.
type BookingLockRepository interface {
	Acquire(ctx context.Context, lockID string, ttl time.Duration) error
	Release(ctx context.Context, lockID string) error
}

type mongoBookingLockRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewBookingLockRepository(cfg *config.Config) BookingLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingLockRepository{
		cfg:        cfg,
		collection: db.Collection(LockCollectionName),
	}
}

func (r *mongoBookingLockRepository) Acquire(ctx context.Context, lockID string, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC()
	lock := &model.BookingLock{
		ID:        lockID,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}

	_, err := r.collection.InsertOne(ctx, lock)
	return err
}

func (r *mongoBookingLockRepository) Release(ctx context.Context, lockID string) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": lockID})
	return err
}
