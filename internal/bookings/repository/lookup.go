package repository

import (
	"context"
	"errors"
	"fmt"
	"paddock/pkg/config"
	"paddock/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrListingNotFound = errors.New("listing not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidRefID    = errors.New("invalid reference ID format")
)

// ListingLookupRepository reads stables and trainers for price resolution
// and existence checks. Write access to those collections stays with their
// owning services.
type ListingLookupRepository interface {
	FindStable(ctx context.Context, id string) (*model.Stable, error)
	FindTrainer(ctx context.Context, id string) (*model.Trainer, error)
}

// UserLookupRepository verifies booking participants exist.
type UserLookupRepository interface {
	Exists(ctx context.Context, id string) (bool, error)
}

type mongoListingLookupRepository struct {
	cfg      *config.Config
	stables  *mongo.Collection
	trainers *mongo.Collection
}

func NewListingLookupRepository(cfg *config.Config) ListingLookupRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoListingLookupRepository{
		cfg:      cfg,
		stables:  db.Collection("Stables"),
		trainers: db.Collection("Trainers"),
	}
}

func (r *mongoListingLookupRepository) FindStable(ctx context.Context, id string) (*model.Stable, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRefID, id)
	}

	var stable model.Stable
	err = r.stables.FindOne(ctx, bson.M{"_id": objectID}).Decode(&stable)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrListingNotFound
		}
		return nil, fmt.Errorf("failed to find stable: %w", err)
	}

	return &stable, nil
}

func (r *mongoListingLookupRepository) FindTrainer(ctx context.Context, id string) (*model.Trainer, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRefID, id)
	}

	var trainer model.Trainer
	err = r.trainers.FindOne(ctx, bson.M{"_id": objectID}).Decode(&trainer)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrListingNotFound
		}
		return nil, fmt.Errorf("failed to find trainer: %w", err)
	}

	return &trainer, nil
}

type mongoUserLookupRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewUserLookupRepository(cfg *config.Config) UserLookupRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoUserLookupRepository{
		cfg:        cfg,
		collection: db.Collection("Users"),
	}
}

func (r *mongoUserLookupRepository) Exists(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, fmt.Errorf("%w: %s", ErrInvalidRefID, id)
	}

	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": objectID})
	if err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return count > 0, nil
}
