package repository

import (
	"context"
	"errors"
	"fmt"
	paymentserrors "paddock/internal/payments/errors"
	"paddock/pkg/config"
	"paddock/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	stableBookingCollection  = "StableBookings"
	trainerBookingCollection = "TrainerBookings"
)

// BookingLookupRepository gives the payment flow read access to both
// booking collections; the bookings service owns all writes.
type BookingLookupRepository interface {
	FindStableBooking(ctx context.Context, id string) (*model.StableBooking, error)
	FindTrainerBooking(ctx context.Context, id string) (*model.TrainerBooking, error)
}

type mongoBookingLookupRepository struct {
	cfg      *config.Config
	stables  *mongo.Collection
	trainers *mongo.Collection
}

func NewBookingLookupRepository(cfg *config.Config) BookingLookupRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingLookupRepository{
		cfg:      cfg,
		stables:  db.Collection(stableBookingCollection),
		trainers: db.Collection(trainerBookingCollection),
	}
}

func (r *mongoBookingLookupRepository) FindStableBooking(ctx context.Context, id string) (*model.StableBooking, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", paymentserrors.ErrInvalidID, id)
	}

	var booking model.StableBooking
	err = r.stables.FindOne(ctx, bson.M{"_id": objectID}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, paymentserrors.ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to find stable booking: %w", err)
	}

	return &booking, nil
}

func (r *mongoBookingLookupRepository) FindTrainerBooking(ctx context.Context, id string) (*model.TrainerBooking, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", paymentserrors.ErrInvalidID, id)
	}

	var booking model.TrainerBooking
	err = r.trainers.FindOne(ctx, bson.M{"_id": objectID}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, paymentserrors.ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to find trainer booking: %w", err)
	}

	return &booking, nil
}
