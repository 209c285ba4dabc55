package repository

import (
	"context"
	"fmt"
	"paddock/pkg/config"
	"paddock/pkg/model"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// BookingLookupRepository is a read-only view over the stable bookings
// collection, used by the availability report.
type BookingLookupRepository interface {
	FindOverlapping(ctx context.Context, stableID string, from, to time.Time) ([]*model.StableBooking, error)
}

type mongoBookingLookupRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewBookingLookupRepository(cfg *config.Config) BookingLookupRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingLookupRepository{
		cfg:        cfg,
		collection: db.Collection("StableBookings"),
	}
}

// FindOverlapping returns non-cancelled bookings whose span could
// intersect [from, to]. A booking without an end date spans only its
// start day, covered by the $or arm on start_date.
func (r *mongoBookingLookupRepository) FindOverlapping(ctx context.Context, stableID string, from, to time.Time) ([]*model.StableBooking, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"stable_id": stableID,
		"status":    bson.M{"$ne": model.BookingStatusCancelled},
		"$or": []bson.M{
			{
				"start_date": bson.M{"$lte": to},
				"end_date":   bson.M{"$gte": from},
			},
			{
				"end_date":   nil,
				"start_date": bson.M{"$gte": from, "$lte": to},
			},
		},
	}

	opts := options.Find().SetSort(bson.D{{Key: "start_date", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find overlapping bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.StableBooking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}

	return bookings, nil
}
