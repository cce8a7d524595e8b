// File: database/repository/tracking/interface.go
package trackingRepo

import (
	"context"

	"pingparcel/database/repository"
	"pingparcel/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TrackingRepository is an append-only log of tracking events.
type TrackingRepository interface {
	Append(ctx context.Context, event *models.TrackingEvent) (primitive.ObjectID, error)
	// ListByTrackingID returns the events for trackingID oldest first.
	ListByTrackingID(ctx context.Context, trackingID string) ([]models.TrackingEvent, error)
	EnsureIndexes(ctx context.Context) error
	// Name identifies the underlying collection.
	Name() string
}

type mongoTrackingRepo struct {
	store *repository.MongoStore[models.TrackingEvent]
}

// NewMongoTrackingRepo returns a TrackingRepository over the named collection.
// Both the "trackings" and "tracking" ledgers are built with it.
func NewMongoTrackingRepo(db *mongo.Database, collection string) TrackingRepository {
	return &mongoTrackingRepo{
		store: repository.NewMongoStore[models.TrackingEvent](db.Collection(collection)),
	}
}

func (r *mongoTrackingRepo) Name() string {
	return r.store.Collection().Name()
}

func (r *mongoTrackingRepo) Append(ctx context.Context, event *models.TrackingEvent) (primitive.ObjectID, error) {
	id, err := r.store.Insert(ctx, event)
	if err != nil {
		return primitive.NilObjectID, err
	}
	event.ID = id
	return id, nil
}

func (r *mongoTrackingRepo) ListByTrackingID(ctx context.Context, trackingID string) ([]models.TrackingEvent, error) {
	return r.store.Find(ctx, bson.M{"tracking_id": trackingID}, repository.Sort{Key: "timestamp", Direction: repository.Ascending})
}

// EnsureIndexes creates the index backing per-tracking-id history reads.
func (r *mongoTrackingRepo) EnsureIndexes(ctx context.Context) error {
	return r.store.EnsureIndexes(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "tracking_id", Value: 1}, {Key: "timestamp", Value: 1}},
			Options: options.Index().SetName("tracking_id_timestamp_idx"),
		},
	})
}
