package parcelRepo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes backing the parcel listings.
func (r *mongoParcelRepo) EnsureIndexes(ctx context.Context) error {
	return r.store.EnsureIndexes(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "created_by", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("created_by_createdAt_idx"),
		},
		{
			Keys:    bson.D{{Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("createdAt_idx"),
		},
	})
}
