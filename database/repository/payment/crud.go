package paymentRepo

import (
	"context"

	"pingparcel/database/repository"
	"pingparcel/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (r *mongoPaymentRepo) Create(ctx context.Context, payment *models.Payment) (primitive.ObjectID, error) {
	id, err := r.store.Insert(ctx, payment)
	if err != nil {
		return primitive.NilObjectID, err
	}
	payment.ID = id
	return id, nil
}

func (r *mongoPaymentRepo) List(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, error) {
	query := bson.M{}
	if filter.Email != "" {
		query["email"] = filter.Email
	}
	if filter.ParcelID != "" {
		query["parcelId"] = filter.ParcelID
	}
	return r.store.Find(ctx, query, repository.Sort{Key: "paid_at", Direction: repository.Descending})
}

// EnsureIndexes creates the indexes backing payment history lookups.
func (r *mongoPaymentRepo) EnsureIndexes(ctx context.Context) error {
	return r.store.EnsureIndexes(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}, {Key: "paid_at", Value: -1}},
			Options: options.Index().SetName("email_paid_at_idx"),
		},
		{
			Keys:    bson.D{{Key: "parcelId", Value: 1}},
			Options: options.Index().SetName("parcelId_idx"),
		},
	})
}
