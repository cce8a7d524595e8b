package parcelRepo

import (
	"context"
	"time"

	"pingparcel/database/repository"
	"pingparcel/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func (r *mongoParcelRepo) Create(ctx context.Context, parcel *models.Parcel) (primitive.ObjectID, error) {
	id, err := r.store.Insert(ctx, parcel)
	if err != nil {
		return primitive.NilObjectID, err
	}
	parcel.ID = id
	return id, nil
}

func (r *mongoParcelRepo) List(ctx context.Context, createdBy string) ([]models.Parcel, error) {
	filter := bson.M{}
	if createdBy != "" {
		filter["created_by"] = createdBy
	}
	return r.store.Find(ctx, filter, repository.Sort{Key: "createdAt", Direction: repository.Descending})
}

func (r *mongoParcelRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Parcel, error) {
	return r.store.FindByID(ctx, id)
}

func (r *mongoParcelRepo) MarkPaid(ctx context.Context, id primitive.ObjectID, transactionID string, paidAt time.Time, onlyUnpaid bool) (repository.UpdateResult, error) {
	var extra bson.M
	if onlyUnpaid {
		extra = bson.M{"payment_status": bson.M{"$ne": models.PaymentStatusPaid}}
	}
	patch := bson.M{
		"payment_status": models.PaymentStatusPaid,
		"transactionId":  transactionID,
		"paidAt":         paidAt,
	}
	return r.store.UpdateByID(ctx, id, extra, patch)
}

func (r *mongoParcelRepo) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	return r.store.DeleteByID(ctx, id)
}
