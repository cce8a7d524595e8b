package paymentRepo

import (
	"context"

	"pingparcel/database"
	"pingparcel/database/repository"
	"pingparcel/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// PaymentRepository stores payment records. Records are never updated or deleted.
type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) (primitive.ObjectID, error)
	// List returns payments matching filter, newest first.
	List(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, error)
	EnsureIndexes(ctx context.Context) error
}

type mongoPaymentRepo struct {
	store *repository.MongoStore[models.Payment]
}

// NewMongoPaymentRepo returns a PaymentRepository backed by the payments collection of db.
func NewMongoPaymentRepo(db *mongo.Database) PaymentRepository {
	return &mongoPaymentRepo{
		store: repository.NewMongoStore[models.Payment](db.Collection(database.PaymentsCollection)),
	}
}
