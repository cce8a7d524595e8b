// File: database/repository/parcel/interface.go
package parcelRepo

import (
	"context"
	"time"

	"pingparcel/database"
	"pingparcel/database/repository"
	"pingparcel/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ParcelRepository defines parcel data access.
type ParcelRepository interface {
	// Create inserts a parcel and returns its store-assigned id.
	Create(ctx context.Context, parcel *models.Parcel) (primitive.ObjectID, error)
	// List returns parcels newest first, restricted to createdBy when it is non-empty.
	List(ctx context.Context, createdBy string) ([]models.Parcel, error)
	// GetByID returns repository.ErrNotFound when the parcel does not exist.
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Parcel, error)
	// MarkPaid sets the paid fields. With onlyUnpaid the update only matches a
	// parcel whose payment_status is not already "paid".
	MarkPaid(ctx context.Context, id primitive.ObjectID, transactionID string, paidAt time.Time, onlyUnpaid bool) (repository.UpdateResult, error)
	// Delete returns the number of deleted parcels.
	Delete(ctx context.Context, id primitive.ObjectID) (int64, error)
	EnsureIndexes(ctx context.Context) error
}

type mongoParcelRepo struct {
	store *repository.MongoStore[models.Parcel]
}

// NewMongoParcelRepo returns a ParcelRepository backed by the parcels collection of db.
func NewMongoParcelRepo(db *mongo.Database) ParcelRepository {
	return &mongoParcelRepo{
		store: repository.NewMongoStore[models.Parcel](db.Collection(database.ParcelsCollection)),
	}
}
