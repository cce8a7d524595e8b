package parcel

import (
	"context"
	"time"

	"pingparcel/database/repository"
	parcelRepo "pingparcel/database/repository/parcel"
	"pingparcel/models"
)

// ParcelService owns the parcel lifecycle.
type ParcelService interface {
	ListParcels(ctx context.Context, createdBy string) ([]models.Parcel, error)
	GetParcel(ctx context.Context, id string) (*models.Parcel, error)
	CreateParcel(ctx context.Context, parcel *models.Parcel) (string, error)
	MarkPaid(ctx context.Context, id, transactionID string) (*MarkPaidResult, error)
	DeleteParcel(ctx context.Context, id string) (int64, error)
}

// MarkPaidResult is the update outcome together with the parcel as re-read
// after the write.
type MarkPaidResult struct {
	repository.UpdateResult
	Parcel *models.Parcel `json:"parcel"`
}

// DefaultParcelService is the production implementation.
type DefaultParcelService struct {
	Repo parcelRepo.ParcelRepository
	// Now defaults to time.Now.
	Now func() time.Time
}

func NewDefaultParcelService(repo parcelRepo.ParcelRepository) *DefaultParcelService {
	return &DefaultParcelService{Repo: repo, Now: time.Now}
}

func (s *DefaultParcelService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
