package parcel

import (
	"context"
	"errors"

	"pingparcel/database/repository"
	"pingparcel/metrics"
	"pingparcel/models"
	"pingparcel/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func (s *DefaultParcelService) ListParcels(ctx context.Context, createdBy string) ([]models.Parcel, error) {
	parcels, err := s.Repo.List(ctx, createdBy)
	if err != nil {
		return nil, utils.NewStoreError("list parcels", err)
	}
	return parcels, nil
}

func (s *DefaultParcelService) GetParcel(ctx context.Context, id string) (*models.Parcel, error) {
	oid, err := utils.ParseObjectID(id)
	if err != nil {
		return nil, err
	}
	p, err := s.Repo.GetByID(ctx, oid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, utils.NewNotFound("parcel not found")
		}
		return nil, utils.NewStoreError("get parcel", err)
	}
	return p, nil
}

// CreateParcel stores the submitted record as unpaid. Business fields are not
// validated.
func (s *DefaultParcelService) CreateParcel(ctx context.Context, parcel *models.Parcel) (string, error) {
	if parcel == nil {
		return "", utils.NewInvalidArgument("parcel body is required")
	}
	parcel.ID = primitive.NilObjectID
	parcel.PaymentStatus = models.PaymentStatusUnpaid
	parcel.TransactionID = ""
	parcel.PaidAt = nil
	if parcel.CreatedAt.IsZero() {
		parcel.CreatedAt = s.now()
	}
	parcel.DropReservedExtra()

	id, err := s.Repo.Create(ctx, parcel)
	if err != nil {
		return "", utils.NewStoreError("create parcel", err)
	}
	metrics.ParcelsCreatedTotal.Inc()
	return id.Hex(), nil
}

// MarkPaid sets the paid fields without the already-paid guard that
// RecordPayment applies; a repeat call overwrites transactionId and paidAt.
func (s *DefaultParcelService) MarkPaid(ctx context.Context, id, transactionID string) (*MarkPaidResult, error) {
	oid, err := utils.ParseObjectID(id)
	if err != nil {
		return nil, err
	}
	if transactionID == "" {
		return nil, utils.NewInvalidArgument("transactionId is required")
	}

	res, err := s.Repo.MarkPaid(ctx, oid, transactionID, s.now(), false)
	if err != nil {
		return nil, utils.NewStoreError("mark parcel paid", err)
	}
	if res.MatchedCount == 0 {
		return nil, utils.NewNotFound("parcel not found")
	}

	p, err := s.Repo.GetByID(ctx, oid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, utils.NewNotFound("parcel not found")
		}
		return nil, utils.NewStoreError("get parcel", err)
	}
	return &MarkPaidResult{UpdateResult: res, Parcel: p}, nil
}

func (s *DefaultParcelService) DeleteParcel(ctx context.Context, id string) (int64, error) {
	oid, err := utils.ParseObjectID(id)
	if err != nil {
		return 0, err
	}
	n, err := s.Repo.Delete(ctx, oid)
	if err != nil {
		return 0, utils.NewStoreError("delete parcel", err)
	}
	if n == 0 {
		return 0, utils.NewNotFound("parcel not found")
	}
	return n, nil
}
