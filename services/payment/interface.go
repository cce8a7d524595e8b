package payment

import (
	"context"
	"time"

	parcelRepo "pingparcel/database/repository/parcel"
	paymentRepo "pingparcel/database/repository/payment"
	"pingparcel/models"

	"go.uber.org/zap"
)

// PaymentService records completed payments against parcels.
type PaymentService interface {
	RecordPayment(ctx context.Context, req models.PaymentRequest) (string, error)
	ListPayments(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, error)
}

// DefaultPaymentService is the production implementation.
type DefaultPaymentService struct {
	Parcels  parcelRepo.ParcelRepository
	Payments paymentRepo.PaymentRepository
	Logger   *zap.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

func NewDefaultPaymentService(parcels parcelRepo.ParcelRepository, payments paymentRepo.PaymentRepository, logger *zap.Logger) *DefaultPaymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultPaymentService{
		Parcels:  parcels,
		Payments: payments,
		Logger:   logger,
		Now:      time.Now,
	}
}

func (s *DefaultPaymentService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
