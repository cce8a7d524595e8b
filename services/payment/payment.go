package payment

import (
	"context"

	"pingparcel/metrics"
	"pingparcel/models"
	"pingparcel/utils"

	"go.uber.org/zap"
)

// RecordPayment marks the parcel paid and only then writes the payment record.
// The parcel update is conditional on the parcel not being paid yet; when it
// modifies nothing the call fails with Conflict and no record is written, so a
// payment record always implies a successful parcel transition.
func (s *DefaultPaymentService) RecordPayment(ctx context.Context, req models.PaymentRequest) (string, error) {
	if req.ParcelID == "" {
		return "", utils.NewInvalidArgument("parcelId is required")
	}
	if req.TransactionID == "" {
		return "", utils.NewInvalidArgument("transactionId is required")
	}
	oid, err := utils.ParseObjectID(req.ParcelID)
	if err != nil {
		return "", err
	}

	paidAt := s.now().UTC()
	res, err := s.Parcels.MarkPaid(ctx, oid, req.TransactionID, paidAt, true)
	if err != nil {
		return "", utils.NewStoreError("mark parcel paid", err)
	}
	if res.ModifiedCount == 0 {
		metrics.PaymentConflictsTotal.Inc()
		return "", utils.NewConflict("parcel not found or already paid")
	}

	record := &models.Payment{
		ParcelID:      req.ParcelID,
		Email:         req.Email,
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
		TransactionID: req.TransactionID,
		PaidAt:        paidAt,
		PaidAtString:  paidAt.Format(models.PaidAtLayout),
	}
	id, err := s.Payments.Create(ctx, record)
	if err != nil {
		// The parcel stays paid; its state is the authority, not the payment log.
		s.Logger.Error("payment record insert failed after parcel was marked paid",
			zap.String("parcelId", req.ParcelID),
			zap.String("transactionId", req.TransactionID),
			zap.Error(err))
		return "", utils.NewStoreError("insert payment", err)
	}

	metrics.PaymentsRecordedTotal.Inc()
	return id.Hex(), nil
}

func (s *DefaultPaymentService) ListPayments(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, error) {
	payments, err := s.Payments.List(ctx, filter)
	if err != nil {
		return nil, utils.NewStoreError("list payments", err)
	}
	return payments, nil
}
