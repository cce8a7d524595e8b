// Package memoryRepo keeps the three collections in process memory. It backs
// DATABASE_DRIVER=memory for local runs and the service tests; it mirrors the
// single-document atomicity of the Mongo repositories.
package memoryRepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"pingparcel/database/repository"
	parcelRepo "pingparcel/database/repository/parcel"
	paymentRepo "pingparcel/database/repository/payment"
	trackingRepo "pingparcel/database/repository/tracking"
	"pingparcel/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	_ parcelRepo.ParcelRepository     = (*ParcelRepo)(nil)
	_ paymentRepo.PaymentRepository   = (*PaymentRepo)(nil)
	_ trackingRepo.TrackingRepository = (*TrackingRepo)(nil)
)

func copyExtra(in map[string]interface{}) map[string]interface{} {
	if in == nil {
		return nil
	}
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// ParcelRepo is an in-memory parcelRepo.ParcelRepository.
type ParcelRepo struct {
	mu      sync.Mutex
	parcels map[primitive.ObjectID]models.Parcel
}

func NewParcelRepo() *ParcelRepo {
	return &ParcelRepo{parcels: make(map[primitive.ObjectID]models.Parcel)}
}

func (r *ParcelRepo) Create(ctx context.Context, parcel *models.Parcel) (primitive.ObjectID, error) {
	if err := ctx.Err(); err != nil {
		return primitive.NilObjectID, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if parcel.ID.IsZero() {
		parcel.ID = primitive.NewObjectID()
	}
	stored := *parcel
	stored.Extra = copyExtra(parcel.Extra)
	r.parcels[stored.ID] = stored
	return stored.ID, nil
}

func (r *ParcelRepo) List(ctx context.Context, createdBy string) ([]models.Parcel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.Parcel, 0, len(r.parcels))
	for _, p := range r.parcels {
		if createdBy != "" && p.CreatedBy != createdBy {
			continue
		}
		p.Extra = copyExtra(p.Extra)
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.Hex() > out[j].ID.Hex()
	})
	return out, nil
}

func (r *ParcelRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Parcel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.parcels[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p.Extra = copyExtra(p.Extra)
	return &p, nil
}

func (r *ParcelRepo) MarkPaid(ctx context.Context, id primitive.ObjectID, transactionID string, paidAt time.Time, onlyUnpaid bool) (repository.UpdateResult, error) {
	if err := ctx.Err(); err != nil {
		return repository.UpdateResult{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.parcels[id]
	if !ok || (onlyUnpaid && p.PaymentStatus == models.PaymentStatusPaid) {
		return repository.UpdateResult{}, nil
	}
	res := repository.UpdateResult{MatchedCount: 1}
	unchanged := p.PaymentStatus == models.PaymentStatusPaid &&
		p.TransactionID == transactionID &&
		p.PaidAt != nil && p.PaidAt.Equal(paidAt)
	if unchanged {
		return res, nil
	}
	p.PaymentStatus = models.PaymentStatusPaid
	p.TransactionID = transactionID
	p.PaidAt = &paidAt
	r.parcels[id] = p
	res.ModifiedCount = 1
	return res, nil
}

func (r *ParcelRepo) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.parcels[id]; !ok {
		return 0, nil
	}
	delete(r.parcels, id)
	return 1, nil
}

func (r *ParcelRepo) EnsureIndexes(ctx context.Context) error { return nil }

// PaymentRepo is an in-memory paymentRepo.PaymentRepository.
type PaymentRepo struct {
	mu       sync.Mutex
	payments []models.Payment
}

func NewPaymentRepo() *PaymentRepo {
	return &PaymentRepo{}
}

func (r *PaymentRepo) Create(ctx context.Context, payment *models.Payment) (primitive.ObjectID, error) {
	if err := ctx.Err(); err != nil {
		return primitive.NilObjectID, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if payment.ID.IsZero() {
		payment.ID = primitive.NewObjectID()
	}
	r.payments = append(r.payments, *payment)
	return payment.ID, nil
}

func (r *PaymentRepo) List(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.Payment, 0, len(r.payments))
	for _, p := range r.payments {
		if filter.Email != "" && p.Email != filter.Email {
			continue
		}
		if filter.ParcelID != "" && p.ParcelID != filter.ParcelID {
			continue
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].PaidAt.Equal(out[j].PaidAt) {
			return out[i].PaidAt.After(out[j].PaidAt)
		}
		return out[i].ID.Hex() > out[j].ID.Hex()
	})
	return out, nil
}

func (r *PaymentRepo) EnsureIndexes(ctx context.Context) error { return nil }

// TrackingRepo is an in-memory trackingRepo.TrackingRepository.
type TrackingRepo struct {
	name   string
	mu     sync.Mutex
	events []models.TrackingEvent
}

func NewTrackingRepo(name string) *TrackingRepo {
	return &TrackingRepo{name: name}
}

func (r *TrackingRepo) Name() string { return r.name }

func (r *TrackingRepo) Append(ctx context.Context, event *models.TrackingEvent) (primitive.ObjectID, error) {
	if err := ctx.Err(); err != nil {
		return primitive.NilObjectID, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	stored := *event
	stored.Extra = copyExtra(event.Extra)
	r.events = append(r.events, stored)
	return stored.ID, nil
}

func (r *TrackingRepo) ListByTrackingID(ctx context.Context, trackingID string) ([]models.TrackingEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.TrackingEvent, 0)
	for _, e := range r.events {
		if e.TrackingID != trackingID {
			continue
		}
		e.Extra = copyExtra(e.Extra)
		out = append(out, e)
	}
	// Stable sort keeps append order for identical timestamps.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, nil
}

func (r *TrackingRepo) EnsureIndexes(ctx context.Context) error { return nil }
