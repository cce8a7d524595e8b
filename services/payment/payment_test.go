package payment

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"pingparcel/database/repository"
	memoryRepo "pingparcel/database/repository/memory"
	"pingparcel/models"
	"pingparcel/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type failingParcels struct {
	*memoryRepo.ParcelRepo
	err error
}

func (r *failingParcels) MarkPaid(ctx context.Context, id primitive.ObjectID, tx string, at time.Time, onlyUnpaid bool) (repository.UpdateResult, error) {
	return repository.UpdateResult{}, r.err
}

type failingPayments struct {
	*memoryRepo.PaymentRepo
	err error
}

func (r *failingPayments) Create(ctx context.Context, p *models.Payment) (primitive.ObjectID, error) {
	return primitive.NilObjectID, r.err
}

type fixture struct {
	svc      *DefaultPaymentService
	parcels  *memoryRepo.ParcelRepo
	payments *memoryRepo.PaymentRepo
	clock    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		parcels:  memoryRepo.NewParcelRepo(),
		payments: memoryRepo.NewPaymentRepo(),
		clock:    time.Date(2025, 6, 1, 12, 30, 15, 123456789, time.UTC),
	}
	f.svc = NewDefaultPaymentService(f.parcels, f.payments, nil)
	f.svc.Now = func() time.Time { return f.clock }
	return f
}

func (f *fixture) newParcel(t *testing.T) string {
	t.Helper()
	p := &models.Parcel{CreatedBy: "a@b.com", PaymentStatus: models.PaymentStatusUnpaid, CreatedAt: f.clock}
	id, err := f.parcels.Create(context.Background(), p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return id.Hex()
}

func request(parcelID, tx string) models.PaymentRequest {
	return models.PaymentRequest{
		ParcelID:      parcelID,
		Email:         "a@b.com",
		Amount:        500,
		PaymentMethod: "card",
		TransactionID: tx,
	}
}

func TestRecordPaymentMarksParcelAndWritesRecord(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	parcelID := f.newParcel(t)

	id, err := f.svc.RecordPayment(ctx, request(parcelID, "T1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		t.Fatalf("inserted id %q is not an ObjectID", id)
	}

	oid, _ := primitive.ObjectIDFromHex(parcelID)
	p, _ := f.parcels.GetByID(ctx, oid)
	if !p.IsPaid() || p.TransactionID != "T1" {
		t.Fatalf("parcel not marked paid: %+v", p)
	}

	records, _ := f.payments.List(ctx, models.PaymentFilter{ParcelID: parcelID})
	if len(records) != 1 {
		t.Fatalf("payments = %d, want 1", len(records))
	}
	rec := records[0]
	if !rec.PaidAt.Equal(*p.PaidAt) {
		t.Fatalf("payment paid_at %v differs from parcel paidAt %v", rec.PaidAt, p.PaidAt)
	}
	if rec.PaidAtString != "2025-06-01T12:30:15.123Z" {
		t.Fatalf("paid_at_string = %q", rec.PaidAtString)
	}
	if rec.Amount != 500 || rec.PaymentMethod != "card" || rec.Email != "a@b.com" {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestRecordPaymentTwiceConflicts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	parcelID := f.newParcel(t)

	if _, err := f.svc.RecordPayment(ctx, request(parcelID, "T1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := f.svc.RecordPayment(ctx, request(parcelID, "T1"))
	if utils.KindOf(err) != utils.KindConflict {
		t.Fatalf("kind = %s, want conflict", utils.KindOf(err))
	}

	records, _ := f.payments.List(ctx, models.PaymentFilter{ParcelID: parcelID})
	if len(records) != 1 {
		t.Fatalf("payments for parcel = %d, want 1", len(records))
	}
}

func TestRecordPaymentUnknownParcelConflicts(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.RecordPayment(context.Background(), request(primitive.NewObjectID().Hex(), "T1"))
	if utils.KindOf(err) != utils.KindConflict {
		t.Fatalf("kind = %s, want conflict", utils.KindOf(err))
	}
	if records, _ := f.payments.List(context.Background(), models.PaymentFilter{}); len(records) != 0 {
		t.Fatalf("no payment should be written, got %d", len(records))
	}
}

func TestRecordPaymentConcurrentAttemptsProduceOneRecord(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	parcelID := f.newParcel(t)

	const attempts = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.RecordPayment(ctx, request(parcelID, "T1"))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case utils.KindOf(err) == utils.KindConflict:
				conflicts++
			}
		}()
	}
	wg.Wait()

	if successes != 1 || conflicts != attempts-1 {
		t.Fatalf("successes = %d, conflicts = %d", successes, conflicts)
	}
	records, _ := f.payments.List(ctx, models.PaymentFilter{ParcelID: parcelID})
	if len(records) != 1 {
		t.Fatalf("payments for parcel = %d, want 1", len(records))
	}
}

func TestRecordPaymentValidation(t *testing.T) {
	f := newFixture(t)
	parcelID := f.newParcel(t)

	tests := []struct {
		name string
		req  models.PaymentRequest
	}{
		{"missing parcel", request("", "T1")},
		{"missing transaction", request(parcelID, "")},
		{"malformed parcel id", request("not-an-id", "T1")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.RecordPayment(context.Background(), tt.req)
			if utils.KindOf(err) != utils.KindInvalidArgument {
				t.Fatalf("kind = %s, want invalid_argument", utils.KindOf(err))
			}
		})
	}
}

func TestRecordPaymentParcelUpdateFailureWritesNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	parcelID := f.newParcel(t)
	f.svc.Parcels = &failingParcels{ParcelRepo: f.parcels, err: errors.New("write concern timeout")}

	_, err := f.svc.RecordPayment(ctx, request(parcelID, "T1"))
	if utils.KindOf(err) != utils.KindStore {
		t.Fatalf("kind = %s, want store_error", utils.KindOf(err))
	}
	if records, _ := f.payments.List(ctx, models.PaymentFilter{}); len(records) != 0 {
		t.Fatalf("payment written despite failed parcel update: %d", len(records))
	}
}

func TestRecordPaymentInsertFailureLeavesParcelPaid(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	parcelID := f.newParcel(t)
	f.svc.Payments = &failingPayments{PaymentRepo: f.payments, err: errors.New("disk full")}

	_, err := f.svc.RecordPayment(ctx, request(parcelID, "T1"))
	if utils.KindOf(err) != utils.KindStore {
		t.Fatalf("kind = %s, want store_error", utils.KindOf(err))
	}
	oid, _ := primitive.ObjectIDFromHex(parcelID)
	p, _ := f.parcels.GetByID(ctx, oid)
	if !p.IsPaid() {
		t.Fatal("parcel transition should stand even when the record insert fails")
	}
}

func TestListPaymentsNewestFirst(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	for i := 0; i < 3; i++ {
		parcelID := f.newParcel(t)
		if _, err := f.svc.RecordPayment(ctx, request(parcelID, "T")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		f.clock = f.clock.Add(time.Minute)
	}

	list, err := f.svc.ListPayments(ctx, models.PaymentFilter{Email: "a@b.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("len = %d, want 3", len(list))
	}
	for i := 1; i < len(list); i++ {
		if !list[i].PaidAt.Before(list[i-1].PaidAt) {
			t.Fatal("payments must be newest first")
		}
	}
}
