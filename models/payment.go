package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PaidAtLayout renders paid_at_string the same way a JavaScript client's
// toISOString would: UTC with millisecond precision.
const PaidAtLayout = "2006-01-02T15:04:05.000Z07:00"

// Payment is an immutable record of a completed delivery-fee charge.
type Payment struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	ParcelID      string             `bson:"parcelId" json:"parcelId"`
	Email         string             `bson:"email" json:"email"`
	Amount        float64            `bson:"amount" json:"amount"`
	PaymentMethod string             `bson:"paymentMethod" json:"paymentMethod"`
	TransactionID string             `bson:"transactionId" json:"transactionId"`
	PaidAt        time.Time          `bson:"paid_at" json:"paid_at"`
	PaidAtString  string             `bson:"paid_at_string" json:"paid_at_string"`
}

// PaymentRequest is the body of POST /payments.
type PaymentRequest struct {
	ParcelID      string  `json:"parcelId" binding:"required"`
	Email         string  `json:"email"`
	Amount        float64 `json:"amount"`
	PaymentMethod string  `json:"paymentMethod"`
	TransactionID string  `json:"transactionId" binding:"required"`
}

// PaymentFilter narrows GET /payments. Empty fields match everything.
type PaymentFilter struct {
	Email    string
	ParcelID string
}

// PaymentIntentRequest is the body of POST /create-payment-intent.
type PaymentIntentRequest struct {
	AmountInCents int64 `json:"amountInCents"`
}
