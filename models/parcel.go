// File: models/parcel.go
package models

import (
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	PaymentStatusUnpaid = "unpaid"
	PaymentStatusPaid   = "paid"
)

// Parcel is a shipment submitted by a user. Fields the service does not know
// about (sender, receiver, weight, cost ...) live in Extra and are stored and
// rendered flat next to the typed ones.
type Parcel struct {
	ID            primitive.ObjectID     `bson:"_id,omitempty" json:"_id"`
	CreatedBy     string                 `bson:"created_by" json:"created_by"`
	CreatedAt     time.Time              `bson:"createdAt" json:"createdAt"`
	PaymentStatus string                 `bson:"payment_status" json:"payment_status"`
	TransactionID string                 `bson:"transactionId,omitempty" json:"transactionId,omitempty"`
	PaidAt        *time.Time             `bson:"paidAt,omitempty" json:"paidAt,omitempty"`
	Extra         map[string]interface{} `bson:",inline" json:"-"`
}

var parcelKeys = map[string]bool{
	"_id":            true,
	"created_by":     true,
	"createdAt":      true,
	"payment_status": true,
	"transactionId":  true,
	"paidAt":         true,
}

// IsPaid reports whether the parcel satisfies the paid invariant: status paid
// with both a transaction id and a payment time.
func (p *Parcel) IsPaid() bool {
	return p.PaymentStatus == PaymentStatusPaid && p.TransactionID != "" && p.PaidAt != nil
}

// DropReservedExtra removes Extra entries that would shadow a typed field.
func (p *Parcel) DropReservedExtra() {
	for k := range p.Extra {
		if parcelKeys[k] {
			delete(p.Extra, k)
		}
	}
}

func (p Parcel) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(p.Extra)+6)
	for k, v := range p.Extra {
		out[k] = v
	}
	if !p.ID.IsZero() {
		out["_id"] = p.ID.Hex()
	}
	out["created_by"] = p.CreatedBy
	out["createdAt"] = p.CreatedAt
	out["payment_status"] = p.PaymentStatus
	if p.TransactionID != "" {
		out["transactionId"] = p.TransactionID
	}
	if p.PaidAt != nil {
		out["paidAt"] = p.PaidAt
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts an open client payload. Only created_by and createdAt
// are taken from the typed keys; status, transaction and _id keys are dropped
// so a client cannot submit an already-paid parcel.
func (p *Parcel) UnmarshalJSON(data []byte) error {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		return fmt.Errorf("parcel payload must be a JSON object")
	}

	*p = Parcel{Extra: map[string]interface{}{}}
	if v, ok := raw["created_by"]; ok && v != nil {
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("created_by must be a string")
		}
		p.CreatedBy = s
	}
	if v, ok := raw["createdAt"].(string); ok {
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			p.CreatedAt = ts
		}
	}
	for k, v := range raw {
		if parcelKeys[k] {
			continue
		}
		p.Extra[k] = v
	}
	return nil
}
