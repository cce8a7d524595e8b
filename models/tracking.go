package models

import (
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TrackingEvent is one entry in a parcel's delivery journey.
type TrackingEvent struct {
	ID         primitive.ObjectID     `bson:"_id,omitempty" json:"_id"`
	TrackingID string                 `bson:"tracking_id" json:"tracking_id"`
	ParcelID   string                 `bson:"parcel_id,omitempty" json:"parcel_id,omitempty"`
	Status     string                 `bson:"status" json:"status"`
	Message    string                 `bson:"message,omitempty" json:"message,omitempty"`
	UpdatedBy  string                 `bson:"updated_by" json:"updated_by"`
	Timestamp  time.Time              `bson:"timestamp" json:"timestamp"`
	Extra      map[string]interface{} `bson:",inline" json:"-"`
}

// timestamp and time are server owned; a client value for either is discarded.
var trackingKeys = map[string]bool{
	"_id":         true,
	"tracking_id": true,
	"parcel_id":   true,
	"status":      true,
	"message":     true,
	"updated_by":  true,
	"timestamp":   true,
	"time":        true,
}

// DropReservedExtra removes Extra entries that would shadow a typed field or
// smuggle in a client timestamp.
func (e *TrackingEvent) DropReservedExtra() {
	for k := range e.Extra {
		if trackingKeys[k] {
			delete(e.Extra, k)
		}
	}
}

func (e TrackingEvent) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(e.Extra)+7)
	for k, v := range e.Extra {
		out[k] = v
	}
	if !e.ID.IsZero() {
		out["_id"] = e.ID.Hex()
	}
	out["tracking_id"] = e.TrackingID
	if e.ParcelID != "" {
		out["parcel_id"] = e.ParcelID
	}
	out["status"] = e.Status
	if e.Message != "" {
		out["message"] = e.Message
	}
	out["updated_by"] = e.UpdatedBy
	out["timestamp"] = e.Timestamp
	return json.Marshal(out)
}

func (e *TrackingEvent) UnmarshalJSON(data []byte) error {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		return fmt.Errorf("tracking event payload must be a JSON object")
	}

	*e = TrackingEvent{Extra: map[string]interface{}{}}
	for key, dst := range map[string]*string{
		"tracking_id": &e.TrackingID,
		"parcel_id":   &e.ParcelID,
		"status":      &e.Status,
		"message":     &e.Message,
		"updated_by":  &e.UpdatedBy,
	} {
		v, ok := raw[key]
		if !ok || v == nil {
			continue
		}
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("%s must be a string", key)
		}
		*dst = s
	}
	for k, v := range raw {
		if trackingKeys[k] {
			continue
		}
		e.Extra[k] = v
	}
	return nil
}
