package utils

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ParseObjectID validates id before it reaches the store, so a malformed id is
// reported as InvalidArgument instead of surfacing as a store failure.
func ParseObjectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, NewInvalidArgument("invalid id: " + id)
	}
	return oid, nil
}
