package repository

import (
	"errors"
)

// ErrNotFound is returned by FindByID when no document has the given id.
var ErrNotFound = errors.New("document not found")

// Sort directions.
const (
	Ascending  = 1
	Descending = -1
)

// Sort orders a Find by a single key. Ties are broken by _id in the same
// direction, so documents inserted in the same instant keep insertion order.
type Sort struct {
	Key       string
	Direction int
}

// UpdateResult reports what an UpdateByID touched.
type UpdateResult struct {
	MatchedCount  int64 `json:"matchedCount"`
	ModifiedCount int64 `json:"modifiedCount"`
}
