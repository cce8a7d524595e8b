// File: database/repository/store.go
package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store is the set of primitives every collection is accessed through.
type Store[T any] interface {
	// Insert stores doc and returns the id assigned by the store.
	Insert(ctx context.Context, doc *T) (primitive.ObjectID, error)
	// Find returns every document matching filter, ordered by sort.
	Find(ctx context.Context, filter bson.M, sort Sort) ([]T, error)
	// FindByID returns ErrNotFound when the id is unknown.
	FindByID(ctx context.Context, id primitive.ObjectID) (*T, error)
	// UpdateByID applies patch as $set to the document with id that also
	// matches extra (which may be nil).
	UpdateByID(ctx context.Context, id primitive.ObjectID, extra bson.M, patch bson.M) (UpdateResult, error)
	// DeleteByID returns the number of deleted documents.
	DeleteByID(ctx context.Context, id primitive.ObjectID) (int64, error)
}

// MongoStore implements Store over a single MongoDB collection.
type MongoStore[T any] struct {
	coll *mongo.Collection
}

// NewMongoStore wraps coll.
func NewMongoStore[T any](coll *mongo.Collection) *MongoStore[T] {
	return &MongoStore[T]{coll: coll}
}

// Collection exposes the underlying collection for index management.
func (s *MongoStore[T]) Collection() *mongo.Collection {
	return s.coll
}

func (s *MongoStore[T]) Insert(ctx context.Context, doc *T) (primitive.ObjectID, error) {
	res, err := s.coll.InsertOne(ctx, doc)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to insert into %s: %w", s.coll.Name(), err)
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("unexpected id type %T from %s", res.InsertedID, s.coll.Name())
	}
	return id, nil
}

func (s *MongoStore[T]) Find(ctx context.Context, filter bson.M, sort Sort) ([]T, error) {
	if filter == nil {
		filter = bson.M{}
	}
	opts := options.Find()
	if sort.Key != "" {
		opts.SetSort(bson.D{
			{Key: sort.Key, Value: sort.Direction},
			{Key: "_id", Value: sort.Direction},
		})
	}

	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", s.coll.Name(), err)
	}
	defer cursor.Close(ctx)

	docs := make([]T, 0)
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", s.coll.Name(), err)
	}
	return docs, nil
}

func (s *MongoStore[T]) FindByID(ctx context.Context, id primitive.ObjectID) (*T, error) {
	var doc T
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch %s with id %s: %w", s.coll.Name(), id.Hex(), err)
	}
	return &doc, nil
}

func (s *MongoStore[T]) UpdateByID(ctx context.Context, id primitive.ObjectID, extra bson.M, patch bson.M) (UpdateResult, error) {
	filter := bson.M{}
	for k, v := range extra {
		filter[k] = v
	}
	filter["_id"] = id

	res, err := s.coll.UpdateOne(ctx, filter, bson.M{"$set": patch})
	if err != nil {
		return UpdateResult{}, fmt.Errorf("failed to update %s with id %s: %w", s.coll.Name(), id.Hex(), err)
	}
	return UpdateResult{MatchedCount: res.MatchedCount, ModifiedCount: res.ModifiedCount}, nil
}

func (s *MongoStore[T]) DeleteByID(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, fmt.Errorf("failed to delete %s with id %s: %w", s.coll.Name(), id.Hex(), err)
	}
	return res.DeletedCount, nil
}

// EnsureIndexes creates the given indexes on the store's collection.
func (s *MongoStore[T]) EnsureIndexes(ctx context.Context, models []mongo.IndexModel) error {
	if len(models) == 0 {
		return nil
	}
	if _, err := s.coll.Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("failed to create %s indexes: %w", s.coll.Name(), err)
	}
	return nil
}
