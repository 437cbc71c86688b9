package mongostore

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/goliatone/go-shop-auth/repository"
)

const mongoIDField = "_id"

// Store is a repository.Repository backed by a MongoDB collection. T must be
// a pointer to a struct with bson tags matching the storage field names.
type Store[T any] struct {
	coll     *mongo.Collection
	handlers repository.ModelHandlers[T]
}

var _ repository.Repository[*struct{}] = (*Store[*struct{}])(nil)

// New creates a store over db using handlers.Collection as the collection name.
func New[T any](db *mongo.Database, handlers repository.ModelHandlers[T]) (*Store[T], error) {
	if db == nil {
		return nil, errors.New("mongostore: nil database")
	}
	if err := handlers.Validate(); err != nil {
		return nil, err
	}
	return NewWithCollection(db.Collection(handlers.Collection), handlers), nil
}

// NewWithCollection creates a store over an existing collection handle.
func NewWithCollection[T any](coll *mongo.Collection, handlers repository.ModelHandlers[T]) *Store[T] {
	if handlers.Collection == "" && coll != nil {
		handlers.Collection = coll.Name()
	}
	return &Store[T]{coll: coll, handlers: handlers}
}

func (s *Store[T]) Create(ctx context.Context, record T) (T, error) {
	if s.handlers.GetID(record) == "" {
		s.handlers.SetID(record, uuid.NewString())
	}

	if _, err := s.coll.InsertOne(ctx, record); err != nil {
		var zero T
		return zero, s.translate(err)
	}
	return record, nil
}

func (s *Store[T]) GetByID(ctx context.Context, id string) (T, error) {
	record, err := s.FindOne(ctx, repository.Where(repository.IDField, id))
	if repository.IsNotFound(err) {
		return record, repository.NotFound(s.handlers.Collection, "id "+id)
	}
	return record, err
}

func (s *Store[T]) FindOne(ctx context.Context, filter repository.Filter) (T, error) {
	var zero T
	record := s.handlers.NewRecord()
	if err := s.coll.FindOne(ctx, toBSON(filter)).Decode(record); err != nil {
		return zero, s.translate(err)
	}
	return record, nil
}

func (s *Store[T]) List(ctx context.Context, filter repository.Filter) ([]T, error) {
	opts := options.Find()
	if filter.Sort != nil {
		dir := 1
		if filter.Sort.Desc {
			dir = -1
		}
		opts.SetSort(bson.D{{Key: fieldName(filter.Sort.Field), Value: dir}})
	}

	cur, err := s.coll.Find(ctx, toBSON(filter), opts)
	if err != nil {
		return nil, s.translate(err)
	}
	defer cur.Close(ctx)

	records := make([]T, 0)
	for cur.Next(ctx) {
		record := s.handlers.NewRecord()
		if err := cur.Decode(record); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := cur.Err(); err != nil {
		return nil, s.translate(err)
	}
	return records, nil
}

func (s *Store[T]) Update(ctx context.Context, id string, fields repository.Fields) (T, error) {
	var zero T
	if len(fields) == 0 {
		return s.GetByID(ctx, id)
	}

	set := bson.M{}
	for k, v := range fields {
		set[fieldName(k)] = v
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	record := s.handlers.NewRecord()
	err := s.coll.FindOneAndUpdate(ctx, bson.M{mongoIDField: id}, bson.M{"$set": set}, opts).Decode(record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return zero, repository.NotFound(s.handlers.Collection, "id "+id)
		}
		return zero, s.translate(err)
	}
	return record, nil
}

func (s *Store[T]) DeleteByID(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{mongoIDField: id})
	if err != nil {
		return s.translate(err)
	}
	if res.DeletedCount == 0 {
		return repository.NotFound(s.handlers.Collection, "id "+id)
	}
	return nil
}

func (s *Store[T]) FindOneAndDelete(ctx context.Context, filter repository.Filter) (T, error) {
	var zero T
	record := s.handlers.NewRecord()
	if err := s.coll.FindOneAndDelete(ctx, toBSON(filter)).Decode(record); err != nil {
		return zero, s.translate(err)
	}
	return record, nil
}

func (s *Store[T]) translate(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return repository.NotFound(s.handlers.Collection, "lookup")
	}
	if dup := duplicateKeyError(s.handlers.Collection, err); dup != nil {
		return dup
	}
	return err
}

func toBSON(filter repository.Filter) bson.M {
	out := bson.M{}
	for _, c := range filter.Conditions {
		name := fieldName(c.Field)
		switch c.Op {
		case repository.OpNe:
			out[name] = bson.M{"$ne": c.Value}
		default:
			out[name] = c.Value
		}
	}
	return out
}

func fieldName(field string) string {
	if field == repository.IDField {
		return mongoIDField
	}
	return field
}
