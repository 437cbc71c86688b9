package repository

import (
	"context"
)

// Repository is the storage contract shared by every backend. Records are
// addressed by an opaque string id and fields use their storage names
// (snake_case), so the same Filter works against documents and tables.
type Repository[T any] interface {
	Create(ctx context.Context, record T) (T, error)
	GetByID(ctx context.Context, id string) (T, error)
	FindOne(ctx context.Context, filter Filter) (T, error)
	List(ctx context.Context, filter Filter) ([]T, error)
	// Update replaces the given fields on the record and returns the stored
	// record after the write.
	Update(ctx context.Context, id string, fields Fields) (T, error)
	DeleteByID(ctx context.Context, id string) error
	FindOneAndDelete(ctx context.Context, filter Filter) (T, error)
}

// Fields maps storage field names to their new values.
type Fields map[string]any

// ModelHandlers let the generic stores create records and read or assign ids
// without reflection.
type ModelHandlers[T any] struct {
	NewRecord func() T
	GetID     func(T) string
	SetID     func(T, string)
	// Collection is the table or collection name.
	Collection string
}

// Validate checks that every handler a store relies on is present.
func (h ModelHandlers[T]) Validate() error {
	if h.NewRecord == nil || h.GetID == nil || h.SetID == nil {
		return ErrInvalidHandlers
	}
	return nil
}
