package bunstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"reflect"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-shop-auth/repository"
)

// Store is a repository.Repository backed by a bun database. T must be a
// pointer to a bun model.
type Store[T any] struct {
	db       bun.IDB
	handlers repository.ModelHandlers[T]
}

var _ repository.Repository[*struct{}] = (*Store[*struct{}])(nil)

// New creates a store for the model described by handlers.
func New[T any](db bun.IDB, handlers repository.ModelHandlers[T]) (*Store[T], error) {
	if db == nil {
		return nil, errors.New("bunstore: nil database")
	}
	if err := handlers.Validate(); err != nil {
		return nil, err
	}
	return &Store[T]{db: db, handlers: handlers}, nil
}

// WithTx returns a copy of the store bound to tx.
func (s *Store[T]) WithTx(tx bun.IDB) *Store[T] {
	return &Store[T]{db: tx, handlers: s.handlers}
}

func (s *Store[T]) Create(ctx context.Context, record T) (T, error) {
	if s.handlers.GetID(record) == "" {
		s.handlers.SetID(record, uuid.NewString())
	}

	if _, err := s.db.NewInsert().Model(record).Exec(ctx); err != nil {
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
	record := s.handlers.NewRecord()
	q := applyFilter(s.db.NewSelect().Model(record), filter).Limit(1)
	if err := q.Scan(ctx); err != nil {
		var zero T
		return zero, s.translate(err)
	}
	return record, nil
}

func (s *Store[T]) List(ctx context.Context, filter repository.Filter) ([]T, error) {
	records := make([]T, 0)
	q := applyFilter(s.db.NewSelect().Model(&records), filter)
	if filter.Sort != nil {
		q = q.OrderExpr("? "+direction(filter.Sort.Desc), bun.Ident(filter.Sort.Field))
	}
	if err := q.Scan(ctx); err != nil {
		return nil, s.translate(err)
	}
	return records, nil
}

func (s *Store[T]) Update(ctx context.Context, id string, fields repository.Fields) (T, error) {
	var zero T
	if len(fields) == 0 {
		return s.GetByID(ctx, id)
	}

	q := s.db.NewUpdate().
		Model(s.handlers.NewRecord()).
		Where("? = ?", bun.Ident(repository.IDField), id)

	for _, name := range sortedKeys(fields) {
		q = q.Set("? = ?", bun.Ident(name), columnValue(fields[name]))
	}

	res, err := q.Exec(ctx)
	if err != nil {
		return zero, s.translate(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return zero, repository.NotFound(s.handlers.Collection, "id "+id)
	}

	return s.GetByID(ctx, id)
}

func (s *Store[T]) DeleteByID(ctx context.Context, id string) error {
	res, err := s.db.NewDelete().
		Model(s.handlers.NewRecord()).
		Where("? = ?", bun.Ident(repository.IDField), id).
		Exec(ctx)
	if err != nil {
		return s.translate(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return repository.NotFound(s.handlers.Collection, "id "+id)
	}
	return nil
}

// FindOneAndDelete loads the first match and deletes it in one transaction.
func (s *Store[T]) FindOneAndDelete(ctx context.Context, filter repository.Filter) (T, error) {
	var zero T
	db, ok := s.db.(*bun.DB)
	if !ok {
		return s.findOneAndDelete(ctx, s.db, filter)
	}

	var out T
	err := db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		record, err := s.findOneAndDelete(ctx, tx, filter)
		if err != nil {
			return err
		}
		out = record
		return nil
	})
	if err != nil {
		return zero, err
	}
	return out, nil
}

func (s *Store[T]) findOneAndDelete(ctx context.Context, db bun.IDB, filter repository.Filter) (T, error) {
	var zero T
	record, err := s.WithTx(db).FindOne(ctx, filter)
	if err != nil {
		return zero, err
	}
	if err := s.WithTx(db).DeleteByID(ctx, s.handlers.GetID(record)); err != nil {
		return zero, err
	}
	return record, nil
}

func (s *Store[T]) translate(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return repository.NotFound(s.handlers.Collection, "lookup")
	}
	if dup := duplicateKeyError(s.handlers.Collection, err); dup != nil {
		return dup
	}
	return err
}

func applyFilter(q *bun.SelectQuery, filter repository.Filter) *bun.SelectQuery {
	for _, c := range filter.Conditions {
		switch c.Op {
		case repository.OpNe:
			q = q.Where("? != ?", bun.Ident(c.Field), c.Value)
		default:
			q = q.Where("? = ?", bun.Ident(c.Field), c.Value)
		}
	}
	return q
}

func direction(desc bool) string {
	if desc {
		return "DESC"
	}
	return "ASC"
}

func sortedKeys(fields repository.Fields) []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// columnValue encodes composite values (slices, maps, structs) as JSON so
// they land in text columns the same way bun writes them on insert.
func columnValue(v any) any {
	switch v.(type) {
	case nil, time.Time, *time.Time, []byte, json.RawMessage:
		return v
	}

	switch reflect.TypeOf(v).Kind() {
	case reflect.Slice, reflect.Map, reflect.Struct:
		b, err := json.Marshal(v)
		if err != nil {
			return v
		}
		return string(b)
	}
	return v
}
