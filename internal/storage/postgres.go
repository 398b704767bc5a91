package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"qms/pkg/platform/sentinel"
	"qms/pkg/platform/tx"
)

// Postgres stores a collection in the shared `records` table as JSONB.
// See internal/platform/postgres/migrations for the schema.
type Postgres[T Record] struct {
	db         *sql.DB
	collection string
}

// NewPostgres constructs a PostgreSQL-backed collection.
func NewPostgres[T Record](db *sql.DB, collection string) *Postgres[T] {
	return &Postgres[T]{db: db, collection: collection}
}

func (s *Postgres[T]) Insert(ctx context.Context, record T) error {
	body, err := encode(record)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO records (collection, id, body, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (collection, id) DO NOTHING
	`
	res, err := tx.QuerierFrom(ctx, s.db).ExecContext(ctx, query, s.collection, record.RecordID(), body)
	if err != nil {
		return fmt.Errorf("insert %s record: %w", s.collection, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sentinel.ErrConflict
	}
	return nil
}

func (s *Postgres[T]) Update(ctx context.Context, record T) error {
	body, err := encode(record)
	if err != nil {
		return err
	}
	query := `UPDATE records SET body = $3, updated_at = now() WHERE collection = $1 AND id = $2`
	res, err := tx.QuerierFrom(ctx, s.db).ExecContext(ctx, query, s.collection, record.RecordID(), body)
	if err != nil {
		return fmt.Errorf("update %s record: %w", s.collection, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres[T]) FindByID(ctx context.Context, id string) (T, error) {
	return s.findOne(ctx, `SELECT body FROM records WHERE collection = $1 AND id = $2`, id)
}

func (s *Postgres[T]) findOne(ctx context.Context, query, id string) (T, error) {
	var zero T
	var body []byte
	err := tx.QuerierFrom(ctx, s.db).QueryRowContext(ctx, query, s.collection, id).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return zero, sentinel.ErrNotFound
		}
		return zero, fmt.Errorf("find %s record: %w", s.collection, err)
	}
	return decode[T](body)
}

// FindMany uses a single ANY($2) round trip instead of one query per id.
func (s *Postgres[T]) FindMany(ctx context.Context, ids []string) ([]T, error) {
	if len(ids) == 0 {
		return []T{}, nil
	}
	query := `SELECT body FROM records WHERE collection = $1 AND id = ANY($2::text[]) ORDER BY id`
	return s.queryAll(ctx, query, s.collection, pq.Array(ids))
}

func (s *Postgres[T]) List(ctx context.Context) ([]T, error) {
	return s.queryAll(ctx, `SELECT body FROM records WHERE collection = $1 ORDER BY id`, s.collection)
}

func (s *Postgres[T]) queryAll(ctx context.Context, query string, args ...any) ([]T, error) {
	rows, err := tx.QuerierFrom(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s records: %w", s.collection, err)
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan %s record: %w", s.collection, err)
		}
		record, err := decode[T](body)
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s records: %w", s.collection, err)
	}
	return out, nil
}

// Execute locks the row with SELECT ... FOR UPDATE for the duration of fn.
func (s *Postgres[T]) Execute(ctx context.Context, id string, fn func(T) error) (T, error) {
	var result T
	err := tx.RunInTx(ctx, s.db, func(txCtx context.Context) error {
		record, err := s.findOne(txCtx, `SELECT body FROM records WHERE collection = $1 AND id = $2 FOR UPDATE`, id)
		if err != nil {
			return err
		}
		if err := fn(record); err != nil {
			return err
		}
		if err := s.Update(txCtx, record); err != nil {
			return err
		}
		result = record
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}
