// Package storage is the persistence boundary. Entities are stored as JSON
// documents in named collections; the store decides durability, the entity
// enforces its own invariants.
//
// Implementations:
//   - Memory: process-local, used by tests and the default dev profile
//   - Postgres: one JSONB table shared by every collection
//   - Cached: Redis read-through wrapper around either, evicting on writes
package storage

import (
	"context"
	"encoding/json"
	"fmt"
)

// Record is implemented by every persisted entity.
type Record interface {
	RecordID() string
}

// Collection stores one entity type. Errors are sentinel.ErrNotFound,
// sentinel.ErrConflict, or wrapped driver errors for an unreachable store.
type Collection[T Record] interface {
	// Insert stores a new record; ErrConflict if the id exists.
	Insert(ctx context.Context, record T) error
	// Update replaces an existing record; ErrNotFound if missing.
	Update(ctx context.Context, record T) error
	FindByID(ctx context.Context, id string) (T, error)
	// FindMany returns the records among ids that exist, skipping unknown ids.
	FindMany(ctx context.Context, ids []string) ([]T, error)
	// List returns every record in the collection, ordered by id.
	List(ctx context.Context) ([]T, error)
	// Execute loads the record, runs fn and saves the result atomically.
	// When fn returns an error nothing is written and the error is returned
	// unchanged.
	Execute(ctx context.Context, id string, fn func(T) error) (T, error)
}

func encode[T Record](record T) ([]byte, error) {
	body, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	return body, nil
}

func decode[T Record](body []byte) (T, error) {
	var out T
	if err := json.Unmarshal(body, &out); err != nil {
		var zero T
		return zero, fmt.Errorf("decode record: %w", err)
	}
	return out, nil
}
