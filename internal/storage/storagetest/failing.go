// Package storagetest provides Collection doubles for service tests.
package storagetest

import (
	"context"

	"qms/internal/storage"
	"qms/pkg/platform/sentinel"
)

// Failing is a collection whose every call fails with Err, wrapping
// sentinel.ErrUnavailable when Err is nil.
type Failing[T storage.Record] struct {
	Err error
}

var _ storage.Collection[storage.Record] = Failing[storage.Record]{}

func (f Failing[T]) err() error {
	if f.Err != nil {
		return f.Err
	}
	return sentinel.ErrUnavailable
}

func (f Failing[T]) Insert(context.Context, T) error { return f.err() }
func (f Failing[T]) Update(context.Context, T) error { return f.err() }

func (f Failing[T]) FindByID(context.Context, string) (T, error) {
	var zero T
	return zero, f.err()
}

func (f Failing[T]) FindMany(context.Context, []string) ([]T, error) { return nil, f.err() }
func (f Failing[T]) List(context.Context) ([]T, error)               { return nil, f.err() }

func (f Failing[T]) Execute(context.Context, string, func(T) error) (T, error) {
	var zero T
	return zero, f.err()
}
