package storage

import (
	"context"
	"sort"
	"sync"

	"qms/pkg/platform/sentinel"
)

// Memory keeps encoded documents in a map. Callers always receive fresh
// copies, so mutating a returned entity never changes stored state.
type Memory[T Record] struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

// NewMemory constructs an empty in-memory collection.
func NewMemory[T Record]() *Memory[T] {
	return &Memory[T]{docs: make(map[string][]byte)}
}

func (m *Memory[T]) Insert(_ context.Context, record T) error {
	body, err := encode(record)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[record.RecordID()]; ok {
		return sentinel.ErrConflict
	}
	m.docs[record.RecordID()] = body
	return nil
}

func (m *Memory[T]) Update(_ context.Context, record T) error {
	body, err := encode(record)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[record.RecordID()]; !ok {
		return sentinel.ErrNotFound
	}
	m.docs[record.RecordID()] = body
	return nil
}

func (m *Memory[T]) FindByID(_ context.Context, id string) (T, error) {
	m.mu.RLock()
	body, ok := m.docs[id]
	m.mu.RUnlock()
	if !ok {
		var zero T
		return zero, sentinel.ErrNotFound
	}
	return decode[T](body)
}

func (m *Memory[T]) FindMany(_ context.Context, ids []string) ([]T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]T, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		body, ok := m.docs[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		record, err := decode[T](body)
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, nil
}

func (m *Memory[T]) List(_ context.Context) ([]T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.docs))
	for id := range m.docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		record, err := decode[T](m.docs[id])
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, nil
}

// Execute holds the write lock across load, fn and save.
func (m *Memory[T]) Execute(_ context.Context, id string, fn func(T) error) (T, error) {
	var zero T
	m.mu.Lock()
	defer m.mu.Unlock()
	body, ok := m.docs[id]
	if !ok {
		return zero, sentinel.ErrNotFound
	}
	record, err := decode[T](body)
	if err != nil {
		return zero, err
	}
	if err := fn(record); err != nil {
		return zero, err
	}
	updated, err := encode(record)
	if err != nil {
		return zero, err
	}
	m.docs[id] = updated
	return record, nil
}
