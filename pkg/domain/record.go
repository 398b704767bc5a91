// Package domain holds small value types shared by every bounded context.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// NewID returns a fresh opaque identifier for an entity or child record.
func NewID() string {
	return uuid.NewString()
}

// Touch returns the updatedAt value for a mutation happening at now.
// The result is always strictly after prev: when the clock has not moved
// past it (same request instant, coarse clocks) it advances by one
// microsecond, the finest precision the stores keep.
func Touch(prev, now time.Time) time.Time {
	if now.After(prev) {
		return now
	}
	return prev.Add(time.Microsecond)
}

// RecordStatus is the soft-delete state of master data (clients, processes,
// stakeholders, suppliers). Records are archived, never hard-deleted.
type RecordStatus string

const (
	RecordActive   RecordStatus = "ACTIVE"
	RecordArchived RecordStatus = "ARCHIVED"
)

// RecordStatuses lists the values accepted by search filters.
var RecordStatuses = []string{string(RecordActive), string(RecordArchived)}

// CanTransitionTo allows ACTIVE <-> ARCHIVED only.
func (s RecordStatus) CanTransitionTo(next RecordStatus) bool {
	switch s {
	case RecordActive:
		return next == RecordArchived
	case RecordArchived:
		return next == RecordActive
	}
	return false
}
