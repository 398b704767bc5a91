// Package events carries domain events out of the services. Events are
// published after the change is persisted and delivery is best effort:
// a failing sink is logged and counted, never surfaced to the caller.
package events

import (
	"context"
	"encoding/json"
	"time"
)

// Event describes one state change on an entity.
type Event struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	EntityType string          `json:"entityType"`
	EntityID   string          `json:"entityId"`
	CompanyID  string          `json:"companyId,omitempty"`
	ActorID    string          `json:"actorId,omitempty"`
	RequestID  string          `json:"requestId,omitempty"`
	FromStatus string          `json:"fromStatus,omitempty"`
	ToStatus   string          `json:"toStatus,omitempty"`
	OccurredAt time.Time       `json:"occurredAt"`
	Data       json.RawMessage `json:"data,omitempty"`
}

// Publisher delivers events to a sink.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, event Event) error

func (f PublisherFunc) Publish(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Type builds an event type such as "document.approved".
func Type(entityType, action string) string {
	return entityType + "." + action
}
