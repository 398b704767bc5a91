package events

import (
	"context"
	"encoding/json"
	"log/slog"

	"qms/internal/platform/metrics"
	"qms/pkg/domain"
	"qms/pkg/requestcontext"
)

// Emitter is what services hold. It stamps events with request metadata and
// swallows sink failures after logging them.
type Emitter struct {
	publisher Publisher
	logger    *slog.Logger
	metrics   *metrics.Metrics
	breaker   *CircuitBreaker
}

// Option configures an Emitter.
type Option func(*Emitter)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Emitter) { e.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Emitter) { e.metrics = m }
}

func WithBreaker(cb *CircuitBreaker) Option {
	return func(e *Emitter) { e.breaker = cb }
}

// NewEmitter wraps publisher. A nil publisher drops every event.
func NewEmitter(publisher Publisher, opts ...Option) *Emitter {
	e := &Emitter{publisher: publisher}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Emit publishes event. Missing ID, RequestID, ActorID and OccurredAt are
// filled from ctx. Safe to call on a nil Emitter.
func (e *Emitter) Emit(ctx context.Context, event Event) {
	if e == nil || e.publisher == nil {
		return
	}
	if event.ID == "" {
		event.ID = domain.NewID()
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if event.ActorID == "" {
		event.ActorID = requestcontext.UserID(ctx)
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = requestcontext.Now(ctx)
	}

	if e.breaker != nil && !e.breaker.Allow() {
		e.metrics.IncrementPublished(false)
		return
	}

	if err := e.publisher.Publish(ctx, event); err != nil {
		if e.breaker != nil {
			e.breaker.RecordFailure()
		}
		e.metrics.IncrementPublished(false)
		if e.logger != nil {
			e.logger.WarnContext(ctx, "failed to publish domain event",
				"event_type", event.Type,
				"entity_id", event.EntityID,
				"request_id", event.RequestID,
				"error", err,
			)
		}
		return
	}
	if e.breaker != nil {
		e.breaker.RecordSuccess()
	}
	e.metrics.IncrementPublished(true)
}

// Payload marshals v for Event.Data. Values that cannot be encoded yield nil.
func Payload(v any) json.RawMessage {
	body, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return body
}
