// Package shared holds the plumbing every module service and handler uses:
// event/metric/audit side effects, store error translation, the search
// pipeline and handler error reporting.
package shared

import (
	"context"
	"io"
	"log/slog"

	"qms/internal/platform/events"
	"qms/internal/platform/metrics"
	"qms/pkg/search"
)

// Base carries a service's optional collaborators. Every field may be left
// unset; the zero value logs nowhere, emits nothing and records no metrics.
type Base struct {
	Events       *events.Emitter
	Metrics      *metrics.Metrics
	Logger       *slog.Logger
	DefaultLimit int
}

// Option configures a Base.
type Option func(*Base)

func WithEvents(e *events.Emitter) Option {
	return func(b *Base) { b.Events = e }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(b *Base) { b.Metrics = m }
}

func WithLogger(logger *slog.Logger) Option {
	return func(b *Base) { b.Logger = logger }
}

// WithDefaultLimit sets the page size used when a search omits limit.
func WithDefaultLimit(limit int) Option {
	return func(b *Base) { b.DefaultLimit = limit }
}

// NewBase applies opts over the defaults.
func NewBase(opts ...Option) Base {
	b := Base{DefaultLimit: search.DefaultLimit}
	for _, opt := range opts {
		opt(&b)
	}
	if b.Logger == nil {
		b.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return b
}

// Created records a new entity: counter, audit log line and event.
func (b Base) Created(ctx context.Context, ev events.Event) {
	b.Metrics.IncrementCreated(ev.EntityType)
	b.audit(ctx, ev)
	b.Events.Emit(ctx, ev)
}

// Changed records a mutation. Status transitions are counted when
// FromStatus and ToStatus differ.
func (b Base) Changed(ctx context.Context, ev events.Event) {
	if ev.FromStatus != "" && ev.ToStatus != "" {
		b.Metrics.IncrementTransition(ev.EntityType, ev.FromStatus, ev.ToStatus)
	}
	b.audit(ctx, ev)
	b.Events.Emit(ctx, ev)
}

func (b Base) audit(ctx context.Context, ev events.Event) {
	if b.Logger == nil {
		return
	}
	attrs := []any{
		"log_type", "audit",
		"event_type", ev.Type,
		"entity_id", ev.EntityID,
	}
	if ev.FromStatus != ev.ToStatus {
		attrs = append(attrs, "from_status", ev.FromStatus, "to_status", ev.ToStatus)
	}
	b.Logger.InfoContext(ctx, "record changed", attrs...)
}
