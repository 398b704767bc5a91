package events

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"qms/internal/platform/metrics"
	"qms/pkg/requestcontext"
)

type EmitterSuite struct {
	suite.Suite
	ctx     context.Context
	now     time.Time
	metrics *metrics.Metrics
	logs    *bytes.Buffer
	logger  *slog.Logger
}

func TestEmitterSuite(t *testing.T) {
	suite.Run(t, new(EmitterSuite))
}

func (s *EmitterSuite) SetupTest() {
	s.now = time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
	s.ctx = requestcontext.WithRequestID(s.ctx, "req-1")
	s.ctx = requestcontext.WithUserID(s.ctx, "auditor@example.com")
	s.metrics = metrics.NewWithRegisterer(prometheus.NewRegistry())
	s.logs = &bytes.Buffer{}
	s.logger = slog.New(slog.NewTextHandler(s.logs, nil))
}

func (s *EmitterSuite) TestStampsRequestMetadata() {
	rec := NewRecorder()
	NewEmitter(rec, WithMetrics(s.metrics)).Emit(s.ctx, Event{
		Type:     Type("document", "approved"),
		EntityID: "doc-1",
	})

	got := rec.Events()
	s.Require().Len(got, 1)
	s.Equal("document.approved", got[0].Type)
	s.NotEmpty(got[0].ID)
	s.Equal("req-1", got[0].RequestID)
	s.Equal("auditor@example.com", got[0].ActorID)
	s.Equal(s.now, got[0].OccurredAt)
	s.InDelta(1, testutil.ToFloat64(s.metrics.EventsPublished.WithLabelValues("ok")), 0)
}

func (s *EmitterSuite) TestSinkFailureIsSwallowed() {
	failing := PublisherFunc(func(context.Context, Event) error { return errors.New("broker down") })
	emitter := NewEmitter(failing, WithLogger(s.logger), WithMetrics(s.metrics))

	s.NotPanics(func() { emitter.Emit(s.ctx, Event{Type: "finding.closed", EntityID: "f-1"}) })
	s.Contains(s.logs.String(), "failed to publish domain event")
	s.InDelta(1, testutil.ToFloat64(s.metrics.EventsPublished.WithLabelValues("error")), 0)
}

func (s *EmitterSuite) TestBreakerSkipsSinkWhileOpen() {
	calls := 0
	failing := PublisherFunc(func(context.Context, Event) error {
		calls++
		return errors.New("broker down")
	})
	emitter := NewEmitter(failing, WithBreaker(NewCircuitBreaker(2, time.Hour)))

	for range 5 {
		emitter.Emit(s.ctx, Event{Type: "risk.closed"})
	}
	s.Equal(2, calls)
}

func (s *EmitterSuite) TestNilEmitter() {
	var emitter *Emitter
	s.NotPanics(func() { emitter.Emit(s.ctx, Event{Type: "x.y"}) })
	s.NotPanics(func() { NewEmitter(nil).Emit(s.ctx, Event{Type: "x.y"}) })
}

func (s *EmitterSuite) TestFanoutReachesEverySink() {
	a, b := NewRecorder(), NewRecorder()
	failing := PublisherFunc(func(context.Context, Event) error { return errors.New("down") })

	err := Fanout{a, failing, b}.Publish(s.ctx, Event{Type: "client.created"})
	s.Error(err)
	s.Equal([]string{"client.created"}, a.Types())
	s.Equal([]string{"client.created"}, b.Types())
}

func (s *EmitterSuite) TestLogPublisher() {
	err := NewLogPublisher(s.logger).Publish(s.ctx, Event{Type: "audit.started", EntityID: "a-1"})
	s.NoError(err)
	s.Contains(s.logs.String(), "event_type=audit.started")
	s.Contains(s.logs.String(), "log_type=audit")
}

func TestCircuitBreakerHalfOpens(t *testing.T) {
	cb := NewCircuitBreaker(1, time.Minute)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cb.now = func() time.Time { return now }

	cb.RecordFailure()
	if cb.Allow() {
		t.Fatal("expected open circuit to reject")
	}

	now = now.Add(2 * time.Minute)
	if !cb.Allow() {
		t.Fatal("expected half-open circuit to allow one attempt")
	}
	cb.RecordFailure()
	if !cb.IsOpen() {
		t.Fatal("expected failure in half-open state to reopen")
	}

	now = now.Add(2 * time.Minute)
	cb.Allow()
	cb.RecordSuccess()
	if cb.IsOpen() {
		t.Fatal("expected success to close the circuit")
	}
}
