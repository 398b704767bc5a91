package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var durationBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5}

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	HTTPRequestDuration *prometheus.HistogramVec
	RecordsCreated      *prometheus.CounterVec
	StatusTransitions   *prometheus.CounterVec
	SearchDuration      *prometheus.HistogramVec
	SearchResults       *prometheus.HistogramVec
	EventsPublished     *prometheus.CounterVec
}

// New creates and registers all metrics on the default registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers on reg. Tests pass a fresh prometheus.NewRegistry()
// so repeated construction does not collide.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "qms_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern, method and status code",
			Buckets: durationBuckets,
		}, []string{"route", "method", "status"}),
		RecordsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "qms_records_created_total",
			Help: "Total number of records created by entity",
		}, []string{"entity"}),
		StatusTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "qms_status_transitions_total",
			Help: "Lifecycle transitions by entity, previous and next status",
		}, []string{"entity", "from", "to"}),
		SearchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "qms_search_duration_seconds",
			Help:    "Duration of search operations by entity (load, filter, sort, page)",
			Buckets: durationBuckets,
		}, []string{"entity"}),
		SearchResults: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "qms_search_matches",
			Help:    "Number of records matching a search before pagination",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}, []string{"entity"}),
		EventsPublished: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "qms_events_published_total",
			Help: "Domain events handed to the event sink by result (ok, error)",
		}, []string{"result"}),
	}
}

// ObserveRequest records the latency of one HTTP request.
func (m *Metrics) ObserveRequest(route, method, status string, start time.Time) {
	if m == nil {
		return
	}
	m.HTTPRequestDuration.WithLabelValues(route, method, status).Observe(time.Since(start).Seconds())
}

// IncrementCreated records a successful creation of entity.
func (m *Metrics) IncrementCreated(entity string) {
	if m == nil {
		return
	}
	m.RecordsCreated.WithLabelValues(entity).Inc()
}

// IncrementTransition records a lifecycle change. Calls where from == to are ignored.
func (m *Metrics) IncrementTransition(entity, from, to string) {
	if m == nil || from == to {
		return
	}
	m.StatusTransitions.WithLabelValues(entity, from, to).Inc()
}

// ObserveSearch records the duration and match count of a search.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveSearch(entity string, start time.Time, matches int) {
	if m == nil {
		return
	}
	m.SearchDuration.WithLabelValues(entity).Observe(time.Since(start).Seconds())
	m.SearchResults.WithLabelValues(entity).Observe(float64(matches))
}

// IncrementPublished records the outcome of handing an event to the sink.
func (m *Metrics) IncrementPublished(ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	m.EventsPublished.WithLabelValues(result).Inc()
}
