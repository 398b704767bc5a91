package httptransport

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"

	"qms/internal/platform/metrics"
	"qms/internal/platform/middleware"
	"qms/pkg/platform/httputil"
	"qms/pkg/requestcontext"
	"qms/pkg/testutil"
)

type pingModule struct{}

func (pingModule) Register(r chi.Router) {
	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteData(w, map[string]string{"user": requestcontext.UserID(r.Context())}, "")
	})
}

type staticValidator struct{}

func (staticValidator) ValidateToken(token string) (*middleware.JWTClaims, error) {
	if token != "good" {
		return nil, errors.New("bad token")
	}
	return &middleware.JWTClaims{UserID: "user-1", CompanyID: "acme"}, nil
}

type RouterSuite struct {
	suite.Suite
	logger *slog.Logger
	reg    *prometheus.Registry
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	s.reg = prometheus.NewRegistry()
}

func (s *RouterSuite) router(checks map[string]HealthCheck) http.Handler {
	return NewRouter(Deps{
		Logger:    s.logger,
		Metrics:   metrics.NewWithRegisterer(s.reg),
		Gatherer:  s.reg,
		Validator: staticValidator{},
		Checks:    checks,
		Modules:   []Registrar{pingModule{}},
	})
}

func (s *RouterSuite) TestHealthIsPublic() {
	rr := testutil.DoRequest(s.router(nil), testutil.NewJSONRequest(s.T(), http.MethodGet, "/health", nil))
	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	s.Contains(rr.Body.String(), `"status":"ok"`)
}

func (s *RouterSuite) TestHealthReportsFailingDependency() {
	rr := testutil.DoRequest(s.router(map[string]HealthCheck{
		"postgres": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("dial tcp: refused") },
	}), testutil.NewJSONRequest(s.T(), http.MethodGet, "/health", nil))
	testutil.AssertStatus(s.T(), rr, http.StatusServiceUnavailable)
	s.Contains(rr.Body.String(), `"redis":"dial tcp: refused"`)
	s.Contains(rr.Body.String(), `"postgres":"ok"`)
}

func (s *RouterSuite) TestModulesRequireToken() {
	router := s.router(nil)

	rr := testutil.DoRequest(router, testutil.NewJSONRequest(s.T(), http.MethodGet, "/ping", nil))
	testutil.AssertStatus(s.T(), rr, http.StatusUnauthorized)

	req := testutil.NewJSONRequest(s.T(), http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer good")
	rr = testutil.DoRequest(router, req)
	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	s.Equal("user-1", testutil.DecodeData[map[string]string](s.T(), rr)["user"])
	s.NotEmpty(rr.Header().Get(middleware.RequestIDHeader))
}

func (s *RouterSuite) TestMetricsExposeRequestLatency() {
	router := s.router(nil)
	testutil.DoRequest(router, testutil.NewJSONRequest(s.T(), http.MethodGet, "/health", nil))

	rr := testutil.DoRequest(router, testutil.NewJSONRequest(s.T(), http.MethodGet, "/metrics", nil))
	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	s.True(strings.Contains(rr.Body.String(), "qms_http_request_duration_seconds"))
}
