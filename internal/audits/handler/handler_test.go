package handler

import (
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"qms/internal/audits"
	"qms/internal/storage"
	"qms/pkg/testutil"
)

type HandlerSuite struct {
	suite.Suite
	router chi.Router
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.router = chi.NewRouter()
	s.router.Use(testutil.FixedClock(time.Date(2026, 5, 20, 12, 0, 0, 0, time.UTC)))
	svc := audits.NewService(storage.NewMemory[*audits.Audit]())
	New(svc, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(s.router)
}

func (s *HandlerSuite) plan(date string) AuditResponse {
	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/audits", map[string]any{
		"companyId":   "acme",
		"title":       "Auditoría interna de producción",
		"type":        "internal",
		"leadAuditor": "María Pérez",
		"team":        []string{"Luis"},
		"plannedDate": date,
	}))
	testutil.AssertStatus(s.T(), rr, http.StatusCreated)
	return testutil.DecodeData[AuditResponse](s.T(), rr)
}

func (s *HandlerSuite) post(path string, body any) AuditResponse {
	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, path, body))
	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	return testutil.DecodeData[AuditResponse](s.T(), rr)
}

func (s *HandlerSuite) TestLifecycle() {
	a := s.plan("2026-06-10")
	s.Equal(audits.StatusPlanned, a.Status)
	s.False(a.IsOverdue)

	got := s.post("/audits/"+a.ID+"/reschedule", map[string]string{"plannedDate": "2026-07-01", "reason": "Cierre contable"})
	s.Equal(2026, got.PlannedDate.Year())
	s.Equal(time.July, got.PlannedDate.Month())
	s.Len(got.Reschedules, 1)

	got = s.post("/audits/"+a.ID+"/start", nil)
	s.Equal(audits.StatusInProgress, got.Status)

	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/audits/"+a.ID+"/reschedule", map[string]string{"plannedDate": "2026-08-01"}))
	testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
	env := testutil.DecodeEnvelope(s.T(), rr)
	s.Equal("IN_PROGRESS", env.Current)

	rr = testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/audits/"+a.ID+"/complete", map[string]string{}))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "Las conclusiones son obligatorias")

	got = s.post("/audits/"+a.ID+"/complete", map[string]any{
		"conclusions": "Proceso conforme con una observación",
		"findingIds":  []string{"finding-1"},
	})
	s.Equal(audits.StatusCompleted, got.Status)
	s.Equal([]string{"finding-1"}, got.FindingIDs)
}

func (s *HandlerSuite) TestOverdueIsDerived() {
	s.plan("2026-05-01")
	s.plan("2026-06-01")

	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodGet, "/audits?overdue=true", nil))
	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	items := testutil.DecodeData[[]AuditResponse](s.T(), rr)
	s.Require().Len(items, 1)
	s.True(items[0].IsOverdue)

	got := s.post("/audits/"+items[0].ID+"/cancel", nil)
	s.Equal(audits.StatusCancelled, got.Status)
	s.False(got.IsOverdue)
}

func (s *HandlerSuite) TestCreateValidation() {
	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/audits", map[string]string{
		"companyId": "acme", "title": "Auditoría", "type": "INTERNAL", "leadAuditor": "Ana", "plannedDate": "mañana",
	}))
	testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
	s.Equal("plannedDate", testutil.DecodeEnvelope(s.T(), rr).Field)

	rr = testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodGet, "/audits/missing", nil))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "Auditoría no encontrada")
}
