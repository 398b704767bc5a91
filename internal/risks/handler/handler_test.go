package handler

import (
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"qms/internal/risks"
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
	svc := risks.NewService(storage.NewMemory[*risks.Risk]())
	New(svc, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(s.router)
}

func (s *HandlerSuite) create(p, i int) RiskResponse {
	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/risks", map[string]any{
		"companyId": "acme", "title": "Falla del equipo de medición", "owner": "Metrología",
		"probability": p, "impact": i,
	}))
	testutil.AssertStatus(s.T(), rr, http.StatusCreated)
	return testutil.DecodeData[RiskResponse](s.T(), rr)
}

func (s *HandlerSuite) post(path string, body any) RiskResponse {
	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, path, body))
	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	return testutil.DecodeData[RiskResponse](s.T(), rr)
}

func (s *HandlerSuite) TestTreatmentFlow() {
	created := s.create(4, 4)
	s.Equal(16, created.Level)
	s.Equal(risks.RatingCritical, created.Rating)
	s.Equal(risks.StatusIdentified, created.Status)

	got := s.post("/risks/"+created.ID+"/controls", map[string]string{
		"description": "Calibración trimestral", "type": "preventive", "responsible": "Metrología",
		"nextReviewDate": "2026-05-01",
	})
	s.Equal(risks.StatusInTreatment, got.Status)
	s.Equal(1, got.OverdueControls)

	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodGet, "/risks?overdueControls=true", nil))
	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	s.Len(testutil.DecodeData[[]RiskResponse](s.T(), rr), 1)

	got = s.post("/risks/"+created.ID+"/controls/"+got.Controls[0].ID+"/review", map[string]any{"effective": true})
	s.Equal(0, got.OverdueControls)

	rr = testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPut, "/risks/"+created.ID, map[string]int{"probability": 1}))
	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	s.Equal(risks.RatingLow, testutil.DecodeData[RiskResponse](s.T(), rr).Rating)

	got = s.post("/risks/"+created.ID+"/controlled", nil)
	s.Equal(risks.StatusControlled, got.Status)
	got = s.post("/risks/"+created.ID+"/close", nil)
	s.Equal(risks.StatusClosed, got.Status)

	rr = testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/risks/"+created.ID+"/close", nil))
	testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
	testutil.AssertErrorCode(s.T(), rr, "invalid_state_transition")
}

func (s *HandlerSuite) TestValidation() {
	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/risks", map[string]any{
		"companyId": "acme", "title": "Falla", "owner": "Calidad", "probability": 6, "impact": 1,
	}))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "La probabilidad debe estar entre 1 y 5")

	created := s.create(2, 2)
	rr = testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/risks/"+created.ID+"/controls/nope/review", map[string]any{"effective": false}))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "Control no encontrado")

	rr = testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/risks/"+created.ID+"/controls/nope/review", map[string]any{}))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "Indique si el control es eficaz")

	rr = testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodGet, "/risks?rating=EXTREME", nil))
	testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
}
