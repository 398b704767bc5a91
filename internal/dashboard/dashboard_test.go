package dashboard

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qms/internal/objectives"
	"qms/internal/risks"
	"qms/internal/storage"
	dErrors "qms/pkg/domain-errors"
	"qms/pkg/requestcontext"
	"qms/pkg/testutil"
)

var now = time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

func seeded(t *testing.T) *Service {
	t.Helper()
	ctx := requestcontext.WithTime(context.Background(), now)

	risk := risks.NewService(storage.NewMemory[*risks.Risk]())
	for _, pi := range [][2]int{{1, 1}, {5, 5}, {4, 5}} {
		_, err := risk.Create(ctx, risks.Fields{
			CompanyID: "acme", Title: "Riesgo de prueba", Owner: "Calidad", Probability: pi[0], Impact: pi[1],
		})
		require.NoError(t, err)
	}
	_, err := risk.Create(ctx, risks.Fields{
		CompanyID: "other", Title: "Riesgo ajeno", Owner: "Calidad", Probability: 5, Impact: 5,
	})
	require.NoError(t, err)

	obj := objectives.NewService(storage.NewMemory[*objectives.Objective]())
	_, err = obj.Create(ctx, objectives.Fields{
		CompanyID: "acme", Title: "Reducir reclamos", Indicator: "Reclamos", Responsible: "Calidad",
		TargetValue: 10, StartDate: now.AddDate(0, -3, 0), DueDate: now.AddDate(0, 0, -1),
	})
	require.NoError(t, err)

	return NewService(
		Module{Name: "risks", Count: Count(risk.Search), Metrics: map[string]url.Values{
			"critical": {"rating": {"CRITICAL"}},
		}},
		Module{Name: "objectives", Count: Count(obj.Search), Metrics: map[string]url.Values{
			"overdue": {"overdue": {"true"}},
		}},
	)
}

func TestSummaryCountsPerCompany(t *testing.T) {
	svc := seeded(t)
	got, err := svc.Summary(requestcontext.WithTime(context.Background(), now), " acme ")
	require.NoError(t, err)

	assert.Equal(t, "acme", got.CompanyID)
	assert.Equal(t, now, got.GeneratedAt)
	assert.Equal(t, map[string]int{"total": 3, "critical": 2}, got.Modules["risks"])
	assert.Equal(t, map[string]int{"total": 1, "overdue": 1}, got.Modules["objectives"])
}

func TestSummaryRequiresCompany(t *testing.T) {
	_, err := seeded(t).Summary(context.Background(), "")
	de, ok := dErrors.As(err)
	require.True(t, ok)
	assert.Equal(t, "companyId", de.Field)
}

func TestSummaryDefaultsToCompanyClaim(t *testing.T) {
	ctx := requestcontext.WithCompanyID(requestcontext.WithTime(context.Background(), now), "acme")
	got, err := seeded(t).Summary(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "acme", got.CompanyID)
	assert.Equal(t, 3, got.Modules["risks"]["total"])
}

func TestSummaryFailureIsInternal(t *testing.T) {
	boom := func(context.Context, url.Values) (int, error) { return 0, errors.New("connection refused") }
	svc := NewService(Module{Name: "risks", Count: boom})
	_, err := svc.Summary(context.Background(), "acme")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
}

func TestHandleSummary(t *testing.T) {
	router := chi.NewRouter()
	router.Use(testutil.FixedClock(now))
	NewHandler(seeded(t), slog.New(slog.NewTextHandler(io.Discard, nil))).Register(router)

	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodGet, "/dashboard/summary?companyId=acme", nil))
	testutil.AssertStatus(t, rr, http.StatusOK)
	got := testutil.DecodeData[Summary](t, rr)
	assert.Equal(t, 3, got.Modules["risks"]["total"])

	rr = testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodGet, "/dashboard/summary", nil))
	testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "La empresa es obligatoria")
}
