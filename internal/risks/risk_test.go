package risks

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"qms/internal/storage"
	"qms/internal/storage/storagetest"
	dErrors "qms/pkg/domain-errors"
	"qms/pkg/requestcontext"
)

var t0 = time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)

func supplyRisk(p, i int) Fields {
	return Fields{
		CompanyID:   "acme",
		Title:       "Retraso de proveedor crítico",
		Category:    "Operacional",
		Owner:       "Jefe de Compras",
		Probability: p,
		Impact:      i,
	}
}

func preventive() ControlInput {
	return ControlInput{Description: "Proveedor alternativo homologado", Type: ControlPreventive, Responsible: "Compras"}
}

func TestRatingBands(t *testing.T) {
	for _, tc := range []struct {
		p, i  int
		level int
		want  Rating
	}{
		{1, 1, 1, RatingLow},
		{2, 2, 4, RatingLow},
		{1, 5, 5, RatingMedium},
		{3, 3, 9, RatingMedium},
		{2, 5, 10, RatingHigh},
		{3, 5, 15, RatingHigh},
		{4, 4, 16, RatingCritical},
		{5, 5, 25, RatingCritical},
	} {
		r, err := New(supplyRisk(tc.p, tc.i), t0)
		require.NoError(t, err)
		assert.Equal(t, tc.level, r.Level())
		assert.Equal(t, tc.want, r.Rating(), "p=%d i=%d", tc.p, tc.i)
	}
}

func TestScoresOutOfRange(t *testing.T) {
	_, err := New(supplyRisk(0, 3), t0)
	de, ok := dErrors.As(err)
	require.True(t, ok)
	assert.Equal(t, "probability", de.Field)
	assert.Equal(t, "La probabilidad debe estar entre 1 y 5", de.Message)

	_, err = New(supplyRisk(3, 6), t0)
	de, ok = dErrors.As(err)
	require.True(t, ok)
	assert.Equal(t, "impact", de.Field)
}

func TestLifecycle(t *testing.T) {
	r, err := New(supplyRisk(4, 4), t0)
	require.NoError(t, err)
	assert.Equal(t, StatusIdentified, r.Status)

	assert.True(t, dErrors.HasCode(r.MarkControlled(t0), dErrors.CodeInvalidTransition), "needs treatment first")

	_, err = r.AddControl(preventive(), t0)
	require.NoError(t, err)
	assert.Equal(t, StatusInTreatment, r.Status)

	_, err = r.AddControl(ControlInput{Description: "Stock de seguridad", Type: ControlCorrective, Responsible: "Almacén"}, t0)
	require.NoError(t, err)
	assert.Equal(t, StatusInTreatment, r.Status)
	assert.Len(t, r.Controls, 2)

	require.NoError(t, r.MarkControlled(t0))
	require.NoError(t, r.Close("Proveedor reemplazado", t0))
	assert.NotNil(t, r.ClosedAt)

	assert.True(t, dErrors.HasCode(r.Close("", t0), dErrors.CodeInvalidTransition))
	_, err = r.AddControl(preventive(), t0)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	assert.True(t, dErrors.HasCode(r.Update(supplyRisk(1, 1), t0), dErrors.CodeInvalidTransition))
}

func TestCloseFromIdentified(t *testing.T) {
	r, err := New(supplyRisk(1, 2), t0)
	require.NoError(t, err)
	require.NoError(t, r.Close("Riesgo aceptado", t0))
	assert.Equal(t, StatusClosed, r.Status)
}

func TestControlReviewAndOverdue(t *testing.T) {
	r, err := New(supplyRisk(3, 4), t0)
	require.NoError(t, err)

	in := preventive()
	due := t0.AddDate(0, 1, 0)
	in.NextReviewDate = &due
	c, err := r.AddControl(in, t0)
	require.NoError(t, err)

	later := due.Add(time.Hour)
	assert.Equal(t, 0, r.OverdueControls(t0))
	assert.Equal(t, 1, r.OverdueControls(later))
	assert.True(t, r.HasOverdueControls(later))

	reviewed, err := r.ReviewControl(c.ID, Review{Effective: true, Note: "Sin incidentes"}, later)
	require.NoError(t, err)
	require.NotNil(t, reviewed.Effective)
	assert.True(t, *reviewed.Effective)
	assert.Equal(t, later.AddDate(0, ReviewIntervalMonths, 0), *reviewed.NextReviewDate)
	assert.False(t, r.HasOverdueControls(later))

	_, err = r.ReviewControl("nope", Review{}, later)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))

	past := t0
	_, err = r.ReviewControl(c.ID, Review{Next: &past}, later)
	de, ok := dErrors.As(err)
	require.True(t, ok)
	assert.Equal(t, "nextReviewDate", de.Field)
}

type ServiceSuite struct {
	suite.Suite
	ctx     context.Context
	service *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = requestcontext.WithTime(context.Background(), t0)
	s.service = NewService(storage.NewMemory[*Risk]())
}

func (s *ServiceSuite) TestSearchByRatingAndLevel() {
	for _, pi := range [][2]int{{1, 2}, {3, 3}, {5, 4}} {
		_, err := s.service.Create(s.ctx, supplyRisk(pi[0], pi[1]))
		s.Require().NoError(err)
	}

	page, err := s.service.Search(s.ctx, map[string][]string{})
	s.Require().NoError(err)
	s.Require().Len(page.Items, 3)
	s.Equal(20, page.Items[0].Level(), "highest level first")

	page, err = s.service.Search(s.ctx, map[string][]string{"rating": {"medium"}})
	s.Require().NoError(err)
	s.Require().Equal(1, page.Total)
	s.Equal(9, page.Items[0].Level())

	page, err = s.service.Search(s.ctx, map[string][]string{"minLevel": {"5"}})
	s.Require().NoError(err)
	s.Equal(2, page.Total)
}

func (s *ServiceSuite) TestAddControlOnMissingRisk() {
	_, err := s.service.AddControl(s.ctx, "missing", preventive())
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	s.Equal("Riesgo no encontrado", err.Error())

	svc := NewService(storagetest.Failing[*Risk]{})
	_, err = svc.Search(s.ctx, map[string][]string{})
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}
