package suppliers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "qms/pkg/domain-errors"
)

var t0 = time.Date(2026, 5, 5, 9, 30, 0, 0, time.UTC)

func metalurgica() Fields {
	return Fields{CompanyID: "acme", Nombre: "Metalúrgica del Norte", Categoria: "Materias primas"}
}

func newSupplier(t *testing.T) *Supplier {
	t.Helper()
	s, err := New(metalurgica(), t0)
	require.NoError(t, err)
	return s
}

func TestEstadoThresholds(t *testing.T) {
	s := newSupplier(t)
	assert.Equal(t, EstadoPendingEvaluation, s.Estado())

	for _, tc := range []struct {
		score float64
		want  Estado
	}{
		{10, EstadoApproved},
		{8, EstadoApproved},
		{7.99, EstadoConditional},
		{6, EstadoConditional},
		{5.9, EstadoNotApproved},
		{0, EstadoNotApproved},
	} {
		_, err := s.UpdateEvaluation(EvaluationInput{Puntaje: tc.score}, t0)
		require.NoError(t, err)
		assert.Equal(t, tc.want, s.Estado(), "score %v", tc.score)
	}
	assert.Len(t, s.Historial, 6, "every evaluation is kept")
}

func TestUpdateEvaluationSchedulesNext(t *testing.T) {
	s := newSupplier(t)
	e, err := s.UpdateEvaluation(EvaluationInput{Puntaje: 9, Evaluador: "Compras"}, t0)
	require.NoError(t, err)
	assert.NotEmpty(t, e.ID)
	require.NotNil(t, s.UltimaEvaluacion)
	assert.Equal(t, t0, *s.UltimaEvaluacion)
	require.NotNil(t, s.SiguienteEvaluacion)
	assert.Equal(t, t0.AddDate(0, EvaluationIntervalMonths, 0), *s.SiguienteEvaluacion)

	next := t0.AddDate(0, 3, 0)
	_, err = s.UpdateEvaluation(EvaluationInput{Puntaje: 7, Siguiente: &next}, t0)
	require.NoError(t, err)
	assert.Equal(t, next, *s.SiguienteEvaluacion)

	past := t0.AddDate(0, 0, -1)
	_, err = s.UpdateEvaluation(EvaluationInput{Puntaje: 7, Siguiente: &past}, t0)
	de, ok := dErrors.As(err)
	require.True(t, ok)
	assert.Equal(t, "siguienteEvaluacion", de.Field)
}

func TestUpdateEvaluationRejectsOutOfRange(t *testing.T) {
	s := newSupplier(t)
	for _, score := range []float64{-0.5, 10.1} {
		_, err := s.UpdateEvaluation(EvaluationInput{Puntaje: score}, t0)
		de, ok := dErrors.As(err)
		require.True(t, ok)
		assert.Equal(t, "evaluacion", de.Field)
	}
	assert.Nil(t, s.Evaluacion)
	assert.Empty(t, s.Historial)
}

func TestEvaluationOverdue(t *testing.T) {
	s := newSupplier(t)
	assert.False(t, s.EvaluationOverdue(t0.AddDate(5, 0, 0)), "nothing scheduled yet")

	_, err := s.UpdateEvaluation(EvaluationInput{Puntaje: 8}, t0)
	require.NoError(t, err)
	late := t0.AddDate(0, EvaluationIntervalMonths, 1)
	assert.False(t, s.EvaluationOverdue(t0))
	assert.True(t, s.EvaluationOverdue(late))

	require.NoError(t, s.Archive(t0))
	assert.False(t, s.EvaluationOverdue(late), "archived suppliers are not chased")
	_, err = s.UpdateEvaluation(EvaluationInput{Puntaje: 9}, t0)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidTransition))
}

func TestArchivedSupplierIsReadOnly(t *testing.T) {
	s := newSupplier(t)
	require.NoError(t, s.Archive(t0))

	in := s.Fields()
	in.Nombre = "Cambiado"
	err := s.Update(in, t0.Add(time.Hour))
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	assert.Equal(t, "Metalúrgica del Norte", s.Nombre)
}

func TestUpdateReschedulesOnlyIntoTheFuture(t *testing.T) {
	s := newSupplier(t)

	past := t0.AddDate(0, 0, -1)
	in := s.Fields()
	in.SiguienteEvaluacion = &past
	de, ok := dErrors.As(s.Update(in, t0))
	require.True(t, ok)
	assert.Equal(t, "siguienteEvaluacion", de.Field)
	assert.Nil(t, s.SiguienteEvaluacion)

	future := t0.AddDate(0, 2, 0)
	in.SiguienteEvaluacion = &future
	require.NoError(t, s.Update(in, t0))
	assert.Equal(t, future, *s.SiguienteEvaluacion)

	// An overdue date already on record does not block other edits.
	later := t0.AddDate(0, 3, 0)
	in = s.Fields()
	in.Nombre = "Metalúrgica del Sur"
	require.NoError(t, s.Update(in, later))
	assert.Equal(t, "Metalúrgica del Sur", s.Nombre)
}
