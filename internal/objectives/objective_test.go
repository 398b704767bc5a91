package objectives

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "qms/pkg/domain-errors"
)

var t0 = time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)

func satisfaction() Fields {
	return Fields{
		CompanyID:   "acme",
		Title:       "Satisfacción del cliente",
		Indicator:   "Encuesta anual",
		Unit:        "%",
		TargetValue: 90,
		Responsible: "Gerencia Comercial",
		StartDate:   t0,
		DueDate:     t0.AddDate(0, 6, 0),
	}
}

func newObjective(t *testing.T) *Objective {
	t.Helper()
	o, err := New(satisfaction(), t0)
	require.NoError(t, err)
	return o
}

func TestNewStartsPlanned(t *testing.T) {
	o := newObjective(t)
	assert.Equal(t, StatusPlanned, o.Status)
	assert.NotEmpty(t, o.ID)
	assert.Equal(t, o.CreatedAt, o.UpdatedAt)
	assert.Zero(t, o.Progress())
}

func TestNewValidation(t *testing.T) {
	cases := map[string]func(*Fields){
		"targetValue": func(f *Fields) { f.TargetValue = 0 },
		"title":       func(f *Fields) { f.Title = "ab" },
		"dueDate":     func(f *Fields) { f.DueDate = f.StartDate.AddDate(0, 0, -1) },
		"companyId":   func(f *Fields) { f.CompanyID = "" },
	}
	for field, mutate := range cases {
		t.Run(field, func(t *testing.T) {
			f := satisfaction()
			mutate(&f)
			_, err := New(f, t0)
			de, ok := dErrors.As(err)
			require.True(t, ok)
			assert.Equal(t, field, de.Field)
		})
	}
}

func TestFirstReadingStartsTheObjective(t *testing.T) {
	o := newObjective(t)
	require.NoError(t, o.RecordProgress(Progress{Value: 45}, t0.AddDate(0, 1, 0)))
	assert.Equal(t, StatusInProgress, o.Status)
	assert.InDelta(t, 50, o.Progress(), 0)
	require.Len(t, o.Measurements, 1)

	require.NoError(t, o.RecordProgress(Progress{Value: 120, Note: "Campaña extra"}, t0.AddDate(0, 2, 0)))
	assert.InDelta(t, 100, o.Progress(), 0, "progress is capped")
	assert.Len(t, o.Measurements, 2)

	err := o.RecordProgress(Progress{Value: -1}, t0)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestCloseDecidesVerdict(t *testing.T) {
	o := newObjective(t)
	assert.True(t, dErrors.HasCode(o.Close(t0), dErrors.CodeInvalidTransition), "planned objectives cannot close")

	require.NoError(t, o.RecordProgress(Progress{Value: 91}, t0))
	require.NoError(t, o.Close(t0))
	assert.Equal(t, StatusAchieved, o.Status)
	require.NotNil(t, o.ClosedAt)

	short := newObjective(t)
	require.NoError(t, short.Start(t0))
	require.NoError(t, short.RecordProgress(Progress{Value: 60}, t0))
	require.NoError(t, short.Close(t0))
	assert.Equal(t, StatusNotAchieved, short.Status)

	assert.True(t, dErrors.HasCode(short.Cancel("", t0), dErrors.CodeInvalidTransition))
	assert.True(t, dErrors.HasCode(short.RecordProgress(Progress{Value: 95}, t0), dErrors.CodeInvalidTransition))
}

func TestCommentsAreAppendOnlyInAnyState(t *testing.T) {
	o := newObjective(t)
	require.NoError(t, o.Cancel("Cambio de estrategia", t0))

	c, err := o.AddComment("Auditor", "Revisar en la próxima revisión", t0.Add(time.Hour))
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)
	assert.Len(t, o.Comments, 1)

	_, err = o.AddComment("Auditor", "x", t0)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	assert.Len(t, o.Comments, 1)
}

func TestIsOverdue(t *testing.T) {
	o := newObjective(t)
	after := o.DueDate.Add(time.Hour)
	assert.False(t, o.IsOverdue(o.DueDate.Add(-time.Hour)))
	assert.True(t, o.IsOverdue(after))

	require.NoError(t, o.Cancel("", t0))
	assert.False(t, o.IsOverdue(after), "closed objectives are never overdue")
}

func TestUpdateAdvancesUpdatedAt(t *testing.T) {
	o := newObjective(t)
	title := "Satisfacción del cliente 2026"
	require.NoError(t, o.Update(Patch{Title: &title}.Merge(o.Fields()), t0))
	assert.True(t, o.UpdatedAt.After(o.CreatedAt))
	assert.Equal(t, t0, o.CreatedAt)
	assert.Equal(t, title, o.Title)
}
