package findings

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "qms/pkg/domain-errors"
)

var t0 = time.Date(2026, 2, 2, 9, 0, 0, 0, time.UTC)

func nonConformity() Fields {
	return Fields{
		CompanyID:    "acme",
		Title:        "Calibración vencida",
		Description:  "El equipo de medición M-12 no tiene calibración vigente",
		Type:         TypeMinorNonConformity,
		Source:       SourceInternalAudit,
		Severity:     SeverityMedium,
		DetectedBy:   "Auditor Interno",
		DetectedDate: t0,
	}
}

func action(planned time.Time) NewAction {
	return NewAction{Description: "Calibrar el equipo", Responsible: "Metrología", PlannedDate: planned}
}

func TestLifecycleFollowsActions(t *testing.T) {
	f, err := New(nonConformity(), t0)
	require.NoError(t, err)
	assert.Equal(t, StatusOpen, f.Status)
	assert.Empty(t, f.Actions)

	a1, err := f.AddAction(action(t0.AddDate(0, 0, 7)), t0)
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, f.Status)
	a2, err := f.AddAction(action(t0.AddDate(0, 0, 14)), t0)
	require.NoError(t, err)
	id1, id2 := a1.ID, a2.ID

	require.NoError(t, f.CompleteAction(id1, t0))
	assert.Equal(t, StatusInProgress, f.Status, "one action still pending")
	require.NoError(t, f.CompleteAction(id2, t0))
	assert.Equal(t, StatusPendingVerification, f.Status)

	require.NoError(t, f.VerifyAction(id1, "Calidad", t0))
	assert.Equal(t, StatusPendingVerification, f.Status)
	require.NoError(t, f.VerifyAction(id2, "Calidad", t0))
	assert.Equal(t, StatusVerified, f.Status)

	require.NoError(t, f.Close(t0))
	assert.Equal(t, StatusClosed, f.Status)
	require.NotNil(t, f.ClosedAt)
}

func TestNewActionReopensVerification(t *testing.T) {
	f, err := New(nonConformity(), t0)
	require.NoError(t, err)
	a, err := f.AddAction(action(t0), t0)
	require.NoError(t, err)
	require.NoError(t, f.CompleteAction(a.ID, t0))
	require.Equal(t, StatusPendingVerification, f.Status)

	_, err = f.AddAction(action(t0), t0)
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, f.Status)
}

func TestNeverSkipsInProgress(t *testing.T) {
	f, err := New(nonConformity(), t0)
	require.NoError(t, err)

	assert.True(t, dErrors.HasCode(f.Close(t0), dErrors.CodeInvalidTransition))
	assert.True(t, dErrors.HasCode(f.CompleteAction("x", t0), dErrors.CodeInvalidTransition))
	assert.True(t, dErrors.HasCode(f.VerifyAction("x", "q", t0), dErrors.CodeInvalidTransition))
	assert.Equal(t, StatusOpen, f.Status)
}

func TestActionRules(t *testing.T) {
	f, err := New(nonConformity(), t0)
	require.NoError(t, err)
	a, err := f.AddAction(action(t0), t0)
	require.NoError(t, err)
	id := a.ID

	assert.True(t, dErrors.HasCode(f.VerifyAction(id, "q", t0), dErrors.CodeInvalidTransition), "must complete first")
	assert.True(t, dErrors.HasCode(f.CompleteAction("unknown", t0), dErrors.CodeNotFound))

	_, err = f.AddAction(NewAction{Description: "x", Responsible: "Metrología", PlannedDate: t0}, t0)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	_, err = f.AddAction(NewAction{Description: "Calibrar", Responsible: "Metrología"}, t0)
	de, ok := dErrors.As(err)
	require.True(t, ok)
	assert.Equal(t, "plannedDate", de.Field)
	assert.Len(t, f.Actions, 1, "rejected actions are not appended")
}

func TestCancel(t *testing.T) {
	f, err := New(nonConformity(), t0)
	require.NoError(t, err)
	require.NoError(t, f.Cancel("Duplicado", t0))
	assert.Equal(t, StatusCancelled, f.Status)
	assert.Equal(t, "Duplicado", f.CancellationReason)

	assert.True(t, dErrors.HasCode(f.Cancel("", t0), dErrors.CodeInvalidTransition))
	_, err = f.AddAction(action(t0), t0)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	assert.True(t, dErrors.HasCode(f.Update(nonConformity(), t0), dErrors.CodeInvalidTransition))
}

func TestHasOverdueActions(t *testing.T) {
	f, err := New(nonConformity(), t0)
	require.NoError(t, err)
	a, err := f.AddAction(action(t0.AddDate(0, 0, 3)), t0)
	require.NoError(t, err)
	id := a.ID

	assert.False(t, f.HasOverdueActions(t0))
	assert.True(t, f.HasOverdueActions(t0.AddDate(0, 0, 4)))

	require.NoError(t, f.CompleteAction(id, t0))
	assert.False(t, f.HasOverdueActions(t0.AddDate(0, 0, 4)), "completed actions are never overdue")
}

func TestCancelledFindingHasNoOverdueActions(t *testing.T) {
	f, err := New(nonConformity(), t0)
	require.NoError(t, err)
	_, err = f.AddAction(action(t0.AddDate(0, 0, 3)), t0)
	require.NoError(t, err)
	late := t0.AddDate(0, 0, 4)
	require.True(t, f.HasOverdueActions(late))

	require.NoError(t, f.Cancel("Duplicado", t0))
	assert.False(t, f.HasOverdueActions(late), "pending actions of a cancelled finding are not chased")
}

func TestNewValidates(t *testing.T) {
	in := nonConformity()
	in.Severity = "EXTREME"
	_, err := New(in, t0)
	de, ok := dErrors.As(err)
	require.True(t, ok)
	assert.Equal(t, "severity", de.Field)

	in = nonConformity()
	in.DetectedDate = time.Time{}
	_, err = New(in, t0)
	de, ok = dErrors.As(err)
	require.True(t, ok)
	assert.Equal(t, "detectedDate", de.Field)
}

func TestUpdatedAtAdvances(t *testing.T) {
	f, err := New(nonConformity(), t0)
	require.NoError(t, err)
	prev := f.UpdatedAt
	_, err = f.AddAction(action(t0), t0)
	require.NoError(t, err)
	assert.True(t, f.UpdatedAt.After(prev))
	assert.Equal(t, t0, f.CreatedAt)
}
