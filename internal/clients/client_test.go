package clients

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qms/internal/storage"
	"qms/pkg/domain"
	dErrors "qms/pkg/domain-errors"
	"qms/pkg/requestcontext"
)

var t0 = time.Date(2026, 2, 2, 14, 0, 0, 0, time.UTC)

func acme() Fields {
	return Fields{CompanyID: "acme", Name: "Juan Pérez", Email: "juan@cliente.test", Phone: "+56 9 1234 5678"}
}

func TestNewValidationMessages(t *testing.T) {
	in := acme()
	in.Email = "invalid-email"
	_, err := New(in, t0)
	require.Error(t, err)
	assert.Equal(t, "El email debe ser válido", err.Error())

	in = acme()
	in.Name = "J"
	_, err = New(in, t0)
	require.Error(t, err)
	assert.Equal(t, "El nombre debe tener al menos 2 caracteres", err.Error())

	de, ok := dErrors.As(err)
	require.True(t, ok)
	assert.Equal(t, "name", de.Field)
	assert.Equal(t, dErrors.CodeValidation, de.Code)
}

func TestNewClientIsActive(t *testing.T) {
	c, err := New(acme(), t0)
	require.NoError(t, err)
	assert.Equal(t, domain.RecordActive, c.Status)
	assert.Equal(t, c.CreatedAt, c.UpdatedAt)
}

func TestArchiveRestore(t *testing.T) {
	c, err := New(acme(), t0)
	require.NoError(t, err)

	require.NoError(t, c.Archive(t0))
	assert.Equal(t, domain.RecordArchived, c.Status)
	assert.True(t, c.UpdatedAt.After(c.CreatedAt))
	assert.True(t, dErrors.HasCode(c.Archive(t0), dErrors.CodeInvalidTransition))

	require.NoError(t, c.Restore(t0))
	assert.Equal(t, domain.RecordActive, c.Status)
	assert.True(t, dErrors.HasCode(c.Restore(t0), dErrors.CodeInvalidTransition))
}

func TestArchivedClientIsReadOnly(t *testing.T) {
	c, err := New(acme(), t0)
	require.NoError(t, err)
	require.NoError(t, c.Archive(t0))

	in := acme()
	in.Name = "Otro Nombre"
	err = c.Update(in, t0.Add(time.Hour))
	de, ok := dErrors.As(err)
	require.True(t, ok)
	assert.Equal(t, dErrors.CodeInvalidTransition, de.Code)
	assert.Equal(t, "Juan Pérez", c.Name)

	require.NoError(t, c.Restore(t0.Add(time.Hour)))
	require.NoError(t, c.Update(in, t0.Add(2*time.Hour)))
	assert.Equal(t, "Otro Nombre", c.Name)
}

func TestServiceSearchAndArchive(t *testing.T) {
	ctx := requestcontext.WithTime(context.Background(), t0)
	svc := NewService(storage.NewMemory[*Client]())

	a, err := svc.Create(ctx, acme())
	require.NoError(t, err)
	in := acme()
	in.Name = "Ana López"
	in.Email = "ana@cliente.test"
	_, err = svc.Create(ctx, in)
	require.NoError(t, err)

	page, err := svc.Search(ctx, url.Values{})
	require.NoError(t, err)
	require.Equal(t, 2, page.Total)
	assert.Equal(t, "Ana López", page.Items[0].Name, "default order is name ascending")

	email := "no-es-email"
	_, err = svc.Update(ctx, a.ID, Patch{Email: &email})
	assert.EqualError(t, err, "El email debe ser válido")

	_, err = svc.Archive(ctx, a.ID)
	require.NoError(t, err)
	page, err = svc.Search(ctx, url.Values{"status": {"archived"}})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, a.ID, page.Items[0].ID)

	_, err = svc.Restore(ctx, "missing")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}
