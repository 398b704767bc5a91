package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"qms/internal/documents"
	"qms/internal/documents/handler/mocks"
	dErrors "qms/pkg/domain-errors"
	"qms/pkg/requestcontext"
	"qms/pkg/search"
)

type HandlerSuite struct {
	suite.Suite
	now     time.Time
	service *mocks.MockService
	router  chi.Router
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.now = time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)

	s.router = chi.NewRouter()
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(requestcontext.WithTime(r.Context(), s.now)))
		})
	})
	New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(s.router)
}

func (s *HandlerSuite) do(method, target string, body any) (*httptest.ResponseRecorder, map[string]any) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var resp map[string]any
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func (s *HandlerSuite) document() *documents.Document {
	expiry := s.now.AddDate(0, 0, 15)
	return &documents.Document{
		ID:         "doc-1",
		CompanyID:  "acme",
		Code:       "DOC-001",
		Title:      "Manual de Procesos",
		Type:       documents.TypeManual,
		Author:     "María García",
		Status:     documents.StatusDraft,
		Version:    "1.0",
		ExpiryDate: &expiry,
		CreatedAt:  s.now,
		UpdatedAt:  s.now,
	}
}

func (s *HandlerSuite) TestCreate() {
	s.service.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, f documents.Fields) (*documents.Document, error) {
			s.Equal(documents.TypeManual, f.Type, "type is upper-cased")
			s.Equal("acme", f.CompanyID)
			s.Require().NotNil(f.ExpiryDate)
			s.Equal(time.Date(2026, 3, 25, 0, 0, 0, 0, time.UTC), *f.ExpiryDate)
			return s.document(), nil
		})

	w, resp := s.do(http.MethodPost, "/documents", map[string]string{
		"companyId":  "acme",
		"code":       "DOC-001",
		"title":      "Manual de Procesos",
		"type":       "manual",
		"author":     "María García",
		"expiryDate": "2026-03-25",
	})

	s.Equal(http.StatusCreated, w.Code)
	s.Equal(true, resp["success"])
	s.Equal("Documento creado", resp["message"])
	data := resp["data"].(map[string]any)
	s.Equal("doc-1", data["id"])
	s.Equal("1.0", data["version"])
	s.Equal(false, data["isExpired"])
	s.Equal(true, data["isExpiringSoon"])
}

func (s *HandlerSuite) TestCreateRejectsRequestBeforeService() {
	w, resp := s.do(http.MethodPost, "/documents", map[string]string{"code": "DOC-001"})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal(false, resp["success"])
	s.Equal("companyId", resp["field"])

	w, resp = s.do(http.MethodPost, "/documents", map[string]string{
		"companyId": "acme", "type": "MANUAL", "expiryDate": "mañana",
	})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("expiryDate", resp["field"])
}

func (s *HandlerSuite) TestCreateValidationFromDomain() {
	s.service.EXPECT().Create(gomock.Any(), gomock.Any()).
		Return(nil, dErrors.Validation("code", "El código debe tener al menos 3 caracteres"))

	w, resp := s.do(http.MethodPost, "/documents", map[string]string{
		"companyId": "acme", "code": "D", "type": "MANUAL",
	})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("El código debe tener al menos 3 caracteres", resp["error"])
	s.Equal("validation_error", resp["code"])
}

func (s *HandlerSuite) TestSearch() {
	s.service.EXPECT().Search(gomock.Any(), url.Values{"status": {"BORRADOR"}, "limit": {"1"}}).
		Return(search.Page[*documents.Document]{
			Items: []*documents.Document{s.document()}, Total: 3, Page: 1, Limit: 1, TotalPages: 3,
		}, nil)

	w, resp := s.do(http.MethodGet, "/documents?status=BORRADOR&limit=1", nil)
	s.Equal(http.StatusOK, w.Code)
	s.InDelta(3, resp["total"], 0)
	s.InDelta(3, resp["totalPages"], 0)
	s.Len(resp["data"], 1)
}

func (s *HandlerSuite) TestSearchFailureIsInternal() {
	s.service.EXPECT().Search(gomock.Any(), gomock.Any()).
		Return(search.Page[*documents.Document]{}, dErrors.Wrap(errors.New("dial tcp"), dErrors.CodeInternal, "error del repositorio"))

	w, resp := s.do(http.MethodGet, "/documents", nil)
	s.Equal(http.StatusInternalServerError, w.Code)
	s.Equal("Error interno del servidor", resp["error"])
}

func (s *HandlerSuite) TestGetNotFound() {
	s.service.EXPECT().Get(gomock.Any(), "nope").Return(nil, dErrors.New(dErrors.CodeNotFound, "Documento no encontrado"))

	w, resp := s.do(http.MethodGet, "/documents/nope", nil)
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal("Documento no encontrado", resp["error"])
}

func (s *HandlerSuite) TestUpdatePassesOnlyProvidedFields() {
	s.service.EXPECT().Update(gomock.Any(), "doc-1", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, p documents.Patch) (*documents.Document, error) {
			s.Require().NotNil(p.Title)
			s.Equal("Manual de Calidad", *p.Title)
			s.Nil(p.Code)
			s.Nil(p.Type)
			return s.document(), nil
		})

	w, _ := s.do(http.MethodPut, "/documents/doc-1", map[string]string{"title": "Manual de Calidad"})
	s.Equal(http.StatusOK, w.Code)
}

func (s *HandlerSuite) TestApproveWithoutBody() {
	s.service.EXPECT().Approve(gomock.Any(), "doc-1", "").Return(s.document(), nil)

	w, resp := s.do(http.MethodPost, "/documents/doc-1/approve", nil)
	s.Equal(http.StatusOK, w.Code)
	s.Equal("Documento aprobado", resp["message"])
}

func (s *HandlerSuite) TestApproveInvalidTransition() {
	s.service.EXPECT().Approve(gomock.Any(), "doc-1", "Calidad").
		Return(nil, dErrors.InvalidTransition(documents.EntityType, "BORRADOR", "APROBADO"))

	w, resp := s.do(http.MethodPost, "/documents/doc-1/approve", map[string]string{"approvedBy": "Calidad"})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("invalid_state_transition", resp["code"])
	s.Equal("BORRADOR", resp["currentStatus"])
	s.Equal("APROBADO", resp["attemptedStatus"])
}

func (s *HandlerSuite) TestRejectAndActions() {
	s.service.EXPECT().Reject(gomock.Any(), "doc-1", "Faltan anexos").Return(s.document(), nil)
	s.service.EXPECT().SendToReview(gomock.Any(), "doc-1").Return(s.document(), nil)
	s.service.EXPECT().Archive(gomock.Any(), "doc-1").Return(s.document(), nil)
	s.service.EXPECT().Restore(gomock.Any(), "doc-1").Return(s.document(), nil)
	s.service.EXPECT().IncrementVersion(gomock.Any(), "doc-1").Return(s.document(), nil)

	w, _ := s.do(http.MethodPost, "/documents/doc-1/reject", map[string]string{"reason": " Faltan anexos "})
	s.Equal(http.StatusOK, w.Code)
	for _, path := range []string{"review", "archive", "restore", "version"} {
		w, resp := s.do(http.MethodPost, "/documents/doc-1/"+path, nil)
		s.Equal(http.StatusOK, w.Code, path)
		s.Equal(true, resp["success"], path)
	}
}
