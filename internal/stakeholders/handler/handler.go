package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"qms/internal/shared"
	"qms/internal/stakeholders"
	"qms/pkg/platform/httputil"
	"qms/pkg/platform/validation"
	"qms/pkg/requestcontext"
	"qms/pkg/search"
)

type Service interface {
	Create(ctx context.Context, in stakeholders.Fields) (*stakeholders.Stakeholder, error)
	Get(ctx context.Context, id string) (*stakeholders.Stakeholder, error)
	Search(ctx context.Context, values url.Values) (search.Page[*stakeholders.Stakeholder], error)
	Update(ctx context.Context, id string, p stakeholders.Patch) (*stakeholders.Stakeholder, error)
	Archive(ctx context.Context, id string) (*stakeholders.Stakeholder, error)
	Restore(ctx context.Context, id string) (*stakeholders.Stakeholder, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/stakeholders", func(r chi.Router) {
		r.Post("/", h.HandleCreate)
		r.Get("/", h.HandleSearch)
		r.Get("/{id}", h.HandleGet)
		r.Put("/{id}", h.HandleUpdate)
		r.Post("/{id}/archive", h.HandleArchive)
		r.Post("/{id}/restore", h.HandleRestore)
	})
}

// StakeholderResponse adds the derived grid quadrant.
type StakeholderResponse struct {
	*stakeholders.Stakeholder
	Priority stakeholders.Priority `json:"priority"`
}

func toResponse(s *stakeholders.Stakeholder) StakeholderResponse {
	return StakeholderResponse{Stakeholder: s, Priority: s.Priority()}
}

type CreateRequest struct {
	CompanyID    string `json:"companyId"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	Category     string `json:"category"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Needs        string `json:"needs"`
	Expectations string `json:"expectations"`
	Influence    string `json:"influence"`
	Interest     string `json:"interest"`
}

func (r *CreateRequest) DefaultCompany(companyID string) {
	if r.CompanyID == "" {
		r.CompanyID = companyID
	}
}

func (r *CreateRequest) Normalize() {
	r.CompanyID = strings.TrimSpace(r.CompanyID)
	r.Type = strings.ToUpper(strings.TrimSpace(r.Type))
	r.Influence = strings.ToUpper(strings.TrimSpace(r.Influence))
	r.Interest = strings.ToUpper(strings.TrimSpace(r.Interest))
}

func (r *CreateRequest) Validate() error {
	return validation.Required("companyId", r.CompanyID, "La empresa es obligatoria")
}

func (r *CreateRequest) Fields() stakeholders.Fields {
	return stakeholders.Fields{
		CompanyID:    r.CompanyID,
		Name:         r.Name,
		Type:         stakeholders.Type(r.Type),
		Category:     r.Category,
		Email:        r.Email,
		Phone:        r.Phone,
		Needs:        r.Needs,
		Expectations: r.Expectations,
		Influence:    stakeholders.Level(r.Influence),
		Interest:     stakeholders.Level(r.Interest),
	}
}

type UpdateRequest struct {
	Name         *string `json:"name"`
	Type         *string `json:"type"`
	Category     *string `json:"category"`
	Email        *string `json:"email"`
	Phone        *string `json:"phone"`
	Needs        *string `json:"needs"`
	Expectations *string `json:"expectations"`
	Influence    *string `json:"influence"`
	Interest     *string `json:"interest"`
}

func (r *UpdateRequest) Normalize() {
	for _, p := range []*string{r.Type, r.Influence, r.Interest} {
		if p != nil {
			*p = strings.ToUpper(strings.TrimSpace(*p))
		}
	}
}

func (r *UpdateRequest) Validate() error { return nil }

func (r *UpdateRequest) Patch() stakeholders.Patch {
	p := stakeholders.Patch{
		Name:         r.Name,
		Category:     r.Category,
		Email:        r.Email,
		Phone:        r.Phone,
		Needs:        r.Needs,
		Expectations: r.Expectations,
	}
	if r.Type != nil {
		v := stakeholders.Type(*r.Type)
		p.Type = &v
	}
	if r.Influence != nil {
		v := stakeholders.Level(*r.Influence)
		p.Influence = &v
	}
	if r.Interest != nil {
		v := stakeholders.Level(*r.Interest)
		p.Interest = &v
	}
	return p
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	req, ok := httputil.DecodeAndPrepare[CreateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	s, err := h.service.Create(ctx, req.Fields())
	if err != nil {
		shared.Fail(ctx, h.logger, w, err, "create_stakeholder")
		return
	}
	h.logger.InfoContext(ctx, "stakeholder created", "request_id", requestID, "stakeholder_id", s.ID)
	httputil.WriteCreated(w, toResponse(s), "Parte interesada creada")
}

func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page, err := h.service.Search(ctx, r.URL.Query())
	if err != nil {
		shared.Fail(ctx, h.logger, w, err, "search_stakeholders")
		return
	}
	shared.WritePage(w, page, toResponse)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s, err := h.service.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		shared.Fail(ctx, h.logger, w, err, "get_stakeholder")
		return
	}
	httputil.WriteData(w, toResponse(s), "")
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[UpdateRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	s, err := h.service.Update(ctx, chi.URLParam(r, "id"), req.Patch())
	if err != nil {
		shared.Fail(ctx, h.logger, w, err, "update_stakeholder")
		return
	}
	httputil.WriteData(w, toResponse(s), "Parte interesada actualizada")
}

func (h *Handler) HandleArchive(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s, err := h.service.Archive(ctx, chi.URLParam(r, "id"))
	if err != nil {
		shared.Fail(ctx, h.logger, w, err, "archive_stakeholder")
		return
	}
	httputil.WriteData(w, toResponse(s), "Parte interesada archivada")
}

func (h *Handler) HandleRestore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s, err := h.service.Restore(ctx, chi.URLParam(r, "id"))
	if err != nil {
		shared.Fail(ctx, h.logger, w, err, "restore_stakeholder")
		return
	}
	httputil.WriteData(w, toResponse(s), "Parte interesada restaurada")
}
