package handler

//go:generate mockgen -source=handler.go -destination=mocks/mock_service.go -package=mocks Service

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"qms/internal/processes"
	"qms/internal/shared"
	"qms/pkg/platform/httputil"
	"qms/pkg/platform/validation"
	"qms/pkg/requestcontext"
	"qms/pkg/search"
)

type Service interface {
	Create(ctx context.Context, in processes.Fields) (*processes.Process, error)
	Get(ctx context.Context, id string) (*processes.Process, error)
	Search(ctx context.Context, values url.Values) (search.Page[*processes.Process], error)
	Update(ctx context.Context, id string, p processes.Patch) (*processes.Process, error)
	Archive(ctx context.Context, id string) (*processes.Process, error)
	Restore(ctx context.Context, id string) (*processes.Process, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/processes", func(r chi.Router) {
		r.Post("/", h.HandleCreate)
		r.Get("/", h.HandleSearch)
		r.Get("/{id}", h.HandleGet)
		r.Put("/{id}", h.HandleUpdate)
		r.Post("/{id}/archive", h.HandleArchive)
		r.Post("/{id}/restore", h.HandleRestore)
	})
}

type CreateRequest struct {
	CompanyID   string   `json:"companyId"`
	Code        string   `json:"code"`
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Owner       string   `json:"owner"`
	Purpose     string   `json:"purpose"`
	Description string   `json:"description"`
	Inputs      []string `json:"inputs"`
	Outputs     []string `json:"outputs"`
}

func (r *CreateRequest) DefaultCompany(companyID string) {
	if r.CompanyID == "" {
		r.CompanyID = companyID
	}
}

func (r *CreateRequest) Normalize() {
	r.CompanyID = strings.TrimSpace(r.CompanyID)
	r.Type = strings.ToUpper(strings.TrimSpace(r.Type))
}

func (r *CreateRequest) Validate() error {
	return validation.Required("companyId", r.CompanyID, "La empresa es obligatoria")
}

type UpdateRequest struct {
	Code        *string  `json:"code"`
	Name        *string  `json:"name"`
	Type        *string  `json:"type"`
	Owner       *string  `json:"owner"`
	Purpose     *string  `json:"purpose"`
	Description *string  `json:"description"`
	Inputs      []string `json:"inputs"`
	Outputs     []string `json:"outputs"`
}

func (r *UpdateRequest) Normalize() {
	if r.Type != nil {
		v := strings.ToUpper(strings.TrimSpace(*r.Type))
		r.Type = &v
	}
}

func (r *UpdateRequest) Validate() error { return nil }

func (r *UpdateRequest) Patch() processes.Patch {
	p := processes.Patch{
		Code:        r.Code,
		Name:        r.Name,
		Owner:       r.Owner,
		Purpose:     r.Purpose,
		Description: r.Description,
		Inputs:      r.Inputs,
		Outputs:     r.Outputs,
	}
	if r.Type != nil {
		v := processes.Type(*r.Type)
		p.Type = &v
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
	p, err := h.service.Create(ctx, processes.Fields{
		CompanyID:   req.CompanyID,
		Code:        req.Code,
		Name:        req.Name,
		Type:        processes.Type(req.Type),
		Owner:       req.Owner,
		Purpose:     req.Purpose,
		Description: req.Description,
		Inputs:      req.Inputs,
		Outputs:     req.Outputs,
	})
	if err != nil {
		shared.Fail(ctx, h.logger, w, err, "create_process")
		return
	}
	h.logger.InfoContext(ctx, "process created", "request_id", requestID, "process_id", p.ID, "code", p.Code)
	httputil.WriteCreated(w, p, "Proceso creado")
}

func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page, err := h.service.Search(ctx, r.URL.Query())
	if err != nil {
		shared.Fail(ctx, h.logger, w, err, "search_processes")
		return
	}
	httputil.WritePage(w, page.Items, page.Total, page.Page, page.Limit, page.TotalPages)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, err := h.service.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		shared.Fail(ctx, h.logger, w, err, "get_process")
		return
	}
	httputil.WriteData(w, p, "")
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[UpdateRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	p, err := h.service.Update(ctx, chi.URLParam(r, "id"), req.Patch())
	if err != nil {
		shared.Fail(ctx, h.logger, w, err, "update_process")
		return
	}
	httputil.WriteData(w, p, "Proceso actualizado")
}

func (h *Handler) HandleArchive(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, err := h.service.Archive(ctx, chi.URLParam(r, "id"))
	if err != nil {
		shared.Fail(ctx, h.logger, w, err, "archive_process")
		return
	}
	httputil.WriteData(w, p, "Proceso archivado")
}

func (h *Handler) HandleRestore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, err := h.service.Restore(ctx, chi.URLParam(r, "id"))
	if err != nil {
		shared.Fail(ctx, h.logger, w, err, "restore_process")
		return
	}
	httputil.WriteData(w, p, "Proceso restaurado")
}
