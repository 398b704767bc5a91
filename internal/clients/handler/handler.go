package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"qms/internal/clients"
	"qms/internal/shared"
	"qms/pkg/platform/httputil"
	"qms/pkg/platform/validation"
	"qms/pkg/requestcontext"
	"qms/pkg/search"
)

type Service interface {
	Create(ctx context.Context, in clients.Fields) (*clients.Client, error)
	Get(ctx context.Context, id string) (*clients.Client, error)
	Search(ctx context.Context, values url.Values) (search.Page[*clients.Client], error)
	Update(ctx context.Context, id string, p clients.Patch) (*clients.Client, error)
	Archive(ctx context.Context, id string) (*clients.Client, error)
	Restore(ctx context.Context, id string) (*clients.Client, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/clients", func(r chi.Router) {
		r.Post("/", h.HandleCreate)
		r.Get("/", h.HandleSearch)
		r.Get("/{id}", h.HandleGet)
		r.Put("/{id}", h.HandleUpdate)
		r.Post("/{id}/archive", h.status("archive_client", "Cliente archivado", h.service.Archive))
		r.Post("/{id}/restore", h.status("restore_client", "Cliente restaurado", h.service.Restore))
	})
}

type CreateRequest struct {
	CompanyID string `json:"companyId"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	Contact   string `json:"contact"`
	TaxID     string `json:"taxId"`
}

func (r *CreateRequest) DefaultCompany(companyID string) {
	if r.CompanyID == "" {
		r.CompanyID = companyID
	}
}

func (r *CreateRequest) Normalize() {
	r.CompanyID = strings.TrimSpace(r.CompanyID)
	r.Email = strings.TrimSpace(r.Email)
}

func (r *CreateRequest) Validate() error {
	return validation.Required("companyId", r.CompanyID, "La empresa es obligatoria")
}

type UpdateRequest struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
	Contact *string `json:"contact"`
	TaxID   *string `json:"taxId"`
}

func (r *UpdateRequest) Normalize()      {}
func (r *UpdateRequest) Validate() error { return nil }

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	req, ok := httputil.DecodeAndPrepare[CreateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	c, err := h.service.Create(ctx, clients.Fields{
		CompanyID: req.CompanyID,
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   req.Address,
		Contact:   req.Contact,
		TaxID:     req.TaxID,
	})
	if err != nil {
		shared.Fail(ctx, h.logger, w, err, "create_client")
		return
	}
	h.logger.InfoContext(ctx, "client created", "request_id", requestID, "client_id", c.ID)
	httputil.WriteCreated(w, c, "Cliente creado")
}

func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page, err := h.service.Search(ctx, r.URL.Query())
	if err != nil {
		shared.Fail(ctx, h.logger, w, err, "search_clients")
		return
	}
	httputil.WritePage(w, page.Items, page.Total, page.Page, page.Limit, page.TotalPages)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	c, err := h.service.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		shared.Fail(ctx, h.logger, w, err, "get_client")
		return
	}
	httputil.WriteData(w, c, "")
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[UpdateRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	c, err := h.service.Update(ctx, chi.URLParam(r, "id"), clients.Patch{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
		Contact: req.Contact,
		TaxID:   req.TaxID,
	})
	if err != nil {
		shared.Fail(ctx, h.logger, w, err, "update_client")
		return
	}
	httputil.WriteData(w, c, "Cliente actualizado")
}

func (h *Handler) status(op, message string, fn func(context.Context, string) (*clients.Client, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		c, err := fn(ctx, chi.URLParam(r, "id"))
		if err != nil {
			shared.Fail(ctx, h.logger, w, err, op)
			return
		}
		httputil.WriteData(w, c, message)
	}
}
