package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"qms/internal/shared"
	"qms/internal/suppliers"
	"qms/pkg/platform/httputil"
	"qms/pkg/requestcontext"
	"qms/pkg/search"
)

type Service interface {
	Create(ctx context.Context, in suppliers.Fields) (*suppliers.Supplier, error)
	Get(ctx context.Context, id string) (*suppliers.Supplier, error)
	Search(ctx context.Context, values url.Values) (search.Page[*suppliers.Supplier], error)
	Update(ctx context.Context, id string, p suppliers.Patch) (*suppliers.Supplier, error)
	UpdateEvaluation(ctx context.Context, id string, in suppliers.EvaluationInput) (*suppliers.Supplier, error)
	Archive(ctx context.Context, id string) (*suppliers.Supplier, error)
	Restore(ctx context.Context, id string) (*suppliers.Supplier, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/suppliers", func(r chi.Router) {
		r.Post("/", h.HandleCreate)
		r.Get("/", h.HandleSearch)
		r.Get("/{id}", h.HandleGet)
		r.Put("/{id}", h.HandleUpdate)
		r.Post("/{id}/evaluation", h.HandleEvaluation)
		r.Post("/{id}/archive", h.status("archive_supplier", "Proveedor archivado", h.service.Archive))
		r.Post("/{id}/restore", h.status("restore_supplier", "Proveedor restaurado", h.service.Restore))
	})
}

// SupplierResponse carries the derived approval state.
type SupplierResponse struct {
	*suppliers.Supplier
	Estado            suppliers.Estado `json:"estado"`
	EvaluationOverdue bool             `json:"evaluationOverdue"`
}

func (h *Handler) respond(ctx context.Context) func(*suppliers.Supplier) SupplierResponse {
	now := requestcontext.Now(ctx)
	return func(s *suppliers.Supplier) SupplierResponse {
		return SupplierResponse{Supplier: s, Estado: s.Estado(), EvaluationOverdue: s.EvaluationOverdue(now)}
	}
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
		shared.Fail(ctx, h.logger, w, err, "create_supplier")
		return
	}
	h.logger.InfoContext(ctx, "supplier created", "request_id", requestID, "supplier_id", s.ID)
	httputil.WriteCreated(w, h.respond(ctx)(s), "Proveedor creado")
}

func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page, err := h.service.Search(ctx, r.URL.Query())
	if err != nil {
		shared.Fail(ctx, h.logger, w, err, "search_suppliers")
		return
	}
	shared.WritePage(w, page, h.respond(ctx))
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s, err := h.service.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		shared.Fail(ctx, h.logger, w, err, "get_supplier")
		return
	}
	httputil.WriteData(w, h.respond(ctx)(s), "")
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[UpdateRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	s, err := h.service.Update(ctx, chi.URLParam(r, "id"), req.Patch())
	if err != nil {
		shared.Fail(ctx, h.logger, w, err, "update_supplier")
		return
	}
	httputil.WriteData(w, h.respond(ctx)(s), "Proveedor actualizado")
}

func (h *Handler) HandleEvaluation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	req, ok := httputil.DecodeAndPrepare[EvaluationRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	s, err := h.service.UpdateEvaluation(ctx, chi.URLParam(r, "id"), req.Input())
	if err != nil {
		shared.Fail(ctx, h.logger, w, err, "evaluate_supplier")
		return
	}
	h.logger.InfoContext(ctx, "supplier evaluated",
		"request_id", requestID,
		"supplier_id", s.ID,
		"estado", s.Estado(),
	)
	httputil.WriteData(w, h.respond(ctx)(s), "Evaluación registrada")
}

func (h *Handler) status(op, msg string, fn func(context.Context, string) (*suppliers.Supplier, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		s, err := fn(ctx, chi.URLParam(r, "id"))
		if err != nil {
			shared.Fail(ctx, h.logger, w, err, op)
			return
		}
		httputil.WriteData(w, h.respond(ctx)(s), msg)
	}
}
