package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"qms/internal/audits"
	"qms/internal/shared"
	"qms/pkg/platform/httputil"
	"qms/pkg/requestcontext"
	"qms/pkg/search"
)

type Service interface {
	Create(ctx context.Context, in audits.Fields) (*audits.Audit, error)
	Get(ctx context.Context, id string) (*audits.Audit, error)
	Search(ctx context.Context, values url.Values) (search.Page[*audits.Audit], error)
	Update(ctx context.Context, id string, p audits.Patch) (*audits.Audit, error)
	Start(ctx context.Context, id string) (*audits.Audit, error)
	Complete(ctx context.Context, id string, c audits.Completion) (*audits.Audit, error)
	Cancel(ctx context.Context, id, reason string) (*audits.Audit, error)
	Reschedule(ctx context.Context, id string, to time.Time, reason string) (*audits.Audit, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/audits", func(r chi.Router) {
		r.Post("/", h.HandleCreate)
		r.Get("/", h.HandleSearch)
		r.Get("/{id}", h.HandleGet)
		r.Put("/{id}", h.HandleUpdate)
		r.Post("/{id}/start", h.HandleStart)
		r.Post("/{id}/complete", h.HandleComplete)
		r.Post("/{id}/cancel", h.HandleCancel)
		r.Post("/{id}/reschedule", h.HandleReschedule)
	})
}

type AuditResponse struct {
	*audits.Audit
	IsOverdue bool `json:"isOverdue"`
}

func toResponse(now time.Time) func(*audits.Audit) AuditResponse {
	return func(a *audits.Audit) AuditResponse {
		return AuditResponse{Audit: a, IsOverdue: a.IsOverdue(now)}
	}
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, a *audits.Audit, err error, op, message string) {
	ctx := r.Context()
	if err != nil {
		shared.Fail(ctx, h.logger, w, err, op)
		return
	}
	httputil.WriteData(w, toResponse(requestcontext.Now(ctx))(a), message)
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	req, ok := httputil.DecodeAndPrepare[CreateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	a, err := h.service.Create(ctx, req.Fields())
	if err != nil {
		shared.Fail(ctx, h.logger, w, err, "create_audit")
		return
	}
	h.logger.InfoContext(ctx, "audit planned",
		"request_id", requestID,
		"audit_id", a.ID,
		"planned_date", a.PlannedDate,
	)
	httputil.WriteCreated(w, toResponse(requestcontext.Now(ctx))(a), "Auditoría planificada")
}

func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page, err := h.service.Search(ctx, r.URL.Query())
	if err != nil {
		shared.Fail(ctx, h.logger, w, err, "search_audits")
		return
	}
	shared.WritePage(w, page, toResponse(requestcontext.Now(ctx)))
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	a, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	h.respond(w, r, a, err, "get_audit", "")
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[UpdateRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	a, err := h.service.Update(ctx, chi.URLParam(r, "id"), req.Patch())
	h.respond(w, r, a, err, "update_audit", "Auditoría actualizada")
}

func (h *Handler) HandleStart(w http.ResponseWriter, r *http.Request) {
	a, err := h.service.Start(r.Context(), chi.URLParam(r, "id"))
	h.respond(w, r, a, err, "start_audit", "Auditoría iniciada")
}

func (h *Handler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[CompleteRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	a, err := h.service.Complete(ctx, chi.URLParam(r, "id"), audits.Completion{
		Conclusions: req.Conclusions,
		FindingIDs:  req.FindingIDs,
	})
	h.respond(w, r, a, err, "complete_audit", "Auditoría completada")
}

func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeOptionalAndPrepare[CancelRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	a, err := h.service.Cancel(ctx, chi.URLParam(r, "id"), req.Reason)
	h.respond(w, r, a, err, "cancel_audit", "Auditoría cancelada")
}

func (h *Handler) HandleReschedule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[RescheduleRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	a, err := h.service.Reschedule(ctx, chi.URLParam(r, "id"), req.planned, req.Reason)
	h.respond(w, r, a, err, "reschedule_audit", "Auditoría reprogramada")
}
