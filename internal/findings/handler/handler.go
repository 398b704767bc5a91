package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"qms/internal/findings"
	"qms/internal/shared"
	"qms/pkg/platform/httputil"
	"qms/pkg/requestcontext"
	"qms/pkg/search"
)

type Service interface {
	Create(ctx context.Context, in findings.Fields) (*findings.Finding, error)
	Get(ctx context.Context, id string) (*findings.Finding, error)
	Search(ctx context.Context, values url.Values) (search.Page[*findings.Finding], error)
	Update(ctx context.Context, id string, p findings.Patch) (*findings.Finding, error)
	AddAction(ctx context.Context, id string, in findings.NewAction) (*findings.Finding, error)
	CompleteAction(ctx context.Context, id, actionID string) (*findings.Finding, error)
	VerifyAction(ctx context.Context, id, actionID, verifiedBy string) (*findings.Finding, error)
	Close(ctx context.Context, id string) (*findings.Finding, error)
	Cancel(ctx context.Context, id, reason string) (*findings.Finding, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/findings", func(r chi.Router) {
		r.Post("/", h.HandleCreate)
		r.Get("/", h.HandleSearch)
		r.Get("/{id}", h.HandleGet)
		r.Put("/{id}", h.HandleUpdate)
		r.Post("/{id}/actions", h.HandleAddAction)
		r.Post("/{id}/actions/{actionId}/complete", h.HandleCompleteAction)
		r.Post("/{id}/actions/{actionId}/verify", h.HandleVerifyAction)
		r.Post("/{id}/close", h.HandleClose)
		r.Post("/{id}/cancel", h.HandleCancel)
	})
}

// FindingResponse adds hasOverdueActions, computed at request time.
type FindingResponse struct {
	*findings.Finding
	HasOverdueActions bool `json:"hasOverdueActions"`
}

func toResponse(now time.Time) func(*findings.Finding) FindingResponse {
	return func(f *findings.Finding) FindingResponse {
		return FindingResponse{Finding: f, HasOverdueActions: f.HasOverdueActions(now)}
	}
}

func (h *Handler) write(ctx context.Context, w http.ResponseWriter, f *findings.Finding, message string) {
	httputil.WriteData(w, toResponse(requestcontext.Now(ctx))(f), message)
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	req, ok := httputil.DecodeAndPrepare[CreateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	f, err := h.service.Create(ctx, req.Fields())
	if err != nil {
		shared.Fail(ctx, h.logger, w, err, "create_finding")
		return
	}
	h.logger.InfoContext(ctx, "finding created",
		"request_id", requestID,
		"finding_id", f.ID,
		"severity", f.Severity,
	)
	httputil.WriteCreated(w, toResponse(requestcontext.Now(ctx))(f), "Hallazgo creado")
}

func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page, err := h.service.Search(ctx, r.URL.Query())
	if err != nil {
		shared.Fail(ctx, h.logger, w, err, "search_findings")
		return
	}
	shared.WritePage(w, page, toResponse(requestcontext.Now(ctx)))
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	f, err := h.service.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		shared.Fail(ctx, h.logger, w, err, "get_finding")
		return
	}
	h.write(ctx, w, f, "")
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[UpdateRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	f, err := h.service.Update(ctx, chi.URLParam(r, "id"), req.Patch())
	if err != nil {
		shared.Fail(ctx, h.logger, w, err, "update_finding")
		return
	}
	h.write(ctx, w, f, "Hallazgo actualizado")
}

func (h *Handler) HandleAddAction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[AddActionRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	f, err := h.service.AddAction(ctx, chi.URLParam(r, "id"), req.Action())
	if err != nil {
		shared.Fail(ctx, h.logger, w, err, "add_finding_action")
		return
	}
	h.write(ctx, w, f, "Acción agregada")
}

func (h *Handler) HandleCompleteAction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	f, err := h.service.CompleteAction(ctx, chi.URLParam(r, "id"), chi.URLParam(r, "actionId"))
	if err != nil {
		shared.Fail(ctx, h.logger, w, err, "complete_finding_action")
		return
	}
	h.write(ctx, w, f, "Acción completada")
}

func (h *Handler) HandleVerifyAction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeOptionalAndPrepare[VerifyRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	f, err := h.service.VerifyAction(ctx, chi.URLParam(r, "id"), chi.URLParam(r, "actionId"), req.VerifiedBy)
	if err != nil {
		shared.Fail(ctx, h.logger, w, err, "verify_finding_action")
		return
	}
	h.write(ctx, w, f, "Acción verificada")
}

func (h *Handler) HandleClose(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	f, err := h.service.Close(ctx, chi.URLParam(r, "id"))
	if err != nil {
		shared.Fail(ctx, h.logger, w, err, "close_finding")
		return
	}
	h.write(ctx, w, f, "Hallazgo cerrado")
}

func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeOptionalAndPrepare[CancelRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	f, err := h.service.Cancel(ctx, chi.URLParam(r, "id"), req.Reason)
	if err != nil {
		shared.Fail(ctx, h.logger, w, err, "cancel_finding")
		return
	}
	h.write(ctx, w, f, "Hallazgo cancelado")
}
