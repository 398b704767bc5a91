package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"qms/internal/objectives"
	"qms/internal/shared"
	"qms/pkg/platform/httputil"
	"qms/pkg/requestcontext"
	"qms/pkg/search"
)

type Service interface {
	Create(ctx context.Context, in objectives.Fields) (*objectives.Objective, error)
	Get(ctx context.Context, id string) (*objectives.Objective, error)
	Search(ctx context.Context, values url.Values) (search.Page[*objectives.Objective], error)
	Update(ctx context.Context, id string, p objectives.Patch) (*objectives.Objective, error)
	Start(ctx context.Context, id string) (*objectives.Objective, error)
	RecordProgress(ctx context.Context, id string, p objectives.Progress) (*objectives.Objective, error)
	AddComment(ctx context.Context, id, author, text string) (*objectives.Objective, error)
	Close(ctx context.Context, id string) (*objectives.Objective, error)
	Cancel(ctx context.Context, id, reason string) (*objectives.Objective, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/objectives", func(r chi.Router) {
		r.Post("/", h.HandleCreate)
		r.Get("/", h.HandleSearch)
		r.Get("/{id}", h.HandleGet)
		r.Put("/{id}", h.HandleUpdate)
		r.Post("/{id}/start", h.HandleStart)
		r.Post("/{id}/progress", h.HandleProgress)
		r.Post("/{id}/comments", h.HandleComment)
		r.Post("/{id}/close", h.HandleClose)
		r.Post("/{id}/cancel", h.HandleCancel)
	})
}

type ObjectiveResponse struct {
	*objectives.Objective
	Progress  float64 `json:"progress"`
	IsOverdue bool    `json:"isOverdue"`
}

func toResponse(now time.Time) func(*objectives.Objective) ObjectiveResponse {
	return func(o *objectives.Objective) ObjectiveResponse {
		return ObjectiveResponse{Objective: o, Progress: o.Progress(), IsOverdue: o.IsOverdue(now)}
	}
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, o *objectives.Objective, err error, op, message string) {
	ctx := r.Context()
	if err != nil {
		shared.Fail(ctx, h.logger, w, err, op)
		return
	}
	httputil.WriteData(w, toResponse(requestcontext.Now(ctx))(o), message)
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	req, ok := httputil.DecodeAndPrepare[CreateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	o, err := h.service.Create(ctx, req.Fields())
	if err != nil {
		shared.Fail(ctx, h.logger, w, err, "create_objective")
		return
	}
	h.logger.InfoContext(ctx, "objective created",
		"request_id", requestID,
		"objective_id", o.ID,
	)
	httputil.WriteCreated(w, toResponse(requestcontext.Now(ctx))(o), "Objetivo creado")
}

func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page, err := h.service.Search(ctx, r.URL.Query())
	if err != nil {
		shared.Fail(ctx, h.logger, w, err, "search_objectives")
		return
	}
	shared.WritePage(w, page, toResponse(requestcontext.Now(ctx)))
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	o, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	h.respond(w, r, o, err, "get_objective", "")
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[UpdateRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	o, err := h.service.Update(ctx, chi.URLParam(r, "id"), req.Patch())
	h.respond(w, r, o, err, "update_objective", "Objetivo actualizado")
}

func (h *Handler) HandleStart(w http.ResponseWriter, r *http.Request) {
	o, err := h.service.Start(r.Context(), chi.URLParam(r, "id"))
	h.respond(w, r, o, err, "start_objective", "Objetivo iniciado")
}

func (h *Handler) HandleProgress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[ProgressRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	o, err := h.service.RecordProgress(ctx, chi.URLParam(r, "id"), req.Progress())
	h.respond(w, r, o, err, "record_objective_progress", "Progreso registrado")
}

func (h *Handler) HandleComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[CommentRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	o, err := h.service.AddComment(ctx, chi.URLParam(r, "id"), req.Author, req.Text)
	h.respond(w, r, o, err, "add_objective_comment", "Comentario agregado")
}

func (h *Handler) HandleClose(w http.ResponseWriter, r *http.Request) {
	o, err := h.service.Close(r.Context(), chi.URLParam(r, "id"))
	h.respond(w, r, o, err, "close_objective", "Objetivo cerrado")
}

func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeOptionalAndPrepare[CancelRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	o, err := h.service.Cancel(ctx, chi.URLParam(r, "id"), req.Reason)
	h.respond(w, r, o, err, "cancel_objective", "Objetivo cancelado")
}
