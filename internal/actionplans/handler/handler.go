package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"qms/internal/actionplans"
	"qms/internal/shared"
	"qms/pkg/platform/httputil"
	"qms/pkg/requestcontext"
	"qms/pkg/search"
)

type Service interface {
	Create(ctx context.Context, in actionplans.Fields) (*actionplans.ActionPlan, error)
	Get(ctx context.Context, id string) (*actionplans.ActionPlan, error)
	Search(ctx context.Context, values url.Values) (search.Page[*actionplans.ActionPlan], error)
	Update(ctx context.Context, id string, p actionplans.Patch) (*actionplans.ActionPlan, error)
	AddAction(ctx context.Context, id string, in actionplans.NewAction) (*actionplans.ActionPlan, error)
	UpdateAction(ctx context.Context, id, actionID string, p actionplans.ActionPatch) (*actionplans.ActionPlan, error)
	Cancel(ctx context.Context, id, reason string) (*actionplans.ActionPlan, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/action-plans", func(r chi.Router) {
		r.Post("/", h.HandleCreate)
		r.Get("/", h.HandleSearch)
		r.Get("/{id}", h.HandleGet)
		r.Put("/{id}", h.HandleUpdate)
		r.Post("/{id}/actions", h.HandleAddAction)
		r.Patch("/{id}/actions/{actionId}", h.HandleUpdateAction)
		r.Post("/{id}/cancel", h.HandleCancel)
	})
}

// PlanResponse carries the stored status plus the status users see,
// which reads OVERDUE while an outstanding action is late.
type PlanResponse struct {
	*actionplans.ActionPlan
	EffectiveStatus   actionplans.Status `json:"effectiveStatus"`
	HasOverdueActions bool               `json:"hasOverdueActions"`
}

func toResponse(now time.Time) func(*actionplans.ActionPlan) PlanResponse {
	return func(p *actionplans.ActionPlan) PlanResponse {
		return PlanResponse{
			ActionPlan:        p,
			EffectiveStatus:   p.EffectiveStatus(now),
			HasOverdueActions: p.HasOverdueActions(now),
		}
	}
}

func (h *Handler) write(ctx context.Context, w http.ResponseWriter, p *actionplans.ActionPlan, message string) {
	httputil.WriteData(w, toResponse(requestcontext.Now(ctx))(p), message)
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	req, ok := httputil.DecodeAndPrepare[CreateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	p, err := h.service.Create(ctx, req.Fields())
	if err != nil {
		shared.Fail(ctx, h.logger, w, err, "create_action_plan")
		return
	}
	h.logger.InfoContext(ctx, "action plan created",
		"request_id", requestID,
		"plan_id", p.ID,
		"origin_type", p.OriginType,
	)
	httputil.WriteCreated(w, toResponse(requestcontext.Now(ctx))(p), "Plan de acción creado")
}

func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page, err := h.service.Search(ctx, r.URL.Query())
	if err != nil {
		shared.Fail(ctx, h.logger, w, err, "search_action_plans")
		return
	}
	shared.WritePage(w, page, toResponse(requestcontext.Now(ctx)))
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, err := h.service.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		shared.Fail(ctx, h.logger, w, err, "get_action_plan")
		return
	}
	h.write(ctx, w, p, "")
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[UpdateRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	p, err := h.service.Update(ctx, chi.URLParam(r, "id"), req.Patch())
	if err != nil {
		shared.Fail(ctx, h.logger, w, err, "update_action_plan")
		return
	}
	h.write(ctx, w, p, "Plan de acción actualizado")
}

func (h *Handler) HandleAddAction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[AddActionRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	p, err := h.service.AddAction(ctx, chi.URLParam(r, "id"), req.Action())
	if err != nil {
		shared.Fail(ctx, h.logger, w, err, "add_plan_action")
		return
	}
	h.write(ctx, w, p, "Acción agregada")
}

func (h *Handler) HandleUpdateAction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[UpdateActionRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	p, err := h.service.UpdateAction(ctx, chi.URLParam(r, "id"), chi.URLParam(r, "actionId"), req.Patch())
	if err != nil {
		shared.Fail(ctx, h.logger, w, err, "update_plan_action")
		return
	}
	h.write(ctx, w, p, "Acción actualizada")
}

func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeOptionalAndPrepare[CancelRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	p, err := h.service.Cancel(ctx, chi.URLParam(r, "id"), req.Reason)
	if err != nil {
		shared.Fail(ctx, h.logger, w, err, "cancel_action_plan")
		return
	}
	h.write(ctx, w, p, "Plan de acción cancelado")
}
