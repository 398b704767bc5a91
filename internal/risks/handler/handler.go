package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"qms/internal/risks"
	"qms/internal/shared"
	"qms/pkg/platform/httputil"
	"qms/pkg/requestcontext"
	"qms/pkg/search"
)

type Service interface {
	Create(ctx context.Context, in risks.Fields) (*risks.Risk, error)
	Get(ctx context.Context, id string) (*risks.Risk, error)
	Search(ctx context.Context, values url.Values) (search.Page[*risks.Risk], error)
	Update(ctx context.Context, id string, p risks.Patch) (*risks.Risk, error)
	AddControl(ctx context.Context, id string, in risks.ControlInput) (*risks.Risk, error)
	ReviewControl(ctx context.Context, id, controlID string, rv risks.Review) (*risks.Risk, error)
	MarkControlled(ctx context.Context, id string) (*risks.Risk, error)
	Close(ctx context.Context, id, reason string) (*risks.Risk, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/risks", func(r chi.Router) {
		r.Post("/", h.HandleCreate)
		r.Get("/", h.HandleSearch)
		r.Get("/{id}", h.HandleGet)
		r.Put("/{id}", h.HandleUpdate)
		r.Post("/{id}/controls", h.HandleAddControl)
		r.Post("/{id}/controls/{controlId}/review", h.HandleReviewControl)
		r.Post("/{id}/controlled", h.HandleControlled)
		r.Post("/{id}/close", h.HandleClose)
	})
}

// RiskResponse adds the derived score fields.
type RiskResponse struct {
	*risks.Risk
	Level           int          `json:"level"`
	Rating          risks.Rating `json:"rating"`
	OverdueControls int          `json:"overdueControls"`
}

func toResponse(now time.Time) func(*risks.Risk) RiskResponse {
	return func(r *risks.Risk) RiskResponse {
		return RiskResponse{Risk: r, Level: r.Level(), Rating: r.Rating(), OverdueControls: r.OverdueControls(now)}
	}
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, risk *risks.Risk, err error, op, message string) {
	ctx := r.Context()
	if err != nil {
		shared.Fail(ctx, h.logger, w, err, op)
		return
	}
	httputil.WriteData(w, toResponse(requestcontext.Now(ctx))(risk), message)
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	req, ok := httputil.DecodeAndPrepare[CreateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	risk, err := h.service.Create(ctx, req.Fields())
	if err != nil {
		shared.Fail(ctx, h.logger, w, err, "create_risk")
		return
	}
	h.logger.InfoContext(ctx, "risk identified",
		"request_id", requestID,
		"risk_id", risk.ID,
		"rating", risk.Rating(),
	)
	httputil.WriteCreated(w, toResponse(requestcontext.Now(ctx))(risk), "Riesgo registrado")
}

func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page, err := h.service.Search(ctx, r.URL.Query())
	if err != nil {
		shared.Fail(ctx, h.logger, w, err, "search_risks")
		return
	}
	shared.WritePage(w, page, toResponse(requestcontext.Now(ctx)))
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	risk, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	h.respond(w, r, risk, err, "get_risk", "")
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[UpdateRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	risk, err := h.service.Update(ctx, chi.URLParam(r, "id"), req.Patch())
	h.respond(w, r, risk, err, "update_risk", "Riesgo actualizado")
}

func (h *Handler) HandleAddControl(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[ControlRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	risk, err := h.service.AddControl(ctx, chi.URLParam(r, "id"), req.Input())
	h.respond(w, r, risk, err, "add_risk_control", "Control agregado")
}

func (h *Handler) HandleReviewControl(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[ReviewRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	risk, err := h.service.ReviewControl(ctx, chi.URLParam(r, "id"), chi.URLParam(r, "controlId"), req.Review())
	h.respond(w, r, risk, err, "review_risk_control", "Control revisado")
}

func (h *Handler) HandleControlled(w http.ResponseWriter, r *http.Request) {
	risk, err := h.service.MarkControlled(r.Context(), chi.URLParam(r, "id"))
	h.respond(w, r, risk, err, "control_risk", "Riesgo controlado")
}

func (h *Handler) HandleClose(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeOptionalAndPrepare[CloseRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	risk, err := h.service.Close(ctx, chi.URLParam(r, "id"), req.Reason)
	h.respond(w, r, risk, err, "close_risk", "Riesgo cerrado")
}
