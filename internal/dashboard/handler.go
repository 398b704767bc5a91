package dashboard

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"qms/internal/shared"
	"qms/pkg/platform/httputil"
)

type summarizer interface {
	Summary(ctx context.Context, companyID string) (*Summary, error)
}

type Handler struct {
	service summarizer
	logger  *slog.Logger
}

func NewHandler(service summarizer, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/dashboard/summary", h.HandleSummary)
}

func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	summary, err := h.service.Summary(ctx, r.URL.Query().Get("companyId"))
	if err != nil {
		shared.Fail(ctx, h.logger, w, err, "dashboard_summary")
		return
	}
	httputil.WriteData(w, summary, "")
}
