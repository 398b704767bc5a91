package handler

//go:generate mockgen -source=handler.go -destination=mocks/mock_service.go -package=mocks Service

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"qms/internal/documents"
	"qms/internal/shared"
	"qms/pkg/platform/httputil"
	"qms/pkg/requestcontext"
	"qms/pkg/search"
)

// Service defines the document use cases the handler depends on.
type Service interface {
	Create(ctx context.Context, f documents.Fields) (*documents.Document, error)
	Get(ctx context.Context, id string) (*documents.Document, error)
	Search(ctx context.Context, values url.Values) (search.Page[*documents.Document], error)
	Update(ctx context.Context, id string, p documents.Patch) (*documents.Document, error)
	SendToReview(ctx context.Context, id string) (*documents.Document, error)
	Approve(ctx context.Context, id, approvedBy string) (*documents.Document, error)
	Reject(ctx context.Context, id, reason string) (*documents.Document, error)
	Archive(ctx context.Context, id string) (*documents.Document, error)
	Restore(ctx context.Context, id string) (*documents.Document, error)
	IncrementVersion(ctx context.Context, id string) (*documents.Document, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the document routes under /documents.
func (h *Handler) Register(r chi.Router) {
	r.Route("/documents", func(r chi.Router) {
		r.Post("/", h.HandleCreate)
		r.Get("/", h.HandleSearch)
		r.Get("/{id}", h.HandleGet)
		r.Put("/{id}", h.HandleUpdate)
		r.Post("/{id}/review", h.action("send_to_review", "Documento enviado a revisión", h.service.SendToReview))
		r.Post("/{id}/approve", h.HandleApprove)
		r.Post("/{id}/reject", h.HandleReject)
		r.Post("/{id}/archive", h.action("archive", "Documento archivado", h.service.Archive))
		r.Post("/{id}/restore", h.action("restore", "Documento restaurado", h.service.Restore))
		r.Post("/{id}/version", h.action("increment_version", "Versión incrementada", h.service.IncrementVersion))
	})
}

// HandleCreate handles POST /documents.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	doc, err := h.service.Create(ctx, req.Fields())
	if err != nil {
		shared.Fail(ctx, h.logger, w, err, "create_document")
		return
	}

	h.logger.InfoContext(ctx, "document created",
		"request_id", requestID,
		"document_id", doc.ID,
		"code", doc.Code,
	)
	httputil.WriteCreated(w, toResponse(requestcontext.Now(ctx))(doc), "Documento creado")
}

// HandleSearch handles GET /documents.
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page, err := h.service.Search(ctx, r.URL.Query())
	if err != nil {
		shared.Fail(ctx, h.logger, w, err, "search_documents")
		return
	}
	shared.WritePage(w, page, toResponse(requestcontext.Now(ctx)))
}

// HandleGet handles GET /documents/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	doc, err := h.service.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		shared.Fail(ctx, h.logger, w, err, "get_document")
		return
	}
	httputil.WriteData(w, toResponse(requestcontext.Now(ctx))(doc), "")
}

// HandleUpdate handles PUT /documents/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[UpdateRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	doc, err := h.service.Update(ctx, chi.URLParam(r, "id"), req.Patch())
	if err != nil {
		shared.Fail(ctx, h.logger, w, err, "update_document")
		return
	}
	httputil.WriteData(w, toResponse(requestcontext.Now(ctx))(doc), "Documento actualizado")
}

// HandleApprove handles POST /documents/{id}/approve.
func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeOptionalAndPrepare[ApproveRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	doc, err := h.service.Approve(ctx, chi.URLParam(r, "id"), req.ApprovedBy)
	if err != nil {
		shared.Fail(ctx, h.logger, w, err, "approve_document")
		return
	}
	httputil.WriteData(w, toResponse(requestcontext.Now(ctx))(doc), "Documento aprobado")
}

// HandleReject handles POST /documents/{id}/reject.
func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeOptionalAndPrepare[RejectRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	doc, err := h.service.Reject(ctx, chi.URLParam(r, "id"), req.Reason)
	if err != nil {
		shared.Fail(ctx, h.logger, w, err, "reject_document")
		return
	}
	httputil.WriteData(w, toResponse(requestcontext.Now(ctx))(doc), "Documento rechazado")
}

// action adapts a body-less state change to a handler.
func (h *Handler) action(op, message string, fn func(context.Context, string) (*documents.Document, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		doc, err := fn(ctx, chi.URLParam(r, "id"))
		if err != nil {
			shared.Fail(ctx, h.logger, w, err, op)
			return
		}
		httputil.WriteData(w, toResponse(requestcontext.Now(ctx))(doc), message)
	}
}
