package shared

import (
	"context"
	"log/slog"
	"net/http"

	dErrors "qms/pkg/domain-errors"
	"qms/pkg/platform/httputil"
	"qms/pkg/requestcontext"
	"qms/pkg/search"
)

// Fail logs err and writes the error envelope. Client errors log at warn,
// anything mapped to 500 at error.
func Fail(ctx context.Context, logger *slog.Logger, w http.ResponseWriter, err error, op string) {
	attrs := []any{
		"request_id", requestcontext.RequestID(ctx),
		"operation", op,
		"error", err.Error(),
	}
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		logger.ErrorContext(ctx, "request failed", attrs...)
	} else {
		logger.WarnContext(ctx, "request rejected", attrs...)
	}
	httputil.WriteError(w, err)
}

// WritePage renders a search page, mapping each entity through view.
func WritePage[T, V any](w http.ResponseWriter, page search.Page[T], view func(T) V) {
	items := make([]V, 0, len(page.Items))
	for _, item := range page.Items {
		items = append(items, view(item))
	}
	httputil.WritePage(w, items, page.Total, page.Page, page.Limit, page.TotalPages)
}
