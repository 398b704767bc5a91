package shared

import (
	"context"
	"errors"
	"maps"
	"net/url"
	"strings"
	"time"

	"qms/internal/storage"
	dErrors "qms/pkg/domain-errors"
	"qms/pkg/platform/sentinel"
	"qms/pkg/requestcontext"
	"qms/pkg/search"
)

// StoreErr translates a store or callback error for the entity named label
// (e.g. "Documento"). Domain errors pass through unchanged.
func StoreErr(err error, label string) error {
	if err == nil {
		return nil
	}
	if _, ok := dErrors.As(err); ok {
		return err
	}
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, label+" no "+agree(label, "encontrado"))
	}
	if errors.Is(err, sentinel.ErrConflict) {
		return dErrors.New(dErrors.CodeConflict, label+" ya existe")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "error del repositorio")
}

// agree puts participle in the feminine for labels ending in "a"
// (Auditoría, Parte interesada).
func agree(label, participle string) string {
	if strings.HasSuffix(label, "a") {
		return strings.TrimSuffix(participle, "o") + "a"
	}
	return participle
}

// RequireID rejects blank path ids before any store call.
func RequireID(id string) error {
	if strings.TrimSpace(id) == "" {
		return dErrors.Validation("id", "El id es obligatorio")
	}
	return nil
}

// CompanyOrClaim returns companyID, or the caller's company claim when
// companyID is blank.
func CompanyOrClaim(ctx context.Context, companyID string) string {
	if strings.TrimSpace(companyID) != "" {
		return companyID
	}
	return requestcontext.CompanyID(ctx)
}

// Search validates values against schema, loads the collection and returns
// the requested page. Derived filters are evaluated against the request
// time. Validation happens before the store is touched. A request without
// companyId is scoped to the caller's company claim, if any.
func Search[T storage.Record](ctx context.Context, b Base, entity string, coll storage.Collection[T], schema *search.Schema[T], values url.Values) (search.Page[T], error) {
	if claim := requestcontext.CompanyID(ctx); claim != "" && strings.TrimSpace(values.Get("companyId")) == "" {
		values = maps.Clone(values)
		if values == nil {
			values = url.Values{}
		}
		values.Set("companyId", claim)
	}
	q, err := schema.WithDefaultLimit(b.DefaultLimit).Parse(values)
	if err != nil {
		return search.Page[T]{}, err
	}

	start := time.Now()
	all, err := coll.List(ctx)
	if err != nil {
		b.Logger.ErrorContext(ctx, "search failed",
			"entity", entity,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		return search.Page[T]{}, dErrors.Wrap(err, dErrors.CodeInternal, "error del repositorio")
	}

	page := q.Apply(all, requestcontext.Now(ctx))
	b.Metrics.ObserveSearch(entity, start, page.Total)
	return page, nil
}
