// Package httputil writes the JSON response envelope shared by every endpoint
// and decodes request bodies.
//
// Envelope:
//
//	{"success": true,  "data": ..., "message": "...", "total": n, "page": p, "limit": l, "totalPages": t}
//	{"success": false, "error": "...", "code": "validation_error", "field": "email"}
package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	dErrors "qms/pkg/domain-errors"
	"qms/pkg/requestcontext"
)

// MaxBodyBytes caps request bodies.
const MaxBodyBytes = 1 << 20

// Envelope is the uniform response body.
type Envelope struct {
	Success    bool   `json:"success"`
	Data       any    `json:"data,omitempty"`
	Error      string `json:"error,omitempty"`
	Message    string `json:"message,omitempty"`
	Total      *int   `json:"total,omitempty"`
	Page       int    `json:"page,omitempty"`
	Limit      int    `json:"limit,omitempty"`
	TotalPages *int   `json:"totalPages,omitempty"`

	Code      string `json:"code,omitempty"`
	Field     string `json:"field,omitempty"`
	Current   string `json:"currentStatus,omitempty"`
	Attempted string `json:"attemptedStatus,omitempty"`
}

// WriteJSON writes v with status. Encoding errors are dropped: the header is
// already on the wire.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteData writes a 200 envelope around data.
func WriteData(w http.ResponseWriter, data any, message string) {
	WriteJSON(w, http.StatusOK, Envelope{Success: true, Data: data, Message: message})
}

// WriteCreated writes a 201 envelope around data.
func WriteCreated(w http.ResponseWriter, data any, message string) {
	WriteJSON(w, http.StatusCreated, Envelope{Success: true, Data: data, Message: message})
}

// WritePage writes a search result. items is always encoded as an array.
func WritePage[T any](w http.ResponseWriter, items []T, total, page, limit, totalPages int) {
	if items == nil {
		items = []T{}
	}
	WriteJSON(w, http.StatusOK, Envelope{
		Success:    true,
		Data:       items,
		Total:      &total,
		Page:       page,
		Limit:      limit,
		TotalPages: &totalPages,
	})
}

// WriteError maps err to a status code and an error envelope. Internal errors
// never expose their message or cause.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	status := dErrors.ToHTTPStatus(code)
	body := Envelope{Success: false, Code: string(code)}

	if code == dErrors.CodeInternal {
		body.Error = "Error interno del servidor"
		WriteJSON(w, status, body)
		return
	}

	if de, ok := dErrors.As(err); ok {
		body.Error = de.Message
		body.Field = de.Field
		body.Current = de.Current
		body.Attempted = de.Attempted
	} else {
		body.Error = err.Error()
	}
	WriteJSON(w, status, body)
}

// Preparable is implemented by request bodies: Normalize trims and
// canonicalizes, Validate rejects malformed input.
type Preparable interface {
	Normalize()
	Validate() error
}

// CompanyScoped requests take the caller's company claim when the body
// names no company. It is applied after Normalize.
type CompanyScoped interface {
	DefaultCompany(companyID string)
}

// DecodeJSON reads the body into dst. Malformed JSON is CodeBadRequest.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return dErrors.Wrap(err, dErrors.CodeBadRequest, "el cuerpo de la solicitud es obligatorio")
		}
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "cuerpo de la solicitud inválido")
	}
	return nil
}

// DecodeAndPrepare decodes, normalizes and validates a request body.
// On failure it writes the error response and returns ok=false.
func DecodeAndPrepare[T any, PT interface {
	*T
	Preparable
}](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (*T, bool) {
	return decodeAndPrepare[T, PT](w, r, logger, ctx, requestID, false)
}

// DecodeOptionalAndPrepare is DecodeAndPrepare for endpoints whose body may
// be omitted; an empty body is validated as the zero request.
func DecodeOptionalAndPrepare[T any, PT interface {
	*T
	Preparable
}](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (*T, bool) {
	return decodeAndPrepare[T, PT](w, r, logger, ctx, requestID, true)
}

func decodeAndPrepare[T any, PT interface {
	*T
	Preparable
}](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string, optional bool) (*T, bool) {
	var req T
	if err := DecodeJSON(r, &req); err != nil {
		if !optional || !errors.Is(err, io.EOF) {
			logger.WarnContext(ctx, "invalid request body",
				"request_id", requestID,
				"error", err,
			)
			WriteError(w, err)
			return nil, false
		}
	}

	p := PT(&req)
	p.Normalize()
	if scoped, ok := any(p).(CompanyScoped); ok {
		scoped.DefaultCompany(requestcontext.CompanyID(ctx))
	}
	if err := p.Validate(); err != nil {
		logger.WarnContext(ctx, "request validation failed",
			"request_id", requestID,
			"error", err,
		)
		WriteError(w, err)
		return nil, false
	}
	return &req, true
}
