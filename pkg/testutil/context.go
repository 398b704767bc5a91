package testutil

import (
	"net/http"
	"time"

	"qms/pkg/requestcontext"
)

// WithUserID marks the request as authenticated, as the auth middleware would.
func WithUserID(req *http.Request, userID string) *http.Request {
	return req.WithContext(requestcontext.WithUserID(req.Context(), userID))
}

// WithCompanyID sets the company claim the auth middleware would set.
func WithCompanyID(req *http.Request, companyID string) *http.Request {
	return req.WithContext(requestcontext.WithCompanyID(req.Context(), companyID))
}

// WithTime pins the request clock so derived fields are deterministic.
func WithTime(req *http.Request, now time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), now))
}

// FixedClock returns middleware that pins every request to now.
func FixedClock(now time.Time) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, WithTime(r, now))
		})
	}
}
