// Package requesttime pins "now" for the duration of a request. Every
// derived flag (overdue, expired, expiring soon) and every timestamp written
// while serving one request uses the same instant.
package requesttime

import (
	"net/http"
	"time"

	"qms/pkg/requestcontext"
)

// Clock returns the current time. Tests substitute a fixed clock.
type Clock func() time.Time

// Middleware captures time.Now at the start of the request.
func Middleware(next http.Handler) http.Handler {
	return WithClock(time.Now)(next)
}

// WithClock is Middleware with an explicit clock. Times are kept in UTC.
func WithClock(clock Clock) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := requestcontext.WithTime(r.Context(), clock().UTC())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
