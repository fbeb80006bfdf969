// Package requesttime captures one "now" per request so every timestamp a
// request writes (submitted_at, created_at of a whole credential batch) agrees.
package requesttime

import (
	"net/http"
	"time"

	"coursehub/pkg/requestcontext"
)

// Middleware stores the request start time on the context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
