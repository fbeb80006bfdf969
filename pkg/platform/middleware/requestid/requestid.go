// Package requestid propagates X-Request-ID into the request context.
package requestid

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"coursehub/pkg/requestcontext"
)

const Header = "X-Request-ID"

// maxLength bounds client-supplied ids before they reach logs.
const maxLength = 128

// Middleware reuses a sane client-supplied request id or mints a new one,
// echoing it on the response.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := strings.TrimSpace(r.Header.Get(Header))
		if reqID == "" || len(reqID) > maxLength {
			reqID = uuid.NewString()
		}
		w.Header().Set(Header, reqID)
		next.ServeHTTP(w, r.WithContext(requestcontext.WithRequestID(r.Context(), reqID)))
	})
}
