package middleware

import (
	"net/http"
	"strings"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/angelmondragon/wishlist-backend/pkg/logger"
)

const maxRequestIDLen = 128

var requestIDHeader = chimw.RequestIDHeader

// RequestID tags every request with an id: the caller's X-Request-Id when it
// is present and short enough, otherwise one generated by chi. The id is
// echoed on the response and added to the request's log fields.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		tagged := chimw.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := chimw.GetReqID(r.Context())
			w.Header().Set(requestIDHeader, id)

			ctx := r.Context()
			if logg != nil {
				ctx = logg.WithRequestID(ctx, id)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		}))

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			incoming := strings.TrimSpace(r.Header.Get(requestIDHeader))
			if incoming == "" || len(incoming) > maxRequestIDLen {
				r.Header.Del(requestIDHeader)
			} else {
				r.Header.Set(requestIDHeader, incoming)
			}
			tagged.ServeHTTP(w, r)
		})
	}
}
