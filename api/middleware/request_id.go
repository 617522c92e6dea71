package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/ahonkala/meepledex-backend/pkg/logger"
)

const requestIDHeader = "X-Request-Id"

// RequestID makes sure every request carries an X-Request-Id. An id sent by
// the caller is kept so the admin panel can correlate retries; otherwise one
// is generated. The id is echoed on the response and attached to the
// request-scoped logger.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(requestIDHeader)
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, id)

			ctx := r.Context()
			if logg != nil {
				ctx = logg.WithRequestID(ctx, id)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
