package middleware

import (
	"net/http"
	"strings"

	"github.com/ahonkala/meepledex-backend/api/responses"
	pkgAuth "github.com/ahonkala/meepledex-backend/pkg/auth"
	"github.com/ahonkala/meepledex-backend/pkg/config"
	pkgerrors "github.com/ahonkala/meepledex-backend/pkg/errors"
	"github.com/ahonkala/meepledex-backend/pkg/logger"
)

// Auth validates a bearer token and seeds the request context with the
// admin identity.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			payload, err := pkgAuth.ParseAccessToken(token, cfg)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			ctx := WithAdminID(r.Context(), payload.AdminID.String())
			ctx = withAdminEmail(ctx, payload.Email)

			if logg != nil {
				ctx = logg.WithFields(ctx, map[string]any{
					"admin_id": payload.AdminID.String(),
				})
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
