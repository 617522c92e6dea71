package controllers

import (
	"net/http"

	"github.com/ahonkala/meepledex-backend/api/responses"
	"github.com/ahonkala/meepledex-backend/api/validators"
	"github.com/ahonkala/meepledex-backend/internal/admins"
	pkgerrors "github.com/ahonkala/meepledex-backend/pkg/errors"
	"github.com/ahonkala/meepledex-backend/pkg/logger"
)

type loginPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthLogin exchanges admin credentials for an access token.
func AuthLogin(svc admins.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var payload loginPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.Login(ctx, payload.Email, payload.Password)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// AuthLogout acknowledges the logout; tokens are stateless and simply expire,
// the client drops its copy.
func AuthLogout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]bool{"logged_out": true})
	}
}
