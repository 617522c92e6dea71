package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/ahonkala/meepledex-backend/api/responses"
	"github.com/ahonkala/meepledex-backend/pkg/cloudinary"
	pkgerrors "github.com/ahonkala/meepledex-backend/pkg/errors"
	"github.com/ahonkala/meepledex-backend/pkg/logger"
)

// MediaSignUpload returns the signed parameters for a direct browser upload.
func MediaSignUpload(client *cloudinary.Client, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if client == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "media signing unavailable"))
			return
		}
		publicID := strings.TrimSpace(r.URL.Query().Get("public_id"))
		if publicID == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "public_id is required"))
			return
		}
		signature, err := client.SignUpload(publicID, time.Now())
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "signing upload"))
			return
		}
		responses.WriteSuccess(w, signature)
	}
}
