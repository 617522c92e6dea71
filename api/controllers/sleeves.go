package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/ahonkala/meepledex-backend/api/responses"
	"github.com/ahonkala/meepledex-backend/api/validators"
	"github.com/ahonkala/meepledex-backend/internal/sleeves"
	pkgerrors "github.com/ahonkala/meepledex-backend/pkg/errors"
	"github.com/ahonkala/meepledex-backend/pkg/logger"
)

type shoppingListPayload struct {
	GameIDs       []uuid.UUID `json:"game_ids" validate:"required,min=1"`
	UnsleevedOnly bool        `json:"unsleeved_only"`
}

// SleevesRunMatching re-runs product matching over every open requirement.
func SleevesRunMatching(svc sleeves.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sleeves service unavailable"))
			return
		}
		summary, err := svc.RunMatchingForAllGames(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

// SleevesToSleeve lists the games ready to sleeve from current stock.
func SleevesToSleeve(svc sleeves.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sleeves service unavailable"))
			return
		}
		games, err := svc.ComputeToSleeveGames(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, games)
	}
}

// SleevesToOrder lists per-size deficits and the packs to buy.
func SleevesToOrder(svc sleeves.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sleeves service unavailable"))
			return
		}
		groups, err := svc.ComputeToOrderList(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, groups)
	}
}

// SleevesShoppingList aggregates sleeve needs for a chosen set of games.
func SleevesShoppingList(svc sleeves.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sleeves service unavailable"))
			return
		}
		var payload shoppingListPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		groups, err := svc.BuildShoppingList(ctx, payload.GameIDs, payload.UnsleevedOnly)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, groups)
	}
}
