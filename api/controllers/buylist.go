package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ahonkala/meepledex-backend/api/responses"
	"github.com/ahonkala/meepledex-backend/api/validators"
	"github.com/ahonkala/meepledex-backend/internal/buylist"
	"github.com/ahonkala/meepledex-backend/pkg/enums"
	pkgerrors "github.com/ahonkala/meepledex-backend/pkg/errors"
	"github.com/ahonkala/meepledex-backend/pkg/logger"
)

type createBuyListPayload struct {
	GameID   *uuid.UUID      `json:"game_id"`
	Title    string          `json:"title" validate:"required"`
	Shop     string          `json:"shop" validate:"required"`
	URL      *string         `json:"url"`
	Price    decimal.Decimal `json:"price"`
	Currency string          `json:"currency"`
}

type updateBuyListPayload struct {
	Title *string          `json:"title"`
	Shop  *string          `json:"shop"`
	URL   *string          `json:"url"`
	Price *decimal.Decimal `json:"price"`
}

type setBuyListStatusPayload struct {
	Status string `json:"status" validate:"required"`
}

// BuyListIndex lists tracked offers, optionally filtered by status.
func BuyListIndex(svc buylist.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "buy list service unavailable"))
			return
		}
		var status *enums.BuyListStatus
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			parsed, err := enums.ParseBuyListStatus(raw)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			status = &parsed
		}
		items, err := svc.List(ctx, status)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// BuyListCreate starts tracking an offer.
func BuyListCreate(svc buylist.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "buy list service unavailable"))
			return
		}
		var payload createBuyListPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		item, err := svc.Create(ctx, buylist.CreateItemInput{
			GameID:   payload.GameID,
			Title:    payload.Title,
			Shop:     payload.Shop,
			URL:      payload.URL,
			Price:    payload.Price,
			Currency: payload.Currency,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

// BuyListUpdate applies a partial update to an item.
func BuyListUpdate(svc buylist.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id, err := validators.ParseUUIDParam(r, "itemId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var payload updateBuyListPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		item, err := svc.Update(ctx, id, buylist.UpdateItemInput{
			Title: payload.Title,
			Shop:  payload.Shop,
			URL:   payload.URL,
			Price: payload.Price,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// BuyListDelete stops tracking an item.
func BuyListDelete(svc buylist.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id, err := validators.ParseUUIDParam(r, "itemId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if err := svc.Delete(ctx, id); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}

// BuyListSetStatus moves an item along the watching/ordered/bought flow.
func BuyListSetStatus(svc buylist.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id, err := validators.ParseUUIDParam(r, "itemId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var payload setBuyListStatusPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		status, err := enums.ParseBuyListStatus(payload.Status)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}
		item, err := svc.SetStatus(ctx, id, status)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// BuyListHistory returns an item's recorded price samples.
func BuyListHistory(svc buylist.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id, err := validators.ParseUUIDParam(r, "itemId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		samples, err := svc.PriceHistory(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, samples)
	}
}

// BuyListSummary aggregates the list for the dashboard.
func BuyListSummary(svc buylist.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "buy list service unavailable"))
			return
		}
		summary, err := svc.Summarize(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

// BuyListRefresh re-quotes every watched item on demand.
func BuyListRefresh(svc buylist.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "buy list service unavailable"))
			return
		}
		summary, err := svc.RefreshPrices(ctx)
		if err != nil {
			// partial runs still report what succeeded
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "price refresh incomplete").WithDetails(summary))
			return
		}
		responses.WriteSuccess(w, summary)
	}
}
