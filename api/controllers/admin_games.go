package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/ahonkala/meepledex-backend/api/responses"
	"github.com/ahonkala/meepledex-backend/api/validators"
	"github.com/ahonkala/meepledex-backend/internal/bggimport"
	"github.com/ahonkala/meepledex-backend/internal/games"
	"github.com/ahonkala/meepledex-backend/internal/sleeves"
	"github.com/ahonkala/meepledex-backend/pkg/db/models"
	"github.com/ahonkala/meepledex-backend/pkg/enums"
	pkgerrors "github.com/ahonkala/meepledex-backend/pkg/errors"
	"github.com/ahonkala/meepledex-backend/pkg/logger"
)

type createGamePayload struct {
	Title         string   `json:"title" validate:"required"`
	Description   *string  `json:"description"`
	Designer      *string  `json:"designer"`
	YearPublished *int     `json:"year_published"`
	MinPlayers    int      `json:"min_players"`
	MaxPlayers    int      `json:"max_players"`
	Playtime      *int     `json:"playtime_minutes"`
	Categories    []string `json:"categories"`
	Mechanics     []string `json:"mechanics"`
}

type updateGamePayload struct {
	Title         *string  `json:"title"`
	Description   *string  `json:"description"`
	Designer      *string  `json:"designer"`
	YearPublished *int     `json:"year_published"`
	MinPlayers    *int     `json:"min_players"`
	MaxPlayers    *int     `json:"max_players"`
	Playtime      *int     `json:"playtime_minutes"`
	Categories    []string `json:"categories"`
	Mechanics     []string `json:"mechanics"`
	IsActive      *bool    `json:"is_active"`
}

type importGamePayload struct {
	BGGID  int64      `json:"bgg_id" validate:"required,min=1"`
	GameID *uuid.UUID `json:"game_id"`
}

type setScanStatusPayload struct {
	Status string `json:"status" validate:"required"`
}

type setSleevedPayload struct {
	Sleeved bool `json:"sleeved"`
}

type setCoverPayload struct {
	PublicID string `json:"public_id" validate:"required"`
}

type requirementPayload struct {
	CardName *string `json:"card_name"`
	WidthMM  int     `json:"width_mm" validate:"required,min=1"`
	HeightMM int     `json:"height_mm" validate:"required,min=1"`
	Quantity int     `json:"quantity" validate:"min=0"`
	State    string  `json:"state"`
}

type replaceRequirementsPayload struct {
	Requirements []requirementPayload `json:"requirements" validate:"dive"`
}

// AdminGamesList returns the full catalogue including inactive entries.
func AdminGamesList(svc games.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		filters, err := validators.ParseGameFilters(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		page, err := svc.ListAdmin(ctx, filters, params)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// AdminGamesGet returns one game by id, active or not.
func AdminGamesGet(svc games.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id, err := validators.ParseUUIDParam(r, "gameId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		detail, err := svc.GetByID(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

// AdminGamesCreate adds a game to the catalogue.
func AdminGamesCreate(svc games.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var payload createGamePayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		detail, err := svc.Create(ctx, games.CreateGameInput{
			Title:         payload.Title,
			Description:   payload.Description,
			Designer:      payload.Designer,
			YearPublished: payload.YearPublished,
			MinPlayers:    payload.MinPlayers,
			MaxPlayers:    payload.MaxPlayers,
			Playtime:      payload.Playtime,
			Categories:    payload.Categories,
			Mechanics:     payload.Mechanics,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, detail)
	}
}

// AdminGamesUpdate applies a partial update.
func AdminGamesUpdate(svc games.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id, err := validators.ParseUUIDParam(r, "gameId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var payload updateGamePayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		detail, err := svc.Update(ctx, id, games.UpdateGameInput{
			Title:         payload.Title,
			Description:   payload.Description,
			Designer:      payload.Designer,
			YearPublished: payload.YearPublished,
			MinPlayers:    payload.MinPlayers,
			MaxPlayers:    payload.MaxPlayers,
			Playtime:      payload.Playtime,
			Categories:    payload.Categories,
			Mechanics:     payload.Mechanics,
			IsActive:      payload.IsActive,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

// AdminGamesDelete removes a game and its sleeve requirements.
func AdminGamesDelete(svc games.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id, err := validators.ParseUUIDParam(r, "gameId")
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

// AdminGamesSetScanStatus updates the sleeve scan status.
func AdminGamesSetScanStatus(svc games.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id, err := validators.ParseUUIDParam(r, "gameId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var payload setScanStatusPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		status, err := enums.ParseSleeveScanStatus(payload.Status)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid scan status"))
			return
		}
		if err := svc.SetScanStatus(ctx, id, status); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": status.String()})
	}
}

// AdminGamesSetSleeved marks a game fully sleeved or not.
func AdminGamesSetSleeved(svc games.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id, err := validators.ParseUUIDParam(r, "gameId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var payload setSleevedPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if err := svc.SetSleeved(ctx, id, payload.Sleeved); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"sleeved": payload.Sleeved})
	}
}

// AdminGamesSetCover attaches a Cloudinary public id as the cover image.
func AdminGamesSetCover(svc games.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id, err := validators.ParseUUIDParam(r, "gameId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var payload setCoverPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if err := svc.SetCover(ctx, id, payload.PublicID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"updated": true})
	}
}

// AdminGamesImport imports or links a game from BoardGameGeek.
func AdminGamesImport(svc bggimport.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "import service unavailable"))
			return
		}
		var payload importGamePayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var (
			game *models.Game
			err  error
		)
		if payload.GameID != nil {
			game, err = svc.LinkGame(ctx, *payload.GameID, payload.BGGID)
		} else {
			game, err = svc.Import(ctx, payload.BGGID)
		}
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, game)
	}
}

// AdminGamesSearchBGG proxies a catalogue search to BoardGameGeek.
func AdminGamesSearchBGG(svc bggimport.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "import service unavailable"))
			return
		}
		query := strings.TrimSpace(r.URL.Query().Get("q"))
		if query == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "query is required"))
			return
		}
		results, err := svc.Search(ctx, query)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, results)
	}
}

// AdminGamesReplaceRequirements swaps a game's sleeve requirements wholesale.
func AdminGamesReplaceRequirements(svc sleeves.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sleeves service unavailable"))
			return
		}
		id, err := validators.ParseUUIDParam(r, "gameId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var payload replaceRequirementsPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		reqs := make([]models.SleeveRequirement, 0, len(payload.Requirements))
		for _, item := range payload.Requirements {
			req := models.SleeveRequirement{
				CardName: item.CardName,
				WidthMM:  item.WidthMM,
				HeightMM: item.HeightMM,
				Quantity: item.Quantity,
			}
			if item.State != "" {
				state, err := enums.ParseSleeveState(item.State)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sleeve state"))
					return
				}
				req.State = state
			}
			reqs = append(reqs, req)
		}

		if err := svc.ReplaceRequirementsForGame(ctx, id, reqs); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int{"requirements": len(reqs)})
	}
}
