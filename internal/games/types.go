package games

import (
	"time"

	"github.com/google/uuid"

	"github.com/ahonkala/meepledex-backend/pkg/db/models"
	"github.com/ahonkala/meepledex-backend/pkg/enums"
	"github.com/ahonkala/meepledex-backend/pkg/pagination"
)

// ListFilters narrows the catalogue listing. Zero values mean "no filter".
type ListFilters struct {
	Search      string
	Category    string
	Mechanic    string
	Players     int
	MinPlaytime int
	MaxPlaytime int
	Year        int
	ScanStatus  *enums.SleeveScanStatus
	ActiveOnly  bool
}

// GameSummaryDTO is the listing row shape.
type GameSummaryDTO struct {
	ID            uuid.UUID              `json:"id"`
	Title         string                 `json:"title"`
	Slug          string                 `json:"slug"`
	Designer      *string                `json:"designer"`
	YearPublished *int                   `json:"year_published"`
	MinPlayers    int                    `json:"min_players"`
	MaxPlayers    int                    `json:"max_players"`
	Playtime      *int                   `json:"playtime_minutes"`
	BGGID         *int64                 `json:"bgg_id"`
	BGGRating     *float64               `json:"bgg_rating"`
	BGGRank       *int                   `json:"bgg_rank"`
	CoverURL      *string                `json:"cover_url"`
	ImageURL      *string                `json:"image_url"`
	Categories    []string               `json:"categories"`
	Mechanics     []string               `json:"mechanics"`
	HasSleeves    enums.SleeveScanStatus `json:"has_sleeves"`
	IsSleeved     bool                   `json:"is_sleeved"`
	IsActive      bool                   `json:"is_active"`
}

// SleeveRequirementDTO is the requirement shape embedded in the detail view.
type SleeveRequirementDTO struct {
	ID               uuid.UUID         `json:"id"`
	CardName         *string           `json:"card_name"`
	WidthMM          int               `json:"width_mm"`
	HeightMM         int               `json:"height_mm"`
	Quantity         int               `json:"quantity"`
	State            enums.SleeveState `json:"state"`
	MatchedProductID *uuid.UUID        `json:"matched_product_id"`
}

// GameDetailDTO is the full public shape of one game.
type GameDetailDTO struct {
	GameSummaryDTO
	Description        *string                `json:"description"`
	BGGSyncedAt        *time.Time             `json:"bgg_synced_at"`
	SleeveRequirements []SleeveRequirementDTO `json:"sleeve_requirements"`
	CreatedAt          time.Time              `json:"created_at"`
	UpdatedAt          time.Time              `json:"updated_at"`
}

// GamePageDTO is one page of listing results.
type GamePageDTO struct {
	Items []GameSummaryDTO `json:"items"`
	Meta  pagination.Meta  `json:"meta"`
}

// CreateGameInput carries admin create fields.
type CreateGameInput struct {
	Title         string
	Description   *string
	Designer      *string
	YearPublished *int
	MinPlayers    int
	MaxPlayers    int
	Playtime      *int
	Categories    []string
	Mechanics     []string
}

// UpdateGameInput carries admin update fields; nil pointers leave the field
// untouched.
type UpdateGameInput struct {
	Title         *string
	Description   *string
	Designer      *string
	YearPublished *int
	MinPlayers    *int
	MaxPlayers    *int
	Playtime      *int
	Categories    []string
	Mechanics     []string
	IsActive      *bool
}

func summaryFromModel(game models.Game, coverURL *string) GameSummaryDTO {
	return GameSummaryDTO{
		ID:            game.ID,
		Title:         game.Title,
		Slug:          game.Slug,
		Designer:      game.Designer,
		YearPublished: game.YearPublished,
		MinPlayers:    game.MinPlayers,
		MaxPlayers:    game.MaxPlayers,
		Playtime:      game.PlaytimeMinutes,
		BGGID:         game.BGGID,
		BGGRating:     game.BGGRating,
		BGGRank:       game.BGGRank,
		CoverURL:      coverURL,
		ImageURL:      game.ImageURL,
		Categories:    game.Categories,
		Mechanics:     game.Mechanics,
		HasSleeves:    game.HasSleeves,
		IsSleeved:     game.IsSleeved,
		IsActive:      game.IsActive,
	}
}

func detailFromModel(game models.Game, coverURL *string) GameDetailDTO {
	reqs := make([]SleeveRequirementDTO, 0, len(game.SleeveRequirements))
	for _, req := range game.SleeveRequirements {
		reqs = append(reqs, SleeveRequirementDTO{
			ID:               req.ID,
			CardName:         req.CardName,
			WidthMM:          req.WidthMM,
			HeightMM:         req.HeightMM,
			Quantity:         req.Quantity,
			State:            req.State,
			MatchedProductID: req.MatchedProductID,
		})
	}
	return GameDetailDTO{
		GameSummaryDTO:     summaryFromModel(game, coverURL),
		Description:        game.Description,
		BGGSyncedAt:        game.BGGSyncedAt,
		SleeveRequirements: reqs,
		CreatedAt:          game.CreatedAt,
		UpdatedAt:          game.UpdatedAt,
	}
}
