package sleeves

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ahonkala/meepledex-backend/pkg/db/models"
)

// Storage is the persistence port the matcher and planners run against.
// The GORM repository implements it in production; tests use an in-memory
// fake.
type Storage interface {
	ListProducts(ctx context.Context) ([]models.SleeveProduct, error)
	ListOpenRequirements(ctx context.Context) ([]models.SleeveRequirement, error)
	ApplyMatches(ctx context.Context, updates []MatchUpdate) error
	ListGamesNeedingSleeves(ctx context.Context) ([]models.Game, error)
	ListGamesByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Game, error)
	ReplaceRequirementsForGame(ctx context.Context, gameID uuid.UUID, reqs []models.SleeveRequirement) error
}

// MatchUpdate assigns (or clears, with a nil ProductID) the matched product
// of one requirement.
type MatchUpdate struct {
	RequirementID uuid.UUID
	ProductID     *uuid.UUID
}

// MatchSummary reports the outcome of a full matching run.
type MatchSummary struct {
	Matched   int `json:"matched"`
	Unmatched int `json:"unmatched"`
	Total     int `json:"total"`
}

// ProductOffer is the product detail embedded in planning results.
type ProductOffer struct {
	ProductID      uuid.UUID       `json:"product_id"`
	Name           string          `json:"name"`
	Distributor    string          `json:"distributor"`
	WidthMM        int             `json:"width_mm"`
	HeightMM       int             `json:"height_mm"`
	SleevesPerPack int             `json:"sleeves_per_pack"`
	Price          decimal.Decimal `json:"price"`
	PricePerSleeve decimal.Decimal `json:"price_per_sleeve"`
	Currency       string          `json:"currency"`
	InStock        int             `json:"in_stock"`
	Ordered        int             `json:"ordered"`
}

// ToSleeveRequirement is one requirement of a game that is ready to sleeve.
type ToSleeveRequirement struct {
	RequirementID uuid.UUID `json:"requirement_id"`
	CardName      *string   `json:"card_name"`
	WidthMM       int       `json:"width_mm"`
	HeightMM      int       `json:"height_mm"`
	Quantity      int       `json:"quantity"`
	ProductID     uuid.UUID `json:"product_id"`
	ProductName   string    `json:"product_name"`
	InStock       int       `json:"in_stock"`
}

// ToSleeveGame is a game whose every open requirement is coverable from
// stock on hand.
type ToSleeveGame struct {
	GameID       uuid.UUID             `json:"game_id"`
	Title        string                `json:"title"`
	Requirements []ToSleeveRequirement `json:"requirements"`
}

// ToOrderGroup is one (width, height) size class that needs purchasing.
// Product is nil when no catalogued product fits the size.
type ToOrderGroup struct {
	WidthMM     int             `json:"width_mm"`
	HeightMM    int             `json:"height_mm"`
	TotalNeeded int             `json:"total_needed"`
	Deficit     int             `json:"deficit"`
	GamesCount  int             `json:"games_count"`
	GameNames   []string        `json:"game_names"`
	Product     *ProductOffer   `json:"product"`
	PacksToBuy  int             `json:"packs_to_buy"`
	TotalCost   decimal.Decimal `json:"total_cost"`
}

// ShoppingListGroup aggregates selected games' requirements per exact size.
type ShoppingListGroup struct {
	WidthMM           int      `json:"width_mm"`
	HeightMM          int      `json:"height_mm"`
	TotalQuantity     int      `json:"total_quantity"`
	GameCount         int      `json:"game_count"`
	GameTitles        []string `json:"game_titles"`
	VariationsGrouped int      `json:"variations_grouped"`
}
