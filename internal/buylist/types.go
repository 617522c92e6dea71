package buylist

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ahonkala/meepledex-backend/pkg/db/models"
	"github.com/ahonkala/meepledex-backend/pkg/enums"
)

// PriceSource resolves the current price of an item at its shop. The
// scraping or API integration behind it lives outside this module.
type PriceSource interface {
	CurrentPrice(ctx context.Context, item models.BuyListItem) (decimal.Decimal, error)
}

// CreateItemInput carries the fields for a new tracked offer.
type CreateItemInput struct {
	GameID   *uuid.UUID
	Title    string
	Shop     string
	URL      *string
	Price    decimal.Decimal
	Currency string
}

// UpdateItemInput carries partial updates; nil pointers leave fields alone.
type UpdateItemInput struct {
	Title *string
	Shop  *string
	URL   *string
	Price *decimal.Decimal
}

// ItemDTO is the response shape for one buy-list entry.
type ItemDTO struct {
	ID            uuid.UUID           `json:"id"`
	GameID        *uuid.UUID          `json:"game_id"`
	Title         string              `json:"title"`
	Shop          string              `json:"shop"`
	URL           *string             `json:"url"`
	Price         decimal.Decimal     `json:"price"`
	Currency      string              `json:"currency"`
	Status        enums.BuyListStatus `json:"status"`
	LastCheckedAt *time.Time          `json:"last_checked_at"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// PriceSampleDTO is one historical price observation.
type PriceSampleDTO struct {
	Price      decimal.Decimal `json:"price"`
	RecordedAt time.Time       `json:"recorded_at"`
}

// CheapestOffer is the best current price for one game on the list.
type CheapestOffer struct {
	GameID *uuid.UUID      `json:"game_id"`
	Title  string          `json:"title"`
	Shop   string          `json:"shop"`
	Price  decimal.Decimal `json:"price"`
}

// Summary aggregates the buy list for the dashboard.
type Summary struct {
	TotalTracked int             `json:"total_tracked"`
	Watching     int             `json:"watching"`
	Ordered      int             `json:"ordered"`
	Bought       int             `json:"bought"`
	Cheapest     []CheapestOffer `json:"cheapest"`
}

// RefreshSummary reports a price refresh run.
type RefreshSummary struct {
	Checked int `json:"checked"`
	Updated int `json:"updated"`
	Failed  int `json:"failed"`
}

func itemToDTO(item models.BuyListItem) ItemDTO {
	return ItemDTO{
		ID:            item.ID,
		GameID:        item.GameID,
		Title:         item.Title,
		Shop:          item.Shop,
		URL:           item.URL,
		Price:         item.Price,
		Currency:      item.Currency,
		Status:        item.Status,
		LastCheckedAt: item.LastCheckedAt,
		CreatedAt:     item.CreatedAt,
		UpdatedAt:     item.UpdatedAt,
	}
}
