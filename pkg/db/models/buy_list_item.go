package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ahonkala/meepledex-backend/pkg/enums"
)

// BuyListItem tracks a shop offer for a game the owner wants to buy.
type BuyListItem struct {
	ID     uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	GameID *uuid.UUID `gorm:"column:game_id;type:uuid;index"`

	Title string `gorm:"column:title;not null"`
	Shop  string `gorm:"column:shop;not null"`
	URL   *string `gorm:"column:url"`

	Price    decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
	Currency string          `gorm:"column:currency;not null;default:'EUR'"`

	Status enums.BuyListStatus `gorm:"column:status;not null;default:'watching'"`

	LastCheckedAt *time.Time `gorm:"column:last_checked_at"`

	PriceSamples []BuyListPriceSample `gorm:"foreignKey:ItemID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// BuyListPriceSample is one observed price point for a buy-list item.
type BuyListPriceSample struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ItemID     uuid.UUID       `gorm:"column:item_id;type:uuid;not null;index"`
	Price      decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
	RecordedAt time.Time       `gorm:"column:recorded_at;not null"`
}
