package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ahonkala/meepledex-backend/pkg/enums"
)

// SleeveRequirement is one card type a game needs sleeves for. Rows are
// replaced wholesale when a game's sleeve data is re-imported; only the batch
// matcher writes MatchedProductID.
type SleeveRequirement struct {
	ID       uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	GameID   uuid.UUID `gorm:"column:game_id;type:uuid;not null;index"`
	CardName *string   `gorm:"column:card_name"`

	WidthMM  int `gorm:"column:width_mm;not null"`
	HeightMM int `gorm:"column:height_mm;not null"`
	Quantity int `gorm:"column:quantity;not null;default:0"`

	State enums.SleeveState `gorm:"column:state;not null;default:'unknown'"`

	MatchedProductID *uuid.UUID     `gorm:"column:matched_product_id;type:uuid"`
	MatchedProduct   *SleeveProduct `gorm:"foreignKey:MatchedProductID"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
