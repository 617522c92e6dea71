package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SleeveProduct is a purchasable pack of sleeves of a fixed internal size.
// Rows are maintained by catalog imports; the matching core only reads them.
type SleeveProduct struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string    `gorm:"column:name;not null"`
	Distributor string    `gorm:"column:distributor;not null"`
	ItemID      string    `gorm:"column:item_id;not null"`

	WidthMM        int `gorm:"column:width_mm;not null;index:idx_sleeve_products_size"`
	HeightMM       int `gorm:"column:height_mm;not null;index:idx_sleeve_products_size"`
	SleevesPerPack int `gorm:"column:sleeves_per_pack;not null"`

	Price    decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
	Currency string          `gorm:"column:currency;not null;default:'EUR'"`

	InStock int `gorm:"column:in_stock;not null;default:0"`
	Ordered int `gorm:"column:ordered;not null;default:0"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// PricePerSleeve returns the unit cost used by the cheapest-match policy.
func (p SleeveProduct) PricePerSleeve() decimal.Decimal {
	if p.SleevesPerPack <= 0 {
		return decimal.Zero
	}
	return p.Price.Div(decimal.NewFromInt(int64(p.SleevesPerPack)))
}
