package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/ahonkala/meepledex-backend/pkg/enums"
)

// Game is the canonical catalogue entry.
type Game struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title       string    `gorm:"column:title;not null"`
	Slug        string    `gorm:"column:slug;not null;uniqueIndex"`
	Description *string   `gorm:"column:description"`
	Designer    *string   `gorm:"column:designer"`
	YearPublished *int    `gorm:"column:year_published"`

	MinPlayers     int  `gorm:"column:min_players;not null;default:1"`
	MaxPlayers     int  `gorm:"column:max_players;not null;default:1"`
	PlaytimeMinutes *int `gorm:"column:playtime_minutes"`

	BGGID        *int64     `gorm:"column:bgg_id;uniqueIndex"`
	BGGRating    *float64   `gorm:"column:bgg_rating;type:numeric(4,2)"`
	BGGRank      *int       `gorm:"column:bgg_rank"`
	BGGSyncedAt  *time.Time `gorm:"column:bgg_synced_at"`

	CoverPublicID *string `gorm:"column:cover_public_id"`
	ImageURL      *string `gorm:"column:image_url"`

	Categories pq.StringArray `gorm:"column:categories;type:text[];not null;default:ARRAY[]::text[]"`
	Mechanics  pq.StringArray `gorm:"column:mechanics;type:text[];not null;default:ARRAY[]::text[]"`

	HasSleeves enums.SleeveScanStatus `gorm:"column:has_sleeves;not null;default:'unset'"`
	IsSleeved  bool                   `gorm:"column:is_sleeved;not null;default:false"`
	IsActive   bool                   `gorm:"column:is_active;not null;default:true"`

	SleeveRequirements []SleeveRequirement `gorm:"foreignKey:GameID;constraint:OnDelete:CASCADE"`
	BuyListItems       []BuyListItem       `gorm:"foreignKey:GameID;constraint:OnDelete:SET NULL"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
