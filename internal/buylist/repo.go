package buylist

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ahonkala/meepledex-backend/pkg/db/models"
	"github.com/ahonkala/meepledex-backend/pkg/enums"
)

// Repository encapsulates buy-list persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a buy-list repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// List returns items, optionally narrowed to one status.
func (r *Repository) List(ctx context.Context, status *enums.BuyListStatus) ([]models.BuyListItem, error) {
	query := r.db.WithContext(ctx).Model(&models.BuyListItem{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	var items []models.BuyListItem
	err := query.Order("created_at ASC, id ASC").Find(&items).Error
	return items, err
}

// FindByID loads one item.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.BuyListItem, error) {
	var item models.BuyListItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// Create inserts a new item.
func (r *Repository) Create(ctx context.Context, item *models.BuyListItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// Save persists all fields of an item.
func (r *Repository) Save(ctx context.Context, item *models.BuyListItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// Delete removes an item; its price samples go with it via the FK cascade.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.BuyListItem{}, "id = ?", id).Error
}

// RecordPrice updates the current price and appends a sample row in one
// transaction.
func (r *Repository) RecordPrice(ctx context.Context, itemID uuid.UUID, price decimal.Decimal, observedAt time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.
			Model(&models.BuyListItem{}).
			Where("id = ?", itemID).
			Updates(map[string]any{
				"price":           price,
				"last_checked_at": observedAt,
			}).
			Error
		if err != nil {
			return err
		}
		sample := models.BuyListPriceSample{
			ID:         uuid.New(),
			ItemID:     itemID,
			Price:      price,
			RecordedAt: observedAt,
		}
		return tx.Create(&sample).Error
	})
}

// ListPriceSamples returns an item's price history, newest first.
func (r *Repository) ListPriceSamples(ctx context.Context, itemID uuid.UUID) ([]models.BuyListPriceSample, error) {
	var samples []models.BuyListPriceSample
	err := r.db.WithContext(ctx).
		Where("item_id = ?", itemID).
		Order("recorded_at DESC").
		Find(&samples).
		Error
	return samples, err
}

// TouchLastChecked stamps the check time without changing the price.
func (r *Repository) TouchLastChecked(ctx context.Context, itemID uuid.UUID, observedAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.BuyListItem{}).
		Where("id = ?", itemID).
		Update("last_checked_at", observedAt).
		Error
}
