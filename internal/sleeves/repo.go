package sleeves

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ahonkala/meepledex-backend/pkg/db/models"
	"github.com/ahonkala/meepledex-backend/pkg/enums"
)

// Repository is the GORM-backed Storage implementation.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a sleeves repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// ListProducts returns the full sleeve product catalogue.
func (r *Repository) ListProducts(ctx context.Context) ([]models.SleeveProduct, error) {
	var products []models.SleeveProduct
	err := r.db.WithContext(ctx).
		Order("width_mm ASC, height_mm ASC, id ASC").
		Find(&products).
		Error
	return products, err
}

// ListOpenRequirements returns every requirement still counted as unsleeved.
func (r *Repository) ListOpenRequirements(ctx context.Context) ([]models.SleeveRequirement, error) {
	var reqs []models.SleeveRequirement
	err := r.db.WithContext(ctx).
		Where("state IN ?", []enums.SleeveState{enums.SleeveStateUnsleeved, enums.SleeveStateUnknown}).
		Order("id ASC").
		Find(&reqs).
		Error
	return reqs, err
}

// ApplyMatches writes all match assignments in one transaction so a failed
// batch leaves the previous assignments untouched.
func (r *Repository) ApplyMatches(ctx context.Context, updates []MatchUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, update := range updates {
			err := tx.
				Model(&models.SleeveRequirement{}).
				Where("id = ?", update.RequirementID).
				Update("matched_product_id", update.ProductID).
				Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// ListGamesNeedingSleeves loads games whose sleeve lookup produced
// requirements and that are not marked fully sleeved, with requirements and
// matched products preloaded.
func (r *Repository) ListGamesNeedingSleeves(ctx context.Context) ([]models.Game, error) {
	var games []models.Game
	err := r.db.WithContext(ctx).
		Preload("SleeveRequirements").
		Preload("SleeveRequirements.MatchedProduct").
		Where("has_sleeves IN ?", []enums.SleeveScanStatus{enums.SleeveScanStatusFound, enums.SleeveScanStatusManual}).
		Where("is_sleeved = ?", false).
		Order("title ASC, id ASC").
		Find(&games).
		Error
	return games, err
}

// ListGamesByIDs loads the selected games with their requirements preloaded.
func (r *Repository) ListGamesByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Game, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var games []models.Game
	err := r.db.WithContext(ctx).
		Preload("SleeveRequirements").
		Where("id IN ?", ids).
		Order("title ASC, id ASC").
		Find(&games).
		Error
	return games, err
}

// ReplaceRequirementsForGame deletes and reinserts a game's requirement rows
// in one transaction.
func (r *Repository) ReplaceRequirementsForGame(ctx context.Context, gameID uuid.UUID, reqs []models.SleeveRequirement) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.
			Where("game_id = ?", gameID).
			Delete(&models.SleeveRequirement{}).
			Error
		if err != nil {
			return err
		}
		if len(reqs) == 0 {
			return nil
		}
		for i := range reqs {
			reqs[i].GameID = gameID
			reqs[i].MatchedProductID = nil
			if reqs[i].State == "" {
				reqs[i].State = enums.SleeveStateUnknown
			}
		}
		return tx.Create(&reqs).Error
	})
}
