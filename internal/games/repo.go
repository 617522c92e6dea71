package games

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ahonkala/meepledex-backend/pkg/db/models"
	"github.com/ahonkala/meepledex-backend/pkg/enums"
	"github.com/ahonkala/meepledex-backend/pkg/pagination"
)

// Repository encapsulates game persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a games repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// List returns one page of games matching the filters, ordered by title then
// id so pages are stable.
func (r *Repository) List(ctx context.Context, filters ListFilters, params pagination.Params) ([]models.Game, int64, error) {
	query := r.applyFilters(r.db.WithContext(ctx).Model(&models.Game{}), filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	normalized := params.Normalize()
	var games []models.Game
	err := query.
		Order("title ASC, id ASC").
		Offset(params.Offset()).
		Limit(normalized.PerPage).
		Find(&games).
		Error
	if err != nil {
		return nil, 0, err
	}
	return games, total, nil
}

func (r *Repository) applyFilters(query *gorm.DB, filters ListFilters) *gorm.DB {
	if search := strings.TrimSpace(filters.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(COALESCE(designer, '')) LIKE ?", pattern, pattern)
	}
	if category := strings.TrimSpace(filters.Category); category != "" {
		query = query.Where(r.arrayContains("categories"), category)
	}
	if mechanic := strings.TrimSpace(filters.Mechanic); mechanic != "" {
		query = query.Where(r.arrayContains("mechanics"), mechanic)
	}
	if filters.Players > 0 {
		query = query.Where("min_players <= ? AND max_players >= ?", filters.Players, filters.Players)
	}
	if filters.MinPlaytime > 0 {
		query = query.Where("playtime_minutes >= ?", filters.MinPlaytime)
	}
	if filters.MaxPlaytime > 0 {
		query = query.Where("playtime_minutes <= ?", filters.MaxPlaytime)
	}
	if filters.Year > 0 {
		query = query.Where("year_published = ?", filters.Year)
	}
	if filters.ScanStatus != nil {
		query = query.Where("has_sleeves = ?", *filters.ScanStatus)
	}
	if filters.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	return query
}

// arrayContains builds the membership predicate for a text[] column. SQLite
// stores the pq literal as plain text, so tests fall back to a substring
// match.
func (r *Repository) arrayContains(column string) string {
	if r.db.Dialector.Name() == "postgres" {
		return "? = ANY(" + column + ")"
	}
	return column + " LIKE '%' || ? || '%'"
}

// FindByID loads one game with its sleeve requirements.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Game, error) {
	var game models.Game
	err := r.db.WithContext(ctx).
		Preload("SleeveRequirements").
		First(&game, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &game, nil
}

// FindBySlug loads one game by its public slug.
func (r *Repository) FindBySlug(ctx context.Context, slug string) (*models.Game, error) {
	var game models.Game
	err := r.db.WithContext(ctx).
		Preload("SleeveRequirements").
		First(&game, "slug = ?", slug).
		Error
	if err != nil {
		return nil, err
	}
	return &game, nil
}

// FindByBGGID loads the game linked to a BGG id, if any.
func (r *Repository) FindByBGGID(ctx context.Context, bggID int64) (*models.Game, error) {
	var game models.Game
	err := r.db.WithContext(ctx).
		First(&game, "bgg_id = ?", bggID).
		Error
	if err != nil {
		return nil, err
	}
	return &game, nil
}

// SlugExists reports whether a slug is already taken by another game.
func (r *Repository) SlugExists(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Game{}).
		Where("slug = ?", slug)
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts a new game.
func (r *Repository) Create(ctx context.Context, game *models.Game) error {
	return r.db.WithContext(ctx).Create(game).Error
}

// Save persists all fields of an existing game.
func (r *Repository) Save(ctx context.Context, game *models.Game) error {
	return r.db.WithContext(ctx).Save(game).Error
}

// Delete removes a game; requirement rows go with it via the FK cascade.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Game{}, "id = ?", id).Error
}

// SetActive toggles the public visibility flag.
func (r *Repository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return r.db.WithContext(ctx).
		Model(&models.Game{}).
		Where("id = ?", id).
		Update("is_active", active).
		Error
}

// SetScanStatus records the sleeve lookup outcome.
func (r *Repository) SetScanStatus(ctx context.Context, id uuid.UUID, status enums.SleeveScanStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Game{}).
		Where("id = ?", id).
		Update("has_sleeves", status).
		Error
}

// SetSleeved flips the game flag and cascades the matching state to every
// requirement row in one transaction.
func (r *Repository) SetSleeved(ctx context.Context, id uuid.UUID, sleeved bool) error {
	state := enums.SleeveStateUnsleeved
	if sleeved {
		state = enums.SleeveStateSleeved
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.
			Model(&models.Game{}).
			Where("id = ?", id).
			Update("is_sleeved", sleeved).
			Error
		if err != nil {
			return err
		}
		return tx.
			Model(&models.SleeveRequirement{}).
			Where("game_id = ?", id).
			Update("state", state).
			Error
	})
}

// ListStaleBGGGames returns imported games whose BGG data predates the
// cutoff, for the sync job.
func (r *Repository) ListStaleBGGGames(ctx context.Context, cutoff time.Time, limit int) ([]models.Game, error) {
	var games []models.Game
	query := r.db.WithContext(ctx).
		Where("bgg_id IS NOT NULL").
		Where("bgg_synced_at IS NULL OR bgg_synced_at < ?", cutoff).
		Order("bgg_synced_at ASC NULLS FIRST")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&games).Error
	return games, err
}
