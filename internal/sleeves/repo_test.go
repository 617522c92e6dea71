package sleeves

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ahonkala/meepledex-backend/pkg/db/models"
	"github.com/ahonkala/meepledex-backend/pkg/enums"
)

func setupSleevesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	games := `
CREATE TABLE IF NOT EXISTS games (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  slug TEXT NOT NULL UNIQUE,
  description TEXT,
  designer TEXT,
  year_published INTEGER,
  min_players INTEGER NOT NULL DEFAULT 1,
  max_players INTEGER NOT NULL DEFAULT 1,
  playtime_minutes INTEGER,
  bgg_id INTEGER,
  bgg_rating REAL,
  bgg_rank INTEGER,
  bgg_synced_at DATETIME,
  cover_public_id TEXT,
  image_url TEXT,
  categories TEXT NOT NULL DEFAULT '{}',
  mechanics TEXT NOT NULL DEFAULT '{}',
  has_sleeves TEXT NOT NULL DEFAULT 'unset',
  is_sleeved INTEGER NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	products := `
CREATE TABLE IF NOT EXISTS sleeve_products (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  distributor TEXT NOT NULL,
  item_id TEXT NOT NULL,
  width_mm INTEGER NOT NULL,
  height_mm INTEGER NOT NULL,
  sleeves_per_pack INTEGER NOT NULL,
  price TEXT NOT NULL,
  currency TEXT NOT NULL DEFAULT 'EUR',
  in_stock INTEGER NOT NULL DEFAULT 0,
  ordered INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	requirements := `
CREATE TABLE IF NOT EXISTS sleeve_requirements (
  id TEXT PRIMARY KEY,
  game_id TEXT NOT NULL,
  card_name TEXT,
  width_mm INTEGER NOT NULL,
  height_mm INTEGER NOT NULL,
  quantity INTEGER NOT NULL DEFAULT 0,
  state TEXT NOT NULL DEFAULT 'unknown',
  matched_product_id TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(games).Error)
	require.NoError(t, db.Exec(products).Error)
	require.NoError(t, db.Exec(requirements).Error)
	return db
}

func seedGame(t *testing.T, db *gorm.DB, title string, scan enums.SleeveScanStatus, sleeved bool) *models.Game {
	t.Helper()
	game := &models.Game{
		ID:         uuid.New(),
		Title:      title,
		Slug:       title,
		HasSleeves: scan,
		IsSleeved:  sleeved,
		IsActive:   true,
	}
	require.NoError(t, db.Create(game).Error)
	return game
}

func seedProduct(t *testing.T, db *gorm.DB, name string, widthMM, heightMM int) *models.SleeveProduct {
	t.Helper()
	p := &models.SleeveProduct{
		ID:             uuid.New(),
		Name:           name,
		Distributor:    "testshop",
		ItemID:         name,
		WidthMM:        widthMM,
		HeightMM:       heightMM,
		SleevesPerPack: 100,
		Price:          decimal.RequireFromString("2.50"),
		Currency:       "EUR",
		InStock:        10,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func seedRequirement(t *testing.T, db *gorm.DB, gameID uuid.UUID, state enums.SleeveState) *models.SleeveRequirement {
	t.Helper()
	req := &models.SleeveRequirement{
		ID:       uuid.New(),
		GameID:   gameID,
		WidthMM:  63,
		HeightMM: 88,
		Quantity: 50,
		State:    state,
	}
	require.NoError(t, db.Create(req).Error)
	return req
}

func TestRepositoryListOpenRequirements(t *testing.T) {
	db := setupSleevesTestDB(t)
	repo := NewRepository(db)
	game := seedGame(t, db, "Alpha", enums.SleeveScanStatusFound, false)

	seedRequirement(t, db, game.ID, enums.SleeveStateUnsleeved)
	seedRequirement(t, db, game.ID, enums.SleeveStateUnknown)
	seedRequirement(t, db, game.ID, enums.SleeveStateSleeved)

	open, err := repo.ListOpenRequirements(context.Background())
	require.NoError(t, err)
	assert.Len(t, open, 2)
	for _, req := range open {
		assert.True(t, req.State.NeedsSleeving())
	}
}

func TestRepositoryApplyMatches(t *testing.T) {
	db := setupSleevesTestDB(t)
	repo := NewRepository(db)
	game := seedGame(t, db, "Alpha", enums.SleeveScanStatusFound, false)
	productRow := seedProduct(t, db, "standard", 64, 92)

	matched := seedRequirement(t, db, game.ID, enums.SleeveStateUnsleeved)
	cleared := seedRequirement(t, db, game.ID, enums.SleeveStateUnsleeved)
	require.NoError(t, db.Model(cleared).Update("matched_product_id", productRow.ID).Error)

	productID := productRow.ID
	err := repo.ApplyMatches(context.Background(), []MatchUpdate{
		{RequirementID: matched.ID, ProductID: &productID},
		{RequirementID: cleared.ID, ProductID: nil},
	})
	require.NoError(t, err)

	var reloaded models.SleeveRequirement
	require.NoError(t, db.First(&reloaded, "id = ?", matched.ID).Error)
	require.NotNil(t, reloaded.MatchedProductID)
	assert.Equal(t, productRow.ID, *reloaded.MatchedProductID)

	var reloadedCleared models.SleeveRequirement
	require.NoError(t, db.First(&reloadedCleared, "id = ?", cleared.ID).Error)
	assert.Nil(t, reloadedCleared.MatchedProductID)
}

func TestRepositoryListGamesNeedingSleeves(t *testing.T) {
	db := setupSleevesTestDB(t)
	repo := NewRepository(db)

	found := seedGame(t, db, "Found", enums.SleeveScanStatusFound, false)
	manual := seedGame(t, db, "Manual", enums.SleeveScanStatusManual, false)
	seedGame(t, db, "Done", enums.SleeveScanStatusFound, true)
	seedGame(t, db, "NoData", enums.SleeveScanStatusNotFound, false)

	productRow := seedProduct(t, db, "standard", 64, 92)
	req := seedRequirement(t, db, found.ID, enums.SleeveStateUnsleeved)
	require.NoError(t, db.Model(req).Update("matched_product_id", productRow.ID).Error)
	seedRequirement(t, db, manual.ID, enums.SleeveStateUnknown)

	games, err := repo.ListGamesNeedingSleeves(context.Background())
	require.NoError(t, err)
	require.Len(t, games, 2)
	assert.Equal(t, "Found", games[0].Title)
	assert.Equal(t, "Manual", games[1].Title)

	require.Len(t, games[0].SleeveRequirements, 1)
	require.NotNil(t, games[0].SleeveRequirements[0].MatchedProduct)
	assert.Equal(t, "standard", games[0].SleeveRequirements[0].MatchedProduct.Name)
}

func TestRepositoryReplaceRequirementsForGame(t *testing.T) {
	db := setupSleevesTestDB(t)
	repo := NewRepository(db)
	game := seedGame(t, db, "Alpha", enums.SleeveScanStatusFound, false)
	other := seedGame(t, db, "Beta", enums.SleeveScanStatusFound, false)

	seedRequirement(t, db, game.ID, enums.SleeveStateUnsleeved)
	seedRequirement(t, db, game.ID, enums.SleeveStateSleeved)
	kept := seedRequirement(t, db, other.ID, enums.SleeveStateUnsleeved)

	replacement := []models.SleeveRequirement{
		{ID: uuid.New(), WidthMM: 45, HeightMM: 68, Quantity: 110},
	}
	require.NoError(t, repo.ReplaceRequirementsForGame(context.Background(), game.ID, replacement))

	var reqs []models.SleeveRequirement
	require.NoError(t, db.Where("game_id = ?", game.ID).Find(&reqs).Error)
	require.Len(t, reqs, 1)
	assert.Equal(t, 45, reqs[0].WidthMM)
	assert.Equal(t, enums.SleeveStateUnknown, reqs[0].State)
	assert.Nil(t, reqs[0].MatchedProductID)

	// another game's rows are untouched
	var count int64
	require.NoError(t, db.Model(&models.SleeveRequirement{}).Where("game_id = ?", other.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
	_ = kept
}

func TestRepositoryReplaceRequirementsEmptySet(t *testing.T) {
	db := setupSleevesTestDB(t)
	repo := NewRepository(db)
	game := seedGame(t, db, "Alpha", enums.SleeveScanStatusFound, false)
	seedRequirement(t, db, game.ID, enums.SleeveStateUnsleeved)

	require.NoError(t, repo.ReplaceRequirementsForGame(context.Background(), game.ID, nil))

	var count int64
	require.NoError(t, db.Model(&models.SleeveRequirement{}).Where("game_id = ?", game.ID).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}
