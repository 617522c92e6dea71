package bggimport

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ahonkala/meepledex-backend/internal/games"
	"github.com/ahonkala/meepledex-backend/pkg/bgg"
	"github.com/ahonkala/meepledex-backend/pkg/db/models"
	"github.com/ahonkala/meepledex-backend/pkg/enums"
	"github.com/ahonkala/meepledex-backend/pkg/errors"
	"github.com/ahonkala/meepledex-backend/pkg/logger"
)

func setupImportTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
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
);
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
	require.NoError(t, db.Exec(schema).Error)
	return db
}

type fakeFetcher struct {
	things map[int64]*bgg.Thing
	calls  int
}

func (f *fakeFetcher) GetThing(_ context.Context, bggID int64) (*bgg.Thing, error) {
	f.calls++
	if thing, ok := f.things[bggID]; ok {
		copied := *thing
		return &copied, nil
	}
	return nil, errors.New(errors.CodeNotFound, "bgg thing not found")
}

func (f *fakeFetcher) Search(context.Context, string) ([]bgg.SearchResult, error) {
	return nil, nil
}

func intp(v int) *int           { return &v }
func floatp(v float64) *float64 { return &v }

func carcassonneThing() *bgg.Thing {
	return &bgg.Thing{
		BGGID:         822,
		Name:          "Carcassonne",
		Description:   "Tile placement classic.",
		YearPublished: intp(2000),
		MinPlayers:    intp(2),
		MaxPlayers:    intp(5),
		PlayingTime:   intp(45),
		ImageURL:      "https://cf.geekdo-images.com/full.jpg",
		Categories:    []string{"City Building"},
		Mechanics:     []string{"Tile Placement"},
		Designers:     []string{"Klaus-Jürgen Wrede"},
		Rating:        floatp(7.42),
		Rank:          intp(213),
	}
}

func newImportService(t *testing.T, db *gorm.DB, fetcher Fetcher) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		GamesRepo: games.NewRepository(db),
		Fetcher:   fetcher,
		Logger:    logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	})
	require.NoError(t, err)
	return svc
}

func TestImportCreatesGame(t *testing.T) {
	db := setupImportTestDB(t)
	fetcher := &fakeFetcher{things: map[int64]*bgg.Thing{822: carcassonneThing()}}
	svc := newImportService(t, db, fetcher)

	game, err := svc.Import(context.Background(), 822)
	require.NoError(t, err)

	assert.Equal(t, "Carcassonne", game.Title)
	assert.Equal(t, "carcassonne", game.Slug)
	require.NotNil(t, game.BGGID)
	assert.EqualValues(t, 822, *game.BGGID)
	require.NotNil(t, game.YearPublished)
	assert.Equal(t, 2000, *game.YearPublished)
	assert.Equal(t, 2, game.MinPlayers)
	assert.Equal(t, 5, game.MaxPlayers)
	require.NotNil(t, game.BGGRating)
	assert.InDelta(t, 7.42, *game.BGGRating, 0.001)
	require.NotNil(t, game.ImageURL)
	assert.NotNil(t, game.BGGSyncedAt)
	assert.True(t, game.IsActive)
	assert.Equal(t, enums.SleeveScanStatusUnset, game.HasSleeves)
}

func TestImportRefreshesExistingLink(t *testing.T) {
	db := setupImportTestDB(t)
	fetcher := &fakeFetcher{things: map[int64]*bgg.Thing{822: carcassonneThing()}}
	svc := newImportService(t, db, fetcher)

	first, err := svc.Import(context.Background(), 822)
	require.NoError(t, err)

	// the upstream rank moved; re-import must update in place
	fetcher.things[822].Rank = intp(150)
	second, err := svc.Import(context.Background(), 822)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	require.NotNil(t, second.BGGRank)
	assert.Equal(t, 150, *second.BGGRank)

	var count int64
	require.NoError(t, db.Model(&models.Game{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestLinkGameConflictWhenIDTaken(t *testing.T) {
	db := setupImportTestDB(t)
	fetcher := &fakeFetcher{things: map[int64]*bgg.Thing{822: carcassonneThing()}}
	svc := newImportService(t, db, fetcher)

	owner, err := svc.Import(context.Background(), 822)
	require.NoError(t, err)

	other := &models.Game{ID: uuid.New(), Title: "Other", Slug: "other", IsActive: true}
	require.NoError(t, db.Create(other).Error)

	_, err = svc.LinkGame(context.Background(), other.ID, 822)
	typed := errors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, errors.CodeConflict, typed.Code())

	// relinking the owner itself is a refresh, not a conflict
	_, err = svc.LinkGame(context.Background(), owner.ID, 822)
	require.NoError(t, err)
}

func TestRefreshStaleUpdatesRatings(t *testing.T) {
	db := setupImportTestDB(t)
	fetcher := &fakeFetcher{things: map[int64]*bgg.Thing{822: carcassonneThing()}}
	svc := newImportService(t, db, fetcher)

	imported, err := svc.Import(context.Background(), 822)
	require.NoError(t, err)

	// age the sync stamp past the cutoff
	old := time.Now().Add(-30 * 24 * time.Hour)
	require.NoError(t, db.Model(imported).Update("bgg_synced_at", old).Error)

	fetcher.things[822].Rating = floatp(7.99)
	summary, err := svc.RefreshStale(context.Background(), 7*24*time.Hour, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Refreshed)
	assert.Equal(t, 0, summary.Failed)

	var reloaded models.Game
	require.NoError(t, db.First(&reloaded, "id = ?", imported.ID).Error)
	require.NotNil(t, reloaded.BGGRating)
	assert.InDelta(t, 7.99, *reloaded.BGGRating, 0.001)
	require.NotNil(t, reloaded.BGGSyncedAt)
	assert.True(t, reloaded.BGGSyncedAt.After(old))
}

func TestRefreshStaleContinuesPastFailures(t *testing.T) {
	db := setupImportTestDB(t)
	fetcher := &fakeFetcher{things: map[int64]*bgg.Thing{822: carcassonneThing()}}
	svc := newImportService(t, db, fetcher)

	imported, err := svc.Import(context.Background(), 822)
	require.NoError(t, err)

	// a second linked game whose BGG entry has vanished
	missingID := int64(999999)
	gone := &models.Game{ID: uuid.New(), Title: "Gone", Slug: "gone", BGGID: &missingID, IsActive: true}
	require.NoError(t, db.Create(gone).Error)

	old := time.Now().Add(-30 * 24 * time.Hour)
	require.NoError(t, db.Model(&models.Game{}).Where("1=1").Update("bgg_synced_at", old).Error)

	summary, err := svc.RefreshStale(context.Background(), 7*24*time.Hour, 10)
	require.Error(t, err)
	assert.Equal(t, 1, summary.Refreshed)
	assert.Equal(t, 1, summary.Failed)

	var reloaded models.Game
	require.NoError(t, db.First(&reloaded, "id = ?", imported.ID).Error)
	require.NotNil(t, reloaded.BGGSyncedAt)
	assert.True(t, reloaded.BGGSyncedAt.After(old))
}
