package bggimport

import (
	"context"
	stdErrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/ahonkala/meepledex-backend/internal/games"
	"github.com/ahonkala/meepledex-backend/pkg/bgg"
	"github.com/ahonkala/meepledex-backend/pkg/db/models"
	"github.com/ahonkala/meepledex-backend/pkg/enums"
	"github.com/ahonkala/meepledex-backend/pkg/errors"
	"github.com/ahonkala/meepledex-backend/pkg/logger"
)

// Fetcher is the BGG API surface the importer needs.
type Fetcher interface {
	GetThing(ctx context.Context, bggID int64) (*bgg.Thing, error)
	Search(ctx context.Context, query string) ([]bgg.SearchResult, error)
}

// ServiceParams groups dependencies for the import service.
type ServiceParams struct {
	GamesRepo *games.Repository
	Fetcher   Fetcher
	Logger    *logger.Logger
}

// RefreshSummary reports the outcome of a stale-data sync run.
type RefreshSummary struct {
	Refreshed int `json:"refreshed"`
	Failed    int `json:"failed"`
}

// Service imports and refreshes catalogue entries from BoardGameGeek.
type Service interface {
	Import(ctx context.Context, bggID int64) (*models.Game, error)
	LinkGame(ctx context.Context, gameID uuid.UUID, bggID int64) (*models.Game, error)
	Search(ctx context.Context, query string) ([]bgg.SearchResult, error)
	RefreshStale(ctx context.Context, staleAfter time.Duration, limit int) (RefreshSummary, error)
}

type service struct {
	gamesRepo *games.Repository
	fetcher   Fetcher
	logger    *logger.Logger
}

// NewService builds the BGG import service.
func NewService(params ServiceParams) (Service, error) {
	if params.GamesRepo == nil {
		return nil, errors.New(errors.CodeValidation, "games repo is required")
	}
	if params.Fetcher == nil {
		return nil, errors.New(errors.CodeValidation, "bgg fetcher is required")
	}
	if params.Logger == nil {
		return nil, errors.New(errors.CodeValidation, "logger is required")
	}
	return &service{
		gamesRepo: params.GamesRepo,
		fetcher:   params.Fetcher,
		logger:    params.Logger,
	}, nil
}

// Import creates a game from a BGG entry, or refreshes the game already
// linked to that id.
func (s *service) Import(ctx context.Context, bggID int64) (*models.Game, error) {
	thing, err := s.fetcher.GetThing(ctx, bggID)
	if err != nil {
		return nil, err
	}

	existing, err := s.gamesRepo.FindByBGGID(ctx, bggID)
	if err != nil && !stdErrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Wrap(errors.CodeDependency, err, "looking up bgg link")
	}

	if existing != nil {
		applyThing(existing, thing)
		if err := s.gamesRepo.Save(ctx, existing); err != nil {
			return nil, errors.Wrap(errors.CodeDependency, err, "refreshing imported game")
		}
		s.logger.Info(s.logger.WithGameID(ctx, existing.ID.String()), "bgg import refreshed existing game")
		return existing, nil
	}

	game := &models.Game{
		ID:         uuid.New(),
		IsActive:   true,
		HasSleeves: enums.SleeveScanStatusUnset,
	}
	applyThing(game, thing)

	slug, err := s.uniqueSlug(ctx, thing.Name)
	if err != nil {
		return nil, err
	}
	game.Slug = slug

	if err := s.gamesRepo.Create(ctx, game); err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "creating imported game")
	}
	s.logger.Info(s.logger.WithGameID(ctx, game.ID.String()), "bgg import created game")
	return game, nil
}

// LinkGame attaches BGG data to an existing game. Linking fails with a
// conflict when another game already owns the BGG id.
func (s *service) LinkGame(ctx context.Context, gameID uuid.UUID, bggID int64) (*models.Game, error) {
	if gameID == uuid.Nil {
		return nil, errors.New(errors.CodeValidation, "game id is required")
	}

	owner, err := s.gamesRepo.FindByBGGID(ctx, bggID)
	if err != nil && !stdErrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Wrap(errors.CodeDependency, err, "looking up bgg link")
	}
	if owner != nil && owner.ID != gameID {
		return nil, errors.New(errors.CodeConflict,
			fmt.Sprintf("bgg id %d is already linked to %q", bggID, owner.Title))
	}

	game, err := s.gamesRepo.FindByID(ctx, gameID)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrap(errors.CodeNotFound, err, "game not found")
		}
		return nil, errors.Wrap(errors.CodeDependency, err, "loading game")
	}

	thing, err := s.fetcher.GetThing(ctx, bggID)
	if err != nil {
		return nil, err
	}

	applyThing(game, thing)
	if err := s.gamesRepo.Save(ctx, game); err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "saving linked game")
	}
	return game, nil
}

func (s *service) Search(ctx context.Context, query string) ([]bgg.SearchResult, error) {
	return s.fetcher.Search(ctx, query)
}

// RefreshStale re-fetches rating and rank for imported games whose data is
// older than staleAfter. Per-game failures are collected and the run
// continues.
func (s *service) RefreshStale(ctx context.Context, staleAfter time.Duration, limit int) (RefreshSummary, error) {
	cutoff := time.Now().Add(-staleAfter)
	stale, err := s.gamesRepo.ListStaleBGGGames(ctx, cutoff, limit)
	if err != nil {
		return RefreshSummary{}, errors.Wrap(errors.CodeDependency, err, "listing stale games")
	}

	var summary RefreshSummary
	var combined error
	for i := range stale {
		game := &stale[i]
		if game.BGGID == nil {
			continue
		}
		thing, err := s.fetcher.GetThing(ctx, *game.BGGID)
		if err != nil {
			summary.Failed++
			combined = multierr.Append(combined, fmt.Errorf("game %s: %w", game.ID, err))
			continue
		}

		now := time.Now()
		game.BGGRating = thing.Rating
		game.BGGRank = thing.Rank
		game.BGGSyncedAt = &now
		if err := s.gamesRepo.Save(ctx, game); err != nil {
			summary.Failed++
			combined = multierr.Append(combined, fmt.Errorf("game %s: %w", game.ID, err))
			continue
		}
		summary.Refreshed++
	}

	if combined != nil {
		s.logger.Warn(s.logger.WithFields(ctx, map[string]any{
			"refreshed": summary.Refreshed,
			"failed":    summary.Failed,
		}), "bgg refresh finished with failures")
	}
	return summary, combined
}

func (s *service) uniqueSlug(ctx context.Context, title string) (string, error) {
	base := games.Slugify(title)
	if base == "" {
		return "", errors.New(errors.CodeValidation, "bgg entry has no usable name")
	}
	candidate := base
	for i := 2; ; i++ {
		taken, err := s.gamesRepo.SlugExists(ctx, candidate, uuid.Nil)
		if err != nil {
			return "", errors.Wrap(errors.CodeDependency, err, "checking slug")
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

// applyThing copies the refreshable BGG fields onto the game. The slug is
// never touched for existing games so public URLs stay stable.
func applyThing(game *models.Game, thing *bgg.Thing) {
	game.Title = thing.Name
	game.YearPublished = thing.YearPublished
	if thing.MinPlayers != nil {
		game.MinPlayers = *thing.MinPlayers
	}
	if thing.MaxPlayers != nil {
		game.MaxPlayers = *thing.MaxPlayers
	}
	game.PlaytimeMinutes = thing.PlayingTime
	if thing.Description != "" {
		desc := thing.Description
		game.Description = &desc
	}
	if len(thing.Designers) > 0 {
		designer := thing.Designers[0]
		game.Designer = &designer
	}
	if thing.ImageURL != "" {
		image := thing.ImageURL
		game.ImageURL = &image
	}
	game.Categories = pq.StringArray(thing.Categories)
	game.Mechanics = pq.StringArray(thing.Mechanics)
	game.BGGRating = thing.Rating
	game.BGGRank = thing.Rank

	id := thing.BGGID
	game.BGGID = &id
	now := time.Now()
	game.BGGSyncedAt = &now

	if game.MinPlayers <= 0 {
		game.MinPlayers = 1
	}
	if game.MaxPlayers <= 0 {
		game.MaxPlayers = game.MinPlayers
	}
}
