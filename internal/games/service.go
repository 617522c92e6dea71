package games

import (
	"context"
	stdErrors "errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/ahonkala/meepledex-backend/pkg/cloudinary"
	"github.com/ahonkala/meepledex-backend/pkg/db/models"
	"github.com/ahonkala/meepledex-backend/pkg/enums"
	"github.com/ahonkala/meepledex-backend/pkg/errors"
	"github.com/ahonkala/meepledex-backend/pkg/logger"
	"github.com/ahonkala/meepledex-backend/pkg/pagination"
)

// ServiceParams groups dependencies for the games service.
type ServiceParams struct {
	Repo       *Repository
	Cloudinary *cloudinary.Client
	Logger     *logger.Logger
}

// Service exposes catalogue operations for the public and admin surfaces.
type Service interface {
	ListPublic(ctx context.Context, filters ListFilters, params pagination.Params) (GamePageDTO, error)
	ListAdmin(ctx context.Context, filters ListFilters, params pagination.Params) (GamePageDTO, error)
	GetBySlug(ctx context.Context, slug string) (GameDetailDTO, error)
	GetByID(ctx context.Context, id uuid.UUID) (GameDetailDTO, error)
	Create(ctx context.Context, input CreateGameInput) (GameDetailDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateGameInput) (GameDetailDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	SetScanStatus(ctx context.Context, id uuid.UUID, status enums.SleeveScanStatus) error
	SetSleeved(ctx context.Context, id uuid.UUID, sleeved bool) error
	SetCover(ctx context.Context, id uuid.UUID, publicID string) error
}

type service struct {
	repo       *Repository
	cloudinary *cloudinary.Client
	logger     *logger.Logger
}

// NewService builds a games service. The Cloudinary client is optional;
// without it cover URLs are omitted from responses.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, errors.New(errors.CodeValidation, "games repo is required")
	}
	if params.Logger == nil {
		return nil, errors.New(errors.CodeValidation, "games logger is required")
	}
	return &service{
		repo:       params.Repo,
		cloudinary: params.Cloudinary,
		logger:     params.Logger,
	}, nil
}

func (s *service) ListPublic(ctx context.Context, filters ListFilters, params pagination.Params) (GamePageDTO, error) {
	filters.ActiveOnly = true
	return s.list(ctx, filters, params)
}

func (s *service) ListAdmin(ctx context.Context, filters ListFilters, params pagination.Params) (GamePageDTO, error) {
	return s.list(ctx, filters, params)
}

func (s *service) list(ctx context.Context, filters ListFilters, params pagination.Params) (GamePageDTO, error) {
	rows, total, err := s.repo.List(ctx, filters, params)
	if err != nil {
		return GamePageDTO{}, errors.Wrap(errors.CodeDependency, err, "listing games")
	}

	items := make([]GameSummaryDTO, 0, len(rows))
	for _, game := range rows {
		items = append(items, summaryFromModel(game, s.coverURL(game)))
	}
	return GamePageDTO{
		Items: items,
		Meta:  pagination.BuildMeta(params, total),
	}, nil
}

func (s *service) GetBySlug(ctx context.Context, slug string) (GameDetailDTO, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return GameDetailDTO{}, errors.New(errors.CodeValidation, "slug is required")
	}
	game, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return GameDetailDTO{}, mapLookupErr(err, "game")
	}
	if !game.IsActive {
		return GameDetailDTO{}, errors.New(errors.CodeNotFound, "game not found")
	}
	return detailFromModel(*game, s.coverURL(*game)), nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (GameDetailDTO, error) {
	game, err := s.loadGame(ctx, id)
	if err != nil {
		return GameDetailDTO{}, err
	}
	return detailFromModel(*game, s.coverURL(*game)), nil
}

func (s *service) Create(ctx context.Context, input CreateGameInput) (GameDetailDTO, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return GameDetailDTO{}, errors.New(errors.CodeValidation, "title is required")
	}
	if err := validatePlayerRange(input.MinPlayers, input.MaxPlayers); err != nil {
		return GameDetailDTO{}, err
	}

	slug, err := s.uniqueSlug(ctx, title, uuid.Nil)
	if err != nil {
		return GameDetailDTO{}, err
	}

	game := models.Game{
		Title:           title,
		Slug:            slug,
		Description:     input.Description,
		Designer:        input.Designer,
		YearPublished:   input.YearPublished,
		MinPlayers:      defaultPlayers(input.MinPlayers),
		MaxPlayers:      defaultPlayers(input.MaxPlayers),
		PlaytimeMinutes: input.Playtime,
		Categories:      pq.StringArray(input.Categories),
		Mechanics:       pq.StringArray(input.Mechanics),
		HasSleeves:      enums.SleeveScanStatusUnset,
		IsActive:        true,
	}
	if game.ID == uuid.Nil {
		game.ID = uuid.New()
	}

	if err := s.repo.Create(ctx, &game); err != nil {
		return GameDetailDTO{}, errors.Wrap(errors.CodeDependency, err, "creating game")
	}

	s.logger.Info(s.logger.WithGameID(ctx, game.ID.String()), "game created")
	return detailFromModel(game, s.coverURL(game)), nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateGameInput) (GameDetailDTO, error) {
	game, err := s.loadGame(ctx, id)
	if err != nil {
		return GameDetailDTO{}, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return GameDetailDTO{}, errors.New(errors.CodeValidation, "title cannot be empty")
		}
		if title != game.Title {
			slug, err := s.uniqueSlug(ctx, title, game.ID)
			if err != nil {
				return GameDetailDTO{}, err
			}
			game.Title = title
			game.Slug = slug
		}
	}
	if input.Description != nil {
		game.Description = input.Description
	}
	if input.Designer != nil {
		game.Designer = input.Designer
	}
	if input.YearPublished != nil {
		game.YearPublished = input.YearPublished
	}
	if input.MinPlayers != nil {
		game.MinPlayers = *input.MinPlayers
	}
	if input.MaxPlayers != nil {
		game.MaxPlayers = *input.MaxPlayers
	}
	if err := validatePlayerRange(game.MinPlayers, game.MaxPlayers); err != nil {
		return GameDetailDTO{}, err
	}
	if input.Playtime != nil {
		game.PlaytimeMinutes = input.Playtime
	}
	if input.Categories != nil {
		game.Categories = pq.StringArray(input.Categories)
	}
	if input.Mechanics != nil {
		game.Mechanics = pq.StringArray(input.Mechanics)
	}
	if input.IsActive != nil {
		game.IsActive = *input.IsActive
	}

	if err := s.repo.Save(ctx, game); err != nil {
		return GameDetailDTO{}, errors.Wrap(errors.CodeDependency, err, "updating game")
	}
	return detailFromModel(*game, s.coverURL(*game)), nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.loadGame(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return errors.Wrap(errors.CodeDependency, err, "deleting game")
	}
	s.logger.Info(s.logger.WithGameID(ctx, id.String()), "game deleted")
	return nil
}

func (s *service) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	if _, err := s.loadGame(ctx, id); err != nil {
		return err
	}
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return errors.Wrap(errors.CodeDependency, err, "toggling game visibility")
	}
	return nil
}

func (s *service) SetScanStatus(ctx context.Context, id uuid.UUID, status enums.SleeveScanStatus) error {
	if !status.IsValid() {
		return errors.New(errors.CodeValidation, fmt.Sprintf("invalid sleeve scan status %q", status))
	}
	if _, err := s.loadGame(ctx, id); err != nil {
		return err
	}
	if err := s.repo.SetScanStatus(ctx, id, status); err != nil {
		return errors.Wrap(errors.CodeDependency, err, "updating scan status")
	}
	return nil
}

func (s *service) SetSleeved(ctx context.Context, id uuid.UUID, sleeved bool) error {
	if _, err := s.loadGame(ctx, id); err != nil {
		return err
	}
	if err := s.repo.SetSleeved(ctx, id, sleeved); err != nil {
		return errors.Wrap(errors.CodeDependency, err, "marking game sleeved")
	}
	return nil
}

func (s *service) SetCover(ctx context.Context, id uuid.UUID, publicID string) error {
	publicID = strings.TrimSpace(publicID)
	if publicID == "" {
		return errors.New(errors.CodeValidation, "cover public id is required")
	}
	game, err := s.loadGame(ctx, id)
	if err != nil {
		return err
	}
	game.CoverPublicID = &publicID
	if err := s.repo.Save(ctx, game); err != nil {
		return errors.Wrap(errors.CodeDependency, err, "saving cover")
	}
	return nil
}

func (s *service) loadGame(ctx context.Context, id uuid.UUID) (*models.Game, error) {
	if id == uuid.Nil {
		return nil, errors.New(errors.CodeValidation, "game id is required")
	}
	game, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapLookupErr(err, "game")
	}
	return game, nil
}

func (s *service) coverURL(game models.Game) *string {
	if s.cloudinary == nil || game.CoverPublicID == nil {
		return nil
	}
	url, err := s.cloudinary.DeliveryURL(*game.CoverPublicID, &cloudinary.Transformation{
		Width:   600,
		Crop:    "fit",
		Quality: "auto",
		Format:  "auto",
	})
	if err != nil {
		return nil
	}
	return &url
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

func Slugify(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = slugPattern.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

func (s *service) uniqueSlug(ctx context.Context, title string, excludeID uuid.UUID) (string, error) {
	base := Slugify(title)
	if base == "" {
		return "", errors.New(errors.CodeValidation, "title produces an empty slug")
	}
	candidate := base
	for i := 2; ; i++ {
		taken, err := s.repo.SlugExists(ctx, candidate, excludeID)
		if err != nil {
			return "", errors.Wrap(errors.CodeDependency, err, "checking slug")
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

func validatePlayerRange(minPlayers, maxPlayers int) error {
	if minPlayers < 0 || maxPlayers < 0 {
		return errors.New(errors.CodeValidation, "player counts cannot be negative")
	}
	if minPlayers > 0 && maxPlayers > 0 && minPlayers > maxPlayers {
		return errors.New(errors.CodeValidation, "min players cannot exceed max players")
	}
	return nil
}

func defaultPlayers(value int) int {
	if value <= 0 {
		return 1
	}
	return value
}

func mapLookupErr(err error, what string) error {
	if stdErrors.Is(err, gorm.ErrRecordNotFound) {
		return errors.Wrap(errors.CodeNotFound, err, what+" not found")
	}
	return errors.Wrap(errors.CodeDependency, err, "loading "+what)
}
