package sleeves

import (
	"context"

	"github.com/google/uuid"

	"github.com/ahonkala/meepledex-backend/pkg/db/models"
	"github.com/ahonkala/meepledex-backend/pkg/errors"
	"github.com/ahonkala/meepledex-backend/pkg/logger"
)

// ServiceParams groups dependencies for the sleeves service.
type ServiceParams struct {
	Storage Storage
	Logger  *logger.Logger
}

// Service exposes sleeve matching and procurement planning.
type Service interface {
	FindMatchingProducts(ctx context.Context, widthMM, heightMM int) ([]models.SleeveProduct, error)
	BestMatchForOrder(ctx context.Context, widthMM, heightMM int) (*models.SleeveProduct, error)
	BestMatchInStock(ctx context.Context, widthMM, heightMM int) (*models.SleeveProduct, error)
	RunMatchingForAllGames(ctx context.Context) (MatchSummary, error)
	ComputeToSleeveGames(ctx context.Context) ([]ToSleeveGame, error)
	ComputeToOrderList(ctx context.Context) ([]ToOrderGroup, error)
	BuildShoppingList(ctx context.Context, gameIDs []uuid.UUID, unsleevedOnly bool) ([]ShoppingListGroup, error)
	ReplaceRequirementsForGame(ctx context.Context, gameID uuid.UUID, reqs []models.SleeveRequirement) error
}

type service struct {
	storage Storage
	logger  *logger.Logger
}

// NewService builds the sleeves service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Storage == nil {
		return nil, errors.New(errors.CodeValidation, "sleeves storage is required")
	}
	if params.Logger == nil {
		return nil, errors.New(errors.CodeValidation, "sleeves logger is required")
	}
	return &service{
		storage: params.Storage,
		logger:  params.Logger,
	}, nil
}

// ReplaceRequirementsForGame swaps out a game's requirement rows in one
// transaction. Matches are recomputed by the next matching run, not here.
func (s *service) ReplaceRequirementsForGame(ctx context.Context, gameID uuid.UUID, reqs []models.SleeveRequirement) error {
	if gameID == uuid.Nil {
		return errors.New(errors.CodeValidation, "game id is required")
	}
	for _, req := range reqs {
		if err := validateSize(req.WidthMM, req.HeightMM); err != nil {
			return err
		}
		if req.Quantity < 0 {
			return errors.New(errors.CodeValidation, "requirement quantity cannot be negative")
		}
	}
	if err := s.storage.ReplaceRequirementsForGame(ctx, gameID, reqs); err != nil {
		return errors.Wrap(errors.CodeDependency, err, "replacing sleeve requirements")
	}
	return nil
}
