package sleeves

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ahonkala/meepledex-backend/pkg/db/models"
	"github.com/ahonkala/meepledex-backend/pkg/enums"
	"github.com/ahonkala/meepledex-backend/pkg/logger"
)

// fakeStorage keeps everything in slices so the matcher and planners can be
// exercised without a database.
type fakeStorage struct {
	products     []models.SleeveProduct
	games        []models.Game
	applyErr     error
	appliedRuns  [][]MatchUpdate
	replacedFor  []uuid.UUID
	replacedWith [][]models.SleeveRequirement
}

func (f *fakeStorage) ListProducts(context.Context) ([]models.SleeveProduct, error) {
	return append([]models.SleeveProduct(nil), f.products...), nil
}

func (f *fakeStorage) ListOpenRequirements(context.Context) ([]models.SleeveRequirement, error) {
	var open []models.SleeveRequirement
	for _, game := range f.games {
		for _, req := range game.SleeveRequirements {
			if req.State.NeedsSleeving() {
				open = append(open, req)
			}
		}
	}
	return open, nil
}

func (f *fakeStorage) ApplyMatches(_ context.Context, updates []MatchUpdate) error {
	if f.applyErr != nil {
		return f.applyErr
	}
	f.appliedRuns = append(f.appliedRuns, updates)
	for _, update := range updates {
		for gi := range f.games {
			for ri := range f.games[gi].SleeveRequirements {
				req := &f.games[gi].SleeveRequirements[ri]
				if req.ID != update.RequirementID {
					continue
				}
				req.MatchedProductID = update.ProductID
				req.MatchedProduct = nil
				if update.ProductID != nil {
					for pi := range f.products {
						if f.products[pi].ID == *update.ProductID {
							product := f.products[pi]
							req.MatchedProduct = &product
						}
					}
				}
			}
		}
	}
	return nil
}

func (f *fakeStorage) ListGamesNeedingSleeves(context.Context) ([]models.Game, error) {
	var out []models.Game
	for _, game := range f.games {
		if game.IsSleeved || !game.HasSleeves.HasRequirements() {
			continue
		}
		out = append(out, game)
	}
	return out, nil
}

func (f *fakeStorage) ListGamesByIDs(_ context.Context, ids []uuid.UUID) ([]models.Game, error) {
	wanted := map[uuid.UUID]struct{}{}
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	var out []models.Game
	for _, game := range f.games {
		if _, ok := wanted[game.ID]; ok {
			out = append(out, game)
		}
	}
	return out, nil
}

func (f *fakeStorage) ReplaceRequirementsForGame(_ context.Context, gameID uuid.UUID, reqs []models.SleeveRequirement) error {
	f.replacedFor = append(f.replacedFor, gameID)
	f.replacedWith = append(f.replacedWith, reqs)
	return nil
}

func newTestService(t *testing.T, storage Storage) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Storage: storage,
		Logger:  logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func product(name string, widthMM, heightMM, perPack int, price string, inStock, ordered int) models.SleeveProduct {
	return models.SleeveProduct{
		ID:             uuid.New(),
		Name:           name,
		Distributor:    "testshop",
		ItemID:         name,
		WidthMM:        widthMM,
		HeightMM:       heightMM,
		SleevesPerPack: perPack,
		Price:          decimal.RequireFromString(price),
		Currency:       "EUR",
		InStock:        inStock,
		Ordered:        ordered,
	}
}

func requirement(widthMM, heightMM, quantity int, state enums.SleeveState) models.SleeveRequirement {
	return models.SleeveRequirement{
		ID:       uuid.New(),
		WidthMM:  widthMM,
		HeightMM: heightMM,
		Quantity: quantity,
		State:    state,
	}
}

func gameWithReqs(title string, reqs ...models.SleeveRequirement) models.Game {
	game := models.Game{
		ID:         uuid.New(),
		Title:      title,
		Slug:       title,
		HasSleeves: enums.SleeveScanStatusFound,
		IsActive:   true,
	}
	for i := range reqs {
		reqs[i].GameID = game.ID
	}
	game.SleeveRequirements = reqs
	return game
}
