package sleeves

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/ahonkala/meepledex-backend/pkg/db/models"
	"github.com/ahonkala/meepledex-backend/pkg/enums"
	"github.com/ahonkala/meepledex-backend/pkg/errors"
)

type sizeKey struct {
	widthMM  int
	heightMM int
}

// ComputeToSleeveGames returns the games that can be sleeved right now: the
// sleeve scan found requirements, the game is not fully sleeved yet, and
// every open requirement has a matched product with enough stock on hand.
func (s *service) ComputeToSleeveGames(ctx context.Context) ([]ToSleeveGame, error) {
	games, err := s.storage.ListGamesNeedingSleeves(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "listing games needing sleeves")
	}

	ready := make([]ToSleeveGame, 0)
	for _, game := range games {
		if game.HasSleeves != enums.SleeveScanStatusFound || game.IsSleeved {
			continue
		}

		open := openRequirements(game.SleeveRequirements)
		if len(open) == 0 {
			continue
		}

		coverable := true
		details := make([]ToSleeveRequirement, 0, len(open))
		for _, req := range open {
			if req.MatchedProduct == nil || req.MatchedProduct.InStock < req.Quantity {
				coverable = false
				break
			}
			details = append(details, ToSleeveRequirement{
				RequirementID: req.ID,
				CardName:      req.CardName,
				WidthMM:       req.WidthMM,
				HeightMM:      req.HeightMM,
				Quantity:      req.Quantity,
				ProductID:     req.MatchedProduct.ID,
				ProductName:   req.MatchedProduct.Name,
				InStock:       req.MatchedProduct.InStock,
			})
		}
		if !coverable {
			continue
		}

		ready = append(ready, ToSleeveGame{
			GameID:       game.ID,
			Title:        game.Title,
			Requirements: details,
		})
	}

	sort.Slice(ready, func(i, j int) bool {
		if ready[i].Title != ready[j].Title {
			return ready[i].Title < ready[j].Title
		}
		return ready[i].GameID.String() < ready[j].GameID.String()
	})
	return ready, nil
}

// ComputeToOrderList aggregates open requirements by exact card size and
// works out how many packs of the cheapest fitting product to buy. Sizes
// that are already covered by stock plus open orders are omitted; sizes
// with no fitting product at all are kept with a nil product so they show
// up as gaps.
func (s *service) ComputeToOrderList(ctx context.Context) ([]ToOrderGroup, error) {
	games, err := s.storage.ListGamesNeedingSleeves(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "listing games needing sleeves")
	}
	products, err := s.storage.ListProducts(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "listing sleeve products")
	}

	type sizeNeed struct {
		total  int
		titles map[string]struct{}
	}

	needed := map[sizeKey]*sizeNeed{}
	for _, game := range games {
		if game.IsSleeved {
			continue
		}
		for _, req := range openRequirements(game.SleeveRequirements) {
			key := sizeKey{widthMM: req.WidthMM, heightMM: req.HeightMM}
			need, ok := needed[key]
			if !ok {
				need = &sizeNeed{titles: map[string]struct{}{}}
				needed[key] = need
			}
			need.total += req.Quantity
			need.titles[game.Title] = struct{}{}
		}
	}

	groups := make([]ToOrderGroup, 0, len(needed))
	for key, need := range needed {
		names := make([]string, 0, len(need.titles))
		for title := range need.titles {
			names = append(names, title)
		}
		sort.Strings(names)

		best := bestForOrder(products, key.widthMM, key.heightMM)
		if best == nil {
			groups = append(groups, ToOrderGroup{
				WidthMM:     key.widthMM,
				HeightMM:    key.heightMM,
				TotalNeeded: need.total,
				Deficit:     need.total,
				GamesCount:  len(names),
				GameNames:   names,
				TotalCost:   decimal.Zero,
			})
			continue
		}

		covered := best.InStock + best.Ordered*best.SleevesPerPack
		deficit := need.total - covered
		if deficit <= 0 {
			continue
		}

		packs := ceilDiv(deficit, best.SleevesPerPack)
		groups = append(groups, ToOrderGroup{
			WidthMM:     key.widthMM,
			HeightMM:    key.heightMM,
			TotalNeeded: need.total,
			Deficit:     deficit,
			GamesCount:  len(names),
			GameNames:   names,
			Product:     offerFromProduct(*best),
			PacksToBuy:  packs,
			TotalCost:   best.Price.Mul(decimal.NewFromInt(int64(packs))),
		})
	}

	sort.Slice(groups, func(i, j int) bool {
		if groups[i].WidthMM != groups[j].WidthMM {
			return groups[i].WidthMM < groups[j].WidthMM
		}
		return groups[i].HeightMM < groups[j].HeightMM
	})
	return groups, nil
}

func openRequirements(reqs []models.SleeveRequirement) []models.SleeveRequirement {
	open := make([]models.SleeveRequirement, 0, len(reqs))
	for _, req := range reqs {
		if req.State.NeedsSleeving() {
			open = append(open, req)
		}
	}
	return open
}

func offerFromProduct(p models.SleeveProduct) *ProductOffer {
	return &ProductOffer{
		ProductID:      p.ID,
		Name:           p.Name,
		Distributor:    p.Distributor,
		WidthMM:        p.WidthMM,
		HeightMM:       p.HeightMM,
		SleevesPerPack: p.SleevesPerPack,
		Price:          p.Price,
		PricePerSleeve: p.PricePerSleeve(),
		Currency:       p.Currency,
		InStock:        p.InStock,
		Ordered:        p.Ordered,
	}
}

func ceilDiv(numerator, denominator int) int {
	if denominator <= 0 {
		return 0
	}
	return (numerator + denominator - 1) / denominator
}
