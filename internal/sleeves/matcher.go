package sleeves

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/ahonkala/meepledex-backend/pkg/db/models"
	"github.com/ahonkala/meepledex-backend/pkg/errors"
)

// Sleeve fit tolerances in millimetres. A product fits a card when its
// internal size is at least the card size and overshoots by no more than
// these amounts.
const (
	WidthTolerance  = 1
	HeightTolerance = 5
)

func fits(p models.SleeveProduct, widthMM, heightMM int) bool {
	return p.WidthMM >= widthMM && p.WidthMM <= widthMM+WidthTolerance &&
		p.HeightMM >= heightMM && p.HeightMM <= heightMM+HeightTolerance
}

func matchingProducts(products []models.SleeveProduct, widthMM, heightMM int) []models.SleeveProduct {
	matches := make([]models.SleeveProduct, 0)
	for _, p := range products {
		if fits(p, widthMM, heightMM) {
			matches = append(matches, p)
		}
	}
	return matches
}

// bestForOrder picks the cheapest match by price per sleeve. Ties break on
// the lower product id so reruns stay deterministic.
func bestForOrder(products []models.SleeveProduct, widthMM, heightMM int) *models.SleeveProduct {
	var best *models.SleeveProduct
	for i := range products {
		p := &products[i]
		if !fits(*p, widthMM, heightMM) || p.SleevesPerPack <= 0 {
			continue
		}
		if best == nil {
			best = p
			continue
		}
		switch p.PricePerSleeve().Cmp(best.PricePerSleeve()) {
		case -1:
			best = p
		case 0:
			if p.ID.String() < best.ID.String() {
				best = p
			}
		}
	}
	if best == nil {
		return nil
	}
	found := *best
	return &found
}

// bestInStock picks, among matches with stock on hand, the snuggest fit by
// combined overshoot. Ties prefer the larger stock.
func bestInStock(products []models.SleeveProduct, widthMM, heightMM int) *models.SleeveProduct {
	var best *models.SleeveProduct
	bestOvershoot := 0
	for i := range products {
		p := &products[i]
		if !fits(*p, widthMM, heightMM) || p.InStock <= 0 {
			continue
		}
		overshoot := (p.WidthMM - widthMM) + (p.HeightMM - heightMM)
		if best == nil || overshoot < bestOvershoot || (overshoot == bestOvershoot && p.InStock > best.InStock) {
			best = p
			bestOvershoot = overshoot
		}
	}
	if best == nil {
		return nil
	}
	found := *best
	return &found
}

// FindMatchingProducts returns every product within tolerance of the card
// size. An empty slice is a valid answer.
func (s *service) FindMatchingProducts(ctx context.Context, widthMM, heightMM int) ([]models.SleeveProduct, error) {
	if err := validateSize(widthMM, heightMM); err != nil {
		return nil, err
	}
	products, err := s.storage.ListProducts(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "listing sleeve products")
	}
	matches := matchingProducts(products, widthMM, heightMM)
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].ID.String() < matches[j].ID.String()
	})
	return matches, nil
}

// BestMatchForOrder returns the cheapest fitting product, or nil when
// nothing in the catalogue fits.
func (s *service) BestMatchForOrder(ctx context.Context, widthMM, heightMM int) (*models.SleeveProduct, error) {
	if err := validateSize(widthMM, heightMM); err != nil {
		return nil, err
	}
	products, err := s.storage.ListProducts(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "listing sleeve products")
	}
	return bestForOrder(products, widthMM, heightMM), nil
}

// BestMatchInStock returns the snuggest fitting product with stock on hand,
// or nil when nothing fits.
func (s *service) BestMatchInStock(ctx context.Context, widthMM, heightMM int) (*models.SleeveProduct, error) {
	if err := validateSize(widthMM, heightMM); err != nil {
		return nil, err
	}
	products, err := s.storage.ListProducts(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "listing sleeve products")
	}
	return bestInStock(products, widthMM, heightMM), nil
}

// RunMatchingForAllGames recomputes the matched product of every open
// requirement in one transaction. Requirements with no fitting product have
// their match cleared. Reruns against unchanged data produce the same
// assignments.
func (s *service) RunMatchingForAllGames(ctx context.Context) (MatchSummary, error) {
	products, err := s.storage.ListProducts(ctx)
	if err != nil {
		return MatchSummary{}, errors.Wrap(errors.CodeDependency, err, "listing sleeve products")
	}
	requirements, err := s.storage.ListOpenRequirements(ctx)
	if err != nil {
		return MatchSummary{}, errors.Wrap(errors.CodeDependency, err, "listing open requirements")
	}

	summary := MatchSummary{Total: len(requirements)}
	updates := make([]MatchUpdate, 0, len(requirements))
	for _, req := range requirements {
		var productID *uuid.UUID
		if best := bestForOrder(products, req.WidthMM, req.HeightMM); best != nil {
			id := best.ID
			productID = &id
			summary.Matched++
		} else {
			summary.Unmatched++
		}
		updates = append(updates, MatchUpdate{RequirementID: req.ID, ProductID: productID})
	}

	if err := s.storage.ApplyMatches(ctx, updates); err != nil {
		return MatchSummary{}, errors.Wrap(errors.CodeDependency, err, "applying match updates")
	}

	s.logger.Info(s.logger.WithFields(ctx, map[string]any{
		"matched":   summary.Matched,
		"unmatched": summary.Unmatched,
		"total":     summary.Total,
	}), "sleeve matching run complete")
	return summary, nil
}

func validateSize(widthMM, heightMM int) error {
	if widthMM <= 0 || heightMM <= 0 {
		return errors.New(errors.CodeValidation, fmt.Sprintf("card size must be positive, got %dx%d", widthMM, heightMM))
	}
	return nil
}
