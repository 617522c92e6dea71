package sleeves

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/ahonkala/meepledex-backend/pkg/errors"
)

// BuildShoppingList aggregates the selected games' requirements by exact
// card size. With unsleevedOnly set, requirements already marked sleeved are
// skipped. Unknown game ids contribute nothing.
func (s *service) BuildShoppingList(ctx context.Context, gameIDs []uuid.UUID, unsleevedOnly bool) ([]ShoppingListGroup, error) {
	if len(gameIDs) == 0 {
		return nil, errors.New(errors.CodeValidation, "at least one game id is required")
	}

	games, err := s.storage.ListGamesByIDs(ctx, gameIDs)
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "loading selected games")
	}

	type groupAccumulator struct {
		total  int
		titles map[string]struct{}
	}

	acc := map[sizeKey]*groupAccumulator{}
	for _, game := range games {
		reqs := game.SleeveRequirements
		if unsleevedOnly {
			reqs = openRequirements(reqs)
		}
		for _, req := range reqs {
			key := sizeKey{widthMM: req.WidthMM, heightMM: req.HeightMM}
			entry, ok := acc[key]
			if !ok {
				entry = &groupAccumulator{titles: map[string]struct{}{}}
				acc[key] = entry
			}
			entry.total += req.Quantity
			entry.titles[game.Title] = struct{}{}
		}
	}

	groups := make([]ShoppingListGroup, 0, len(acc))
	for key, entry := range acc {
		titles := make([]string, 0, len(entry.titles))
		for title := range entry.titles {
			titles = append(titles, title)
		}
		sort.Strings(titles)

		groups = append(groups, ShoppingListGroup{
			WidthMM:       key.widthMM,
			HeightMM:      key.heightMM,
			TotalQuantity: entry.total,
			GameCount:     len(titles),
			GameTitles:    titles,
			// exact-size grouping never folds variations together; the
			// field stays for API compatibility
			VariationsGrouped: 1,
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
