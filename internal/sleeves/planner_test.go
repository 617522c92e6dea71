package sleeves

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ahonkala/meepledex-backend/pkg/db/models"
	"github.com/ahonkala/meepledex-backend/pkg/enums"
)

func attachMatch(req *models.SleeveRequirement, p models.SleeveProduct) {
	id := p.ID
	req.MatchedProductID = &id
	req.MatchedProduct = &p
}

func TestComputeToSleeveGamesAllOrNothing(t *testing.T) {
	stocked := product("stocked", 64, 92, 100, "2.00", 100, 0)
	scarce := product("scarce", 46, 73, 50, "1.50", 5, 0)

	ready := gameWithReqs("Ready Game",
		requirement(63, 88, 90, enums.SleeveStateUnsleeved),
	)
	attachMatch(&ready.SleeveRequirements[0], stocked)

	// one requirement coverable, the other short on stock
	blocked := gameWithReqs("Blocked Game",
		requirement(63, 88, 50, enums.SleeveStateUnsleeved),
		requirement(45, 68, 40, enums.SleeveStateUnsleeved),
	)
	attachMatch(&blocked.SleeveRequirements[0], stocked)
	attachMatch(&blocked.SleeveRequirements[1], scarce)

	unmatched := gameWithReqs("Unmatched Game",
		requirement(30, 30, 10, enums.SleeveStateUnsleeved),
	)

	fully := gameWithReqs("Fully Sleeved",
		requirement(63, 88, 10, enums.SleeveStateSleeved),
	)

	storage := &fakeStorage{
		products: []models.SleeveProduct{stocked, scarce},
		games:    []models.Game{ready, blocked, unmatched, fully},
	}
	svc := newTestService(t, storage)

	games, err := svc.ComputeToSleeveGames(context.Background())
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if len(games) != 1 {
		t.Fatalf("games = %d, want 1", len(games))
	}
	got := games[0]
	if got.Title != "Ready Game" {
		t.Fatalf("title = %s", got.Title)
	}
	if len(got.Requirements) != 1 {
		t.Fatalf("requirements = %d", len(got.Requirements))
	}
	detail := got.Requirements[0]
	if detail.ProductName != "stocked" || detail.InStock != 100 || detail.Quantity != 90 {
		t.Fatalf("detail = %+v", detail)
	}
}

func TestComputeToSleeveSkipsSleevedGames(t *testing.T) {
	stocked := product("stocked", 64, 92, 100, "2.00", 100, 0)
	done := gameWithReqs("Done", requirement(63, 88, 10, enums.SleeveStateUnsleeved))
	done.IsSleeved = true
	attachMatch(&done.SleeveRequirements[0], stocked)

	storage := &fakeStorage{products: []models.SleeveProduct{stocked}, games: []models.Game{done}}
	svc := newTestService(t, storage)

	games, err := svc.ComputeToSleeveGames(context.Background())
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if len(games) != 0 {
		t.Fatalf("games = %d, want 0", len(games))
	}
}

func TestComputeToSleeveOrderStableForDuplicateTitles(t *testing.T) {
	stocked := product("stocked", 64, 92, 100, "2.00", 500, 0)

	first := gameWithReqs("Carcassonne", requirement(63, 88, 10, enums.SleeveStateUnsleeved))
	second := gameWithReqs("Carcassonne", requirement(63, 88, 10, enums.SleeveStateUnsleeved))
	attachMatch(&first.SleeveRequirements[0], stocked)
	attachMatch(&second.SleeveRequirements[0], stocked)

	storage := &fakeStorage{
		products: []models.SleeveProduct{stocked},
		games:    []models.Game{first, second},
	}
	svc := newTestService(t, storage)

	games, err := svc.ComputeToSleeveGames(context.Background())
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if len(games) != 2 {
		t.Fatalf("games = %d, want 2", len(games))
	}
	if games[0].GameID.String() > games[1].GameID.String() {
		t.Fatalf("equal titles not ordered by id: %s > %s", games[0].GameID, games[1].GameID)
	}
}

// 120 sleeves needed, 30 on the shelf and one 50-pack already on order:
// the deficit is 40 and a single extra pack covers it.
func TestComputeToOrderListDeficitAndPacks(t *testing.T) {
	pack := product("fifty-pack", 64, 92, 50, "4.50", 30, 1)

	g1 := gameWithReqs("G1", requirement(63, 88, 70, enums.SleeveStateUnsleeved))
	g2 := gameWithReqs("G2", requirement(63, 88, 50, enums.SleeveStateUnknown))

	storage := &fakeStorage{products: []models.SleeveProduct{pack}, games: []models.Game{g1, g2}}
	svc := newTestService(t, storage)

	groups, err := svc.ComputeToOrderList(context.Background())
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("groups = %d, want 1", len(groups))
	}
	group := groups[0]
	if group.TotalNeeded != 120 {
		t.Fatalf("total needed = %d", group.TotalNeeded)
	}
	if group.GamesCount != 2 {
		t.Fatalf("games count = %d, want 2", group.GamesCount)
	}
	if len(group.GameNames) != 2 || group.GameNames[0] != "G1" || group.GameNames[1] != "G2" {
		t.Fatalf("game names = %v", group.GameNames)
	}
	if group.Deficit != 40 {
		t.Fatalf("deficit = %d, want 40", group.Deficit)
	}
	if group.PacksToBuy != 1 {
		t.Fatalf("packs = %d, want 1", group.PacksToBuy)
	}
	if !group.TotalCost.Equal(decimal.RequireFromString("4.50")) {
		t.Fatalf("cost = %s", group.TotalCost)
	}
	if group.Product == nil || group.Product.Name != "fifty-pack" {
		t.Fatalf("product = %+v", group.Product)
	}
}

func TestComputeToOrderListOmitsCoveredSizes(t *testing.T) {
	plenty := product("plenty", 64, 92, 100, "2.00", 500, 0)
	g := gameWithReqs("G", requirement(63, 88, 120, enums.SleeveStateUnsleeved))

	storage := &fakeStorage{products: []models.SleeveProduct{plenty}, games: []models.Game{g}}
	svc := newTestService(t, storage)

	groups, err := svc.ComputeToOrderList(context.Background())
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if len(groups) != 0 {
		t.Fatalf("groups = %d, want 0", len(groups))
	}
}

func TestComputeToOrderListKeepsUnmatchableSizes(t *testing.T) {
	g := gameWithReqs("G", requirement(30, 30, 25, enums.SleeveStateUnsleeved))
	storage := &fakeStorage{games: []models.Game{g}}
	svc := newTestService(t, storage)

	groups, err := svc.ComputeToOrderList(context.Background())
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("groups = %d, want 1", len(groups))
	}
	group := groups[0]
	if group.Product != nil {
		t.Fatalf("product = %+v, want nil", group.Product)
	}
	if group.Deficit != 25 || group.TotalNeeded != 25 {
		t.Fatalf("deficit/needed = %d/%d", group.Deficit, group.TotalNeeded)
	}
	if group.PacksToBuy != 0 || !group.TotalCost.IsZero() {
		t.Fatalf("packs/cost = %d/%s", group.PacksToBuy, group.TotalCost)
	}
	if group.GamesCount != 1 || len(group.GameNames) != 1 || group.GameNames[0] != "G" {
		t.Fatalf("games = %d/%v", group.GamesCount, group.GameNames)
	}
}

// two games contribute to the same size class; both must show up in the
// group's name list exactly once each
func TestComputeToOrderListNamesDistinctGames(t *testing.T) {
	g1 := gameWithReqs("Beta",
		requirement(63, 88, 10, enums.SleeveStateUnsleeved),
		requirement(63, 88, 20, enums.SleeveStateUnsleeved),
	)
	g2 := gameWithReqs("Alpha", requirement(63, 88, 5, enums.SleeveStateUnsleeved))

	storage := &fakeStorage{games: []models.Game{g1, g2}}
	svc := newTestService(t, storage)

	groups, err := svc.ComputeToOrderList(context.Background())
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("groups = %d, want 1", len(groups))
	}
	group := groups[0]
	if group.TotalNeeded != 35 {
		t.Fatalf("total needed = %d", group.TotalNeeded)
	}
	if group.GamesCount != 2 {
		t.Fatalf("games count = %d, want 2", group.GamesCount)
	}
	if len(group.GameNames) != 2 || group.GameNames[0] != "Alpha" || group.GameNames[1] != "Beta" {
		t.Fatalf("game names = %v", group.GameNames)
	}
}

func TestComputeToOrderListSortedBySize(t *testing.T) {
	g := gameWithReqs("G",
		requirement(70, 120, 10, enums.SleeveStateUnsleeved),
		requirement(45, 68, 10, enums.SleeveStateUnsleeved),
		requirement(45, 110, 10, enums.SleeveStateUnsleeved),
	)
	storage := &fakeStorage{games: []models.Game{g}}
	svc := newTestService(t, storage)

	groups, err := svc.ComputeToOrderList(context.Background())
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if len(groups) != 3 {
		t.Fatalf("groups = %d", len(groups))
	}
	if groups[0].WidthMM != 45 || groups[0].HeightMM != 68 {
		t.Fatalf("first group = %dx%d", groups[0].WidthMM, groups[0].HeightMM)
	}
	if groups[1].WidthMM != 45 || groups[1].HeightMM != 110 {
		t.Fatalf("second group = %dx%d", groups[1].WidthMM, groups[1].HeightMM)
	}
	if groups[2].WidthMM != 70 {
		t.Fatalf("third group = %dx%d", groups[2].WidthMM, groups[2].HeightMM)
	}
}
