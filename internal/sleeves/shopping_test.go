package sleeves

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/ahonkala/meepledex-backend/pkg/db/models"
	"github.com/ahonkala/meepledex-backend/pkg/enums"
)

func TestBuildShoppingListGroupsBySize(t *testing.T) {
	g1 := gameWithReqs("Alpha",
		requirement(63, 88, 100, enums.SleeveStateUnsleeved),
		requirement(45, 68, 40, enums.SleeveStateUnsleeved),
	)
	g2 := gameWithReqs("Beta",
		requirement(63, 88, 60, enums.SleeveStateSleeved),
	)
	g3 := gameWithReqs("Gamma",
		requirement(63, 88, 30, enums.SleeveStateUnknown),
	)

	storage := &fakeStorage{games: []models.Game{g1, g2, g3}}
	svc := newTestService(t, storage)

	groups, err := svc.BuildShoppingList(context.Background(), []uuid.UUID{g1.ID, g2.ID, g3.ID}, false)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("groups = %d, want 2", len(groups))
	}

	small := groups[0]
	if small.WidthMM != 45 || small.TotalQuantity != 40 || small.GameCount != 1 {
		t.Fatalf("small group = %+v", small)
	}

	standard := groups[1]
	if standard.WidthMM != 63 || standard.HeightMM != 88 {
		t.Fatalf("standard group size = %dx%d", standard.WidthMM, standard.HeightMM)
	}
	if standard.TotalQuantity != 190 {
		t.Fatalf("standard quantity = %d, want 190", standard.TotalQuantity)
	}
	if standard.GameCount != 3 || len(standard.GameTitles) != 3 {
		t.Fatalf("standard games = %d (%v)", standard.GameCount, standard.GameTitles)
	}
	if standard.GameTitles[0] != "Alpha" || standard.GameTitles[2] != "Gamma" {
		t.Fatalf("titles not sorted: %v", standard.GameTitles)
	}
	if standard.VariationsGrouped != 1 {
		t.Fatalf("variations = %d", standard.VariationsGrouped)
	}
}

func TestBuildShoppingListUnsleevedOnly(t *testing.T) {
	g1 := gameWithReqs("Alpha",
		requirement(63, 88, 100, enums.SleeveStateUnsleeved),
		requirement(63, 88, 60, enums.SleeveStateSleeved),
	)

	storage := &fakeStorage{games: []models.Game{g1}}
	svc := newTestService(t, storage)

	groups, err := svc.BuildShoppingList(context.Background(), []uuid.UUID{g1.ID}, true)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("groups = %d", len(groups))
	}
	if groups[0].TotalQuantity != 100 {
		t.Fatalf("quantity = %d, want 100", groups[0].TotalQuantity)
	}
}

func TestBuildShoppingListIgnoresUnknownIDs(t *testing.T) {
	g1 := gameWithReqs("Alpha", requirement(63, 88, 10, enums.SleeveStateUnsleeved))
	storage := &fakeStorage{games: []models.Game{g1}}
	svc := newTestService(t, storage)

	groups, err := svc.BuildShoppingList(context.Background(), []uuid.UUID{uuid.New()}, false)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(groups) != 0 {
		t.Fatalf("groups = %d, want 0", len(groups))
	}
}

func TestBuildShoppingListRequiresIDs(t *testing.T) {
	svc := newTestService(t, &fakeStorage{})
	if _, err := svc.BuildShoppingList(context.Background(), nil, false); err == nil {
		t.Fatal("expected validation error")
	}
}
