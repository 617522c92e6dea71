package games

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ahonkala/meepledex-backend/pkg/errors"
	"github.com/ahonkala/meepledex-backend/pkg/logger"
	"github.com/ahonkala/meepledex-backend/pkg/pagination"
)

func newGamesService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:   NewRepository(db),
		Logger: logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	})
	require.NoError(t, err)
	return svc
}

func TestServiceCreateGeneratesUniqueSlugs(t *testing.T) {
	db := setupGamesTestDB(t)
	svc := newGamesService(t, db)

	first, err := svc.Create(context.Background(), CreateGameInput{Title: "Dune: Imperium"})
	require.NoError(t, err)
	assert.Equal(t, "dune-imperium", first.Slug)

	second, err := svc.Create(context.Background(), CreateGameInput{Title: "Dune: Imperium"})
	require.NoError(t, err)
	assert.Equal(t, "dune-imperium-2", second.Slug)
}

func TestServiceCreateValidation(t *testing.T) {
	db := setupGamesTestDB(t)
	svc := newGamesService(t, db)

	_, err := svc.Create(context.Background(), CreateGameInput{Title: "   "})
	typed := errors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, errors.CodeValidation, typed.Code())

	_, err = svc.Create(context.Background(), CreateGameInput{Title: "X", MinPlayers: 4, MaxPlayers: 2})
	typed = errors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, errors.CodeValidation, typed.Code())
}

func TestServiceGetBySlugHidesInactiveGames(t *testing.T) {
	db := setupGamesTestDB(t)
	svc := newGamesService(t, db)

	created, err := svc.Create(context.Background(), CreateGameInput{Title: "Secret Game"})
	require.NoError(t, err)

	_, err = svc.GetBySlug(context.Background(), created.Slug)
	require.NoError(t, err)

	require.NoError(t, svc.SetActive(context.Background(), created.ID, false))

	_, err = svc.GetBySlug(context.Background(), created.Slug)
	typed := errors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, errors.CodeNotFound, typed.Code())

	// admin lookup still works
	_, err = svc.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
}

func TestServiceUpdateRenamesSlugOnTitleChange(t *testing.T) {
	db := setupGamesTestDB(t)
	svc := newGamesService(t, db)

	created, err := svc.Create(context.Background(), CreateGameInput{Title: "Old Title"})
	require.NoError(t, err)

	newTitle := "Completely New"
	updated, err := svc.Update(context.Background(), created.ID, UpdateGameInput{Title: &newTitle})
	require.NoError(t, err)
	assert.Equal(t, "completely-new", updated.Slug)

	// unchanged title keeps the slug
	same, err := svc.Update(context.Background(), created.ID, UpdateGameInput{Title: &newTitle})
	require.NoError(t, err)
	assert.Equal(t, updated.Slug, same.Slug)
}

func TestServicePublicListingForcesActiveFilter(t *testing.T) {
	db := setupGamesTestDB(t)
	svc := newGamesService(t, db)
	seedDefaultCatalog(t, db)

	page, err := svc.ListPublic(context.Background(), ListFilters{}, pagination.Params{})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.EqualValues(t, 2, page.Meta.TotalItems)

	adminPage, err := svc.ListAdmin(context.Background(), ListFilters{}, pagination.Params{})
	require.NoError(t, err)
	assert.Len(t, adminPage.Items, 3)
}

func TestServiceDeleteMissingGame(t *testing.T) {
	db := setupGamesTestDB(t)
	svc := newGamesService(t, db)

	err := svc.Delete(context.Background(), uuid.New())
	typed := errors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, errors.CodeNotFound, typed.Code())
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Dune: Imperium":       "dune-imperium",
		"  7 Wonders Duel!  ":  "7-wonders-duel",
		"Ärger & Co":           "rger-co",
		"---":                  "",
	}
	for input, want := range cases {
		assert.Equal(t, want, Slugify(input), input)
	}
}
