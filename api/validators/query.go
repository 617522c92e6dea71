package validators

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ahonkala/meepledex-backend/internal/games"
	"github.com/ahonkala/meepledex-backend/pkg/enums"
	pkgerrors "github.com/ahonkala/meepledex-backend/pkg/errors"
	"github.com/ahonkala/meepledex-backend/pkg/pagination"
)

func ParseQueryInt(r *http.Request, key string, defaultVal, min, max int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return defaultVal, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be numeric").WithDetails(map[string]any{"field": key})
	}
	if value < min || value > max {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter out of range").WithDetails(map[string]any{"field": key, "min": min, "max": max})
	}
	return value, nil
}

// ParsePagination reads page/per_page query parameters with clamped bounds.
func ParsePagination(r *http.Request) (pagination.Params, error) {
	page, err := ParseQueryInt(r, "page", 1, 1, 1_000_000)
	if err != nil {
		return pagination.Params{}, err
	}
	perPage, err := ParseQueryInt(r, "per_page", pagination.DefaultPerPage, 1, pagination.MaxPerPage)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{Page: page, PerPage: perPage}, nil
}

// ParseGameFilters reads the catalogue listing filters from the query string.
func ParseGameFilters(r *http.Request) (games.ListFilters, error) {
	query := r.URL.Query()
	filters := games.ListFilters{
		Search:   strings.TrimSpace(query.Get("search")),
		Category: strings.TrimSpace(query.Get("category")),
		Mechanic: strings.TrimSpace(query.Get("mechanic")),
	}

	players, err := ParseQueryInt(r, "players", 0, 1, 100)
	if err != nil {
		return games.ListFilters{}, err
	}
	filters.Players = players

	minPlaytime, err := ParseQueryInt(r, "min_playtime", 0, 1, 10_000)
	if err != nil {
		return games.ListFilters{}, err
	}
	filters.MinPlaytime = minPlaytime

	maxPlaytime, err := ParseQueryInt(r, "max_playtime", 0, 1, 10_000)
	if err != nil {
		return games.ListFilters{}, err
	}
	filters.MaxPlaytime = maxPlaytime

	year, err := ParseQueryInt(r, "year", 0, 1900, 2200)
	if err != nil {
		return games.ListFilters{}, err
	}
	filters.Year = year

	if raw := strings.TrimSpace(query.Get("sleeve_status")); raw != "" {
		status, err := enums.ParseSleeveScanStatus(raw)
		if err != nil {
			return games.ListFilters{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sleeve status").WithDetails(map[string]any{"field": "sleeve_status"})
		}
		filters.ScanStatus = &status
	}

	return filters, nil
}

// ParseUUIDParam reads and validates a UUID path parameter.
func ParseUUIDParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid identifier").WithDetails(map[string]any{"field": name})
	}
	return id, nil
}
