package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ahonkala/meepledex-backend/internal/games"
	pkgAuth "github.com/ahonkala/meepledex-backend/pkg/auth"
	"github.com/ahonkala/meepledex-backend/pkg/config"
	"github.com/ahonkala/meepledex-backend/pkg/enums"
	"github.com/ahonkala/meepledex-backend/pkg/logger"
	"github.com/ahonkala/meepledex-backend/pkg/pagination"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubGamesService struct{}

func (stubGamesService) ListPublic(context.Context, games.ListFilters, pagination.Params) (games.GamePageDTO, error) {
	return games.GamePageDTO{Items: []games.GameSummaryDTO{}}, nil
}

func (stubGamesService) ListAdmin(context.Context, games.ListFilters, pagination.Params) (games.GamePageDTO, error) {
	return games.GamePageDTO{Items: []games.GameSummaryDTO{}}, nil
}

func (stubGamesService) GetBySlug(context.Context, string) (games.GameDetailDTO, error) {
	return games.GameDetailDTO{}, nil
}

func (stubGamesService) GetByID(context.Context, uuid.UUID) (games.GameDetailDTO, error) {
	return games.GameDetailDTO{}, nil
}

func (stubGamesService) Create(context.Context, games.CreateGameInput) (games.GameDetailDTO, error) {
	return games.GameDetailDTO{}, nil
}

func (stubGamesService) Update(context.Context, uuid.UUID, games.UpdateGameInput) (games.GameDetailDTO, error) {
	return games.GameDetailDTO{}, nil
}

func (stubGamesService) Delete(context.Context, uuid.UUID) error { return nil }

func (stubGamesService) SetActive(context.Context, uuid.UUID, bool) error { return nil }

func (stubGamesService) SetScanStatus(context.Context, uuid.UUID, enums.SleeveScanStatus) error {
	return nil
}

func (stubGamesService) SetSleeved(context.Context, uuid.UUID, bool) error { return nil }

func (stubGamesService) SetCover(context.Context, uuid.UUID, string) error { return nil }

func routerTestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "dev", Port: "8080"},
		JWT: config.JWTConfig{
			Secret:            "router-test-secret",
			Issuer:            "meepledex-test",
			ExpirationMinutes: 30,
		},
	}
}

func newTestRouter() http.Handler {
	return NewRouter(Deps{
		Config: routerTestConfig(),
		Logger: logger.New(logger.Options{ServiceName: "router-test", Output: io.Discard}),
		DB:     stubPinger{},
		Redis:  stubPinger{},
		Games:  stubGamesService{},
	})
}

func TestHealthEndpoints(t *testing.T) {
	router := newTestRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("live: expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("ready: expected 200, got %d", rec.Code)
	}
}

func TestPublicRoutesAreOpen(t *testing.T) {
	router := newTestRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("ping: expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/games", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("games: expected 200, got %d", rec.Code)
	}
}

func TestAdminRoutesRequireToken(t *testing.T) {
	router := newTestRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/v1/games/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	token, err := pkgAuth.MintAccessToken(pkgAuth.AccessTokenPayload{
		AdminID: uuid.New(),
		Email:   "admin@meepledex.app",
	}, routerTestConfig().JWT, time.Now())
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/games/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", rec.Code)
	}
}
