package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ahonkala/meepledex-backend/api/controllers"
	"github.com/ahonkala/meepledex-backend/api/middleware"
	"github.com/ahonkala/meepledex-backend/internal/admins"
	"github.com/ahonkala/meepledex-backend/internal/bggimport"
	"github.com/ahonkala/meepledex-backend/internal/buylist"
	"github.com/ahonkala/meepledex-backend/internal/games"
	"github.com/ahonkala/meepledex-backend/internal/sleeves"
	"github.com/ahonkala/meepledex-backend/pkg/cloudinary"
	"github.com/ahonkala/meepledex-backend/pkg/config"
	"github.com/ahonkala/meepledex-backend/pkg/logger"
)

// Deps bundles everything the router needs wired in.
type Deps struct {
	Config     *config.Config
	Logger     *logger.Logger
	DB         controllers.Pinger
	Redis      controllers.Pinger
	Admins     admins.Service
	Games      games.Service
	Sleeves    sleeves.Service
	BuyList    buylist.Service
	Importer   bggimport.Service
	Cloudinary *cloudinary.Client
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"postgres": deps.DB,
			"redis":    deps.Redis,
		}))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/ping", controllers.Ping())
		r.Get("/games", controllers.GamesList(deps.Games, logg))
		r.Get("/games/{slug}", controllers.GamesDetail(deps.Games, logg))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", controllers.AuthLogin(deps.Admins, logg))
			r.Post("/logout", controllers.AuthLogout())
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/games", func(r chi.Router) {
			r.Get("/", controllers.AdminGamesList(deps.Games, logg))
			r.Post("/", controllers.AdminGamesCreate(deps.Games, logg))
			r.Post("/import", controllers.AdminGamesImport(deps.Importer, logg))
			r.Get("/bgg-search", controllers.AdminGamesSearchBGG(deps.Importer, logg))

			r.Route("/{gameId}", func(r chi.Router) {
				r.Get("/", controllers.AdminGamesGet(deps.Games, logg))
				r.Put("/", controllers.AdminGamesUpdate(deps.Games, logg))
				r.Delete("/", controllers.AdminGamesDelete(deps.Games, logg))
				r.Put("/sleeves", controllers.AdminGamesReplaceRequirements(deps.Sleeves, logg))
				r.Put("/scan-status", controllers.AdminGamesSetScanStatus(deps.Games, logg))
				r.Put("/sleeved", controllers.AdminGamesSetSleeved(deps.Games, logg))
				r.Put("/cover", controllers.AdminGamesSetCover(deps.Games, logg))
			})
		})

		r.Route("/sleeves", func(r chi.Router) {
			r.Post("/match", controllers.SleevesRunMatching(deps.Sleeves, logg))
			r.Get("/to-sleeve", controllers.SleevesToSleeve(deps.Sleeves, logg))
			r.Get("/to-order", controllers.SleevesToOrder(deps.Sleeves, logg))
			r.Post("/shopping-list", controllers.SleevesShoppingList(deps.Sleeves, logg))
		})

		r.Route("/buylist", func(r chi.Router) {
			r.Get("/", controllers.BuyListIndex(deps.BuyList, logg))
			r.Post("/", controllers.BuyListCreate(deps.BuyList, logg))
			r.Get("/summary", controllers.BuyListSummary(deps.BuyList, logg))
			r.Post("/refresh", controllers.BuyListRefresh(deps.BuyList, logg))

			r.Route("/{itemId}", func(r chi.Router) {
				r.Put("/", controllers.BuyListUpdate(deps.BuyList, logg))
				r.Delete("/", controllers.BuyListDelete(deps.BuyList, logg))
				r.Put("/status", controllers.BuyListSetStatus(deps.BuyList, logg))
				r.Get("/history", controllers.BuyListHistory(deps.BuyList, logg))
			})
		})

		r.Get("/media/sign", controllers.MediaSignUpload(deps.Cloudinary, logg))
	})

	return r
}
